package serializers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/azayd/website/backend/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MediaURL turns a stored file name into a public URL.
type MediaURL func(name string) string

var now = time.Now

const recentWindow = 30 * 24 * time.Hour

var serviceFeatures = []string{
	"Professional Development",
	"24/7 Support",
	"Quality Assurance",
	"Timely Delivery",
	"Modern Technology Stack",
}

type ServiceDTO struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Icon           string    `json:"icon"`
	Image          *string   `json:"image"`
	Price          *string   `json:"price"`
	FormattedPrice string    `json:"formatted_price"`
	TechStack      string    `json:"tech_stack"`
	TechStackList  []string  `json:"tech_stack_list"`
	CreatedDate    string    `json:"created_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ServiceDetailDTO struct {
	ServiceDTO
	Features []string `json:"features"`
}

func NewServiceDTO(s *models.Service, media MediaURL) ServiceDTO {
	dto := ServiceDTO{
		ID:             s.ID,
		Title:          s.Title,
		Slug:           s.Slug,
		Description:    s.Description,
		Icon:           s.Icon,
		Image:          mediaURL(s.Image, media),
		FormattedPrice: FormatPrice(s.Price),
		TechStack:      s.TechStack,
		TechStackList:  s.TechStackList(),
		CreatedDate:    s.CreatedAt.Format("January 02, 2006"),
		UpdatedAt:      s.UpdatedAt,
	}
	if s.Price != nil {
		p := fmt.Sprintf("%.2f", *s.Price)
		dto.Price = &p
	}
	return dto
}

func NewServiceDetailDTO(s *models.Service, media MediaURL) ServiceDetailDTO {
	return ServiceDetailDTO{
		ServiceDTO: NewServiceDTO(s, media),
		Features:   append([]string(nil), serviceFeatures...),
	}
}

func NewServiceDTOs(items []models.Service, media MediaURL) []ServiceDTO {
	out := make([]ServiceDTO, 0, len(items))
	for i := range items {
		out = append(out, NewServiceDTO(&items[i], media))
	}
	return out
}

// FormatPrice renders a price as "$1,234.50"; nil or zero is shown as
// "Contact for pricing".
func FormatPrice(price *float64) string {
	if price == nil || *price == 0 {
		return "Contact for pricing"
	}
	cents := int64(math.Round(*price * 100))
	return message.NewPrinter(language.English).Sprintf("$%d.%s", cents/100, fmt.Sprintf("%02d", cents%100))
}

type TeamMemberDTO struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Position        string    `json:"position"`
	Department      string    `json:"department"`
	Bio             string    `json:"bio"`
	Image           *string   `json:"image"`
	LinkedInURL     string    `json:"linkedin_url"`
	TwitterURL      string    `json:"twitter_url"`
	GitHubURL       string    `json:"github_url"`
	Email           string    `json:"email"`
	Skills          []string  `json:"skills"`
	PrimarySkills   []string  `json:"primary_skills"`
	YearsExperience int       `json:"years_experience"`
	ExperienceLevel string    `json:"experience_level"`
	Achievements    []string  `json:"achievements"`
	IsActive        bool      `json:"is_active"`
	IsLeadership    bool      `json:"is_leadership"`
	Order           int       `json:"order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewTeamMemberDTO(m *models.TeamMember, media MediaURL) TeamMemberDTO {
	skills := nonNil(m.Skills)
	primary := skills
	if len(primary) > 5 {
		primary = primary[:5]
	}
	return TeamMemberDTO{
		ID:              m.ID,
		Name:            m.Name,
		FullName:        m.Name,
		Position:        m.Position,
		Department:      m.Department,
		Bio:             m.Bio,
		Image:           mediaURL(m.Image, media),
		LinkedInURL:     m.LinkedIn,
		TwitterURL:      m.Twitter,
		GitHubURL:       m.GitHub,
		Email:           m.Email,
		Skills:          skills,
		PrimarySkills:   primary,
		YearsExperience: m.YearsExperience,
		ExperienceLevel: ExperienceLevel(m.YearsExperience),
		Achievements:    nonNil(m.Achievements),
		IsActive:        m.IsActive,
		IsLeadership:    m.IsLeadership,
		Order:           m.Order,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func NewTeamMemberDTOs(items []models.TeamMember, media MediaURL) []TeamMemberDTO {
	out := make([]TeamMemberDTO, 0, len(items))
	for i := range items {
		out = append(out, NewTeamMemberDTO(&items[i], media))
	}
	return out
}

// ExperienceLevel buckets years of experience.
func ExperienceLevel(years int) string {
	switch {
	case years < 2:
		return "Junior"
	case years < 5:
		return "Mid-level"
	case years < 10:
		return "Senior"
	default:
		return "Expert"
	}
}

type JobPostingDTO struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Department       string    `json:"department"`
	Location         string    `json:"location"`
	JobType          string    `json:"job_type"`
	JobTypeDisplay   string    `json:"job_type_display"`
	Description      string    `json:"description"`
	Requirements     string    `json:"requirements"`
	RequirementsList []string  `json:"requirements_list"`
	PostedDate       string    `json:"posted_date"`
	SalaryRange      string    `json:"salary_range"`
	ExperienceLevel  string    `json:"experience_level"`
	IsActive         bool      `json:"is_active"`
	IsRecent         bool      `json:"is_recent"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewJobPostingDTO(j *models.JobPosting) JobPostingDTO {
	return JobPostingDTO{
		ID:               j.ID,
		Title:            j.Title,
		Slug:             j.Slug,
		Department:       j.Department,
		Location:         j.Location,
		JobType:          j.JobType,
		JobTypeDisplay:   models.JobTypeLabels[j.JobType],
		Description:      j.Description,
		Requirements:     j.Requirements,
		RequirementsList: RequirementsList(j.Requirements),
		PostedDate:       j.CreatedAt.Format("2006-01-02"),
		SalaryRange:      j.SalaryRange,
		ExperienceLevel:  j.ExperienceLevel,
		IsActive:         j.IsActive,
		IsRecent:         IsRecent(j.CreatedAt),
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}

func NewJobPostingDTOs(items []models.JobPosting) []JobPostingDTO {
	out := make([]JobPostingDTO, 0, len(items))
	for i := range items {
		out = append(out, NewJobPostingDTO(&items[i]))
	}
	return out
}

// RequirementsList splits requirements into non-blank lines.
func RequirementsList(requirements string) []string {
	items := []string{}
	for _, line := range strings.Split(requirements, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// IsRecent reports whether t falls within the last 30 days.
func IsRecent(t time.Time) bool {
	return !t.Before(now().Add(-recentWindow))
}

type ContactMessageDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewContactMessageDTO(m *models.ContactMessage) ContactMessageDTO {
	return ContactMessageDTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// ResumeSubmissionDTO is the back-office view of a resume.
type ResumeSubmissionDTO struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Message       string    `json:"message"`
	ResumeFile    string    `json:"resume_file"`
	ResumeLink    string    `json:"resume_link"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	IsReviewed    bool      `json:"is_reviewed"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewResumeSubmissionDTO(r *models.ResumeSubmission) ResumeSubmissionDTO {
	return ResumeSubmissionDTO{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Message:       r.Message,
		ResumeFile:    r.ResumeFile,
		ResumeLink:    r.ResumeLink,
		Status:        r.Status,
		StatusDisplay: models.SubmissionStatusLabels[r.Status],
		IsReviewed:    r.IsReviewed,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}

// JobApplicationDTO is the back-office view of an application.
type JobApplicationDTO struct {
	ID            uint      `json:"id"`
	JobID         *uint     `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CoverLetter   string    `json:"cover_letter"`
	ResumeFile    string    `json:"resume_file"`
	ResumeLink    string    `json:"resume_link"`
	Status        string    `json:"status"`
	StatusDisplay string    `json:"status_display"`
	IsReviewed    bool      `json:"is_reviewed"`
	Notes         string    `json:"notes"`
	EmailSent     bool      `json:"email_sent"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewJobApplicationDTO(a *models.JobApplication) JobApplicationDTO {
	return JobApplicationDTO{
		ID:            a.ID,
		JobID:         a.JobID,
		JobTitle:      a.JobTitle(),
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		CoverLetter:   a.CoverLetter,
		ResumeFile:    a.ResumeFile,
		ResumeLink:    a.ResumeLink,
		Status:        a.Status,
		StatusDisplay: models.SubmissionStatusLabels[a.Status],
		IsReviewed:    a.IsReviewed,
		Notes:         a.Notes,
		EmailSent:     a.EmailSent,
		CreatedAt:     a.CreatedAt,
	}
}

func mediaURL(name string, media MediaURL) *string {
	if name == "" || media == nil {
		return nil
	}
	u := media(name)
	if u == "" {
		return nil
	}
	return &u
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
