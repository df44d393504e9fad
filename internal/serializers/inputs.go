package serializers

import (
	"strings"

	"github.com/azayd/website/backend/internal/models"
)

// ContactInput is the public contact form.
type ContactInput struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,max=254"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200"`
	Message string `json:"message" form:"message" validate:"required"`
}

func (in *ContactInput) Validate() ValidationErrors {
	trimAll(&in.Name, &in.Email, &in.Subject, &in.Message)
	errs := checkStruct(in)
	apply(errs, "name", &in.Name, ValidateName)
	apply(errs, "email", &in.Email, ValidateEmail)
	apply(errs, "subject", &in.Subject, ValidateSubject)
	apply(errs, "message", &in.Message, ValidateMessage)
	return errs
}

func (in *ContactInput) Model() *models.ContactMessage {
	return &models.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
}

// ResumeSubmissionInput is a general resume submission. The file itself
// travels separately; HasFile records whether one was attached.
type ResumeSubmissionInput struct {
	Name       string `json:"name" form:"name" validate:"required,max=100"`
	Email      string `json:"email" form:"email" validate:"required,max=254"`
	Phone      string `json:"phone" form:"phone" validate:"max=20"`
	Message    string `json:"message" form:"message" validate:"required"`
	ResumeLink string `json:"resume_link" form:"resume_link" validate:"omitempty,url,max=500"`
	HasFile    bool   `json:"-" form:"-"`
}

func (in *ResumeSubmissionInput) Validate() ValidationErrors {
	trimAll(&in.Name, &in.Email, &in.Phone, &in.Message, &in.ResumeLink)
	errs := checkStruct(in)
	apply(errs, "name", &in.Name, ValidateName)
	apply(errs, "email", &in.Email, ValidateEmail)
	apply(errs, "message", &in.Message, ValidateMessage)
	if !errs.Any() {
		if err := ValidateResumeSource(in.HasFile, in.ResumeLink); err != nil {
			errs.Add(NonFieldErrors, err.Error())
		}
	}
	return errs
}

func (in *ResumeSubmissionInput) Model() *models.ResumeSubmission {
	return &models.ResumeSubmission{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
		ResumeLink: in.ResumeLink,
		Status:     models.StatusNew,
	}
}

// JobLookup reports whether the job with id exists and is open.
type JobLookup func(id uint) (bool, error)

// JobApplicationInput is an application for a specific posting.
type JobApplicationInput struct {
	JobID       *uint  `json:"job_id" form:"job_id" validate:"required"`
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Email       string `json:"email" form:"email" validate:"required,max=254"`
	Phone       string `json:"phone" form:"phone" validate:"max=20"`
	CoverLetter string `json:"cover_letter" form:"cover_letter" validate:"required"`
	ResumeLink  string `json:"resume_link" form:"resume_link" validate:"omitempty,url,max=500"`
	HasFile     bool   `json:"-" form:"-"`
}

const jobUnavailableMessage = "The job you are applying for does not exist or is no longer active."

// Validate checks the fields, asks lookup about the job and then applies
// the file-or-link rule. A lookup failure is returned as the error.
func (in *JobApplicationInput) Validate(lookup JobLookup) (ValidationErrors, error) {
	trimAll(&in.Name, &in.Email, &in.Phone, &in.CoverLetter, &in.ResumeLink)
	errs := checkStruct(in)
	apply(errs, "name", &in.Name, ValidateName)
	apply(errs, "email", &in.Email, ValidateEmail)
	apply(errs, "cover_letter", &in.CoverLetter, ValidateCoverLetter)

	if !errs.Has("job_id") && in.JobID != nil {
		ok, err := lookup(*in.JobID)
		if err != nil {
			return errs, err
		}
		if !ok {
			errs.Add("job_id", jobUnavailableMessage)
		}
	}

	if !errs.Any() {
		if err := ValidateResumeSource(in.HasFile, in.ResumeLink); err != nil {
			errs.Add(NonFieldErrors, err.Error())
		}
	}
	return errs, nil
}

func (in *JobApplicationInput) Model() *models.JobApplication {
	return &models.JobApplication{
		JobID:       in.JobID,
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		CoverLetter: in.CoverLetter,
		ResumeLink:  in.ResumeLink,
		Status:      models.StatusNew,
		IsReviewed:  false,
	}
}

// ServiceInput creates or replaces a catalogue entry.
type ServiceInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"max=220"`
	Description string   `json:"description" validate:"required"`
	Icon        string   `json:"icon" validate:"max=50"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0,lt=100000000"`
	TechStack   string   `json:"tech_stack" validate:"max=500"`
}

func (in *ServiceInput) Validate() ValidationErrors {
	trimAll(&in.Title, &in.Slug, &in.Description, &in.Icon, &in.TechStack)
	errs := checkStruct(in)
	if in.Slug != "" && models.Slugify(in.Slug) != in.Slug {
		errs.Add("slug", "Enter a valid \"slug\" consisting of letters, numbers, underscores or hyphens.")
	}
	return errs
}

func (in *ServiceInput) Apply(s *models.Service) {
	s.Title = in.Title
	if in.Slug != "" {
		s.Slug = in.Slug
	}
	s.Description = in.Description
	s.Icon = strings.TrimPrefix(in.Icon, "fa-")
	s.Price = in.Price
	s.TechStack = in.TechStack
}

// TeamMemberInput creates or replaces a team member.
type TeamMemberInput struct {
	Name            string   `json:"name" validate:"required,max=100"`
	Position        string   `json:"position" validate:"required,max=100"`
	Department      string   `json:"department" validate:"max=50"`
	Bio             string   `json:"bio" validate:"required"`
	LinkedIn        string   `json:"linkedin" validate:"omitempty,url,max=200"`
	Twitter         string   `json:"twitter" validate:"omitempty,url,max=200"`
	GitHub          string   `json:"github" validate:"omitempty,url,max=200"`
	Email           string   `json:"email" validate:"omitempty,email,max=254"`
	Skills          []string `json:"skills" validate:"omitempty,dive,max=100"`
	YearsExperience int      `json:"years_experience" validate:"gte=0,lte=80"`
	Achievements    []string `json:"achievements" validate:"omitempty,dive,max=500"`
	IsActive        *bool    `json:"is_active"`
	IsLeadership    bool     `json:"is_leadership"`
	Order           int      `json:"order"`
}

func (in *TeamMemberInput) Validate() ValidationErrors {
	trimAll(&in.Name, &in.Position, &in.Department, &in.Bio, &in.LinkedIn, &in.Twitter, &in.GitHub, &in.Email)
	return checkStruct(in)
}

func (in *TeamMemberInput) Apply(m *models.TeamMember) {
	m.Name = in.Name
	m.Position = in.Position
	m.Department = in.Department
	m.Bio = in.Bio
	m.LinkedIn = in.LinkedIn
	m.Twitter = in.Twitter
	m.GitHub = in.GitHub
	m.Email = strings.ToLower(in.Email)
	m.Skills = cleanList(in.Skills)
	m.YearsExperience = in.YearsExperience
	m.Achievements = cleanList(in.Achievements)
	m.IsActive = in.IsActive == nil || *in.IsActive
	m.IsLeadership = in.IsLeadership
	m.Order = in.Order
}

// JobPostingInput creates or replaces a job posting.
type JobPostingInput struct {
	Title           string `json:"title" validate:"required,max=200"`
	Department      string `json:"department" validate:"required,max=100"`
	Location        string `json:"location" validate:"required,max=100"`
	JobType         string `json:"job_type" validate:"omitempty,oneof=full-time part-time contract internship remote"`
	Description     string `json:"description" validate:"required"`
	Requirements    string `json:"requirements" validate:"required"`
	IsActive        *bool  `json:"is_active"`
	SalaryRange     string `json:"salary_range" validate:"max=100"`
	ExperienceLevel string `json:"experience_level" validate:"max=50"`
}

func (in *JobPostingInput) Validate() ValidationErrors {
	trimAll(&in.Title, &in.Department, &in.Location, &in.JobType, &in.Description, &in.Requirements, &in.SalaryRange, &in.ExperienceLevel)
	return checkStruct(in)
}

func (in *JobPostingInput) Apply(j *models.JobPosting) {
	j.Title = in.Title
	j.Department = in.Department
	j.Location = in.Location
	j.JobType = in.JobType
	j.Description = in.Description
	j.Requirements = in.Requirements
	j.IsActive = in.IsActive == nil || *in.IsActive
	j.SalaryRange = in.SalaryRange
	j.ExperienceLevel = in.ExperienceLevel
}

// StatusUpdateInput moves a resume or application through the pipeline.
type StatusUpdateInput struct {
	Status     string  `json:"status" validate:"required,oneof=new reviewing contacted interview rejected hired"`
	Notes      *string `json:"notes"`
	IsReviewed *bool   `json:"is_reviewed"`
}

func (in *StatusUpdateInput) Validate() ValidationErrors {
	in.Status = strings.TrimSpace(in.Status)
	return checkStruct(in)
}

// IDsInput selects records for a bulk admin action.
type IDsInput struct {
	IDs []uint `json:"ids" validate:"required,min=1,max=500"`
}

func (in *IDsInput) Validate() ValidationErrors {
	return checkStruct(in)
}

type LoginInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

func (in *LoginInput) Validate() ValidationErrors {
	in.Username = strings.TrimSpace(in.Username)
	return checkStruct(in)
}

func cleanList(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
