package serializers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/azayd/website/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"  john doe ", "John Doe", false},
		{"JANE", "Jane", false},
		{"jo", "Jo", false},
		{"j", "", true},
		{"   ", "", true},
		{"émile zola", "Émile Zola", false},
	}

	for _, tt := range tests {
		got, err := ValidateName(tt.input)
		if tt.wantErr {
			if err == nil || err.Error() != "Name must be at least 2 characters long." {
				t.Errorf("ValidateName(%q) error = %v", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("ValidateName(%q) = %q, %v; expected %q", tt.input, got, err, tt.expected)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  John.Doe@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", got)

	_, err = ValidateEmail("not-an-email")
	require.Error(t, err)
	assert.Equal(t, "Please provide a valid email address.", err.Error())
}

func TestMinLengthValidators(t *testing.T) {
	_, err := ValidateSubject(" Hi  ")
	assert.EqualError(t, err, "Subject must be at least 5 characters long.")
	_, err = ValidateMessage("too short")
	assert.EqualError(t, err, "Message must be at least 10 characters long.")
	_, err = ValidateCoverLetter("short")
	assert.EqualError(t, err, "Cover letter must be at least 10 characters long.")

	got, err := ValidateMessage("  exactly ten  ")
	require.NoError(t, err)
	assert.Equal(t, "exactly ten", got)
}

func TestContactInput_Validate(t *testing.T) {
	in := ContactInput{Name: "ada lovelace", Email: "ADA@Example.com", Subject: "Project inquiry", Message: "I would like a quote."}
	errs := in.Validate()
	require.False(t, errs.Any(), errs.Error())
	assert.Equal(t, "Ada Lovelace", in.Name)
	assert.Equal(t, "ada@example.com", in.Email)

	bad := ContactInput{Name: "a", Email: "nope", Subject: "Hey", Message: ""}
	errs = bad.Validate()
	assert.Equal(t, []string{"Name must be at least 2 characters long."}, errs["name"])
	assert.Equal(t, []string{"Please provide a valid email address."}, errs["email"])
	assert.Equal(t, []string{"Subject must be at least 5 characters long."}, errs["subject"])
	assert.Equal(t, []string{"This field is required."}, errs["message"])
}

func TestContactInput_MaxLength(t *testing.T) {
	in := ContactInput{Name: strings.Repeat("a", 101), Email: "a@b.c", Subject: "Hello there", Message: "A long enough message."}
	errs := in.Validate()
	assert.Equal(t, []string{"Ensure this field has no more than 100 characters."}, errs["name"])
}

func TestResumeSubmissionInput_RequiresFileOrLink(t *testing.T) {
	in := ResumeSubmissionInput{Name: "Bob Stone", Email: "bob@example.com", Message: "Looking for backend roles."}
	errs := in.Validate()
	assert.Equal(t, []string{"Either a resume file or a link to a resume must be provided."}, errs[NonFieldErrors])

	in.HasFile = true
	assert.False(t, in.Validate().Any())

	in.HasFile = false
	in.ResumeLink = "https://example.com/cv.pdf"
	assert.False(t, in.Validate().Any())
}

func TestResumeSubmissionInput_CrossFieldSkippedOnFieldErrors(t *testing.T) {
	in := ResumeSubmissionInput{Name: "B", Email: "bob@example.com", Message: "Looking for backend roles."}
	errs := in.Validate()
	assert.True(t, errs.Has("name"))
	assert.False(t, errs.Has(NonFieldErrors))
}

func TestResumeSubmissionInput_InvalidLink(t *testing.T) {
	in := ResumeSubmissionInput{Name: "Bob", Email: "bob@example.com", Message: "Looking for backend roles.", ResumeLink: "not a url"}
	errs := in.Validate()
	assert.Equal(t, []string{"Enter a valid URL."}, errs["resume_link"])
}

func TestJobApplicationInput_Validate(t *testing.T) {
	jobID := uint(3)
	active := func(id uint) (bool, error) { return id == 3, nil }

	in := JobApplicationInput{JobID: &jobID, Name: "carol", Email: "c@x.io", CoverLetter: "I am a great fit.", ResumeLink: "https://x.io/cv"}
	errs, err := in.Validate(active)
	require.NoError(t, err)
	assert.False(t, errs.Any(), errs.Error())
	assert.Equal(t, "Carol", in.Name)

	other := uint(9)
	in.JobID = &other
	errs, err = in.Validate(active)
	require.NoError(t, err)
	assert.Equal(t, []string{"The job you are applying for does not exist or is no longer active."}, errs["job_id"])

	in.JobID = nil
	errs, _ = in.Validate(active)
	assert.Equal(t, []string{"This field is required."}, errs["job_id"])
}

func TestJobApplicationInput_LookupError(t *testing.T) {
	jobID := uint(1)
	in := JobApplicationInput{JobID: &jobID, Name: "Carol", Email: "c@x.io", CoverLetter: "I am a great fit."}
	_, err := in.Validate(func(uint) (bool, error) { return false, errors.New("db down") })
	assert.Error(t, err)
}

func TestJobApplicationInput_Model(t *testing.T) {
	jobID := uint(3)
	in := JobApplicationInput{JobID: &jobID, Name: "Carol", Email: "c@x.io", CoverLetter: "cover letter"}
	m := in.Model()
	assert.Equal(t, models.StatusNew, m.Status)
	assert.False(t, m.IsReviewed)
	assert.Equal(t, &jobID, m.JobID)
}

func TestAdminInputs(t *testing.T) {
	svc := ServiceInput{Title: "Web", Description: "Sites", Slug: "Bad Slug!"}
	assert.True(t, svc.Validate().Has("slug"))

	neg := -1.0
	svc = ServiceInput{Title: "Web", Description: "Sites", Price: &neg}
	assert.True(t, svc.Validate().Has("price"))

	job := JobPostingInput{Title: "Dev", Department: "Eng", Location: "Remote", JobType: "freelance", Description: "d", Requirements: "r"}
	errs := job.Validate()
	assert.Equal(t, []string{`"freelance" is not a valid choice.`}, errs["job_type"])

	status := StatusUpdateInput{Status: "archived"}
	assert.True(t, status.Validate().Has("status"))
	status.Status = models.StatusInterview
	assert.False(t, status.Validate().Any())

	member := TeamMemberInput{Name: "Dev", Position: "Engineer", Bio: "b", LinkedIn: "linkedin"}
	assert.True(t, member.Validate().Has("linkedin"))

	ids := IDsInput{}
	assert.True(t, ids.Validate().Has("ids"))
}

func TestTeamMemberInput_ApplyDefaultsActive(t *testing.T) {
	in := TeamMemberInput{Name: "Dev", Position: "Engineer", Bio: "b", Skills: []string{" Go ", "", "SQL"}}
	var m models.TeamMember
	in.Apply(&m)
	assert.True(t, m.IsActive)
	assert.Equal(t, []string{"Go", "SQL"}, []string(m.Skills))
}

func TestFormatPrice(t *testing.T) {
	p := func(v float64) *float64 { return &v }
	tests := []struct {
		price    *float64
		expected string
	}{
		{nil, "Contact for pricing"},
		{p(0), "Contact for pricing"},
		{p(99), "$99.00"},
		{p(1234.5), "$1,234.50"},
		{p(1250000), "$1,250,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatPrice(tt.price))
	}
}

func TestNewServiceDTO(t *testing.T) {
	price := 2500.0
	svc := models.Service{
		ID:        1,
		Title:     "Web Development",
		Slug:      "web-development",
		Image:     "services/web.png",
		Price:     &price,
		TechStack: "React, Go",
		CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}

	dto := NewServiceDTO(&svc, func(name string) string { return "/media/" + name })
	assert.Equal(t, "$2,500.00", dto.FormattedPrice)
	require.NotNil(t, dto.Price)
	assert.Equal(t, "2500.00", *dto.Price)
	assert.Equal(t, "March 05, 2024", dto.CreatedDate)
	assert.Equal(t, []string{"React", "Go"}, dto.TechStackList)
	require.NotNil(t, dto.Image)
	assert.Equal(t, "/media/services/web.png", *dto.Image)

	detail := NewServiceDetailDTO(&models.Service{}, nil)
	assert.Len(t, detail.Features, 5)
	assert.Nil(t, detail.Image)
	assert.Nil(t, detail.Price)
}

func TestExperienceLevel(t *testing.T) {
	tests := map[int]string{0: "Junior", 1: "Junior", 2: "Mid-level", 4: "Mid-level", 5: "Senior", 9: "Senior", 10: "Expert", 25: "Expert"}
	for years, expected := range tests {
		assert.Equal(t, expected, ExperienceLevel(years), "years=%d", years)
	}
}

func TestNewTeamMemberDTO(t *testing.T) {
	m := models.TeamMember{Name: "Sara", Skills: []string{"a", "b", "c", "d", "e", "f"}, YearsExperience: 7}
	dto := NewTeamMemberDTO(&m, nil)
	assert.Equal(t, "Sara", dto.FullName)
	assert.Len(t, dto.PrimarySkills, 5)
	assert.Equal(t, "Senior", dto.ExperienceLevel)
	assert.Equal(t, "", dto.LinkedInURL)
	assert.NotNil(t, dto.Achievements)
}

func TestNewJobPostingDTO(t *testing.T) {
	fixed := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	job := models.JobPosting{
		Title:        "Go Engineer",
		JobType:      models.JobTypeFullTime,
		Requirements: "Go\n\n  SQL  \n",
		CreatedAt:    fixed.AddDate(0, 0, -30),
	}
	dto := NewJobPostingDTO(&job)
	assert.Equal(t, []string{"Go", "SQL"}, dto.RequirementsList)
	assert.Equal(t, "2026-05-01", dto.PostedDate)
	assert.Equal(t, "Full Time", dto.JobTypeDisplay)
	assert.True(t, dto.IsRecent)

	job.CreatedAt = fixed.AddDate(0, 0, -31)
	assert.False(t, NewJobPostingDTO(&job).IsRecent)
}

func TestNewJobApplicationDTO_UnknownJob(t *testing.T) {
	dto := NewJobApplicationDTO(&models.JobApplication{Status: models.StatusReviewing})
	assert.Equal(t, "Unknown Job", dto.JobTitle)
	assert.Equal(t, "Under Review", dto.StatusDisplay)
}
