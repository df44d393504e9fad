package models

import "time"

const (
	StatusNew       = "new"
	StatusReviewing = "reviewing"
	StatusContacted = "contacted"
	StatusInterview = "interview"
	StatusRejected  = "rejected"
	StatusHired     = "hired"
)

// SubmissionStatusLabels lists the pipeline states of resumes and
// applications with their display labels.
var SubmissionStatusLabels = map[string]string{
	StatusNew:       "New",
	StatusReviewing: "Under Review",
	StatusContacted: "Contacted",
	StatusInterview: "Interview Scheduled",
	StatusRejected:  "Not Selected",
	StatusHired:     "Hired",
}

func ValidSubmissionStatus(s string) bool {
	_, ok := SubmissionStatusLabels[s]
	return ok
}

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_messages" }

// ResumeSubmission is an unsolicited resume. It carries a stored file, a
// link, or both.
type ResumeSubmission struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:254;not null;index" json:"email"`
	Phone      string    `gorm:"size:20" json:"phone"`
	Message    string    `gorm:"type:text" json:"message"`
	ResumeFile string    `gorm:"size:500" json:"resume_file"`
	ResumeLink string    `gorm:"size:500" json:"resume_link"`
	Status     string    `gorm:"size:20;default:new;index:idx_resume_status_created" json:"status"`
	IsReviewed bool      `gorm:"default:false;index" json:"is_reviewed"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"index:idx_resume_status_created" json:"created_at"`
}

func (ResumeSubmission) TableName() string { return "resume_submissions" }

// JobApplication is an application for a posting. JobID becomes null when
// the posting is deleted.
type JobApplication struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	JobID       *uint       `gorm:"index" json:"job_id"`
	Job         *JobPosting `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Email       string      `gorm:"size:254;not null;index" json:"email"`
	Phone       string      `gorm:"size:20" json:"phone"`
	CoverLetter string      `gorm:"type:text;not null" json:"cover_letter"`
	ResumeFile  string      `gorm:"size:500" json:"resume_file"`
	ResumeLink  string      `gorm:"size:500" json:"resume_link"`
	Status      string      `gorm:"size:20;default:new;index:idx_application_status_created" json:"status"`
	IsReviewed  bool        `gorm:"default:false;index" json:"is_reviewed"`
	Notes       string      `gorm:"type:text" json:"notes"`
	EmailSent   bool        `gorm:"default:false" json:"email_sent"`
	CreatedAt   time.Time   `gorm:"index:idx_application_status_created" json:"created_at"`
}

func (JobApplication) TableName() string { return "job_applications" }

// JobTitle returns the title of the linked posting, or "Unknown Job".
func (a *JobApplication) JobTitle() string {
	if a.Job != nil && a.Job.Title != "" {
		return a.Job.Title
	}
	return "Unknown Job"
}
