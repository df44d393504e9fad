package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeRemote     = "remote"
)

// JobTypeLabels maps job type values to their display labels.
var JobTypeLabels = map[string]string{
	JobTypeFullTime:   "Full Time",
	JobTypePartTime:   "Part Time",
	JobTypeContract:   "Contract",
	JobTypeInternship: "Internship",
	JobTypeRemote:     "Remote",
}

// JobPosting is an open position. Postings are hard deleted.
type JobPosting struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	Title           string           `gorm:"size:200;not null" json:"title"`
	Slug            string           `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Department      string           `gorm:"size:100;not null;index" json:"department"`
	Location        string           `gorm:"size:100;not null" json:"location"`
	JobType         string           `gorm:"size:50" json:"job_type"`
	Description     string           `gorm:"type:text;not null" json:"description"`
	Requirements    string           `gorm:"type:text;not null" json:"requirements"`
	IsActive        bool             `gorm:"default:true;index" json:"is_active"`
	SalaryRange     string           `gorm:"size:100" json:"salary_range"`
	ExperienceLevel string           `gorm:"size:50" json:"experience_level"`
	Applications    []JobApplication `gorm:"foreignKey:JobID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (JobPosting) TableName() string { return "job_postings" }

func (j *JobPosting) BeforeCreate(tx *gorm.DB) error {
	slug, err := fillSlug(tx, j.TableName(), j.Slug, j.Title, "job")
	if err != nil {
		return err
	}
	j.Slug = slug
	return nil
}

// ValidJobType reports whether t is empty or a known job type.
func ValidJobType(t string) bool {
	if t == "" {
		return true
	}
	_, ok := JobTypeLabels[t]
	return ok
}

// ActiveJobs scopes a query to open postings, newest first.
func ActiveJobs(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("created_at DESC")
}

// DeleteJobPosting removes a posting and detaches its applications, which
// keep their history with a null job.
func DeleteJobPosting(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&JobApplication{}).Where("job_id = ?", id).Update("job_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&JobPosting{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
