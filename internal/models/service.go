package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Service is an offering in the public catalogue.
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Icon        string    `gorm:"size:50" json:"icon"`
	Image       string    `gorm:"size:500" json:"image"`
	Price       *float64  `gorm:"type:decimal(10,2)" json:"price"`
	TechStack   string    `gorm:"size:500" json:"tech_stack"` // comma separated
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

// BeforeCreate assigns a unique slug derived from the title. An existing
// slug is never regenerated.
func (s *Service) BeforeCreate(tx *gorm.DB) error {
	slug, err := fillSlug(tx, s.TableName(), s.Slug, s.Title, "service")
	if err != nil {
		return err
	}
	s.Slug = slug
	return nil
}

// TechStackList splits TechStack on commas, dropping blanks.
func (s *Service) TechStackList() []string {
	return SplitCSV(s.TechStack)
}

// SplitCSV splits a comma separated string into trimmed, non-empty parts.
func SplitCSV(value string) []string {
	items := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
