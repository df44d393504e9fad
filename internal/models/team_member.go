package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var leadershipKeywords = []string{"director", "manager", "lead", "head", "ceo", "cto", "founder", "vp"}

// TeamMember is a person shown on the about page.
type TeamMember struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Name            string                      `gorm:"size:100;not null" json:"name"`
	Position        string                      `gorm:"size:100;not null" json:"position"`
	Department      string                      `gorm:"size:50;index" json:"department"`
	Bio             string                      `gorm:"type:text" json:"bio"`
	Image           string                      `gorm:"size:500" json:"image"`
	LinkedIn        string                      `gorm:"column:linkedin;size:200" json:"linkedin"`
	Twitter         string                      `gorm:"size:200" json:"twitter"`
	GitHub          string                      `gorm:"column:github;size:200" json:"github"`
	Email           string                      `gorm:"size:254" json:"email"`
	Skills          datatypes.JSONSlice[string] `json:"skills"`
	YearsExperience int                         `gorm:"default:0" json:"years_experience"`
	Achievements    datatypes.JSONSlice[string] `json:"achievements"`
	IsActive        bool                        `gorm:"default:true;index:idx_team_active_order" json:"is_active"`
	IsLeadership    bool                        `gorm:"default:false;index:idx_team_leadership_order" json:"is_leadership"`
	Order           int                         `gorm:"column:display_order;default:0;index:idx_team_active_order;index:idx_team_leadership_order" json:"order"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

func (TeamMember) TableName() string { return "team_members" }

// BeforeSave flags leadership positions. The flag is only ever raised here,
// an explicit true set by an editor is kept.
func (m *TeamMember) BeforeSave(tx *gorm.DB) error {
	if IsLeadershipPosition(m.Position) {
		m.IsLeadership = true
	}
	return nil
}

// IsLeadershipPosition reports whether position contains a leadership keyword.
func IsLeadershipPosition(position string) bool {
	p := strings.ToLower(position)
	for _, kw := range leadershipKeywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}

// ActiveTeam scopes a query to visible members in display order.
func ActiveTeam(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("display_order ASC, name ASC")
}
