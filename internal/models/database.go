package models

import (
	"fmt"

	"github.com/azayd/website/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the global handle.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Migrate creates or updates every table on db.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Service{},
		&TeamMember{},
		&JobPosting{},
		&ContactMessage{},
		&ResumeSubmission{},
		&JobApplication{},
		&SystemLog{},
		&SchedulerLock{},
	)
}

func AutoMigrate() error {
	return Migrate(DB)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates starter content if the content tables are empty.
func SeedDefaultData() error {
	return Seed(DB)
}

// Seed inserts the default catalogue, team and openings into empty tables.
func Seed(db *gorm.DB) error {
	var count int64

	db.Model(&Service{}).Count(&count)
	if count == 0 {
		price := func(v float64) *float64 { return &v }
		services := []Service{
			{
				Title:       "Web Development",
				Description: "Responsive, fast and accessible websites and web applications built with modern frameworks.",
				Icon:        "fa-code",
				Price:       price(2500),
				TechStack:   "React, TypeScript, Django, PostgreSQL",
			},
			{
				Title:       "Mobile App Development",
				Description: "Native and cross-platform mobile apps for iOS and Android.",
				Icon:        "fa-mobile-alt",
				Price:       price(4000),
				TechStack:   "Flutter, React Native, iOS, Android",
			},
			{
				Title:       "AI & Machine Learning",
				Description: "Custom models, intelligent automation and data pipelines that turn data into decisions.",
				Icon:        "fa-brain",
				TechStack:   "Python, TensorFlow, PyTorch, ML",
			},
			{
				Title:       "Cloud & DevOps",
				Description: "Infrastructure as code, CI/CD pipelines and managed cloud operations.",
				Icon:        "fa-cloud",
				Price:       price(1800),
				TechStack:   "AWS, Docker, Kubernetes, DevOps",
			},
		}
		if err := db.Create(&services).Error; err != nil {
			return err
		}
	}

	db.Model(&TeamMember{}).Count(&count)
	if count == 0 {
		members := []TeamMember{
			{
				Name:            "Ayaz Ahmed",
				Position:        "Founder & CEO",
				Department:      "Leadership",
				Bio:             "Sets the product vision and leads client partnerships.",
				Skills:          []string{"Strategy", "Product", "Architecture"},
				YearsExperience: 12,
				IsActive:        true,
				Order:           1,
			},
			{
				Name:            "Sara Khan",
				Position:        "Lead Frontend Engineer",
				Department:      "Engineering",
				Bio:             "Builds accessible interfaces and owns the design system.",
				Skills:          []string{"React", "TypeScript", "CSS", "Accessibility"},
				YearsExperience: 7,
				IsActive:        true,
				Order:           2,
			},
			{
				Name:            "Omar Farooq",
				Position:        "Backend Developer",
				Department:      "Engineering",
				Bio:             "Designs APIs and data models that scale.",
				Skills:          []string{"Go", "Python", "PostgreSQL"},
				YearsExperience: 3,
				IsActive:        true,
				Order:           3,
			},
		}
		if err := db.Create(&members).Error; err != nil {
			return err
		}
	}

	db.Model(&JobPosting{}).Count(&count)
	if count == 0 {
		jobs := []JobPosting{
			{
				Title:           "Senior Go Engineer",
				Department:      "Engineering",
				Location:        "Remote",
				JobType:         JobTypeRemote,
				Description:     "Own backend services end to end.",
				Requirements:    "5+ years of backend experience\nStrong Go or Python skills\nExperience with PostgreSQL",
				SalaryRange:     "Competitive",
				ExperienceLevel: "Senior",
				IsActive:        true,
			},
			{
				Title:           "UI/UX Designer",
				Department:      "Design",
				Location:        "Bangalore",
				JobType:         JobTypeFullTime,
				Description:     "Shape the look and feel of client products.",
				Requirements:    "Portfolio of shipped products\nFigma proficiency",
				ExperienceLevel: "Mid-level",
				IsActive:        true,
			},
		}
		if err := db.Create(&jobs).Error; err != nil {
			return err
		}
	}

	return nil
}
