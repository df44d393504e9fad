package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/internal/utils"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config.yaml")
	withAdmin := flag.Bool("admin", false, "also create the configured admin user")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := models.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Printf("Connected to %s database\n", cfg.Database.Driver)

	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	before := counts(db)
	if err := models.Seed(db); err != nil {
		log.Fatalf("Failed to seed content: %v", err)
	}
	after := counts(db)

	for _, table := range []string{"services", "team_members", "job_postings"} {
		fmt.Printf("  %-14s %d -> %d\n", table, before[table], after[table])
	}

	if *withAdmin {
		if err := cfg.CheckSecrets(); err != nil {
			log.Fatalf("Refusing to create admin user: %v", err)
		}
		utils.SetJWTSecret(cfg.JWT.Secret)
		if err := services.NewAuthService(db, cfg.JWT).CreateAdminIfNotExists(cfg.Admin); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		fmt.Printf("Admin user %q is present\n", cfg.Admin.Username)
	}

	fmt.Println("Seeding complete.")
}

func counts(db *gorm.DB) map[string]int64 {
	out := map[string]int64{}
	for table, model := range map[string]interface{}{
		"services":     &models.Service{},
		"team_members": &models.TeamMember{},
		"job_postings": &models.JobPosting{},
	} {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			log.Fatalf("Failed to count %s: %v", table, err)
		}
		out[table] = n
	}
	return out
}
