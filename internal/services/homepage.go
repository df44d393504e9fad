package services

import (
	"context"
	"fmt"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/serializers"
)

type CompanyStats struct {
	ProjectsCompleted int     `json:"projects_completed"`
	HappyClients      int     `json:"happy_clients"`
	YearsExperience   int     `json:"years_experience"`
	TeamMembers       int64   `json:"team_members"`
	TechnologiesUsed  int64   `json:"technologies_used"`
	CountriesServed   int     `json:"countries_served"`
	UptimePercentage  float64 `json:"uptime_percentage"`
	ResponseTimeHours int     `json:"response_time_hours"`
	SatisfactionRate  float64 `json:"satisfaction_rate"`
	RepeatClients     int     `json:"repeat_clients"`
	ActiveServices    int64   `json:"active_services"`
	OpenPositions     int64   `json:"open_positions"`
}

type Hero struct {
	Title           string       `json:"title"`
	Subtitle        string       `json:"subtitle"`
	Description     string       `json:"description"`
	CTAPrimary      string       `json:"cta_primary"`
	CTASecondary    string       `json:"cta_secondary"`
	BackgroundVideo *string      `json:"background_video"`
	Stats           CompanyStats `json:"stats"`
}

// FeaturedService is a service card on the homepage.
type FeaturedService struct {
	serializers.ServiceDTO
	IsFeatured   bool `json:"is_featured"`
	DisplayOrder int  `json:"display_order"`
}

type HomepageMeta struct {
	PageTitle     string `json:"page_title"`
	Description   string `json:"description"`
	LastUpdated   string `json:"last_updated"`
	CacheDuration int    `json:"cache_duration"`
	APIVersion    string `json:"api_version"`
}

type Homepage struct {
	Hero             Hero                        `json:"hero"`
	FeaturedServices []FeaturedService           `json:"featured_services"`
	TeamHighlights   []serializers.TeamMemberDTO `json:"team_highlights"`
	RecentJobs       []serializers.JobPostingDTO `json:"recent_jobs"`
	CompanyStats     CompanyStats                `json:"company_stats"`
	RecentProjects   []interface{}               `json:"recent_projects"`
	Testimonials     []interface{}               `json:"testimonials"`
	LatestNews       []interface{}               `json:"latest_news"`
	Meta             HomepageMeta                `json:"meta"`
}

// FallbackStats are the figures shown when the homepage cannot be built.
func FallbackStats() map[string]int {
	return map[string]int{
		"projects_completed": 100,
		"happy_clients":      50,
		"years_experience":   5,
		"team_members":       10,
		"active_services":    6,
		"open_positions":     3,
	}
}

type HomepageService struct {
	catalog *CatalogService
	team    *TeamService
	jobs    *JobService
	media   serializers.MediaURL
	cache   cache.Cache
	ttl     config.CacheConfig
}

func NewHomepageService(catalog *CatalogService, team *TeamService, jobs *JobService, media serializers.MediaURL, c cache.Cache, ttl config.CacheConfig) *HomepageService {
	return &HomepageService{catalog: catalog, team: team, jobs: jobs, media: media, cache: c, ttl: ttl}
}

// Build returns the homepage payload, cached for the homepage TTL.
func (s *HomepageService) Build(ctx context.Context) (*Homepage, error) {
	return cache.Remember(ctx, s.cache, cache.KeyHomepage, s.ttl.Homepage(), s.build)
}

// Warm rebuilds the cached payload ahead of expiry.
func (s *HomepageService) Warm(ctx context.Context) error {
	page, err := s.build(ctx)
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, cache.KeyHomepage)
	_, err = cache.Remember(ctx, s.cache, cache.KeyHomepage, s.ttl.Homepage(), func(context.Context) (*Homepage, error) {
		return page, nil
	})
	return err
}

func (s *HomepageService) build(ctx context.Context) (*Homepage, error) {
	services, err := s.catalog.Featured(ctx)
	if err != nil {
		return nil, err
	}
	members, err := s.team.Featured(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.Recent(ctx)
	if err != nil {
		return nil, err
	}

	activeTeam, err := s.team.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count team: %w", err)
	}
	totalServices, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}
	openPositions, err := s.jobs.CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	stats := CompanyStats{
		ProjectsCompleted: 150,
		HappyClients:      75,
		YearsExperience:   5,
		TeamMembers:       max(activeTeam, 12),
		TechnologiesUsed:  max(totalServices*3, 25),
		CountriesServed:   8,
		UptimePercentage:  99.9,
		ResponseTimeHours: 24,
		SatisfactionRate:  98.5,
		RepeatClients:     85,
		ActiveServices:    totalServices,
		OpenPositions:     openPositions,
	}

	featured := make([]FeaturedService, 0, len(services))
	for i, dto := range serializers.NewServiceDTOs(services, s.media) {
		featured = append(featured, FeaturedService{ServiceDTO: dto, IsFeatured: true, DisplayOrder: i})
	}

	return &Homepage{
		Hero: Hero{
			Title:        "Welcome to AZAYD",
			Subtitle:     "Transforming Ideas into Digital Reality",
			Description:  "We combine cutting-edge innovation with deep expertise to transform your digital vision into reality. Our team of experts delivers exceptional results that exceed expectations.",
			CTAPrimary:   "Get Started",
			CTASecondary: "Learn More",
			Stats:        stats,
		},
		FeaturedServices: featured,
		TeamHighlights:   serializers.NewTeamMemberDTOs(members, s.media),
		RecentJobs:       serializers.NewJobPostingDTOs(jobs),
		CompanyStats:     stats,
		RecentProjects:   []interface{}{},
		Testimonials:     []interface{}{},
		LatestNews:       []interface{}{},
		Meta: HomepageMeta{
			PageTitle:     "Welcome to AZAYD - Digital Innovation Hub",
			Description:   "Transform your ideas into digital reality with AZAYD. Expert web development, mobile apps, and AI solutions.",
			LastUpdated:   isoNow(),
			CacheDuration: int(s.ttl.Homepage().Seconds()),
			APIVersion:    "2.0",
		},
	}, nil
}
