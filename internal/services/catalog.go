package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record looked up by id or slug is missing.
var ErrNotFound = errors.New("not found")

// FallbackCategories is served when categories cannot be computed.
var FallbackCategories = []string{"all", "web development", "mobile development", "backend development"}

var techSeparators = regexp.MustCompile(`[,;\n]`)

// categoryRules maps technology keywords to a catalogue category. The
// first matching rule wins.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"web development", []string{"react", "vue", "angular", "frontend", "web"}},
	{"mobile development", []string{"mobile", "ios", "android", "flutter", "react native"}},
	{"backend development", []string{"python", "django", "flask", "backend", "api"}},
	{"ai & machine learning", []string{"ai", "ml", "machine learning", "tensorflow", "pytorch"}},
	{"design", []string{"design", "ui", "ux", "figma", "photoshop"}},
	{"cloud & devops", []string{"cloud", "aws", "azure", "gcp", "devops"}},
}

var serviceOrdering = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"price":      "price",
}

// ServiceFilter narrows the public catalogue list.
type ServiceFilter struct {
	ListQuery
	Category string
	MinPrice string
	MaxPrice string
}

type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type ServiceStats struct {
	TotalServices int64      `json:"total_services"`
	AvgPrice      float64    `json:"avg_price"`
	LatestService *string    `json:"latest_service"`
	Categories    []string   `json:"categories"`
	PriceRange    PriceRange `json:"price_range"`
}

type CatalogService struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   config.CacheConfig
}

func NewCatalogService(db *gorm.DB, c cache.Cache, ttl config.CacheConfig) *CatalogService {
	return &CatalogService{db: db, cache: c, ttl: ttl}
}

func (s *CatalogService) List(ctx context.Context, f ServiceFilter) (*Page[models.Service], error) {
	query := s.db.WithContext(ctx).Model(&models.Service{})

	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		where, arg := containsAny("tech_stack", f.Category)
		query = query.Where(where, arg)
	}
	if min, err := strconv.ParseFloat(strings.TrimSpace(f.MinPrice), 64); err == nil {
		query = query.Where("price >= ?", min)
	}
	if max, err := strconv.ParseFloat(strings.TrimSpace(f.MaxPrice), 64); err == nil {
		query = query.Where("price <= ?", max)
	}
	query = applySearch(query, f.Search, "title", "description", "tech_stack")
	query = applyOrdering(query, f.Ordering, serviceOrdering, "created_at DESC")

	return paginate[models.Service](query, f.ListQuery)
}

// Get finds a service by numeric id or by slug.
func (s *CatalogService) Get(ctx context.Context, idOrSlug string) (*models.Service, error) {
	var svc models.Service
	query := s.db.WithContext(ctx)
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}
	if err := query.First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &svc, nil
}

// Featured returns the three newest services.
func (s *CatalogService) Featured(ctx context.Context) ([]models.Service, error) {
	var items []models.Service
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(3).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("featured services: %w", err)
	}
	return items, nil
}

// Count returns the number of catalogue entries.
func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Service{}).Count(&n).Error
	return n, err
}

func (s *CatalogService) Stats(ctx context.Context) (*ServiceStats, error) {
	return cache.Remember(ctx, s.cache, cache.KeyServiceStats, s.ttl.Stats(), s.computeStats)
}

func (s *CatalogService) computeStats(ctx context.Context) (*ServiceStats, error) {
	db := s.db.WithContext(ctx)
	stats := &ServiceStats{PriceRange: PriceRange{Min: 0, Max: 10000}}

	if err := db.Model(&models.Service{}).Count(&stats.TotalServices).Error; err != nil {
		return nil, fmt.Errorf("count services: %w", err)
	}

	var avg struct{ Value *float64 }
	if err := db.Model(&models.Service{}).Select("AVG(price) AS value").Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("average price: %w", err)
	}
	if avg.Value != nil {
		stats.AvgPrice = *avg.Value
	}

	var latest models.Service
	err := db.Order("created_at DESC").First(&latest).Error
	switch {
	case err == nil:
		stats.LatestService = &latest.Title
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("latest service: %w", err)
	}

	categories, err := s.computeCategories(ctx)
	if err != nil {
		return nil, err
	}
	stats.Categories = categories
	return stats, nil
}

// Categories lists the catalogue categories derived from tech stacks,
// always including "all". A database failure yields FallbackCategories.
func (s *CatalogService) Categories(ctx context.Context) []string {
	categories, err := cache.Remember(ctx, s.cache, cache.KeyServiceCategories, s.ttl.Categories(), s.computeCategories)
	if err != nil {
		LogError("catalog", "categories", err.Error(), nil, "", "", nil)
		return append([]string(nil), FallbackCategories...)
	}
	return categories
}

func (s *CatalogService) computeCategories(ctx context.Context) ([]string, error) {
	var stacks []string
	if err := s.db.WithContext(ctx).Model(&models.Service{}).Pluck("tech_stack", &stacks).Error; err != nil {
		return nil, fmt.Errorf("load tech stacks: %w", err)
	}
	return CategoriesFromStacks(stacks), nil
}

// CategoriesFromStacks maps every technology in stacks to a category and
// returns the sorted distinct set, "all" included.
func CategoriesFromStacks(stacks []string) []string {
	set := map[string]bool{"all": true}
	for _, stack := range stacks {
		for _, tech := range splitTechStack(stack) {
			tech = strings.ToLower(strings.TrimSpace(tech))
			if tech == "" {
				continue
			}
			set[categorize(tech)] = true
		}
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// splitTechStack accepts a JSON array or a delimited string.
func splitTechStack(stack string) []string {
	stack = strings.TrimSpace(stack)
	if stack == "" {
		return nil
	}
	if strings.HasPrefix(stack, "[") {
		var list []string
		if err := json.Unmarshal([]byte(stack), &list); err == nil {
			return list
		}
	}
	return techSeparators.Split(stack, -1)
}

func categorize(tech string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(tech, kw) {
				return rule.category
			}
		}
	}
	return tech
}

// InvalidateCatalog drops cached catalogue aggregates after an edit.
func (s *CatalogService) InvalidateCatalog(ctx context.Context) {
	cache.Invalidate(ctx, s.cache, cache.KeyServiceStats, cache.KeyServiceCategories, cache.KeyHomepage)
}

func isoNow() string {
	return time.Now().Format(time.RFC3339Nano)
}
