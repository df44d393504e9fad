package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/azayd/website/backend/internal/models"
	"gorm.io/gorm"
)

var jobOrdering = map[string]string{
	"created_at": "created_at",
	"title":      "title",
}

// JobFilter narrows the public job list. Department and location match
// exactly, as form filters do.
type JobFilter struct {
	ListQuery
	Department string
	Location   string
	JobType    string
}

type JobService struct {
	db *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{db: db}
}

func (s *JobService) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.JobPosting{}).Where("is_active = ?", true)
}

func (s *JobService) List(ctx context.Context, f JobFilter) (*Page[models.JobPosting], error) {
	query := s.active(ctx)
	if d := strings.TrimSpace(f.Department); d != "" {
		query = query.Where("department = ?", d)
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		query = query.Where("location = ?", l)
	}
	if t := strings.TrimSpace(f.JobType); t != "" {
		query = query.Where("job_type = ?", t)
	}
	query = applySearch(query, f.Search, "title", "description", "requirements", "department")
	query = applyOrdering(query, f.Ordering, jobOrdering, "created_at DESC")

	return paginate[models.JobPosting](query, f.ListQuery)
}

// Get finds an active posting by numeric id or slug.
func (s *JobService) Get(ctx context.Context, idOrSlug string) (*models.JobPosting, error) {
	var job models.JobPosting
	query := s.active(ctx)
	if id, err := strconv.ParseUint(idOrSlug, 10, 64); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("slug = ?", idOrSlug)
	}
	if err := query.First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// IsOpen reports whether the posting exists and accepts applications.
func (s *JobService) IsOpen(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.active(ctx).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("lookup job: %w", err)
	}
	return n > 0, nil
}

// Recent returns the three newest open postings.
func (s *JobService) Recent(ctx context.Context) ([]models.JobPosting, error) {
	var items []models.JobPosting
	if err := models.ActiveJobs(s.db.WithContext(ctx)).Limit(3).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("recent jobs: %w", err)
	}
	return items, nil
}

func (s *JobService) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := s.active(ctx).Count(&n).Error
	return n, err
}

func (s *JobService) Departments(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "department")
}

func (s *JobService) Locations(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "location")
}

func (s *JobService) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	if err := s.active(ctx).Distinct(column).Pluck(column, &values).Error; err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	sort.Strings(values)
	return nonNilStrings(values), nil
}
