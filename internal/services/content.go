package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/storage"
	"gorm.io/gorm"
)

const (
	ServiceImageDir = "services"
	TeamImageDir    = "team"
)

// ContentService backs the back office editors for the catalogue, the team
// and job postings. Every write drops the aggregates it affects.
type ContentService struct {
	db      *gorm.DB
	storage *storage.SecureStorage
	catalog *CatalogService
	team    *TeamService
	cache   cache.Cache
}

func NewContentService(db *gorm.DB, store *storage.SecureStorage, catalog *CatalogService, team *TeamService, c cache.Cache) *ContentService {
	return &ContentService{db: db, storage: store, catalog: catalog, team: team, cache: c}
}

// ContentListRequest filters the editor lists.
type ContentListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

func (r *ContentListRequest) query() ListQuery {
	q := ListQuery{Page: r.Page, PageSize: r.PageSize, Search: r.Search}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	return q
}

func (s *ContentService) ListServices(ctx context.Context, req *ContentListRequest) (*Page[models.Service], error) {
	query := s.db.WithContext(ctx).Model(&models.Service{})
	query = applySearch(query, req.Search, "title", "description", "tech_stack")
	return paginate[models.Service](query.Order("created_at DESC"), req.query())
}

func (s *ContentService) CreateService(ctx context.Context, in *serializers.ServiceInput) (*models.Service, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	if err := s.checkSlug(ctx, &models.Service{}, in.Slug, 0); err != nil {
		return nil, err
	}
	var svc models.Service
	in.Apply(&svc)
	if err := s.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	s.catalog.InvalidateCatalog(ctx)
	return &svc, nil
}

func (s *ContentService) UpdateService(ctx context.Context, id uint, in *serializers.ServiceInput) (*models.Service, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var svc models.Service
	if err := s.load(ctx, &svc, id); err != nil {
		return nil, err
	}
	if err := s.checkSlug(ctx, &models.Service{}, in.Slug, id); err != nil {
		return nil, err
	}
	in.Apply(&svc)
	if err := s.db.WithContext(ctx).Save(&svc).Error; err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	s.catalog.InvalidateCatalog(ctx)
	return &svc, nil
}

func (s *ContentService) DeleteService(ctx context.Context, id uint) error {
	var svc models.Service
	if err := s.load(ctx, &svc, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&svc).Error; err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	s.discardImage(ctx, svc.Image)
	s.catalog.InvalidateCatalog(ctx)
	return nil
}

// SetServiceImage stores file under services/ and replaces the current
// image, whose blob is removed.
func (s *ContentService) SetServiceImage(ctx context.Context, id uint, file *Upload) (*models.Service, error) {
	var svc models.Service
	if err := s.load(ctx, &svc, id); err != nil {
		return nil, err
	}
	old, err := s.replaceImage(ctx, &svc, ServiceImageDir, file, &svc.Image)
	if err != nil {
		return nil, err
	}
	s.discardImage(ctx, old)
	s.catalog.InvalidateCatalog(ctx)
	return &svc, nil
}

func (s *ContentService) ListTeam(ctx context.Context, req *ContentListRequest) (*Page[models.TeamMember], error) {
	query := s.db.WithContext(ctx).Model(&models.TeamMember{})
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	query = applySearch(query, req.Search, "name", "position", "department")
	return paginate[models.TeamMember](query.Order("display_order ASC, name ASC"), req.query())
}

func (s *ContentService) CreateTeamMember(ctx context.Context, in *serializers.TeamMemberInput) (*models.TeamMember, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var m models.TeamMember
	in.Apply(&m)
	if err := s.create(ctx, &m, m.IsActive); err != nil {
		return nil, fmt.Errorf("create team member: %w", err)
	}
	s.team.InvalidateTeam(ctx)
	return &m, nil
}

func (s *ContentService) UpdateTeamMember(ctx context.Context, id uint, in *serializers.TeamMemberInput) (*models.TeamMember, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var m models.TeamMember
	if err := s.load(ctx, &m, id); err != nil {
		return nil, err
	}
	in.Apply(&m)
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return nil, fmt.Errorf("update team member: %w", err)
	}
	s.team.InvalidateTeam(ctx)
	return &m, nil
}

func (s *ContentService) DeleteTeamMember(ctx context.Context, id uint) error {
	var m models.TeamMember
	if err := s.load(ctx, &m, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&m).Error; err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	s.discardImage(ctx, m.Image)
	s.team.InvalidateTeam(ctx)
	return nil
}

func (s *ContentService) SetTeamMemberImage(ctx context.Context, id uint, file *Upload) (*models.TeamMember, error) {
	var m models.TeamMember
	if err := s.load(ctx, &m, id); err != nil {
		return nil, err
	}
	old, err := s.replaceImage(ctx, &m, TeamImageDir, file, &m.Image)
	if err != nil {
		return nil, err
	}
	s.discardImage(ctx, old)
	s.team.InvalidateTeam(ctx)
	return &m, nil
}

func (s *ContentService) ListJobs(ctx context.Context, req *ContentListRequest) (*Page[models.JobPosting], error) {
	query := s.db.WithContext(ctx).Model(&models.JobPosting{})
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	query = applySearch(query, req.Search, "title", "department", "location")
	return paginate[models.JobPosting](query.Order("created_at DESC"), req.query())
}

func (s *ContentService) CreateJob(ctx context.Context, in *serializers.JobPostingInput) (*models.JobPosting, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var job models.JobPosting
	in.Apply(&job)
	if err := s.create(ctx, &job, job.IsActive); err != nil {
		return nil, fmt.Errorf("create job posting: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.KeyHomepage)
	return &job, nil
}

func (s *ContentService) UpdateJob(ctx context.Context, id uint, in *serializers.JobPostingInput) (*models.JobPosting, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var job models.JobPosting
	if err := s.load(ctx, &job, id); err != nil {
		return nil, err
	}
	in.Apply(&job)
	if err := s.db.WithContext(ctx).Save(&job).Error; err != nil {
		return nil, fmt.Errorf("update job posting: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.KeyHomepage)
	return &job, nil
}

// DeleteJob removes a posting. Its applications stay with a null job.
func (s *ContentService) DeleteJob(ctx context.Context, id uint) error {
	if err := models.DeleteJobPosting(s.db.WithContext(ctx), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete job posting: %w", err)
	}
	cache.Invalidate(ctx, s.cache, cache.KeyHomepage)
	return nil
}

// create inserts row. is_active defaults to true in the schema, so an
// inactive row is written in a second step.
func (s *ContentService) create(ctx context.Context, row interface{}, active bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if active {
			return nil
		}
		return tx.Model(row).Update("is_active", false).Error
	})
}

func (s *ContentService) load(ctx context.Context, dest interface{}, id uint) error {
	if err := s.db.WithContext(ctx).First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// checkSlug reports a field error when slug is taken by another row.
func (s *ContentService) checkSlug(ctx context.Context, model interface{}, slug string, self uint) error {
	if slug == "" {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("slug = ? AND id <> ?", slug, self).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return serializers.ValidationErrors{"slug": {"An entry with this slug already exists."}}
	}
	return nil
}

// replaceImage saves file under dir, points field at it and persists the
// row. It returns the previous image name.
func (s *ContentService) replaceImage(ctx context.Context, row interface{}, dir string, file *Upload, field *string) (string, error) {
	name, err := s.storage.SaveAs(ctx, UploadName(dir, file.Filename), file.Content, file.Size, storage.ImageExtensions)
	if err != nil {
		var rejected *storage.ValidationError
		if errors.As(err, &rejected) {
			return "", serializers.ValidationErrors{"image": {rejected.Message}}
		}
		return "", err
	}
	old := *field
	*field = name
	if err := s.db.WithContext(ctx).Model(row).Update("image", name).Error; err != nil {
		*field = old
		s.discardImage(ctx, name)
		return "", fmt.Errorf("save image: %w", err)
	}
	return old, nil
}

func (s *ContentService) discardImage(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), name); err != nil {
		LogWarning("storage", "image_cleanup", err.Error(), nil, "", "", map[string]string{"file": name})
	}
}
