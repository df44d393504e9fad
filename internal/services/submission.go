package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/storage"
	"gorm.io/gorm"
)

const (
	ResumeDir      = "resumes"
	ApplicationDir = "job_applications"
)

// Upload is a file attached to a submission.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// Requester identifies who made a request, for the operational log.
type Requester struct {
	UserID    *uint
	IP        string
	UserAgent string
}

type SubmissionService struct {
	db      *gorm.DB
	storage *storage.SecureStorage
	jobs    *JobService
	queue   TaskQueue
}

func NewSubmissionService(db *gorm.DB, store *storage.SecureStorage, jobs *JobService, queue TaskQueue) *SubmissionService {
	return &SubmissionService{db: db, storage: store, jobs: jobs, queue: queue}
}

// CreateContact validates and stores a contact message. Validation
// failures come back as serializers.ValidationErrors.
func (s *SubmissionService) CreateContact(ctx context.Context, in *serializers.ContactInput, who Requester) (*models.ContactMessage, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	msg := in.Model()
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("save contact message: %w", err)
	}
	LogInfo("submission", "contact", fmt.Sprintf("Contact message %d received", msg.ID), who.UserID, who.IP, who.UserAgent, nil)
	return msg, nil
}

// CreateResume validates the form, stores the optional file under
// resumes/ and records the submission.
func (s *SubmissionService) CreateResume(ctx context.Context, in *serializers.ResumeSubmissionInput, file *Upload, who Requester) (*models.ResumeSubmission, error) {
	in.HasFile = file != nil
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}

	rec := in.Model()
	if file != nil {
		name, err := s.store(ctx, ResumeDir, "resume_file", file)
		if err != nil {
			return nil, err
		}
		rec.ResumeFile = name
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		s.discard(ctx, rec.ResumeFile)
		return nil, fmt.Errorf("save resume submission: %w", err)
	}
	LogInfo("submission", "resume", fmt.Sprintf("Resume submission %d received", rec.ID), who.UserID, who.IP, who.UserAgent, nil)
	return rec, nil
}

// CreateApplication validates the form against an open posting, stores
// the optional file under job_applications/, records the application and
// queues its confirmation email.
func (s *SubmissionService) CreateApplication(ctx context.Context, in *serializers.JobApplicationInput, file *Upload, who Requester) (*models.JobApplication, error) {
	in.HasFile = file != nil
	errs, err := in.Validate(func(id uint) (bool, error) { return s.jobs.IsOpen(ctx, id) })
	if err != nil {
		return nil, err
	}
	if errs.Any() {
		return nil, errs
	}

	app := in.Model()
	if file != nil {
		name, err := s.store(ctx, ApplicationDir, "resume_file", file)
		if err != nil {
			return nil, err
		}
		app.ResumeFile = name
	}

	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		s.discard(ctx, app.ResumeFile)
		return nil, fmt.Errorf("save job application: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("Job").First(app, app.ID).Error; err != nil {
		return nil, fmt.Errorf("reload job application: %w", err)
	}

	LogInfo("submission", "application", fmt.Sprintf("Job application %d received for job %s", app.ID, app.JobTitle()), who.UserID, who.IP, who.UserAgent, nil)
	s.enqueueConfirmation(app.ID)
	return app, nil
}

func (s *SubmissionService) enqueueConfirmation(id uint) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(&ConfirmationTask{ApplicationID: id}); err != nil {
		LogError("email", "confirmation_enqueue", err.Error(), nil, "", "", map[string]uint{"application_id": id})
	}
}

// store saves file under dir. A rejected upload becomes a field error.
func (s *SubmissionService) store(ctx context.Context, dir, field string, file *Upload) (string, error) {
	name, err := s.storage.SaveAs(ctx, UploadName(dir, file.Filename), file.Content, file.Size, storage.ResumeExtensions)
	if err != nil {
		var rejected *storage.ValidationError
		if errors.As(err, &rejected) {
			return "", serializers.ValidationErrors{field: {rejected.Message}}
		}
		return "", err
	}
	return name, nil
}

func (s *SubmissionService) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.storage.Delete(context.WithoutCancel(ctx), name); err != nil {
		LogWarning("storage", "orphan_cleanup", err.Error(), nil, "", "", map[string]string{"file": name})
	}
}

// UploadName places the base of a client supplied file name under dir.
func UploadName(dir, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return dir + "/" + base
}

// SubmissionListRequest filters the back-office lists.
type SubmissionListRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status"`
	IsReviewed *bool  `form:"is_reviewed"`
	IsRead     *bool  `form:"is_read"`
	JobID      *uint  `form:"job_id"`
	Search     string `form:"search"`
}

func (r *SubmissionListRequest) query() ListQuery {
	q := ListQuery{Page: r.Page, PageSize: r.PageSize, Search: r.Search}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	return q
}

func (s *SubmissionService) ListContacts(ctx context.Context, req *SubmissionListRequest) (*Page[models.ContactMessage], error) {
	query := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if req.IsRead != nil {
		query = query.Where("is_read = ?", *req.IsRead)
	}
	query = applySearch(query, req.Search, "name", "email", "subject", "message")
	return paginate[models.ContactMessage](query.Order("created_at DESC"), req.query())
}

func (s *SubmissionService) MarkContactRead(ctx context.Context, id uint, read bool) error {
	res := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", read)
	if res.Error != nil {
		return fmt.Errorf("mark contact read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SubmissionService) ListResumes(ctx context.Context, req *SubmissionListRequest) (*Page[models.ResumeSubmission], error) {
	query := s.db.WithContext(ctx).Model(&models.ResumeSubmission{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.IsReviewed != nil {
		query = query.Where("is_reviewed = ?", *req.IsReviewed)
	}
	query = applySearch(query, req.Search, "name", "email", "message")
	return paginate[models.ResumeSubmission](query.Order("created_at DESC"), req.query())
}

func (s *SubmissionService) UpdateResumeStatus(ctx context.Context, id uint, in *serializers.StatusUpdateInput) (*models.ResumeSubmission, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var rec models.ResumeSubmission
	if err := s.update(ctx, &rec, id, in); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SubmissionService) ListApplications(ctx context.Context, req *SubmissionListRequest) (*Page[models.JobApplication], error) {
	query := s.db.WithContext(ctx).Model(&models.JobApplication{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.IsReviewed != nil {
		query = query.Where("is_reviewed = ?", *req.IsReviewed)
	}
	if req.JobID != nil {
		query = query.Where("job_id = ?", *req.JobID)
	}
	query = applySearch(query, req.Search, "name", "email", "cover_letter")
	return paginate[models.JobApplication](query.Order("created_at DESC"), req.query(), "Job")
}

func (s *SubmissionService) UpdateApplicationStatus(ctx context.Context, id uint, in *serializers.StatusUpdateInput) (*models.JobApplication, error) {
	if errs := in.Validate(); errs.Any() {
		return nil, errs
	}
	var app models.JobApplication
	if err := s.update(ctx, &app, id, in); err != nil {
		return nil, err
	}
	if app.JobID != nil {
		var job models.JobPosting
		if err := s.db.WithContext(ctx).First(&job, *app.JobID).Error; err == nil {
			app.Job = &job
		}
	}
	return &app, nil
}

// update applies a status change to a resume or application.
func (s *SubmissionService) update(ctx context.Context, rec interface{}, id uint, in *serializers.StatusUpdateInput) error {
	db := s.db.WithContext(ctx)
	if err := db.First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load submission: %w", err)
	}
	changes := map[string]interface{}{"status": in.Status}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	if in.IsReviewed != nil {
		changes["is_reviewed"] = *in.IsReviewed
	}
	if err := db.Model(rec).Updates(changes).Error; err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return db.First(rec, id).Error
}

// MarkApplicationsReviewed flags the given applications as reviewed and
// returns how many rows changed.
func (s *SubmissionService) MarkApplicationsReviewed(ctx context.Context, in *serializers.IDsInput) (int64, error) {
	if errs := in.Validate(); errs.Any() {
		return 0, errs
	}
	res := s.db.WithContext(ctx).Model(&models.JobApplication{}).Where("id IN ?", in.IDs).Update("is_reviewed", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark reviewed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SendConfirmations queues confirmation emails for the selected
// applications that have not had one yet.
func (s *SubmissionService) SendConfirmations(ctx context.Context, in *serializers.IDsInput) (int, error) {
	if errs := in.Validate(); errs.Any() {
		return 0, errs
	}
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id IN ? AND email_sent = ?", in.IDs, false).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("select pending confirmations: %w", err)
	}
	for _, id := range ids {
		s.enqueueConfirmation(id)
	}
	return len(ids), nil
}
