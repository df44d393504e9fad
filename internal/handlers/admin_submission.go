package handlers

import (
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// InboxHandler is the admin surface for contact messages, resumes and
// job applications.
type InboxHandler struct {
	submissions *services.SubmissionService
}

func NewInboxHandler(submissions *services.SubmissionService) *InboxHandler {
	return &InboxHandler{submissions: submissions}
}

func bindSubmissionList(c *gin.Context) (*services.SubmissionListRequest, bool) {
	var req services.SubmissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters.")
		return nil, false
	}
	return &req, true
}

// ListContacts GET /api/admin/contacts
func (h *InboxHandler) ListContacts(c *gin.Context) {
	req, ok := bindSubmissionList(c)
	if !ok {
		return
	}
	page, err := h.submissions.ListContacts(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch contact messages.")
		return
	}
	items := make([]serializers.ContactMessageDTO, 0, len(page.Results))
	for i := range page.Results {
		items = append(items, serializers.NewContactMessageDTO(&page.Results[i]))
	}
	adminPage(c, page, items)
}

type markReadRequest struct {
	IsRead *bool `json:"is_read"`
}

// MarkContactRead POST /api/admin/contacts/:id/read
func (h *InboxHandler) MarkContactRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req := markReadRequest{}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	read := req.IsRead == nil || *req.IsRead
	if err := h.submissions.MarkContactRead(c.Request.Context(), id, read); err != nil {
		fail(c, err, "Unable to update the message.")
		return
	}
	response.Success(c, gin.H{"id": id, "is_read": read})
}

// ListResumes GET /api/admin/resumes
func (h *InboxHandler) ListResumes(c *gin.Context) {
	req, ok := bindSubmissionList(c)
	if !ok {
		return
	}
	page, err := h.submissions.ListResumes(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch resume submissions.")
		return
	}
	items := make([]serializers.ResumeSubmissionDTO, 0, len(page.Results))
	for i := range page.Results {
		items = append(items, serializers.NewResumeSubmissionDTO(&page.Results[i]))
	}
	adminPage(c, page, items)
}

// UpdateResumeStatus PUT /api/admin/resumes/:id/status
func (h *InboxHandler) UpdateResumeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in serializers.StatusUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	rec, err := h.submissions.UpdateResumeStatus(c.Request.Context(), id, &in)
	if err != nil {
		fail(c, err, "Unable to update the submission.")
		return
	}
	response.Success(c, serializers.NewResumeSubmissionDTO(rec))
}

// ListApplications GET /api/admin/applications
func (h *InboxHandler) ListApplications(c *gin.Context) {
	req, ok := bindSubmissionList(c)
	if !ok {
		return
	}
	page, err := h.submissions.ListApplications(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch job applications.")
		return
	}
	adminPage(c, page, applicationDTOs(page.Results))
}

// UpdateApplicationStatus PUT /api/admin/applications/:id/status
func (h *InboxHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in serializers.StatusUpdateInput
	if !bindJSON(c, &in) {
		return
	}
	app, err := h.submissions.UpdateApplicationStatus(c.Request.Context(), id, &in)
	if err != nil {
		fail(c, err, "Unable to update the application.")
		return
	}
	response.Success(c, serializers.NewJobApplicationDTO(app))
}

// MarkReviewed flags the selected applications as reviewed
// POST /api/admin/applications/review
func (h *InboxHandler) MarkReviewed(c *gin.Context) {
	var in serializers.IDsInput
	if !bindJSON(c, &in) {
		return
	}
	n, err := h.submissions.MarkApplicationsReviewed(c.Request.Context(), &in)
	if err != nil {
		fail(c, err, "Unable to update the applications.")
		return
	}
	services.LogInfo("admin", "applications_reviewed", "Applications marked as reviewed", requester(c).UserID, c.ClientIP(), c.Request.UserAgent(), gin.H{"ids": in.IDs, "updated": n})
	response.Success(c, gin.H{"updated": n})
}

// SendConfirmations queues confirmation emails for the selected applications
// POST /api/admin/applications/send-confirmation
func (h *InboxHandler) SendConfirmations(c *gin.Context) {
	var in serializers.IDsInput
	if !bindJSON(c, &in) {
		return
	}
	n, err := h.submissions.SendConfirmations(c.Request.Context(), &in)
	if err != nil {
		fail(c, err, "Unable to queue confirmation emails.")
		return
	}
	response.Success(c, gin.H{"queued": n})
}

func applicationDTOs(items []models.JobApplication) []serializers.JobApplicationDTO {
	out := make([]serializers.JobApplicationDTO, 0, len(items))
	for i := range items {
		out = append(out, serializers.NewJobApplicationDTO(&items[i]))
	}
	return out
}
