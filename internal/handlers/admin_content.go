package handlers

import (
	"net/http"

	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

const imageField = "image"

// ContentHandler is the admin surface for catalogue, team and careers.
type ContentHandler struct {
	content *services.ContentService
	media   serializers.MediaURL
}

func NewContentHandler(content *services.ContentService, media serializers.MediaURL) *ContentHandler {
	return &ContentHandler{content: content, media: media}
}

// adminPage writes an admin list in the envelope.
func adminPage[T, D any](c *gin.Context, page *services.Page[T], items []D) {
	response.Success(c, gin.H{
		"items":       items,
		"total":       page.Count,
		"page":        page.CurrentPage,
		"page_size":   page.PageSize,
		"total_pages": page.TotalPages,
	})
}

func bindContentList(c *gin.Context) (*services.ContentListRequest, bool) {
	var req services.ContentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters.")
		return nil, false
	}
	return &req, true
}

// imageUpload opens the required image field.
func imageUpload(c *gin.Context) (*services.Upload, func(), bool) {
	file, closeFile, ok := formFile(c, imageField)
	if ok && file == nil {
		response.ValidationFailed(c, serializers.ValidationErrors{imageField: {"No file was submitted."}})
		return nil, closeFile, false
	}
	return file, closeFile, ok
}

// ListServices GET /api/admin/services
func (h *ContentHandler) ListServices(c *gin.Context) {
	req, ok := bindContentList(c)
	if !ok {
		return
	}
	page, err := h.content.ListServices(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch services.")
		return
	}
	adminPage(c, page, serializers.NewServiceDTOs(page.Results, h.media))
}

// CreateService POST /api/admin/services
func (h *ContentHandler) CreateService(c *gin.Context) {
	var in serializers.ServiceInput
	if !bindJSON(c, &in) {
		return
	}
	svc, err := h.content.CreateService(c.Request.Context(), &in)
	if err != nil {
		fail(c, err, "Unable to create the service.")
		return
	}
	response.Created(c, "Service created.", serializers.NewServiceDetailDTO(svc, h.media))
}

// UpdateService PUT /api/admin/services/:id
func (h *ContentHandler) UpdateService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in serializers.ServiceInput
	if !bindJSON(c, &in) {
		return
	}
	svc, err := h.content.UpdateService(c.Request.Context(), id, &in)
	if err != nil {
		fail(c, err, "Unable to update the service.")
		return
	}
	response.Success(c, serializers.NewServiceDetailDTO(svc, h.media))
}

// DeleteService DELETE /api/admin/services/:id
func (h *ContentHandler) DeleteService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteService(c.Request.Context(), id); err != nil {
		fail(c, err, "Unable to delete the service.")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadServiceImage POST /api/admin/services/:id/image
func (h *ContentHandler) UploadServiceImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, closeFile, ok := imageUpload(c)
	defer closeFile()
	if !ok {
		return
	}
	svc, err := h.content.SetServiceImage(c.Request.Context(), id, file)
	if err != nil {
		fail(c, err, "Unable to store the image.")
		return
	}
	response.Success(c, serializers.NewServiceDetailDTO(svc, h.media))
}

// ListTeam GET /api/admin/team
func (h *ContentHandler) ListTeam(c *gin.Context) {
	req, ok := bindContentList(c)
	if !ok {
		return
	}
	page, err := h.content.ListTeam(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch team members.")
		return
	}
	adminPage(c, page, serializers.NewTeamMemberDTOs(page.Results, h.media))
}

// CreateTeamMember POST /api/admin/team
func (h *ContentHandler) CreateTeamMember(c *gin.Context) {
	var in serializers.TeamMemberInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.content.CreateTeamMember(c.Request.Context(), &in)
	if err != nil {
		fail(c, err, "Unable to create the team member.")
		return
	}
	response.Created(c, "Team member created.", serializers.NewTeamMemberDTO(m, h.media))
}

// UpdateTeamMember PUT /api/admin/team/:id
func (h *ContentHandler) UpdateTeamMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in serializers.TeamMemberInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.content.UpdateTeamMember(c.Request.Context(), id, &in)
	if err != nil {
		fail(c, err, "Unable to update the team member.")
		return
	}
	response.Success(c, serializers.NewTeamMemberDTO(m, h.media))
}

// DeleteTeamMember DELETE /api/admin/team/:id
func (h *ContentHandler) DeleteTeamMember(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteTeamMember(c.Request.Context(), id); err != nil {
		fail(c, err, "Unable to delete the team member.")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadTeamMemberImage POST /api/admin/team/:id/image
func (h *ContentHandler) UploadTeamMemberImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	file, closeFile, ok := imageUpload(c)
	defer closeFile()
	if !ok {
		return
	}
	m, err := h.content.SetTeamMemberImage(c.Request.Context(), id, file)
	if err != nil {
		fail(c, err, "Unable to store the image.")
		return
	}
	response.Success(c, serializers.NewTeamMemberDTO(m, h.media))
}

// ListJobs GET /api/admin/jobs
func (h *ContentHandler) ListJobs(c *gin.Context) {
	req, ok := bindContentList(c)
	if !ok {
		return
	}
	page, err := h.content.ListJobs(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Unable to fetch job postings.")
		return
	}
	adminPage(c, page, serializers.NewJobPostingDTOs(page.Results))
}

// CreateJob POST /api/admin/jobs
func (h *ContentHandler) CreateJob(c *gin.Context) {
	var in serializers.JobPostingInput
	if !bindJSON(c, &in) {
		return
	}
	job, err := h.content.CreateJob(c.Request.Context(), &in)
	if err != nil {
		fail(c, err, "Unable to create the job posting.")
		return
	}
	response.Created(c, "Job posting created.", serializers.NewJobPostingDTO(job))
}

// UpdateJob PUT /api/admin/jobs/:id
func (h *ContentHandler) UpdateJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in serializers.JobPostingInput
	if !bindJSON(c, &in) {
		return
	}
	job, err := h.content.UpdateJob(c.Request.Context(), id, &in)
	if err != nil {
		fail(c, err, "Unable to update the job posting.")
		return
	}
	response.Success(c, serializers.NewJobPostingDTO(job))
}

// DeleteJob DELETE /api/admin/jobs/:id
func (h *ContentHandler) DeleteJob(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.content.DeleteJob(c.Request.Context(), id); err != nil {
		fail(c, err, "Unable to delete the job posting.")
		return
	}
	c.Status(http.StatusNoContent)
}
