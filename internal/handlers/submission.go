package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

const resumeField = "resume_file"

type SubmissionHandler struct {
	submissions *services.SubmissionService
}

func NewSubmissionHandler(submissions *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Contact accepts the public contact form
// POST /api/contact/
func (h *SubmissionHandler) Contact(c *gin.Context) {
	var in serializers.ContactInput
	if !bindForm(c, &in) {
		return
	}
	msg, err := h.submissions.CreateContact(c.Request.Context(), &in, requester(c))
	if err != nil {
		fail(c, err, "An error occurred while processing your message. Please try again later.")
		return
	}
	response.Created(c, "Your message has been sent successfully. We will get back to you soon!", gin.H{
		"id":           msg.ID,
		"submitted_at": msg.CreatedAt.Format(time.RFC3339),
	})
}

// Resume accepts a general resume submission with a file or a link
// POST /api/contact/resume/
func (h *SubmissionHandler) Resume(c *gin.Context) {
	var in serializers.ResumeSubmissionInput
	if !bindForm(c, &in) {
		return
	}
	file, closeFile, ok := formFile(c, resumeField)
	if !ok {
		return
	}
	defer closeFile()

	rec, err := h.submissions.CreateResume(c.Request.Context(), &in, file, requester(c))
	if err != nil {
		fail(c, err, "An error occurred while processing your submission. Please try again later.")
		return
	}
	response.Created(c, "Your resume has been submitted successfully. Our team will review it and get back to you soon!", gin.H{
		"id":           rec.ID,
		"submitted_at": rec.CreatedAt.Format(time.RFC3339),
	})
}

// Apply accepts an application for an open posting
// POST /api/jobs/apply/
func (h *SubmissionHandler) Apply(c *gin.Context) {
	var in serializers.JobApplicationInput
	if !bindForm(c, &in) {
		return
	}
	file, closeFile, ok := formFile(c, resumeField)
	if !ok {
		return
	}
	defer closeFile()

	app, err := h.submissions.CreateApplication(c.Request.Context(), &in, file, requester(c))
	if err != nil {
		fail(c, err, "An error occurred while processing your application. Please try again later.")
		return
	}
	response.Created(c, "Your application has been submitted successfully. We will review it and get back to you soon!", gin.H{
		"id":           app.ID,
		"job_title":    app.JobTitle(),
		"submitted_at": app.CreatedAt.Format(time.RFC3339),
	})
}

// bindForm decodes JSON or form bodies into dst.
func bindForm(c *gin.Context, dst interface{}) bool {
	if isFormRequest(c) {
		if err := c.ShouldBind(dst); err != nil {
			response.ValidationFailed(c, serializers.ValidationErrors{
				serializers.NonFieldErrors: {"Invalid form data."},
			})
			return false
		}
		return true
	}
	return bindJSON(c, dst)
}

func isFormRequest(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "multipart/form-data" || ct == "application/x-www-form-urlencoded"
}

// formFile opens the optional upload in field. JSON requests never carry one.
func formFile(c *gin.Context, field string) (*services.Upload, func(), bool) {
	noop := func() {}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, noop, true
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		response.ValidationFailed(c, serializers.ValidationErrors{field: {"The submitted data was not a file."}})
		return nil, noop, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err, "An error occurred while processing your submission. Please try again later.")
		return nil, noop, false
	}
	return &services.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}, func() { _ = f.Close() }, true
}
