package handlers

import (
	"errors"
	"net/http"

	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/internal/web"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// pageData is the single view model every page template receives.
type pageData struct {
	Title    string
	Nonce    string
	Home     *services.Homepage
	Services []serializers.ServiceDTO
	Service  *serializers.ServiceDetailDTO
	Team     []serializers.TeamMemberDTO
	Jobs     []serializers.JobPostingDTO
	Job      *serializers.JobPostingDTO
	Form     serializers.ContactInput
	Errors   serializers.ValidationErrors
	Error    string
	Sent     bool
}

// PageHandler renders the server-side pages.
type PageHandler struct {
	homepage    *services.HomepageService
	catalog     *services.CatalogService
	team        *services.TeamService
	jobs        *services.JobService
	submissions *services.SubmissionService
	media       serializers.MediaURL
}

func NewPageHandler(homepage *services.HomepageService, catalog *services.CatalogService, team *services.TeamService,
	jobs *services.JobService, submissions *services.SubmissionService, media serializers.MediaURL) *PageHandler {
	return &PageHandler{
		homepage:    homepage,
		catalog:     catalog,
		team:        team,
		jobs:        jobs,
		submissions: submissions,
		media:       media,
	}
}

var allRows = services.ListQuery{Page: 1, PageSize: services.MaxPageSize}

func (h *PageHandler) render(c *gin.Context, status int, name string, data pageData) {
	data.Nonce = middleware.CSPNonce(c)
	if data.Errors == nil {
		data.Errors = serializers.ValidationErrors{}
	}
	c.HTML(status, name, data)
}

// failPage renders the not-found page for missing records and the error page
// otherwise.
func (h *PageHandler) failPage(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		h.NotFound(c)
		return
	}
	logger.FromGin(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("Page render failed")
	h.render(c, http.StatusInternalServerError, web.PageError, pageData{Title: "Something went wrong"})
}

// Home GET /
func (h *PageHandler) Home(c *gin.Context) {
	home, err := h.homepage.Build(c.Request.Context())
	if err != nil {
		h.failPage(c, err)
		return
	}
	h.render(c, http.StatusOK, web.PageHome, pageData{Home: home})
}

// Services GET /services/
func (h *PageHandler) Services(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), services.ServiceFilter{ListQuery: allRows})
	if err != nil {
		h.failPage(c, err)
		return
	}
	h.render(c, http.StatusOK, web.PageServices, pageData{
		Title:    "Our Services",
		Services: serializers.NewServiceDTOs(page.Results, h.media),
	})
}

// ServiceDetail GET /services/:slug/
func (h *PageHandler) ServiceDetail(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failPage(c, err)
		return
	}
	dto := serializers.NewServiceDetailDTO(svc, h.media)
	h.render(c, http.StatusOK, web.PageServiceDetail, pageData{Title: svc.Title, Service: &dto})
}

// About GET /about/
func (h *PageHandler) About(c *gin.Context) {
	page, err := h.team.List(c.Request.Context(), services.TeamFilter{ListQuery: allRows})
	if err != nil {
		h.failPage(c, err)
		return
	}
	h.render(c, http.StatusOK, web.PageAbout, pageData{
		Title: "About Us",
		Team:  serializers.NewTeamMemberDTOs(page.Results, h.media),
	})
}

// Careers GET /careers/
func (h *PageHandler) Careers(c *gin.Context) {
	page, err := h.jobs.List(c.Request.Context(), services.JobFilter{ListQuery: allRows})
	if err != nil {
		h.failPage(c, err)
		return
	}
	h.render(c, http.StatusOK, web.PageCareers, pageData{
		Title: "Careers",
		Jobs:  serializers.NewJobPostingDTOs(page.Results),
	})
}

// JobDetail GET /careers/:slug/
func (h *PageHandler) JobDetail(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failPage(c, err)
		return
	}
	dto := serializers.NewJobPostingDTO(job)
	h.render(c, http.StatusOK, web.PageJobDetail, pageData{Title: job.Title, Job: &dto})
}

// ContactForm GET /contact/
func (h *PageHandler) ContactForm(c *gin.Context) {
	h.render(c, http.StatusOK, web.PageContact, pageData{Title: "Contact Us", Sent: c.Query("sent") == "1"})
}

// ContactSubmit validates and stores the form, then redirects back to the
// form so a reload does not resubmit.
// POST /contact/
func (h *PageHandler) ContactSubmit(c *gin.Context) {
	var in serializers.ContactInput
	if err := c.ShouldBind(&in); err != nil {
		h.render(c, http.StatusBadRequest, web.PageContact, pageData{Title: "Contact Us", Form: in, Error: "Please correct the errors below."})
		return
	}

	_, err := h.submissions.CreateContact(c.Request.Context(), &in, requester(c))
	var fields serializers.ValidationErrors
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/contact/?sent=1")
	case errors.As(err, &fields):
		h.render(c, http.StatusBadRequest, web.PageContact, pageData{Title: "Contact Us", Form: in, Errors: fields})
	default:
		logger.FromGin(c).Error().Err(err).Msg("Contact form submission failed")
		h.render(c, http.StatusInternalServerError, web.PageContact, pageData{
			Title: "Contact Us",
			Form:  in,
			Error: "An error occurred while processing your message. Please try again later.",
		})
	}
}

// NotFound renders the HTML 404 page.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, web.PageNotFound, pageData{Title: "Page not found"})
}
