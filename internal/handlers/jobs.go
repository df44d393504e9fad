package handlers

import (
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobs *services.JobService
}

func NewJobHandler(jobs *services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// List returns open postings
// GET /api/jobs/?department=&location=&job_type=
func (h *JobHandler) List(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		fail(c, err, "Unable to fetch job postings")
		return
	}
	page, err := h.jobs.List(c.Request.Context(), services.JobFilter{
		ListQuery:  q,
		Department: c.Query("department"),
		Location:   c.Query("location"),
		JobType:    c.Query("job_type"),
	})
	if err != nil {
		fail(c, err, "Unable to fetch job postings")
		return
	}
	paginated(c, page, serializers.NewJobPostingDTOs(page.Results), nil)
}

// Get returns one open posting by id or slug
// GET /api/jobs/:id/
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Unable to fetch job posting")
		return
	}
	response.Success(c, serializers.NewJobPostingDTO(job))
}

// Recent returns the three newest postings
// GET /api/jobs/recent/
func (h *JobHandler) Recent(c *gin.Context) {
	items, err := h.jobs.Recent(c.Request.Context())
	if err != nil {
		fail(c, err, "Unable to fetch recent job postings")
		return
	}
	response.SuccessWith(c, serializers.NewJobPostingDTOs(items), gin.H{"count": len(items)})
}

// Departments lists departments with open postings
// GET /api/jobs/departments/
func (h *JobHandler) Departments(c *gin.Context) {
	deps, err := h.jobs.Departments(c.Request.Context())
	if err != nil {
		fail(c, err, "Unable to fetch departments")
		return
	}
	response.Success(c, deps)
}

// Locations lists locations with open postings
// GET /api/jobs/locations/
func (h *JobHandler) Locations(c *gin.Context) {
	locs, err := h.jobs.Locations(c.Request.Context())
	if err != nil {
		fail(c, err, "Unable to fetch locations")
		return
	}
	response.Success(c, locs)
}
