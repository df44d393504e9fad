package handlers

import (
	"strconv"

	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	team  *services.TeamService
	media serializers.MediaURL
}

func NewTeamHandler(team *services.TeamService, media serializers.MediaURL) *TeamHandler {
	return &TeamHandler{team: team, media: media}
}

// List returns active members with list metadata
// GET /api/team/?role=&leadership=true
func (h *TeamHandler) List(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		fail(c, err, "Unable to fetch team members")
		return
	}
	leadership, _ := strconv.ParseBool(c.Query("leadership"))
	ctx := c.Request.Context()

	page, err := h.team.List(ctx, services.TeamFilter{ListQuery: q, Role: c.Query("role"), Leadership: leadership})
	if err != nil {
		fail(c, err, "Unable to fetch team members")
		return
	}
	meta, err := h.team.ListMetadata(ctx)
	if err != nil {
		fail(c, err, "Unable to fetch team members")
		return
	}
	paginated(c, page, serializers.NewTeamMemberDTOs(page.Results, h.media), gin.H{"metadata": meta})
}

// Get returns one active member
// GET /api/team/:id/
func (h *TeamHandler) Get(c *gin.Context) {
	m, err := h.team.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Unable to fetch team member")
		return
	}
	response.Success(c, serializers.NewTeamMemberDTO(m, h.media))
}

// Leadership returns the leadership team
// GET /api/team/leadership/
func (h *TeamHandler) Leadership(c *gin.Context) {
	items, err := h.team.Leadership(c.Request.Context())
	if err != nil {
		fail(c, err, "Internal server error while fetching leadership team")
		return
	}
	c.JSON(200, gin.H{
		"status":  response.StatusSuccess,
		"count":   len(items),
		"results": serializers.NewTeamMemberDTOs(items, h.media),
		"metadata": gin.H{
			"total_leadership": len(items),
			"last_updated":     timestamp(),
			"cache_duration":   "10 minutes",
		},
	})
}

// Highlights returns the members shown on the homepage and about page
// GET /api/team/highlights/
func (h *TeamHandler) Highlights(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.team.Highlights(ctx)
	if err == nil {
		var total int64
		if total, err = h.team.CountActive(ctx); err == nil {
			c.JSON(200, gin.H{
				"status":  response.StatusSuccess,
				"count":   len(items),
				"results": serializers.NewTeamMemberDTOs(items, h.media),
				"metadata": gin.H{
					"selection_criteria":   "leadership_priority",
					"total_active_members": total,
					"last_updated":         timestamp(),
				},
			})
			return
		}
	}
	logger.FromGin(c).Error().Err(err).Msg("Failed to fetch team highlights")
	c.JSON(500, gin.H{"status": response.StatusError, "message": "Failed to fetch team highlights", "results": []interface{}{}})
}

// Departments returns the filter facets
// GET /api/team/departments/
func (h *TeamHandler) Departments(c *gin.Context) {
	deps, err := h.team.Departments(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Failed to fetch departments")
		c.JSON(500, gin.H{"status": response.StatusError, "message": "Failed to fetch departments", "data": services.FallbackTeamDepartments()})
		return
	}
	response.SuccessWith(c, deps, gin.H{"metadata": gin.H{
		"total_departments": len(deps.Departments),
		"total_roles":       len(deps.Roles),
		"last_updated":      timestamp(),
		"cache_duration":    "30 minutes",
	}})
}

// Stats returns team statistics
// GET /api/team/stats/
func (h *TeamHandler) Stats(c *gin.Context) {
	stats, err := h.team.Stats(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Failed to fetch team statistics")
		c.JSON(500, gin.H{"status": response.StatusError, "message": "Failed to fetch team statistics", "data": services.FallbackTeamStats()})
		return
	}
	response.SuccessWith(c, stats, gin.H{"metadata": gin.H{
		"cache_duration": "15 minutes",
		"generated_at":   timestamp(),
	}})
}
