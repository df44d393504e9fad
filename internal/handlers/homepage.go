package handlers

import (
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type HomepageHandler struct {
	homepage *services.HomepageService
}

func NewHomepageHandler(homepage *services.HomepageService) *HomepageHandler {
	return &HomepageHandler{homepage: homepage}
}

// Get returns the aggregated homepage payload
// GET /api/homepage/
func (h *HomepageHandler) Get(c *gin.Context) {
	page, err := h.homepage.Build(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Unable to fetch homepage data")
		c.JSON(500, gin.H{
			"status":        response.StatusError,
			"message":       "Unable to fetch homepage data",
			"error_details": "Please try again later or contact support if the issue persists.",
			"fallback_data": gin.H{"stats": services.FallbackStats()},
			"timestamp":     timestamp(),
		})
		return
	}
	response.Success(c, page)
}
