package handlers

import (
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *services.CatalogService
	media   serializers.MediaURL
}

func NewCatalogHandler(catalog *services.CatalogService, media serializers.MediaURL) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, media: media}
}

// List returns the paginated catalogue
// GET /api/services/?search=&ordering=&category=&min_price=&max_price=
func (h *CatalogHandler) List(c *gin.Context) {
	q, err := listQuery(c)
	if err != nil {
		fail(c, err, "Unable to fetch services")
		return
	}
	page, err := h.catalog.List(c.Request.Context(), services.ServiceFilter{
		ListQuery: q,
		Category:  c.Query("category"),
		MinPrice:  c.Query("min_price"),
		MaxPrice:  c.Query("max_price"),
	})
	if err != nil {
		fail(c, err, "Unable to fetch services")
		return
	}
	paginated(c, page, serializers.NewServiceDTOs(page.Results, h.media), nil)
}

// Get returns one service by id or slug
// GET /api/services/:id/
func (h *CatalogHandler) Get(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Unable to fetch service")
		return
	}
	response.Success(c, serializers.NewServiceDetailDTO(svc, h.media))
}

// Featured returns the newest services
// GET /api/services/featured/
func (h *CatalogHandler) Featured(c *gin.Context) {
	items, err := h.catalog.Featured(c.Request.Context())
	if err != nil {
		fail(c, err, "Unable to fetch featured services")
		return
	}
	dtos := serializers.NewServiceDTOs(items, h.media)
	response.SuccessWith(c, dtos, gin.H{"count": len(dtos)})
}

// Stats returns catalogue statistics
// GET /api/services/stats/
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error().Err(err).Msg("Unable to fetch service statistics")
		response.ServerErrorWithFallback(c, "Unable to fetch service statistics", gin.H{
			"total_services": 0,
			"categories":     services.FallbackCategories,
		})
		return
	}
	response.Success(c, stats)
}

// Categories lists the catalogue categories
// GET /api/services/categories/
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories := h.catalog.Categories(c.Request.Context())
	response.SuccessWith(c, categories, gin.H{"count": len(categories)})
}
