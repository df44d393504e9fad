package handlers

import (
	"context"
	"time"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/internal/storage"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports process liveness plus a status per dependency.
type HealthHandler struct {
	db      *gorm.DB
	cache   cache.Cache
	storage storage.Backend
	queue   services.TaskQueue
	version string
}

func NewHealthHandler(db *gorm.DB, c cache.Cache, store storage.Backend, queue services.TaskQueue, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: c, storage: store, queue: queue, version: version}
}

// CheckHealth always answers 200 while the process is up; dependency
// failures only show in the components.
// GET /health/ and /api/health/
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	queueMode := "sync"
	if h.queue != nil && h.queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	c.JSON(200, gin.H{
		"status":    "ok",
		"timestamp": timestamp(),
		"version":   h.version,
		"services": gin.H{
			"database":   h.checkDatabase(ctx),
			"cache":      h.checkCache(ctx),
			"storage":    h.checkStorage(ctx),
			"queue_mode": queueMode,
		},
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return "disabled"
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return unhealthy("database", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy("database", err)
	}
	return "ok"
}

func (h *HealthHandler) checkCache(ctx context.Context) string {
	if h.cache == nil {
		return "disabled"
	}
	if err := h.cache.Set(ctx, "health_check", []byte("test"), 10*time.Second); err != nil {
		return unhealthy("cache", err)
	}
	if _, err := h.cache.Get(ctx, "health_check"); err != nil {
		return unhealthy("cache", err)
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(ctx context.Context) string {
	if h.storage == nil {
		return "disabled"
	}
	if err := h.storage.Ping(ctx); err != nil {
		return unhealthy("storage", err)
	}
	return "ok"
}

// unhealthy logs the cause and reports a bare error status.
func unhealthy(component string, err error) string {
	logger.Warn().Err(err).Str("component", component).Msg("Health check failed")
	return "error"
}
