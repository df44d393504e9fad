package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/azayd/website/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func burstRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/api/services/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"results": []string{}})
	})
	return router
}

func listServices(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/services/", nil)
	req.RemoteAddr = ip + ":52100"
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_DefaultBurst(t *testing.T) {
	cfg := config.DefaultConfig().Throttle
	rl := NewRateLimiter(cfg.BurstRPS, cfg.Burst)
	defer rl.Stop()
	router := burstRouter(rl)

	// a page load fanning out to the list endpoints fits in the burst
	for i := 0; i < cfg.Burst; i++ {
		require.Equal(t, http.StatusOK, listServices(router, "203.0.113.7").Code, "request %d", i+1)
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 3)
	defer rl.Stop()
	router := burstRouter(rl)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, listServices(router, "203.0.113.8").Code)
	}
	w := listServices(router, "203.0.113.8")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body struct {
		Status     string `json:"status"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retry_after"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Too many requests. Please slow down.", body.Message)
	assert.Equal(t, 1, body.RetryAfter)

	assert.Equal(t, http.StatusOK, listServices(router, "198.51.100.20").Code, "other clients keep their own bucket")
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
