package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// maxProxyBody bounds the prompt payload relayed upstream.
const maxProxyBody = 1 << 20

type ProxyHandler struct {
	gemini *services.GeminiProxy
}

func NewProxyHandler(gemini *services.GeminiProxy) *ProxyHandler {
	return &ProxyHandler{gemini: gemini}
}

// Gemini forwards a generateContent payload with the server key
// POST /api/proxy/gemini/
func (h *ProxyHandler) Gemini(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxProxyBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "message": "Request body is too large or unreadable"})
		return
	}

	resp, err := h.gemini.Generate(c.Request.Context(), payload)
	if err != nil {
		var perr *services.ProxyError
		if errors.As(err, &perr) {
			c.JSON(perr.Status, gin.H{"error": perr.Title, "message": perr.Message})
			return
		}
		logger.FromGin(c).Error().Err(err).Msg("[Proxy] Unexpected error in Gemini API proxy")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error", "message": "An unexpected error occurred."})
		return
	}
	c.JSON(http.StatusOK, resp)
}
