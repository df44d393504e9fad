package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/azayd/website/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// publicMediaPrefixes are the upload folders that may be served. Resumes
// live elsewhere and are never exposed.
var publicMediaPrefixes = []string{services.ServiceImageDir + "/", services.TeamImageDir + "/"}

// MediaHandler serves public images from the local media root.
type MediaHandler struct {
	root string
}

func NewMediaHandler(root string) *MediaHandler {
	return &MediaHandler{root: root}
}

// Serve GET /media/*filepath
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(path.Clean("/"+c.Param("filepath")), "/")
	if !isPublicMedia(key) {
		c.Status(http.StatusNotFound)
		return
	}
	full := filepath.Join(h.root, filepath.FromSlash(key))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(full)
}

func isPublicMedia(key string) bool {
	for _, prefix := range publicMediaPrefixes {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return true
		}
	}
	return false
}
