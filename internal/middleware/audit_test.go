package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/azayd/website/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseRouteInfo(t *testing.T) {
	tests := []struct {
		path, method   string
		module, action string
	}{
		{"/api/admin/services/:id", http.MethodPut, "Services", "Update"},
		{"/api/admin/team-members/", http.MethodPost, "Team Members", "Create"},
		{"/api/admin/jobs/:id", http.MethodDelete, "Jobs", "Delete"},
		{"/api/admin/contacts/:id/read", http.MethodPatch, "Contacts", "Update"},
		{"/api/auth/login", http.MethodPost, "Auth", "Create"},
		{"/api/admin/:id", http.MethodPost, "Unknown", "Create"},
		{"", "PURGE", "Unknown", "PURGE"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			module, action := parseRouteInfo(tt.path, tt.method)
			assert.Equal(t, tt.module, module)
			assert.Equal(t, tt.action, action)
		})
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	in := `{"username":"root","password":"hunter2","Refresh_Token":"abc","title":"Web"}`
	out := maskSensitiveFields(in)
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, `"abc"`)
	assert.Contains(t, out, `"password":"***"`)
	assert.Contains(t, out, `"title":"Web"`)
}

func TestFormatAuditMessage(t *testing.T) {
	assert.Equal(t, "[Audit] root PUT /api/admin/services/1 -> OK", formatAuditMessage("root", "PUT", "/api/admin/services/1", 200))
	assert.Equal(t, "[Audit] anonymous DELETE /x -> Failed", formatAuditMessage("", "DELETE", "/x", 404))
}

func TestAuditLog_KeepsBodyForHandler(t *testing.T) {
	services.InitSystemLogger(nil)
	var seen string
	router := gin.New()
	router.Use(AuditLog())
	router.POST("/api/admin/services/", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		seen = string(b)
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/admin/services/", strings.NewReader(`{"title":"Web"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"title":"Web"}`, seen)
}
