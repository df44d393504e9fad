package handlers

import (
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type SystemLogHandler struct {
	systemLogService *services.SystemLogService
}

func NewSystemLogHandler(systemLogService *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{systemLogService: systemLogService}
}

// List returns the operational log
// GET /api/admin/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters.")
		return
	}

	resp, err := h.systemLogService.List(&req)
	if err != nil {
		fail(c, err, "Unable to fetch system logs.")
		return
	}
	response.Success(c, resp)
}

// GetModules lists the modules that have written log entries
// GET /api/admin/system-logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.systemLogService.GetModules()
	if err != nil {
		fail(c, err, "Unable to fetch log modules.")
		return
	}
	response.Success(c, gin.H{"modules": modules})
}
