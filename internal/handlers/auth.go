package handlers

import (
	"errors"
	"net/http"

	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles admin login
// POST /api/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in serializers.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	if errs := in.Validate(); errs.Any() {
		response.ValidationFailed(c, errs)
		return
	}

	who := requester(c)
	resp, err := h.authService.Login(c.Request.Context(), in.Username, in.Password, who.IP, who.UserAgent)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrUserDisabled) {
			services.LogWarning("auth", "login_failed", "Failed login for "+in.Username, nil, who.IP, who.UserAgent, nil)
			response.Unauthorized(c, "Invalid username or password.")
			return
		}
		fail(c, err, "Unable to log in. Please try again later.")
		return
	}

	services.LogInfo("auth", "login", "Admin logged in: "+in.Username, &resp.User.ID, who.IP, who.UserAgent, nil)
	response.Success(c, resp)
}

// Refresh rotates the refresh token
// POST /api/admin/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	who := requester(c)
	resp, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, who.IP, who.UserAgent)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) || errors.Is(err, services.ErrUserDisabled) {
			response.Unauthorized(c, "Invalid or expired refresh token.")
			return
		}
		fail(c, err, "Unable to refresh the session. Please try again later.")
		return
	}
	response.Success(c, resp)
}

// Logout revokes the presented refresh token
// POST /api/admin/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken != "" {
		if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
			fail(c, err, "Unable to log out. Please try again later.")
			return
		}
	}
	c.JSON(http.StatusOK, response.Response{Status: response.StatusSuccess, Message: "Logged out successfully.", Data: nil})
}

// GetCurrentUser returns the logged-in admin
// GET /api/admin/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err, "Unable to load the current user.")
		return
	}
	response.Success(c, user)
}

// ChangePassword replaces the admin password and ends other sessions
// PUT /api/admin/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, serializers.ValidationErrors{
			"new_password": {"Provide the current password and a new password of at least 8 characters."},
		})
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), &req); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.ValidationFailed(c, serializers.ValidationErrors{"old_password": {"Current password is incorrect."}})
			return
		}
		fail(c, err, "Unable to change the password.")
		return
	}
	c.JSON(http.StatusOK, response.Response{Status: response.StatusSuccess, Message: "Password changed.", Data: nil})
}
