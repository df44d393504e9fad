package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// GenericErrorMessage is what public clients see for unexpected failures.
const GenericErrorMessage = "An unexpected error occurred. Please try again later."

// Response is the unified success envelope.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// ErrorResponse is the unified error envelope.
type ErrorResponse struct {
	Status       string      `json:"status"`
	Message      string      `json:"message"`
	Errors       interface{} `json:"errors,omitempty"`
	RetryAfter   *int        `json:"retry_after,omitempty"`
	FallbackData interface{} `json:"fallback_data,omitempty"`
}

// AppError represents a structured application error with HTTP status and
// optional field-level details.
type AppError struct {
	HTTPStatus int                 // HTTP status code (e.g. 400, 404, 500)
	Message    string              // Human-readable error message
	Errors     map[string][]string // Field errors, keyed by field name
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg}
}

// NewValidationError wraps field errors with the standard input message.
func NewValidationError(fields map[string][]string) *AppError {
	return &AppError{
		HTTPStatus: http.StatusBadRequest,
		Message:    "Please check your input and try again.",
		Errors:     fields,
	}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusUnauthorized, Message: msg}
}

func NewForbidden(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusForbidden, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusConflict, Message: msg}
}

func NewServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Message: msg}
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

// SuccessWith sends a 200 OK response with data and extra top-level keys
// such as count or metadata.
func SuccessWith(c *gin.Context, data interface{}, extra gin.H) {
	body := gin.H{"status": StatusSuccess, "data": data}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Created sends a 201 Created response with a message and data.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: StatusSuccess, Message: message, Data: data})
}

// Error sends an error response. If err is an *AppError, its status and
// details are used; otherwise a generic 500 is returned without leaking err.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		body := ErrorResponse{Status: StatusError, Message: appErr.Message}
		if len(appErr.Errors) > 0 {
			body.Errors = appErr.Errors
		}
		c.JSON(appErr.HTTPStatus, body)
		return
	}
	ServerError(c, GenericErrorMessage)
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Status: StatusError, Message: msg})
}

// ValidationFailed sends a 400 with a field error map.
func ValidationFailed(c *gin.Context, fields map[string][]string) {
	Error(c, NewValidationError(fields))
}

func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Status: StatusError, Message: msg})
}

func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Status: StatusError, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Message: msg})
}

// TooManyRequests sends a 429 with a retry hint in seconds, mirrored in the
// Retry-After header.
func TooManyRequests(c *gin.Context, msg string, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.JSON(http.StatusTooManyRequests, ErrorResponse{Status: StatusError, Message: msg, RetryAfter: &retryAfter})
}

func ServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Status: StatusError, Message: msg})
}

// ServerErrorWithFallback sends a 500 carrying a static payload the caller
// can still render.
func ServerErrorWithFallback(c *gin.Context, msg string, fallback interface{}) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Status: StatusError, Message: msg, FallbackData: fallback})
}

func ServiceUnavailable(c *gin.Context, msg string) {
	c.JSON(http.StatusServiceUnavailable, ErrorResponse{Status: StatusError, Message: msg})
}
