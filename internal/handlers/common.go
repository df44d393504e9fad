package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/serializers"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidPage = "Invalid page."
	msgNotFound    = "Not found."
)

func timestamp() string { return time.Now().UTC().Format(time.RFC3339) }

// listQuery reads page, page_size, search and ordering.
func listQuery(c *gin.Context) (services.ListQuery, error) {
	return services.NewListQuery(c.Query("page"), c.Query("page_size"), c.Query("search"), c.Query("ordering"))
}

// paginated writes a page in the public list shape with next and previous
// links. extra keys are merged at the top level.
func paginated[T, D any](c *gin.Context, page *services.Page[T], results []D, extra gin.H) {
	body := gin.H{
		"links": gin.H{
			"next":     pageLink(c, page.HasNext(), page.CurrentPage+1),
			"previous": pageLink(c, page.HasPrevious(), page.CurrentPage-1),
		},
		"count":        page.Count,
		"total_pages":  page.TotalPages,
		"current_page": page.CurrentPage,
		"page_size":    page.PageSize,
		"results":      results,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(200, body)
}

func pageLink(c *gin.Context, ok bool, n int) *string {
	if !ok {
		return nil
	}
	u := url.URL{Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

// parseID reads a positive numeric :id.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.NotFound(c, msgNotFound)
		return 0, false
	}
	return uint(id), true
}

func requester(c *gin.Context) services.Requester {
	who := services.Requester{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	if id := middleware.GetUserID(c); id > 0 {
		who.UserID = &id
	}
	return who
}

// fail maps service errors onto the envelope. Anything unexpected is logged
// and answered with msg.
func fail(c *gin.Context, err error, msg string) {
	var fields serializers.ValidationErrors
	switch {
	case errors.As(err, &fields):
		response.ValidationFailed(c, fields)
	case errors.Is(err, services.ErrInvalidPage):
		response.NotFound(c, msgInvalidPage)
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, msgNotFound)
	default:
		var appErr *response.AppError
		if errors.As(err, &appErr) {
			response.Error(c, appErr)
			return
		}
		logger.FromGin(c).Error().Err(err).Str("path", c.FullPath()).Msg(msg)
		response.ServerError(c, msg)
	}
}

// bindJSON decodes the body, answering malformed JSON with a field error.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.ValidationFailed(c, serializers.ValidationErrors{
			serializers.NonFieldErrors: {"Invalid request body."},
		})
		return false
	}
	return true
}
