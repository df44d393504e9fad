package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/internal/storage"
	"github.com/azayd/website/backend/internal/testutil"
	"github.com/azayd/website/backend/internal/utils"
	"github.com/azayd/website/backend/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret-for-handler-testing")
}

// testApp wires every handler against SQLite, the memory cache and a
// temporary media root.
type testApp struct {
	db          *gorm.DB
	root        string
	router      *gin.Engine
	auth        *services.AuthService
	submissions *services.SubmissionService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testutil.NewDB(t)
	services.InitSystemLogger(db)
	t.Cleanup(func() { services.InitSystemLogger(nil) })

	root := t.TempDir()
	c := cache.NewMemoryCache()
	backend := storage.NewFileSystemBackend(root, "/media/")
	store := storage.NewSecureStorage(backend, 0)
	media := store.URL
	ttl := config.CacheConfig{}

	catalog := services.NewCatalogService(db, c, ttl)
	team := services.NewTeamService(db, c, ttl)
	jobs := services.NewJobService(db)
	homepage := services.NewHomepageService(catalog, team, jobs, media, c, ttl)
	queue := services.NewSyncQueue()
	submissions := services.NewSubmissionService(db, store, jobs, queue)
	content := services.NewContentService(db, store, catalog, team, c)
	auth := services.NewAuthService(db, config.JWTConfig{Secret: "test-secret-for-handler-testing"})
	require.NoError(t, auth.CreateAdminIfNotExists(config.AdminConfig{Username: "admin", Password: "s3cret-pass"}))

	pages, err := web.Pages()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(pages)
	r.Use(middleware.RequestID(), middleware.SecurityHeaders(false))

	catalogHandler := NewCatalogHandler(catalog, media)
	teamHandler := NewTeamHandler(team, media)
	jobHandler := NewJobHandler(jobs)
	submissionHandler := NewSubmissionHandler(submissions)
	healthHandler := NewHealthHandler(db, c, backend, queue, "test")

	r.GET("/health/", healthHandler.CheckHealth)
	r.GET("/media/*filepath", NewMediaHandler(root).Serve)

	api := r.Group("/api")
	api.GET("/services/", catalogHandler.List)
	api.GET("/services/featured/", catalogHandler.Featured)
	api.GET("/services/stats/", catalogHandler.Stats)
	api.GET("/services/categories/", catalogHandler.Categories)
	api.GET("/services/:id/", catalogHandler.Get)
	api.GET("/team/", teamHandler.List)
	api.GET("/team/leadership/", teamHandler.Leadership)
	api.GET("/team/:id/", teamHandler.Get)
	api.GET("/jobs/", jobHandler.List)
	api.GET("/jobs/recent/", jobHandler.Recent)
	api.GET("/jobs/:id/", jobHandler.Get)
	api.GET("/homepage/", NewHomepageHandler(homepage).Get)
	api.POST("/contact/", submissionHandler.Contact)
	api.POST("/contact/resume/", submissionHandler.Resume)
	api.POST("/jobs/apply/", submissionHandler.Apply)

	authHandler := NewAuthHandler(auth)
	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)
	admin.POST("/refresh", authHandler.Refresh)
	protected := admin.Group("", middleware.AuthRequired(), middleware.AdminRequired())
	protected.POST("/logout", authHandler.Logout)
	protected.GET("/me", authHandler.GetCurrentUser)
	protected.PUT("/password", authHandler.ChangePassword)

	contentHandler := NewContentHandler(content, media)
	protected.GET("/services", contentHandler.ListServices)
	protected.POST("/services", contentHandler.CreateService)
	protected.PUT("/services/:id", contentHandler.UpdateService)
	protected.DELETE("/services/:id", contentHandler.DeleteService)
	protected.POST("/services/:id/image", contentHandler.UploadServiceImage)
	protected.GET("/team", contentHandler.ListTeam)
	protected.POST("/team", contentHandler.CreateTeamMember)
	protected.POST("/team/:id/image", contentHandler.UploadTeamMemberImage)
	protected.GET("/jobs", contentHandler.ListJobs)
	protected.POST("/jobs", contentHandler.CreateJob)
	protected.DELETE("/jobs/:id", contentHandler.DeleteJob)

	inboxHandler := NewInboxHandler(submissions)
	protected.GET("/contacts", inboxHandler.ListContacts)
	protected.POST("/contacts/:id/read", inboxHandler.MarkContactRead)
	protected.GET("/resumes", inboxHandler.ListResumes)
	protected.PUT("/resumes/:id/status", inboxHandler.UpdateResumeStatus)
	protected.GET("/applications", inboxHandler.ListApplications)
	protected.PUT("/applications/:id/status", inboxHandler.UpdateApplicationStatus)
	protected.POST("/applications/review", inboxHandler.MarkReviewed)
	protected.POST("/applications/send-confirmation", inboxHandler.SendConfirmations)

	logs := NewSystemLogHandler(services.NewSystemLogService(db, 0))
	protected.GET("/system-logs", logs.List)
	protected.GET("/system-logs/modules", logs.GetModules)

	pageHandler := NewPageHandler(homepage, catalog, team, jobs, submissions, media)
	r.GET("/", pageHandler.Home)
	r.GET("/services/", pageHandler.Services)
	r.GET("/services/:slug/", pageHandler.ServiceDetail)
	r.GET("/about/", pageHandler.About)
	r.GET("/careers/", pageHandler.Careers)
	r.GET("/careers/:slug/", pageHandler.JobDetail)
	r.GET("/contact/", pageHandler.ContactForm)
	r.POST("/contact/", pageHandler.ContactSubmit)
	r.NoRoute(pageHandler.NotFound)

	return &testApp{db: db, root: root, router: r, auth: auth, submissions: submissions}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) sendJSON(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.do(req)
}

// login returns an access token for the seeded admin.
func (a *testApp) login(t *testing.T) string {
	t.Helper()
	w := a.sendJSON(http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Data services.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.AccessToken)
	return body.Data.AccessToken
}

// multipartRequest builds a multipart body with fields and an optional file.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func createService(t *testing.T, db *gorm.DB, title, stack string) models.Service {
	t.Helper()
	svc := models.Service{Title: title, Description: "About " + title, TechStack: stack}
	require.NoError(t, db.Create(&svc).Error)
	return svc
}

func createJob(t *testing.T, db *gorm.DB, title string, active bool) models.JobPosting {
	t.Helper()
	job := models.JobPosting{
		Title:        title,
		Department:   "Engineering",
		Location:     "Remote",
		JobType:      "full-time",
		Description:  "Build things.\nShip them.",
		Requirements: "Go\nSQL",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&job).Error)
	if !active {
		require.NoError(t, db.Model(&job).Update("is_active", false).Error)
	}
	return job
}

func createMember(t *testing.T, db *gorm.DB, name, position string) models.TeamMember {
	t.Helper()
	m := models.TeamMember{Name: name, Position: position, Bio: name + " works here.", IsActive: true}
	require.NoError(t, db.Create(&m).Error)
	return m
}

var (
	pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n%%EOF\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
)
