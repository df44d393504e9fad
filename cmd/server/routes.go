package main

import (
	"strings"

	"github.com/azayd/website/backend/internal/handlers"
	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/web"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/azayd/website/backend/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// multipartOverhead leaves room for the form fields next to the file.
const multipartOverhead = 1 << 20

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) *middleware.RateLimiter {
	cfg := svc.cfg
	media := svc.storage.URL

	pages, err := web.Pages()
	if err != nil {
		logger.Fatalf("Failed to parse page templates: %v", err)
	}
	r.SetHTMLTemplate(pages)
	r.MaxMultipartMemory = svc.storage.MaxSize() + multipartOverhead

	// Metrics
	registry := prometheus.NewRegistry()
	handlers.RegisterMetrics(registry, svc.db, svc.taskQueue)
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// Middleware
	burstLimiter := middleware.NewRateLimiter(cfg.Throttle.BurstRPS, cfg.Throttle.Burst)
	r.Use(
		middleware.RequestID(),
		logger.GinLogger(),
		logger.GinRecovery(),
		middleware.SecurityHeaders(cfg.Server.IsDebug()),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		burstLimiter.Middleware(),
		httpMetrics.Middleware(),
	)

	contactThrottle := middleware.Throttle(svc.throttle, middleware.NewThrottleRule(
		middleware.ScopeContact, cfg.Throttle.SubmissionRate, "5/hour", middleware.MessageSubmissionsThrottled))
	anonThrottle := middleware.Throttle(svc.throttle, middleware.NewThrottleRule(
		middleware.ScopeAnon, cfg.Throttle.AnonRate, "100/day", middleware.MessageRequestsThrottled))
	cacheList := middleware.CachePage(svc.cache, cfg.Cache.List())

	// Health check and metrics
	healthHandler := handlers.NewHealthHandler(svc.db, svc.cache, svc.backend, svc.taskQueue, version)
	r.GET("/health/", healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics(registry))

	// Public media (local storage only; S3 objects are served by the bucket)
	if cfg.Storage.Backend == "" || cfg.Storage.Backend == "local" {
		mediaHandler := handlers.NewMediaHandler(cfg.Storage.MediaRoot)
		r.GET("/media/*filepath", mediaHandler.Serve)
	}

	catalogHandler := handlers.NewCatalogHandler(svc.catalog, media)
	teamHandler := handlers.NewTeamHandler(svc.team, media)
	jobHandler := handlers.NewJobHandler(svc.jobs)
	homepageHandler := handlers.NewHomepageHandler(svc.homepage)
	submissionHandler := handlers.NewSubmissionHandler(svc.submissions)
	proxyHandler := handlers.NewProxyHandler(svc.gemini)

	// Public API
	api := r.Group("/api")
	{
		api.GET("/health/", healthHandler.CheckHealth)

		// Submissions
		submit := api.Group("", contactThrottle)
		{
			submit.POST("/contact/", submissionHandler.Contact)
			submit.POST("/contact/resume/", submissionHandler.Resume)
			submit.POST("/jobs/apply/", submissionHandler.Apply)
		}

		read := api.Group("", anonThrottle)
		{
			// Services
			read.GET("/services/", cacheList, catalogHandler.List)
			read.GET("/services/featured/", catalogHandler.Featured)
			read.GET("/services/stats/", catalogHandler.Stats)
			read.GET("/services/categories/", catalogHandler.Categories)
			read.GET("/services/:id/", catalogHandler.Get)

			// Team
			read.GET("/team/", cacheList, teamHandler.List)
			read.GET("/team/leadership/", teamHandler.Leadership)
			read.GET("/team/highlights/", teamHandler.Highlights)
			read.GET("/team/departments/", teamHandler.Departments)
			read.GET("/team/stats/", teamHandler.Stats)
			read.GET("/team/:id/", teamHandler.Get)

			// Jobs
			read.GET("/jobs/", jobHandler.List)
			read.GET("/jobs/recent/", jobHandler.Recent)
			read.GET("/jobs/departments/", jobHandler.Departments)
			read.GET("/jobs/locations/", jobHandler.Locations)
			read.GET("/jobs/:id/", jobHandler.Get)

			read.GET("/homepage/", homepageHandler.Get)
			read.POST("/proxy/gemini/", proxyHandler.Gemini)
		}

		registerAdminRoutes(api.Group("/admin"), svc)
	}

	// Server-rendered pages
	pageHandler := handlers.NewPageHandler(svc.homepage, svc.catalog, svc.team, svc.jobs, svc.submissions, media)
	r.GET("/", pageHandler.Home)
	r.GET("/services/", pageHandler.Services)
	r.GET("/services/:slug/", pageHandler.ServiceDetail)
	r.GET("/about/", pageHandler.About)
	r.GET("/careers/", pageHandler.Careers)
	r.GET("/careers/:slug/", pageHandler.JobDetail)
	r.GET("/contact/", pageHandler.ContactForm)
	r.POST("/contact/", contactThrottle, pageHandler.ContactSubmit)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.NotFound(c, "Not found.")
			return
		}
		pageHandler.NotFound(c)
	})

	return burstLimiter
}

// registerAdminRoutes mounts the JWT-protected content and inbox API.
func registerAdminRoutes(admin *gin.RouterGroup, svc *appServices) {
	media := svc.storage.URL
	authHandler := handlers.NewAuthHandler(svc.auth)

	// Auth routes (public)
	admin.POST("/login", authHandler.Login)
	admin.POST("/refresh", authHandler.Refresh)

	protected := admin.Group("")
	protected.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.GetCurrentUser)
		protected.PUT("/password", authHandler.ChangePassword)

		// Catalogue, team and careers content
		contentHandler := handlers.NewContentHandler(svc.content, media)
		protected.GET("/services", contentHandler.ListServices)
		protected.POST("/services", contentHandler.CreateService)
		protected.PUT("/services/:id", contentHandler.UpdateService)
		protected.DELETE("/services/:id", contentHandler.DeleteService)
		protected.POST("/services/:id/image", contentHandler.UploadServiceImage)

		protected.GET("/team", contentHandler.ListTeam)
		protected.POST("/team", contentHandler.CreateTeamMember)
		protected.PUT("/team/:id", contentHandler.UpdateTeamMember)
		protected.DELETE("/team/:id", contentHandler.DeleteTeamMember)
		protected.POST("/team/:id/image", contentHandler.UploadTeamMemberImage)

		protected.GET("/jobs", contentHandler.ListJobs)
		protected.POST("/jobs", contentHandler.CreateJob)
		protected.PUT("/jobs/:id", contentHandler.UpdateJob)
		protected.DELETE("/jobs/:id", contentHandler.DeleteJob)

		// Inbox
		inboxHandler := handlers.NewInboxHandler(svc.submissions)
		protected.GET("/contacts", inboxHandler.ListContacts)
		protected.POST("/contacts/:id/read", inboxHandler.MarkContactRead)
		protected.GET("/resumes", inboxHandler.ListResumes)
		protected.PUT("/resumes/:id/status", inboxHandler.UpdateResumeStatus)
		protected.GET("/applications", inboxHandler.ListApplications)
		protected.PUT("/applications/:id/status", inboxHandler.UpdateApplicationStatus)
		protected.POST("/applications/review", inboxHandler.MarkReviewed)
		protected.POST("/applications/send-confirmation", inboxHandler.SendConfirmations)

		// System Logs
		systemLogHandler := handlers.NewSystemLogHandler(svc.systemLogs)
		protected.GET("/system-logs", systemLogHandler.List)
		protected.GET("/system-logs/modules", systemLogHandler.GetModules)
	}
}
