package main

import (
	"context"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/middleware"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/services"
	"github.com/azayd/website/backend/internal/storage"
	"github.com/azayd/website/backend/internal/utils"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// appServices holds all initialized services needed by the routes.
type appServices struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	cache cache.Cache

	backend  storage.Backend
	storage  *storage.SecureStorage
	throttle middleware.ThrottleStore

	taskQueue services.TaskQueue
	worker    *services.Worker
	scheduler *services.Scheduler

	auth        *services.AuthService
	systemLogs  *services.SystemLogService
	catalog     *services.CatalogService
	team        *services.TeamService
	jobs        *services.JobService
	homepage    *services.HomepageService
	submissions *services.SubmissionService
	content     *services.ContentService
	gemini      *services.GeminiProxy
}

// bootstrap initializes all application dependencies: database, cache,
// storage, queue and schedulers.
func bootstrap(ctx context.Context, cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default content into empty tables
	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	// Initialize system logger
	services.InitSystemLogger(db)

	svc := &appServices{cfg: cfg, db: db}

	// Shared cache and throttle store (Redis when enabled, process-local otherwise)
	svc.cache = cache.NewMemoryCache()
	svc.throttle = middleware.NewMemoryThrottleStore()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, using in-process cache and throttle")
		} else {
			svc.redis = client
			svc.cache = cache.NewRedisCache(client)
			svc.throttle = middleware.NewRedisThrottleStore(client)
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache and throttle store enabled")
		}
	}

	// Upload storage
	backend, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	svc.backend = backend
	svc.storage = storage.NewSecureStorage(backend, cfg.Storage.MaxUploadBytes)
	svc.storage.OnReject(func(name, reason string) {
		services.LogWarning("upload", "rejected", reason, nil, "", "", map[string]string{"file": name})
	})
	media := svc.storage.URL

	// Content services
	svc.systemLogs = services.NewSystemLogService(db, cfg.Log.RetentionDays)
	svc.catalog = services.NewCatalogService(db, svc.cache, cfg.Cache)
	svc.team = services.NewTeamService(db, svc.cache, cfg.Cache)
	svc.jobs = services.NewJobService(db)
	svc.homepage = services.NewHomepageService(svc.catalog, svc.team, svc.jobs, media, svc.cache, cfg.Cache)
	svc.content = services.NewContentService(db, svc.storage, svc.catalog, svc.team, svc.cache)

	// Confirmation emails (asynq when Redis is enabled, inline otherwise)
	renderer, err := services.NewConfirmationRenderer()
	if err != nil {
		logger.Fatalf("Failed to parse email templates: %v", err)
	}
	notifier := services.NewApplicationNotifier(db, services.NewEmailService(cfg.SMTP), renderer)
	svc.taskQueue = services.NewTaskQueue(&cfg.Redis)
	if syncQueue, ok := svc.taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(notifier.Process)
	} else if worker := services.NewWorker(&cfg.Redis); worker != nil {
		worker.SetProcessor(notifier.Process)
		if err := worker.Start(); err != nil {
			logger.Error().Err(err).Msg("Failed to start task worker")
		} else {
			svc.worker = worker
		}
	}
	svc.submissions = services.NewSubmissionService(db, svc.storage, svc.jobs, svc.taskQueue)

	// Gemini proxy
	gemini, err := services.NewGeminiProxy(ctx, cfg.Gemini)
	if err != nil {
		logger.Warn().Err(err).Msg("Gemini proxy not available")
		gemini = services.NewGeminiProxyWithGenerator(cfg.Gemini, nil)
	}
	svc.gemini = gemini

	// Authentication and default admin user
	svc.auth = services.NewAuthService(db, cfg.JWT)
	if err := svc.auth.CreateAdminIfNotExists(cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	// Scheduled jobs
	if cfg.Scheduler.Enabled {
		svc.scheduler = services.NewScheduler(db, cfg.Scheduler, svc.systemLogs, svc.homepage)
		if err := svc.scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("Failed to start scheduler")
			svc.scheduler = nil
		}
	}

	return svc
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		logger.Info().Msg("Scheduler stopped")
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close task queue")
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
