package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	jobLogCleanup   = "system_log_cleanup"
	jobHomepageWarm = "homepage_warmup"
)

// Scheduler runs the periodic maintenance jobs. Each run takes a lock row
// per period so only one replica does the work.
type Scheduler struct {
	db       *gorm.DB
	cfg      config.SchedulerConfig
	logs     *SystemLogService
	homepage *HomepageService
	cron     *cron.Cron
	owner    string
	now      func() time.Time
}

func NewScheduler(db *gorm.DB, cfg config.SchedulerConfig, logs *SystemLogService, homepage *HomepageService) *Scheduler {
	owner, err := os.Hostname()
	if err != nil || owner == "" {
		owner = "unknown"
	}
	return &Scheduler{
		db:       db,
		cfg:      cfg,
		logs:     logs,
		homepage: homepage,
		owner:    fmt.Sprintf("%s-%d", owner, os.Getpid()),
		now:      time.Now,
	}
}

func (s *Scheduler) Start() error {
	s.cron = cron.New()

	cleanupSpec := s.cfg.LogCleanupSpec
	if cleanupSpec == "" {
		cleanupSpec = "@daily"
	}
	if _, err := s.cron.AddFunc(cleanupSpec, s.RunLogCleanup); err != nil {
		return fmt.Errorf("schedule log cleanup %q: %w", cleanupSpec, err)
	}

	warmSpec := s.cfg.CacheWarmupSpec
	if warmSpec == "" {
		warmSpec = "@every 10m"
	}
	if _, err := s.cron.AddFunc(warmSpec, s.RunHomepageWarmup); err != nil {
		return fmt.Errorf("schedule homepage warmup %q: %w", warmSpec, err)
	}

	s.cron.Start()
	logger.Infof("[Scheduler] Started (cleanup: %s, warmup: %s)", cleanupSpec, warmSpec)
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	logger.Infof("[Scheduler] Stopped")
}

// RunLogCleanup deletes expired system logs once per day.
func (s *Scheduler) RunLogCleanup() {
	key := s.now().Format("2006-01-02")
	if !s.acquire(jobLogCleanup, key, 23*time.Hour) {
		return
	}
	s.logs.RunCleanup()
}

// RunHomepageWarmup rebuilds the cached homepage payload.
func (s *Scheduler) RunHomepageWarmup() {
	key := s.now().Format("2006-01-02T15:04")
	if !s.acquire(jobHomepageWarm, key, time.Minute) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.homepage.Warm(ctx); err != nil {
		LogError("scheduler", jobHomepageWarm, err.Error(), nil, "", "", nil)
		return
	}
	logger.Debug().Msg("[Scheduler] Homepage cache warmed")
}

func (s *Scheduler) acquire(name, key string, ttl time.Duration) bool {
	ok, err := models.AcquireSchedulerLock(s.db, name, key, s.owner, ttl)
	if err != nil {
		logger.Errorf("[Scheduler] Failed to acquire %s lock: %v", name, err)
		return false
	}
	if !ok {
		logger.Debug().Str("job", name).Str("period", key).Msg("[Scheduler] Lock held elsewhere, skipping")
	}
	return ok
}
