package services

import (
	"context"
	"testing"
	"time"

	"github.com/azayd/website/backend/internal/cache"
	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_LogCleanupRunsOncePerDay(t *testing.T) {
	db := newServiceDB(t)
	logs := NewSystemLogService(db, 7)
	s := NewScheduler(db, config.SchedulerConfig{}, logs, nil)
	day := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	old := func(action string) {
		require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "m", Action: action, CreatedAt: time.Now().AddDate(0, 0, -10)}).Error)
	}
	count := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.SystemLog{}).Where("module = ?", "m").Count(&n).Error)
		return n
	}

	old("first")
	s.RunLogCleanup()
	assert.Zero(t, count())

	old("second")
	s.RunLogCleanup()
	assert.Equal(t, int64(1), count(), "same day is locked")

	other := NewScheduler(db, config.SchedulerConfig{}, logs, nil)
	other.now = s.now
	other.RunLogCleanup()
	assert.Equal(t, int64(1), count(), "another replica skips as well")

	day = day.AddDate(0, 0, 1)
	s.RunLogCleanup()
	assert.Zero(t, count())
}

func TestScheduler_HomepageWarmup(t *testing.T) {
	db := newServiceDB(t)
	c := cache.NewMemoryCache()
	s := NewScheduler(db, config.SchedulerConfig{}, NewSystemLogService(db, 0), newHomepage(db, c))

	s.RunHomepageWarmup()
	_, err := c.Get(context.Background(), cache.KeyHomepage)
	assert.NoError(t, err)

	var locks int64
	require.NoError(t, db.Model(&models.SchedulerLock{}).Where("lock_name = ?", jobHomepageWarm).Count(&locks).Error)
	assert.Equal(t, int64(1), locks)
}

func TestScheduler_StartRejectsBadSpec(t *testing.T) {
	db := newServiceDB(t)
	s := NewScheduler(db, config.SchedulerConfig{LogCleanupSpec: "not a spec"}, NewSystemLogService(db, 0), nil)
	assert.Error(t, s.Start())

	ok := NewScheduler(db, config.SchedulerConfig{}, NewSystemLogService(db, 0), nil)
	require.NoError(t, ok.Start())
	ok.Stop()
}
