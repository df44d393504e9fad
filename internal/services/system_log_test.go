package services

import (
	"testing"
	"time"

	"github.com/azayd/website/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLog_Persists(t *testing.T) {
	db := newServiceDB(t)
	uid := uint(7)

	LogWarning("upload", "rejected", "File type not allowed", &uid, "10.0.0.1", "agent", map[string]string{"file": "a.exe"})

	var entry models.SystemLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "warning", entry.Level)
	assert.Equal(t, "upload", entry.Module)
	assert.Equal(t, "rejected", entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uid, *entry.UserID)
	assert.JSONEq(t, `{"file":"a.exe"}`, entry.Extra)
}

func TestWriteLog_WithoutDatabase(t *testing.T) {
	InitSystemLogger(nil)
	assert.NotPanics(t, func() {
		LogError("proxy", "failed", "boom", nil, "", "", nil)
	})
}

func TestSystemLogService_List(t *testing.T) {
	db := newServiceDB(t)
	LogInfo("auth", "login", "Admin logged in", nil, "", "", nil)
	LogError("email", "confirmation_failed", "smtp down", nil, "", "", nil)
	LogInfo("email", "confirmation_sent", "sent", nil, "", "", nil)
	svc := NewSystemLogService(db, 0)

	all, err := svc.List(&SystemLogListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, 20, all.PageSize)

	errs, err := svc.List(&SystemLogListRequest{Level: "error"})
	require.NoError(t, err)
	require.Len(t, errs.Items, 1)
	assert.Equal(t, "confirmation_failed", errs.Items[0].Action)

	byAction, err := svc.List(&SystemLogListRequest{Module: "email", Action: "confirmation"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byAction.Total)

	modules, err := svc.GetModules()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"auth", "email"}, modules)
}

func TestSystemLogService_Cleanup(t *testing.T) {
	db := newServiceDB(t)
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "m", Action: "old", CreatedAt: time.Now().AddDate(0, 0, -40)}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Level: "info", Module: "m", Action: "new", CreatedAt: time.Now()}).Error)
	svc := NewSystemLogService(db, 0)
	assert.Equal(t, 30, svc.RetentionDays())

	n, err := svc.CleanupOldLogs(0)
	require.NoError(t, err)
	assert.Zero(t, n, "non-positive retention keeps everything")

	svc.RunCleanup()
	var actions []string
	require.NoError(t, db.Model(&models.SystemLog{}).Pluck("action", &actions).Error)
	assert.Equal(t, []string{"new"}, actions)
}
