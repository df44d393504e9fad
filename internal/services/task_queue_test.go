package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/azayd/website/backend/internal/config"
)

func TestTaskTypeConfirmation_Constant(t *testing.T) {
	if TaskTypeConfirmation != "application:confirmation" {
		t.Errorf("TaskTypeConfirmation = %q, expected %q", TaskTypeConfirmation, "application:confirmation")
	}
}

func TestNewTaskQueue_RedisDisabled(t *testing.T) {
	queue := NewTaskQueue(&config.RedisConfig{Enabled: false})
	if queue.IsAsync() {
		t.Error("queue should be synchronous when Redis is disabled")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	queue := NewSyncQueue()
	if queue.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
}

func TestSyncQueue_EnqueueWithoutProcessor(t *testing.T) {
	queue := NewSyncQueue()
	if err := queue.Enqueue(&ConfirmationTask{ApplicationID: 1}); err != nil {
		t.Errorf("Enqueue without processor should not error, got %v", err)
	}
}

func TestSyncQueue_CloseWaitsForTasks(t *testing.T) {
	queue := NewSyncQueue()

	var processed atomic.Int32
	var lastID atomic.Uint32
	queue.SetProcessor(func(ctx context.Context, task *ConfirmationTask) error {
		processed.Add(1)
		lastID.Store(uint32(task.ApplicationID))
		return nil
	})

	for i := uint(1); i <= 3; i++ {
		if err := queue.Enqueue(&ConfirmationTask{ApplicationID: i}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if err := queue.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := processed.Load(); got != 3 {
		t.Errorf("processed = %d, expected 3", got)
	}
	if lastID.Load() == 0 {
		t.Error("processor should have seen an application id")
	}
}

func TestAsyncQueue_IsAsync(t *testing.T) {
	queue := &AsyncQueue{}
	if !queue.IsAsync() {
		t.Error("AsyncQueue.IsAsync() should return true")
	}
}

func TestDecodeConfirmationTask(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantID  uint
		wantErr bool
	}{
		{"valid", `{"application_id":7}`, 7, false},
		{"zero id", `{"application_id":0}`, 0, true},
		{"malformed", `{"application_id":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := decodeConfirmationTask([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && task.ApplicationID != tt.wantID {
				t.Errorf("ApplicationID = %d, expected %d", task.ApplicationID, tt.wantID)
			}
		})
	}
}
