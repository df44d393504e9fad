package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/azayd/website/backend/internal/config"
	"github.com/azayd/website/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

// Worker processes async tasks from the queue
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	processor TaskProcessor
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewWorker creates a new worker instance, or nil when Redis is disabled.
func NewWorker(cfg *config.RedisConfig) *Worker {
	if !cfg.Enabled {
		return nil
	}

	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warnf("[Worker] Error processing task %s: %v", task.Type(), err)
			}),
		},
	)

	return &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

// SetProcessor sets the function to process confirmation tasks
func (w *Worker) SetProcessor(processor TaskProcessor) {
	w.processor = processor
}

// Start begins processing tasks
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.mux.HandleFunc(TaskTypeConfirmation, w.handleConfirmationTask)

	w.running = true
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		logger.Infof("[Worker] Starting async worker...")
		if err := w.server.Run(w.mux); err != nil {
			logger.Errorf("[Worker] Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	logger.Infof("[Worker] Shutting down...")
	w.server.Shutdown()
	w.running = false
	w.wg.Wait()
	logger.Infof("[Worker] Shutdown complete")
}

func (w *Worker) handleConfirmationTask(ctx context.Context, t *asynq.Task) error {
	task, err := decodeConfirmationTask(t.Payload())
	if err != nil {
		logger.Errorf("[Worker] Failed to unmarshal task: %v", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logger.Infof("[Worker] Processing confirmation task: application_id=%d", task.ApplicationID)

	if w.processor == nil {
		logger.Warnf("[Worker] Warning: no processor set")
		return nil
	}

	return w.processor(ctx, task)
}

func decodeConfirmationTask(payload []byte) (*ConfirmationTask, error) {
	var task ConfirmationTask
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	if task.ApplicationID == 0 {
		return nil, fmt.Errorf("confirmation task without application id")
	}
	return &task, nil
}
