// Package tasks provides a Redis-backed background task queue. Producers
// enqueue JSON envelopes onto a list; a worker pops and dispatches them to
// registered handlers.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QueueKey is the Redis list holding pending tasks.
const QueueKey = "tasks:queue"

// Task types dispatched by the worker.
const (
	TypeWelcomeEmail      = "email:welcome"
	TypeVerificationEmail = "email:verification"
)

// Task is the envelope stored on the queue.
type Task struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// EmailPayload carries the fields the email handlers need.
type EmailPayload struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// NewWelcomeEmailTask builds a welcome email task for a new account.
func NewWelcomeEmailTask(userID uint, email, name string) Task {
	return newTask(TypeWelcomeEmail, EmailPayload{UserID: userID, Email: email, Name: name})
}

// NewVerificationEmailTask builds a verification confirmation task.
func NewVerificationEmailTask(userID uint, email string) Task {
	return newTask(TypeVerificationEmail, EmailPayload{UserID: userID, Email: email})
}

func newTask(taskType string, payload any) Task {
	raw, _ := json.Marshal(payload)
	return Task{
		ID:         uuid.New().String(),
		Type:       taskType,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Handler processes a single task. A returned error marks the task failed;
// failed tasks are logged and dropped, not retried.
type Handler func(ctx context.Context, task Task) error

// Queue produces tasks and runs the consuming worker.
type Queue struct {
	client   *redis.Client
	handlers map[string]Handler
}

// NewQueue returns a Queue backed by the given Redis client. client may be
// nil; Enqueue then becomes a no-op and the worker refuses to start.
func NewQueue(client *redis.Client) *Queue {
	return &Queue{
		client:   client,
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task type. Must be called before Run.
func (q *Queue) Register(taskType string, h Handler) {
	q.handlers[taskType] = h
}

// Enqueue pushes a task onto the queue. Failures are logged, not returned as
// fatal; callers treat queueing as best-effort.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	if q.client == nil {
		middleware.Logger.DebugContext(ctx, "Task queue disabled, dropping task",
			"task_type", task.Type, "task_id", task.ID)
		return nil
	}

	raw, err := json.Marshal(task)
	if err != nil {
		return err
	}

	if err := q.client.RPush(ctx, QueueKey, raw).Err(); err != nil {
		middleware.Logger.ErrorContext(ctx, "Failed to enqueue task",
			"task_type", task.Type, "task_id", task.ID, "error", err)
		return err
	}

	observability.TasksEnqueued.WithLabelValues(task.Type).Inc()
	if depth, err := q.client.LLen(ctx, QueueKey).Result(); err == nil {
		observability.TaskQueueDepth.Set(float64(depth))
	}
	return nil
}

// Run consumes tasks until ctx is cancelled. Blocking pops use a short
// timeout so cancellation is noticed promptly.
func (q *Queue) Run(ctx context.Context) {
	if q.client == nil {
		middleware.Logger.Warn("Task queue has no Redis client, worker not started")
		return
	}

	middleware.Logger.Info("Task worker started", "queue", QueueKey)
	for {
		select {
		case <-ctx.Done():
			middleware.Logger.Info("Task worker stopped")
			return
		default:
		}

		result, err := q.client.BLPop(ctx, 2*time.Second, QueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			middleware.Logger.ErrorContext(ctx, "Task queue pop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		// BLPop returns [key, value].
		if len(result) < 2 {
			continue
		}
		q.dispatch(ctx, []byte(result[1]))
	}
}

func (q *Queue) dispatch(ctx context.Context, raw []byte) {
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		middleware.Logger.ErrorContext(ctx, "Discarding malformed task", "error", err)
		observability.TasksProcessed.WithLabelValues("unknown", "malformed").Inc()
		return
	}

	handler, ok := q.handlers[task.Type]
	if !ok {
		middleware.Logger.WarnContext(ctx, "No handler for task type",
			"task_type", task.Type, "task_id", task.ID)
		observability.TasksProcessed.WithLabelValues(task.Type, "unhandled").Inc()
		return
	}

	start := time.Now()
	if err := handler(ctx, task); err != nil {
		middleware.Logger.ErrorContext(ctx, "Task failed",
			"task_type", task.Type, "task_id", task.ID, "error", err)
		observability.TasksProcessed.WithLabelValues(task.Type, "failure").Inc()
		return
	}

	middleware.Logger.InfoContext(ctx, "Task completed",
		"task_type", task.Type,
		"task_id", task.ID,
		"duration_ms", time.Since(start).Milliseconds())
	observability.TasksProcessed.WithLabelValues(task.Type, "success").Inc()

	if depth, err := q.client.LLen(ctx, QueueKey).Result(); err == nil {
		observability.TaskQueueDepth.Set(float64(depth))
	}
}
