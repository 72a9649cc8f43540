/*
Package jobqueue provides a River-based job queue for task recurrence:
completing a recurring task enqueues a job that creates the next occurrence.

River's own schema must be migrated before first start (river migrate-up
against the application database).
*/
package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/rs/zerolog/log"

	"github.com/taskai/internal/tasks"
)

const (
	queueMaxWorkers = 5
	jobMaxRetries   = 5
	jobTimeout      = 30 * time.Second
)

// RecurrenceJobArgs identifies the completed recurring task whose next
// occurrence should be created.
type RecurrenceJobArgs struct {
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
}

// Kind returns the job kind for River
func (RecurrenceJobArgs) Kind() string {
	return "task_recurrence"
}

// RecurrenceWorker creates the next occurrence of a completed recurring task.
type RecurrenceWorker struct {
	river.WorkerDefaults[RecurrenceJobArgs]
	store *tasks.Store
}

func (w *RecurrenceWorker) Timeout(*river.Job[RecurrenceJobArgs]) time.Duration {
	return jobTimeout
}

// Work loads the completed task and inserts its successor. The successor's
// due date advances by the recurrence interval from the previous due date,
// or from the completion time when the task had no due date.
func (w *RecurrenceWorker) Work(ctx context.Context, job *river.Job[RecurrenceJobArgs]) error {
	task, err := w.store.Get(ctx, job.Args.TaskID, job.Args.UserID)
	if err != nil {
		return fmt.Errorf("failed to load completed task: %w", err)
	}

	if task.Recurrence == nil {
		log.Warn().
			Str("task_id", task.ID.String()).
			Msg("Recurrence job for non-recurring task, skipping")
		return nil
	}

	base := time.Now().UTC()
	if task.DueAt != nil {
		base = *task.DueAt
	}
	nextDue := task.Recurrence.NextDue(base)

	next, err := w.store.Create(ctx, task.UserID, tasks.CreateParams{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		DueAt:       &nextDue,
		Recurrence:  task.Recurrence,
	})
	if err != nil {
		return fmt.Errorf("failed to create next occurrence: %w", err)
	}

	log.Info().
		Str("task_id", task.ID.String()).
		Str("next_task_id", next.ID.String()).
		Time("next_due", nextDue).
		Msg("Created next occurrence for recurring task")
	return nil
}

// Queue manages the River job queue.
type Queue struct {
	client *river.Client[pgx.Tx]
}

// NewQueue creates the queue and registers its workers on the shared pool.
func NewQueue(pool *pgxpool.Pool, store *tasks.Store) (*Queue, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, &RecurrenceWorker{store: store})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: queueMaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Queue{client: client}, nil
}

// Start starts the job queue workers
func (q *Queue) Start(ctx context.Context) error {
	return q.client.Start(ctx)
}

// Stop stops the job queue workers
func (q *Queue) Stop(ctx context.Context) error {
	return q.client.Stop(ctx)
}

// TaskCompleted enqueues the recurrence job for a completed recurring task.
// Implements tasks.CompletionNotifier.
func (q *Queue) TaskCompleted(ctx context.Context, task tasks.Task) error {
	_, err := q.client.Insert(ctx, RecurrenceJobArgs{TaskID: task.ID, UserID: task.UserID},
		&river.InsertOpts{MaxAttempts: jobMaxRetries})
	if err != nil {
		return fmt.Errorf("failed to queue recurrence job: %w", err)
	}
	return nil
}
