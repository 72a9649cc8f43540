package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTaskNotFound is returned when a task does not exist or belongs to a
// different user.
var ErrTaskNotFound = errors.New("task not found")

// CreateParams carries the caller-supplied fields for a new task.
type CreateParams struct {
	Title       string
	Description string
	Priority    Priority
	DueAt       *time.Time
	Recurrence  *Recurrence
}

// Store handles database operations for tasks.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new task store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const taskColumns = `id, user_id, title, description, priority, due_at, recurrence,
	completed, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	var recurrence *string
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority,
		&t.DueAt, &recurrence, &t.Completed, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Task{}, err
	}
	if recurrence != nil {
		r := Recurrence(*recurrence)
		t.Recurrence = &r
	}
	return t, nil
}

// Create inserts a new task for the user.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (Task, error) {
	if params.Priority == "" {
		params.Priority = PriorityMedium
	}

	var recurrence *string
	if params.Recurrence != nil {
		v := string(*params.Recurrence)
		recurrence = &v
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, title, description, priority, due_at, recurrence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+taskColumns,
		uuid.New(), userID, params.Title, params.Description, string(params.Priority),
		params.DueAt, recurrence)

	task, err := scanTask(row)
	if err != nil {
		return Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

// List returns the user's tasks, pending first, then by due date and
// creation time.
func (s *Store) List(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1`
	if !includeCompleted {
		query += ` AND completed = FALSE`
	}
	query += ` ORDER BY completed ASC, due_at ASC NULLS LAST, created_at ASC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	// Initialize as empty slice so JSON encodes to [] rather than null
	result := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return result, nil
}

// Get returns one task scoped to the owning user.
func (s *Store) Get(ctx context.Context, taskID, userID uuid.UUID) (Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, taskID, userID)

	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// Complete marks a task done. Completing an already-completed task is a
// no-op that returns the current record.
func (s *Store) Complete(ctx context.Context, taskID, userID uuid.UUID) (Task, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = TRUE,
		    completed_at = COALESCE(completed_at, now()),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		taskID, userID)

	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("failed to complete task: %w", err)
	}
	return task, nil
}

// Delete removes a task scoped to the owning user.
func (s *Store) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND user_id = $2
	`, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
