package jobqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskai/internal/database"
	"github.com/taskai/internal/tasks"
)

func testSetup(t *testing.T) (*tasks.Store, uuid.UUID) {
	t.Helper()

	// Skip if running in CI without database
	if testing.Short() {
		t.Skip("Skipping database integration test")
	}

	pool, err := database.Connect(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, database.Migrate(context.Background(), pool))

	userID := uuid.New()
	_, err = pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, 'x')
	`, userID, fmt.Sprintf("jobqueue-test-%s@example.com", userID))
	require.NoError(t, err)

	cleanupPool(t, pool, userID)
	return tasks.NewStore(pool), userID
}

func cleanupPool(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})
}

func TestRecurrenceWorkerCreatesNextOccurrence(t *testing.T) {
	store, userID := testSetup(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	recurrence := tasks.RecurWeekly
	task, err := store.Create(ctx, userID, tasks.CreateParams{
		Title:      "water plants",
		Priority:   tasks.PriorityLow,
		DueAt:      &due,
		Recurrence: &recurrence,
	})
	require.NoError(t, err)
	_, err = store.Complete(ctx, task.ID, userID)
	require.NoError(t, err)

	worker := &RecurrenceWorker{store: store}
	err = worker.Work(ctx, &river.Job[RecurrenceJobArgs]{
		Args: RecurrenceJobArgs{TaskID: task.ID, UserID: userID},
	})
	require.NoError(t, err)

	list, err := store.List(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, list, 1, "a pending next occurrence should exist")

	next := list[0]
	assert.Equal(t, "water plants", next.Title)
	assert.Equal(t, tasks.PriorityLow, next.Priority)
	require.NotNil(t, next.DueAt)
	assert.True(t, next.DueAt.Equal(due.AddDate(0, 0, 7)))
	require.NotNil(t, next.Recurrence)
	assert.Equal(t, tasks.RecurWeekly, *next.Recurrence)
}

func TestRecurrenceWorkerSkipsNonRecurringTask(t *testing.T) {
	store, userID := testSetup(t)
	ctx := context.Background()

	task, err := store.Create(ctx, userID, tasks.CreateParams{Title: "one-shot"})
	require.NoError(t, err)
	_, err = store.Complete(ctx, task.ID, userID)
	require.NoError(t, err)

	worker := &RecurrenceWorker{store: store}
	err = worker.Work(ctx, &river.Job[RecurrenceJobArgs]{
		Args: RecurrenceJobArgs{TaskID: task.ID, UserID: userID},
	})
	require.NoError(t, err)

	list, err := store.List(ctx, userID, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecurrenceJobKind(t *testing.T) {
	assert.Equal(t, "task_recurrence", RecurrenceJobArgs{}.Kind())
}
