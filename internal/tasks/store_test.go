package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskai/internal/database"
)

func testStore(t *testing.T) (*Store, uuid.UUID) {
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
	`, userID, fmt.Sprintf("tasks-store-test-%s@example.com", userID))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = pool.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	})

	return NewStore(pool), userID
}

func TestStoreCreateAndGet(t *testing.T) {
	store, userID := testStore(t)
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	recurrence := RecurWeekly
	created, err := store.Create(ctx, userID, CreateParams{
		Title:      "water plants",
		Priority:   PriorityHigh,
		DueAt:      &due,
		Recurrence: &recurrence,
	})
	require.NoError(t, err)
	assert.False(t, created.Completed)

	got, err := store.Get(ctx, created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "water plants", got.Title)
	assert.Equal(t, PriorityHigh, got.Priority)
	require.NotNil(t, got.DueAt)
	assert.True(t, got.DueAt.Equal(due))
	require.NotNil(t, got.Recurrence)
	assert.Equal(t, RecurWeekly, *got.Recurrence)
}

func TestStoreDefaultPriority(t *testing.T) {
	store, userID := testStore(t)

	task, err := store.Create(context.Background(), userID, CreateParams{Title: "no priority"})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, task.Priority)
}

func TestStoreGetScopedToOwner(t *testing.T) {
	store, userID := testStore(t)
	ctx := context.Background()

	task, err := store.Create(ctx, userID, CreateParams{Title: "private"})
	require.NoError(t, err)

	_, err = store.Get(ctx, task.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStoreCompleteIsIdempotent(t *testing.T) {
	store, userID := testStore(t)
	ctx := context.Background()

	task, err := store.Create(ctx, userID, CreateParams{Title: "done soon"})
	require.NoError(t, err)

	first, err := store.Complete(ctx, task.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	second, err := store.Complete(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.True(t, second.CompletedAt.Equal(*first.CompletedAt),
		"completing twice must not move completed_at")
}

func TestStoreListFiltersCompleted(t *testing.T) {
	store, userID := testStore(t)
	ctx := context.Background()

	pending, err := store.Create(ctx, userID, CreateParams{Title: "pending"})
	require.NoError(t, err)
	done, err := store.Create(ctx, userID, CreateParams{Title: "done"})
	require.NoError(t, err)
	_, err = store.Complete(ctx, done.ID, userID)
	require.NoError(t, err)

	list, err := store.List(ctx, userID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	all, err := store.List(ctx, userID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStoreDelete(t *testing.T) {
	store, userID := testStore(t)
	ctx := context.Background()

	task, err := store.Create(ctx, userID, CreateParams{Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, task.ID, userID))
	assert.ErrorIs(t, store.Delete(ctx, task.ID, userID), ErrTaskNotFound)
}
