package agent

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolboxDefinitions(t *testing.T) {
	tb := newTaskToolbox(nil, uuid.New())

	defs := tb.definitions()
	require.Len(t, defs, 3)

	names := make([]string, len(defs))
	for i, def := range defs {
		assert.Equal(t, "function", def.Type)
		names[i] = def.Function.Name
	}
	assert.ElementsMatch(t, []string{"list_tasks", "create_task", "complete_task"}, names)
}

func TestDispatchUnknownTool(t *testing.T) {
	tb := newTaskToolbox(nil, uuid.New())

	result := tb.dispatch(context.Background(), "self_destruct", "{}")
	assert.Contains(t, result, "unknown tool")
}

func TestDispatchArgumentValidation(t *testing.T) {
	tb := newTaskToolbox(nil, uuid.New())
	ctx := context.Background()

	// All of these fail before any store access.
	assert.Contains(t, tb.dispatch(ctx, "create_task", "not json"), "invalid arguments")
	assert.Contains(t, tb.dispatch(ctx, "create_task", `{"description":"no title"}`), "title is required")
	assert.Contains(t, tb.dispatch(ctx, "create_task", `{"title":"t","due":"whenever"}`), "could not understand due date")
	assert.Contains(t, tb.dispatch(ctx, "create_task", `{"title":"t","recurrence":"hourly"}`), "invalid recurrence")
	assert.Contains(t, tb.dispatch(ctx, "complete_task", `{"task_id":"not-a-uuid"}`), "invalid task id")
}
