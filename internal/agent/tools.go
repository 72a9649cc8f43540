package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/taskai/internal/dateparse"
	"github.com/taskai/internal/tasks"
)

// taskToolbox exposes one user's task list to the model. Tool errors are
// reported back to the model as text so it can recover in conversation
// instead of failing the whole turn.
type taskToolbox struct {
	store  *tasks.Service
	userID uuid.UUID
}

func newTaskToolbox(store *tasks.Service, userID uuid.UUID) *taskToolbox {
	return &taskToolbox{store: store, userID: userID}
}

func (tb *taskToolbox) definitions() []llms.Tool {
	return []llms.Tool{
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "list_tasks",
				Description: "List the user's tasks. By default only pending tasks are returned.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"include_completed": map[string]any{
							"type":        "boolean",
							"description": "Also include completed tasks",
						},
					},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "create_task",
				Description: "Create a new task for the user.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short task title",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "Optional longer description",
						},
						"priority": map[string]any{
							"type": "string",
							"enum": []string{"low", "medium", "high"},
						},
						"due": map[string]any{
							"type":        "string",
							"description": "Due date, natural language allowed (e.g. 'tomorrow', 'next friday', '2026-09-15')",
						},
						"recurrence": map[string]any{
							"type": "string",
							"enum": []string{"daily", "weekly", "monthly"},
						},
					},
					"required": []string{"title"},
				},
			},
		},
		{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        "complete_task",
				Description: "Mark a task as completed.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{
							"type":        "string",
							"description": "ID of the task to complete",
						},
					},
					"required": []string{"task_id"},
				},
			},
		},
	}
}

// dispatch executes a named tool and returns its result as a string for the
// model.
func (tb *taskToolbox) dispatch(ctx context.Context, name, arguments string) string {
	result, err := tb.call(ctx, name, arguments)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return result
}

func (tb *taskToolbox) call(ctx context.Context, name, arguments string) (string, error) {
	switch name {
	case "list_tasks":
		var args struct {
			IncludeCompleted bool `json:"include_completed"`
		}
		if arguments != "" {
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("invalid arguments: %w", err)
			}
		}
		list, err := tb.store.List(ctx, tb.userID, args.IncludeCompleted)
		if err != nil {
			return "", err
		}
		return marshalResult(list)

	case "create_task":
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			Due         string `json:"due"`
			Recurrence  string `json:"recurrence"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		if args.Title == "" {
			return "", fmt.Errorf("title is required")
		}

		params := tasks.CreateParams{
			Title:       args.Title,
			Description: args.Description,
			Priority:    tasks.Priority(args.Priority),
		}
		if args.Due != "" {
			due, err := dateparse.Parse(args.Due, time.Now())
			if err != nil {
				return "", fmt.Errorf("could not understand due date %q: %w", args.Due, err)
			}
			params.DueAt = &due
		}
		if args.Recurrence != "" {
			r := tasks.Recurrence(args.Recurrence)
			if !r.Valid() {
				return "", fmt.Errorf("invalid recurrence %q", args.Recurrence)
			}
			params.Recurrence = &r
		}

		task, err := tb.store.Create(ctx, tb.userID, params)
		if err != nil {
			return "", err
		}
		return marshalResult(task)

	case "complete_task":
		var args struct {
			TaskID string `json:"task_id"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		taskID, err := uuid.Parse(args.TaskID)
		if err != nil {
			return "", fmt.Errorf("invalid task id %q", args.TaskID)
		}
		task, err := tb.store.Complete(ctx, taskID, tb.userID)
		if err != nil {
			return "", err
		}
		return marshalResult(task)

	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode tool result: %w", err)
	}
	return string(data), nil
}
