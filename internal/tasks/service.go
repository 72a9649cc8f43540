package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CompletionNotifier is told when a recurring task is completed, so the next
// occurrence can be scheduled. Implemented by the job queue.
type CompletionNotifier interface {
	TaskCompleted(ctx context.Context, task Task) error
}

// Service wraps the store and wires task completion to recurrence
// scheduling. REST handlers and the agent's tools both go through it.
type Service struct {
	store    *Store
	notifier CompletionNotifier
}

// NewService creates a task service. notifier may be nil, in which case
// recurring tasks get no follow-up occurrence.
func NewService(store *Store, notifier CompletionNotifier) *Service {
	return &Service{store: store, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (Task, error) {
	return s.store.Create(ctx, userID, params)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]Task, error) {
	return s.store.List(ctx, userID, includeCompleted)
}

func (s *Service) Get(ctx context.Context, taskID, userID uuid.UUID) (Task, error) {
	return s.store.Get(ctx, taskID, userID)
}

func (s *Service) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	return s.store.Delete(ctx, taskID, userID)
}

// Complete marks the task done and, for recurring tasks completed for the
// first time, schedules the next occurrence. A scheduling failure does not
// fail the completion; it is logged and the queue's retry machinery is
// expected to be the real safety net.
func (s *Service) Complete(ctx context.Context, taskID, userID uuid.UUID) (Task, error) {
	before, err := s.store.Get(ctx, taskID, userID)
	if err != nil {
		return Task{}, err
	}

	task, err := s.store.Complete(ctx, taskID, userID)
	if err != nil {
		return Task{}, err
	}

	if !before.Completed && task.Recurrence != nil && s.notifier != nil {
		if err := s.notifier.TaskCompleted(ctx, task); err != nil {
			log.Warn().
				Err(err).
				Str("task_id", task.ID.String()).
				Msg("Failed to schedule next occurrence for recurring task")
		}
	}

	return task, nil
}
