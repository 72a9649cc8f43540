// Package tasks provides task records and their postgres store. Tasks are
// mutated both over the REST API and by the chat agent's tools.
package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels for a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Recurrence intervals. A nil recurrence means the task is one-shot.
type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

// NextDue returns the due date of the occurrence following due.
func (r Recurrence) NextDue(due time.Time) time.Time {
	switch r {
	case RecurDaily:
		return due.AddDate(0, 0, 1)
	case RecurWeekly:
		return due.AddDate(0, 0, 7)
	case RecurMonthly:
		return due.AddDate(0, 1, 0)
	}
	return due
}

// Valid reports whether r is a known interval.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Task is a user's todo item.
type Task struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    Priority    `json:"priority"`
	DueAt       *time.Time  `json:"due_at,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	Completed   bool        `json:"completed"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
