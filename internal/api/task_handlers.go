package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/taskai/internal/api/auth"
	"github.com/taskai/internal/dateparse"
	"github.com/taskai/internal/tasks"
)

// TaskRequest is the create-task payload. Due accepts natural language the
// same way the chat agent does.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Due         string `json:"due"`
	Recurrence  string `json:"recurrence"`
}

func (s *Server) listTasks(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	includeCompleted := c.QueryParam("include_completed") == "true"
	list, err := s.deps.Tasks.List(c.Request().Context(), userID, includeCompleted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tasks")
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) createTask(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}

	params := tasks.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    tasks.Priority(req.Priority),
	}
	if req.Due != "" {
		due, err := dateparse.Parse(req.Due, time.Now())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unrecognized due date")
		}
		params.DueAt = &due
	}
	if req.Recurrence != "" {
		r := tasks.Recurrence(req.Recurrence)
		if !r.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "recurrence must be daily, weekly or monthly")
		}
		params.Recurrence = &r
	}

	task, err := s.deps.Tasks.Create(c.Request().Context(), userID, params)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create task")
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c echo.Context) error {
	userID, taskID, err := s.taskRequestIDs(c)
	if err != nil {
		return err
	}

	task, err := s.deps.Tasks.Get(c.Request().Context(), taskID, userID)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load task")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) completeTask(c echo.Context) error {
	userID, taskID, err := s.taskRequestIDs(c)
	if err != nil {
		return err
	}

	task, err := s.deps.Tasks.Complete(c.Request().Context(), taskID, userID)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to complete task")
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c echo.Context) error {
	userID, taskID, err := s.taskRequestIDs(c)
	if err != nil {
		return err
	}

	err = s.deps.Tasks.Delete(c.Request().Context(), taskID, userID)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "task not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete task")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) taskRequestIDs(c echo.Context) (userID, taskID uuid.UUID, err error) {
	userID, ok := auth.UserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	taskID, parseErr := uuid.Parse(c.Param("id"))
	if parseErr != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return userID, taskID, nil
}
