package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskai/internal/api/auth"
	"github.com/taskai/internal/chat"
)

// ChatRequest is the submit-turn payload.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the stored assistant message.
type ChatResponse struct {
	Message chat.Message `json:"message"`
}

// ErrorResponse distinguishes the turn failure kinds for callers.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// submitChat runs one chat turn: store the user message, invoke the agent,
// store and return the reply.
func (s *Server) submitChat(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	msg, err := s.deps.Chat.SubmitTurn(c.Request().Context(), userID, req.Message)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, ChatResponse{Message: msg})
}

// ConversationResponse is the read model of the user's conversation.
type ConversationResponse struct {
	ID        string         `json:"id"`
	Messages  []chat.Message `json:"messages"`
	UpdatedAt string         `json:"updated_at"`
}

// getConversation returns the user's conversation and its bounded history.
func (s *Server) getConversation(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	view, err := s.deps.Chat.ConversationView(c.Request().Context(), userID)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, ConversationResponse{
		ID:        view.ConversationID.String(),
		Messages:  view.Messages,
		UpdatedAt: view.UpdatedAt.Format("2006-01-02T15:04:05.999999Z07:00"),
	})
}

// chatErrorResponse maps the turn failure taxonomy onto HTTP statuses: bad
// input 400, agent failures 502, store failures 500. Kinds stay distinct in
// the body so clients can tell "nothing happened" from "reply computed but
// not stored".
func chatErrorResponse(c echo.Context, err error) error {
	var agentErr *chat.AgentError
	var postErr *chat.PostAgentPersistenceError
	var persistErr *chat.PersistenceError

	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Message cannot be empty",
			Kind:  "validation",
		})
	case errors.As(err, &agentErr):
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:     "The assistant could not process your message",
			Kind:      "agent_failure",
			Retryable: true,
		})
	case errors.As(err, &postErr):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Reply was computed but could not be stored",
			Kind:      "post_agent_persistence_failure",
			Retryable: true,
		})
	case errors.As(err, &persistErr):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "Storage is temporarily unavailable",
			Kind:      "persistence_failure",
			Retryable: true,
		})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Kind:  "internal",
		})
	}
}
