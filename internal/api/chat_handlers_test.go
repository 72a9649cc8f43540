package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskai/internal/api/auth"
	"github.com/taskai/internal/chat"
)

// fakeChat scripts the conversation core for handler tests.
type fakeChat struct {
	submitErr error
	lastUser  uuid.UUID
	lastText  string
}

func (f *fakeChat) SubmitTurn(_ context.Context, userID uuid.UUID, text string) (chat.Message, error) {
	f.lastUser, f.lastText = userID, text

	if strings.TrimSpace(text) == "" {
		return chat.Message{}, chat.ErrEmptyMessage
	}
	if f.submitErr != nil {
		return chat.Message{}, f.submitErr
	}
	return chat.Message{
		ID:        uuid.New(),
		Role:      chat.RoleAssistant,
		Content:   "Hi there",
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (f *fakeChat) ConversationView(_ context.Context, userID uuid.UUID) (chat.View, error) {
	return chat.View{
		ConversationID: uuid.New(),
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "Hello"},
			{Role: chat.RoleAssistant, Content: "Hi there"},
		},
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func testServer(t *testing.T, chatSvc ChatService) (*Server, string) {
	t.Helper()

	tokens := auth.NewTokenService("test-secret", time.Hour)
	server := NewServer(0, Deps{
		Chat:          chatSvc,
		Tokens:        tokens,
		ChatRateLimit: 1000,
	})

	token, _, err := tokens.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)
	return server, token
}

func doJSON(server *Server, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestSubmitChatSuccess(t *testing.T) {
	fake := &fakeChat{}
	server, token := testServer(t, fake)

	rec := doJSON(server, http.MethodPost, "/api/v1/chat", token, `{"message":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chat.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "Hi there", resp.Message.Content)
	assert.Equal(t, "Hello", fake.lastText)
}

func TestSubmitChatEmptyMessage(t *testing.T) {
	server, token := testServer(t, &fakeChat{})

	rec := doJSON(server, http.MethodPost, "/api/v1/chat", token, `{"message":"   "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation", resp.Kind)
}

func TestSubmitChatAgentFailure(t *testing.T) {
	fake := &fakeChat{submitErr: &chat.AgentError{Err: errors.New("upstream timeout")}}
	server, token := testServer(t, fake)

	rec := doJSON(server, http.MethodPost, "/api/v1/chat", token, `{"message":"Hello"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "agent_failure", resp.Kind)
	assert.True(t, resp.Retryable)
}

func TestSubmitChatPersistenceFailures(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantKind string
	}{
		{
			name:     "before agent",
			err:      &chat.PersistenceError{Op: "store user message", Err: errors.New("db down")},
			wantKind: "persistence_failure",
		},
		{
			name:     "after agent",
			err:      &chat.PostAgentPersistenceError{Err: errors.New("db down")},
			wantKind: "post_agent_persistence_failure",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server, token := testServer(t, &fakeChat{submitErr: tc.err})

			rec := doJSON(server, http.MethodPost, "/api/v1/chat", token, `{"message":"Hello"}`)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantKind, resp.Kind)
		})
	}
}

func TestSubmitChatRequiresAuth(t *testing.T) {
	server, _ := testServer(t, &fakeChat{})

	rec := doJSON(server, http.MethodPost, "/api/v1/chat", "", `{"message":"Hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(server, http.MethodPost, "/api/v1/chat", "bogus-token", `{"message":"Hello"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetConversation(t *testing.T) {
	server, token := testServer(t, &fakeChat{})

	rec := doJSON(server, http.MethodGet, "/api/v1/conversations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, chat.RoleUser, resp.Messages[0].Role)
	assert.Equal(t, chat.RoleAssistant, resp.Messages[1].Role)
	assert.NotEmpty(t, resp.ID)
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := testServer(t, &fakeChat{})

	rec := doJSON(server, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
