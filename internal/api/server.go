// Package api exposes the HTTP surface: auth, tasks, and the chat
// endpoints backed by the conversation core.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/taskai/internal/api/auth"
	"github.com/taskai/internal/chat"
	"github.com/taskai/internal/tasks"
	"github.com/taskai/internal/users"
)

// ChatService is the slice of the conversation core the API consumes.
type ChatService interface {
	SubmitTurn(ctx context.Context, userID uuid.UUID, text string) (chat.Message, error)
	ConversationView(ctx context.Context, userID uuid.UUID) (chat.View, error)
}

// Deps carries the services the server routes to.
type Deps struct {
	Chat   ChatService
	Tasks  *tasks.Service
	Users  *users.Store
	Tokens *auth.TokenService

	// Requests per second allowed on the chat endpoint, per client IP.
	ChatRateLimit float64
}

// Server represents the API server
type Server struct {
	echo *echo.Echo
	port int
	deps Deps
}

// NewServer creates a new API server
func NewServer(port int, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo: e,
		port: port,
		deps: deps,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 group
	v1 := s.echo.Group("/api/v1")

	v1.POST("/auth/register", s.register)
	v1.POST("/auth/login", s.login)

	protected := v1.Group("", auth.Middleware(s.deps.Tokens))

	chatLimit := s.deps.ChatRateLimit
	if chatLimit <= 0 {
		chatLimit = 5
	}
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(chatLimit)))

	protected.POST("/chat", s.submitChat, limiter)
	protected.GET("/conversations", s.getConversation)

	protected.GET("/tasks", s.listTasks)
	protected.POST("/tasks", s.createTask)
	protected.GET("/tasks/:id", s.getTask)
	protected.DELETE("/tasks/:id", s.deleteTask)
	protected.POST("/tasks/:id/complete", s.completeTask)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start begins the API server and blocks until interrupted.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil && err != http.ErrServerClosed {
			s.echo.Logger.Fatal("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.echo.Shutdown(ctx)
}
