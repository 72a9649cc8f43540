// Package cmd defines the CLI commands of the taskai binary.
package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/taskai/internal/agent"
	"github.com/taskai/internal/api"
	"github.com/taskai/internal/api/auth"
	"github.com/taskai/internal/chat"
	"github.com/taskai/internal/config"
	"github.com/taskai/internal/database"
	"github.com/taskai/internal/jobqueue"
	"github.com/taskai/internal/logging"
	"github.com/taskai/internal/tasks"
	"github.com/taskai/internal/users"
)

// ServeCommand returns the CLI command for starting the API server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the TaskAI API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the API server (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logging.Setup(cfg.Log.Level, cfg.Log.Format)

			port := cfg.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			return serve(c.Context, cfg, port)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, port int) error {
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	taskStore := tasks.NewStore(pool)

	queue, err := jobqueue.NewQueue(pool, taskStore)
	if err != nil {
		return err
	}
	if err := queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start job queue: %w", err)
	}
	defer queue.Stop(context.Background())

	taskService := tasks.NewService(taskStore, queue)

	model, err := agent.NewModel(ctx, agent.ModelOptions{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to create agent model: %w", err)
	}

	chatService := chat.NewService(
		chat.NewPGStore(pool),
		agent.NewLangchainFactory(model, taskService, cfg.AI.Temperature),
		chat.Options{
			HistoryLimit: cfg.Chat.HistoryLimit,
			AgentTimeout: cfg.Chat.AgentTimeout,
			Hooks:        chat.LogHooks{},
		},
	)

	server := api.NewServer(port, api.Deps{
		Chat:          chatService,
		Tasks:         taskService,
		Users:         users.NewStore(pool),
		Tokens:        auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry),
		ChatRateLimit: cfg.Chat.RateLimit,
	})

	log.Info().Int("port", port).Str("ai_provider", cfg.AI.Provider).Msg("Starting TaskAI API server")
	return server.Start()
}
