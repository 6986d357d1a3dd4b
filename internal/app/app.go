// Package app wires the application together: database, settings cache,
// model client, tool registry, conversation engine and HTTP server.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satkam/partsbot/db"
	"github.com/satkam/partsbot/internal/api"
	"github.com/satkam/partsbot/internal/chat"
	"github.com/satkam/partsbot/internal/config"
	"github.com/satkam/partsbot/internal/llm"
	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/prompt"
	"github.com/satkam/partsbot/internal/session"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
	"github.com/satkam/partsbot/internal/tools"
	"github.com/satkam/partsbot/internal/whatsapp"
)

// App is the application container.
type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Store    *store.Store
	Settings *settings.Cache
	Engine   *chat.Engine
	Sender   *whatsapp.Sender
	Server   *api.Server

	logger log.Logger
}

// Setup creates and initializes the application. Migrations run before
// the pool opens its full connection set. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := store.OpenPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}
	a.Pool = pool
	a.Store = store.New(pool, logger)

	a.Settings = settings.New(a.Store, settings.DefaultTTL, logger)

	completer := llm.NewClient(llm.ClientConfig{APIKey: cfg.AnthropicKey, Logger: logger})
	sessions := session.New(a.Store, logger)
	registry := tools.NewRegistry(a.Store, a.Store, a.Store, a.Settings, logger)
	prompts := prompt.NewBuilder(a.Settings)

	engine, err := chat.New(completer, sessions, registry, prompts, a.Settings, chat.Config{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		MaxRounds: cfg.MaxToolRounds,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	a.Engine = engine

	a.Sender = whatsapp.NewSender(cfg.WhatsAppAPIURL, cfg.WhatsAppToken, logger)

	server, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Engine:      engine,
		Sender:      a.Sender,
		Store:       a.Store,
		Settings:    a.Settings,
		Pool:        pool,
		VerifyToken: cfg.WebhookVerifyToken,
		AdminToken:  cfg.AdminToken,
		RateBurst:   cfg.RateBurst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP server: %w", err)
	}
	a.Server = server

	return a, nil
}

// Close releases all resources.
func (a *App) Close() error {
	if a.Pool != nil {
		a.Pool.Close()
		a.logger.Info("database pool closed")
	}
	return nil
}
