package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/adapter/tool"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/credentials"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/persistence"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/server"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/setup"
	infraslack "github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/slack"
	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/usecase/send"
)

var version = "dev"

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (optional)")
		runSetup   = flag.Bool("setup", false, "run interactive credential setup and exit")
		transport  = flag.String("transport", "", "override the configured transport (stdio or http)")
		addr       = flag.String("addr", "", "override the configured HTTP listen address")
	)
	flag.Parse()

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logLevel := &slog.LevelVar{}
	logger := setupLogger(cfg.Logging, logLevel)

	store := credentials.NewStore()

	if *runSetup {
		flow := setup.NewFlow(store, nil, os.Stdout)
		if err := flow.Run(ctx); err != nil {
			if errors.Is(err, setup.ErrAborted) {
				logger.Info("setup aborted, nothing stored")
				return
			}
			logger.Error("setup failed", "error", err)
			os.Exit(1)
		}
		if *configPath != "" {
			if err := config.WriteDefault(*configPath); err != nil {
				logger.Info("skipped config scaffold", "reason", err)
			} else {
				logger.Info("wrote starter config", "path", *configPath)
			}
		}
		return
	}

	token, err := store.APIToken()
	if err != nil {
		if errors.Is(err, credentials.ErrNotConfigured) {
			logger.Error("no Slack credentials found; run with -setup or set SLACK_API_TOKEN")
		} else {
			logger.Error("failed to read credentials", "error", err)
		}
		os.Exit(1)
	}

	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	records, dbCloser, err := persistence.NewMessageRecordRepository(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "type", cfg.Storage.Type)
		os.Exit(1)
	}
	instrumented := persistence.NewInstrumentedRepository(records, telemetry.Metrics)

	client := infraslack.NewClient(token, cfg.Slack.APIURL)
	verifyIdentity(ctx, client, store, cfg, logger)

	sender := send.NewUseCase(infraslack.NewResilientClient(client), instrumented)

	// The live config pointer feeds reloadable values (default channel, log
	// level) to components without a restart.
	var live atomic.Pointer[config.Config]
	live.Store(cfg)

	registry := tool.NewRegistry(client, sender,
		func() string { return live.Load().Slack.DefaultChannel },
		telemetry.Metrics, logger)

	srv := server.New(cfg.Server, version, registry.Tools(), logger)

	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, cfg, logger, func(next *config.Config) {
				live.Store(next)
				logLevel.Set(parseLevel(next.Logging.Level))
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("starting slack-mcp-bridge",
		"version", version,
		"transport", cfg.Server.Transport,
		"storage", cfg.Storage.Type,
	)

	runErr := srv.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down telemetry", "error", err)
	}
	if err := dbCloser.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
	}

	if runErr != nil {
		logger.Error("server error", "error", runErr)
		os.Exit(1)
	}
	logger.Info("slack-mcp-bridge stopped")
}

// verifyIdentity confirms the token with auth.test and warns when the
// workspace differs from the one stored at setup time. Failures here are
// logged, not fatal; the first tool call will surface them to the agent.
func verifyIdentity(ctx context.Context, client *infraslack.Client, store *credentials.Store, cfg *config.Config, logger *slog.Logger) {
	authCtx, cancel := context.WithTimeout(ctx, cfg.Slack.Timeout)
	defer cancel()

	resp, err := client.AuthTest(authCtx)
	if err != nil {
		logger.Warn("could not verify Slack credentials", "error", err)
		return
	}
	logger.Info("authenticated with Slack",
		"user", resp.User,
		"team", resp.Team,
	)

	if wantTeam, err := store.WorkspaceID(); err == nil && wantTeam != resp.TeamID {
		logger.Warn("token belongs to a different workspace than configured",
			"configured", wantTeam,
			"actual", resp.TeamID,
		)
	}
}

// setupLogger creates the logger. Logs go to stderr; on the stdio transport
// stdout carries the MCP protocol stream.
func setupLogger(cfg config.LoggingConfig, level *slog.LevelVar) *slog.Logger {
	level.Set(parseLevel(cfg.Level))

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
