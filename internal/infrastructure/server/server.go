// Package server hosts the MCP server over stdio or streamable HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qj0r9j0vc2/slack-mcp-bridge/internal/infrastructure/config"
)

// instructions is surfaced to MCP clients at initialization so the agent
// knows which tools to reach for.
const instructions = `This server bridges an AI agent to a Slack workspace.

Use the send_* composer tools to post richly formatted Block Kit messages
(notifications, lists, code snippets, announcements, interactive buttons,
select menus) instead of assembling Block Kit JSON yourself. send_message
posts plain mrkdwn text. Every send tool returns a receipt with the channel
and ts of the delivered message; pass those to update_message or
delete_message to change it later, and use list_sent_messages to recall
what this server has already posted.

Read tools (list_channels, get_channel_history, search_messages, ...) never
modify the workspace.`

// Server wraps the MCP server and runs it on the configured transport.
type Server struct {
	mcp    *mcpsrv.MCPServer
	cfg    config.ServerConfig
	logger *slog.Logger
}

// New creates a server exposing the given tools.
func New(cfg config.ServerConfig, version string, tools []mcpsrv.ServerTool, logger *slog.Logger) *Server {
	mcp := mcpsrv.NewMCPServer("slack-mcp-bridge", version,
		mcpsrv.WithInstructions(instructions),
		mcpsrv.WithToolCapabilities(false),
		mcpsrv.WithRecovery(),
	)
	mcp.AddTools(tools...)

	return &Server{
		mcp:    mcp,
		cfg:    cfg,
		logger: logger,
	}
}

// Run serves MCP until ctx is cancelled, on the transport named in the
// config. Unknown transports were rejected at config validation, so the
// default branch only covers the empty string.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case "http":
		return s.serveHTTP(ctx)
	default:
		return s.serveStdio(ctx)
	}
}

// serveStdio speaks MCP over stdin/stdout. The client closing stdin is a
// normal session end, not an error.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("serving MCP over stdio")

	stdio := mcpsrv.NewStdioServer(s.mcp)
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		s.logger.Info("stdio session ended")
		return nil
	}
	return fmt.Errorf("stdio server: %w", err)
}

// serveHTTP speaks streamable MCP on /mcp and mounts Prometheus metrics and
// a health probe beside it, with graceful shutdown on ctx cancellation.
func (s *Server) serveHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	httpSrv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	streamable := mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithStreamableHTTPServer(httpSrv))

	mux.Handle("/mcp", streamable)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/health", newHealthHandler())

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over HTTP",
			"addr", s.cfg.Addr,
		)
		if err := streamable.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server",
		"timeout", s.cfg.ShutdownTimeout,
	)

	if err := streamable.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
