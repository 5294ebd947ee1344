// cmd/mcp-server/main.go: standalone MCP server for gosymdiff
//
// Exposes gosymdiff tools over HTTP, or as JSON-RPC 2.0 methods on
// stdin/stdout for agent frameworks that spawn tool processes.
//
// Usage:
//
//	go run ./cmd/mcp-server -config server.toml
//	go run ./cmd/mcp-server -addr :9090
//	go run ./cmd/mcp-server -stdio
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njchilds90/gosymdiff"
	"github.com/njchilds90/gosymdiff/internal/config"
	"github.com/njchilds90/gosymdiff/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("mcp-server", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a .toml or .yaml config file")
	addr := fs.String("addr", "", "Listen address (overrides config)")
	stdio := fs.Bool("stdio", false, "Serve JSON-RPC 2.0 on stdin/stdout instead of HTTP")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *debug {
		cfg.Log.Level = "debug"
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, logger)

	if *stdio {
		// stdout carries the protocol; logs stay on stderr.
		return serveStdio(ctx, srv, logger, os.Stdin, os.Stdout)
	}

	httpSrv := srv.HTTPServer(cfg.Server)
	logger.Info("gosymdiff MCP server listening", "addr", cfg.Server.Addr, "tools", len(gosymdiff.Tools()))
	logger.Info("  POST /tool     execute a tool call")
	logger.Info("  GET  /schema   tool schema for agent registration")
	logger.Info("  GET  /health   health check")

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	return httpSrv.Shutdown(shutdownCtx)
}

// serveStdio runs the JSON-RPC transport until stdin closes. A clean close
// is not an error; a broken transport is.
func serveStdio(ctx context.Context, srv *server.Server, logger *slog.Logger, r io.Reader, w io.WriteCloser) error {
	if err := srv.ServeStdio(ctx, r, w); err != nil {
		return fmt.Errorf("json-rpc server: %w", err)
	}
	logger.Info("json-rpc server closed")
	return nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
