// Package serve provides the serve command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/macroed/internal/cmd/cmdutil"
	"github.com/open-cli-collective/macroed/internal/config"
	"github.com/open-cli-collective/macroed/internal/server"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	cmdutil.Globals
	addr    string
	maxBody int64
	logOut  io.Writer
	// ready receives the bound address once the listener is up.
	ready func(addr string)
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Long: `Start an HTTP API exposing the parser and the renderer.

Endpoints:
  GET  /health
  GET  /api/macros
  POST /api/parse    document in the body, returns the macro tree
  POST /api/params   parameter list in the body, returns the decoded params
  POST /api/render   document in the body, ?to=markdown or ?to=text to convert

Logs are written to stdout as JSON.`,
		Example: `  macroed serve
  macroed serve --addr :8080
  curl -s --data-binary @doc.md localhost:8095/api/render`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Globals = cmdutil.GlobalsFrom(cmd)
			opts.logOut = cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, then "+config.DefaultAddr+")")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", server.DefaultMaxBodyBytes, "Maximum request body size in bytes")

	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	if opts.logOut == nil {
		opts.logOut = os.Stdout
	}

	cfg, err := opts.LoadConfig()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(opts.logOut, &slog.HandlerOptions{Level: level}))

	p, err := cmdutil.NewParser(cfg, log)
	if err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = cfg.Addr
	}

	httpServer := &http.Server{
		Handler: server.New(server.Options{
			Parser:       p,
			Engine:       cmdutil.NewEngine(cfg, p, log),
			Logger:       log,
			MaxBodyBytes: opts.maxBody,
		}),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	log.Info("starting macroed", "addr", ln.Addr().String())
	if opts.ready != nil {
		opts.ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
