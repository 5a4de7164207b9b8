package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"route-dashboard/internal/adapters/optimizer"
	"route-dashboard/internal/adapters/progress"
	"route-dashboard/internal/api"
	"route-dashboard/internal/api/handlers"
	"route-dashboard/internal/chart"
	"route-dashboard/internal/config"
	"route-dashboard/internal/domain"
	"route-dashboard/internal/ports"
	"route-dashboard/internal/services"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Serves the dashboard page, its JSON and PNG endpoints and the browser state
feed, and keeps the progress channel connected until the process is stopped.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the composition root of the HTTP dashboard.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	g, gctx := errgroup.WithContext(ctx)

	var (
		opt      ports.Optimizer
		problems []error
	)
	if mock {
		m, progressURL, err := startMockBackend(gctx, g, cfg.Progress.Event)
		if err != nil {
			return err
		}
		opt = m
		cfg.Progress.URL = progressURL
	} else {
		problems = cfg.Problems()
		for _, p := range problems {
			logger.Warn("configuration problem", zap.Error(p))
		}
		if cfg.Optimizer.URL != "" {
			client, err := optimizer.NewHTTPClient(cfg.Optimizer.URL, cfg.Optimizer.Timeout, logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			opt = client
		}
	}

	session := services.NewSession(opt, problems, logger)

	feed := handlers.NewFeed(session, logger)
	g.Go(func() error { return feed.Run(gctx) })

	if cfg.Progress.URL != "" {
		ch, err := progress.NewChannel(cfg.Progress.URL, cfg.Progress.Event, progress.WithLogger(logger))
		if err != nil {
			logger.Error("progress channel disabled", zap.Error(err))
			session.OnStateChange(domain.ConnFailed)
		} else {
			g.Go(func() error {
				// A failed channel stays visible in the dashboard; it does not stop the server.
				if err := ch.Run(gctx, session); err != nil {
					logger.Error("progress channel stopped", zap.Error(err))
				}
				return nil
			})
		}
	}

	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewRouter(api.Deps{
			Session:        session,
			Feed:           feed,
			Logger:         logger,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Chart:          chart.RenderOptions{Width: cfg.Chart.Width, Height: cfg.Chart.Height},
			Context:        gctx,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address), zap.Bool("mock", mock))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: listen on %s: %w", cfg.Server.Address, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("serve: shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// startMockBackend runs the mock optimizer with an in-process progress hub on
// a loopback listener, so the real channel client is exercised end to end.
func startMockBackend(ctx context.Context, g *errgroup.Group, event string) (*optimizer.Mock, string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, "", fmt.Errorf("mock backend: listen: %w", err)
	}

	hub := progress.NewHub(event, logger.Named("mock-hub"))
	srv := &http.Server{Handler: hub, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock backend: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		return srv.Close()
	})

	m := optimizer.NewMock(time.Now().UnixNano(), func(n domain.ProgressNotification) {
		if err := hub.Publish(n); err != nil {
			logger.Warn("mock backend: publish", zap.Error(err))
		}
	})
	m.Delay = 150 * time.Millisecond

	return m, "ws://" + ln.Addr().String() + "/", nil
}
