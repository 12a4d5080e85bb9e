package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/mhagen/texwatch/internal/mcp"
	"github.com/mhagen/texwatch/internal/server"
	"github.com/mhagen/texwatch/internal/tracker"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tracker with the scheduler and the dashboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := context.Background()
			if err := app.seedProjects(ctx); err != nil {
				return fmt.Errorf("seeding projects: %w", err)
			}

			sched := tracker.NewScheduler(app.tracker, app.cfg.Sync.Interval.Std(), app.logger)
			sched.Start(ctx)
			defer sched.Stop()

			apiServer := server.New(app.projects, app.metrics, app.tracker, app.logger)
			mcpServer := mcp.NewServer(mcp.Services{
				Projects: app.projects,
				Metrics:  app.metrics,
				Cycles:   app.tracker,
			}, app.logger)
			mcpHandler := sdkmcp.NewStreamableHTTPHandler(
				func(r *http.Request) *sdkmcp.Server { return mcpServer },
				&sdkmcp.StreamableHTTPOptions{},
			)

			router := http.NewServeMux()
			router.Handle("/", apiServer.Handler())
			router.Handle("/mcp", mcpHandler)
			router.Handle("/mcp/", mcpHandler)

			addr := fmt.Sprintf("%s:%d", app.cfg.Server.Host, app.cfg.Server.Port)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: router,
			}

			go func() {
				app.logger.Info("server listening", "addr", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					app.logger.Error("server error", "error", err)
				}
			}()

			waitForShutdown(app.logger, httpServer)
			return nil
		},
	}
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
