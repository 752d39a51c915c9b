package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/cli/config"
	githubctrl "github.com/drover-dev/drover/pkg/controller/github"
	controller "github.com/drover-dev/drover/pkg/controller/http"
	"github.com/drover-dev/drover/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		releaseCfg   config.Release
		cacheCfg     config.Cache
		firestoreCfg config.Firestore
		notifyCfg    config.Notify
		sentryCfg    config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, githubCfg.WebhookFlags()...)
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting drover server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("github", githubCfg),
				slog.Any("release", releaseCfg),
				slog.Any("cache", cacheCfg),
				slog.Any("firestore", firestoreCfg),
			)

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			tagger, runs, cleanup, err := buildTagger(ctx, &githubCfg, &releaseCfg, &cacheCfg, &firestoreCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			// Create use cases
			webhookUC := usecase.NewWebhook(tagger, usecase.WithBaseBranch(releaseCfg.BaseBranch))
			processor := githubctrl.NewEventProcessor(webhookUC)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				processor,
				runs,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
