package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"inventree-connect/core/auth"
	"inventree-connect/core/loader"
	"inventree-connect/core/logger"
	authmw "inventree-connect/core/middleware/auth"
	"inventree-connect/core/middleware/rayid"
	"inventree-connect/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the synchronization daemon",
	Long: `Runs a reconciliation cycle every sync.interval_seconds and serves the
status API (GET /status, POST /cycle, GET /metrics) when server.enabled is set.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, _ []string) error {
	ctx, cancel := withCancel(cmd.Context())
	defer cancel()

	svc, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer svc.close()
	logg := svc.logger
	zap.ReplaceGlobals(logg)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		auth.Run(ctx, svc.cfg.Auth.Interval(), svc.providers...)
	}()

	archiver, err := svc.archiver(ctx)
	if err != nil {
		return err
	}
	engine := svc.cycles(archiver)
	if err := engine.Restore(ctx); err != nil {
		logg.Warn("Could not restore the last cycle report", zap.Error(err))
	}

	var app *fiber.App
	if svc.cfg.Server.Enabled {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Debug("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Use(authmw.New(authmw.Config{ApiKey: svc.cfg.Server.ApiKey, Skip: []string{"/metrics"}}))

		mgr := loader.NewManager(logg)
		mgr.Register(status.NewFeature(ctx, engine, svc.metrics.Handler(), logg))
		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		go func() {
			logg.Info("Starting server", zap.String("port", svc.cfg.Server.Port))
			if err := app.Listen(svc.cfg.Server.Address()); err != nil {
				logg.Error("Server stopped", zap.Error(err))
				cancel()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.Loop(ctx, svc.cfg.Sync.Interval())
	}()

	<-ctx.Done()
	logg.Info("Shutting down")
	if app != nil {
		_ = app.Shutdown()
	}
	wg.Wait()
	engine.Wait()
	return nil
}

// withCancel cancels on interrupt or SIGTERM.
func withCancel(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
