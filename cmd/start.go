package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendsync/core/loader"
	"vendsync/core/logger"
	"vendsync/core/middleware/auth"
	"vendsync/core/middleware/rayid"
	"vendsync/core/scheduler"
	"vendsync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync server",
	Long:  `Starts the HTTP admin server and, when an interval is configured, the background sync scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		p, err := buildPipeline(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := p.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Scheduler (optional)
		var sched *scheduler.Scheduler
		if p.cfg.Sync.IntervalMinutes > 0 {
			sched = scheduler.New(logg)
			interval := time.Duration(p.cfg.Sync.IntervalMinutes) * time.Minute
			err := sched.Start(interval, func(taskCtx context.Context) error {
				_, err := p.service.Run(taskCtx, "schedule")
				return err
			})
			if err != nil {
				logg.Fatal("Failed to start scheduler", zap.Error(err))
			}
			logg.Info("Scheduler started", zap.Duration("interval", interval))
		} else {
			logg.Info("Scheduler disabled, runs are manual only")
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		mgr := loader.NewManager()
		mgr.Register(sync.NewFeature(p.service, sched, logg))

		// RayID first so everything downstream is traceable.
		app.Use(rayid.New())

		// Request logging with Zap + RayID.
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
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

		// Auth protects the whole admin surface.
		app.Use(auth.New(auth.Config{ApiKey: p.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", p.cfg.Server.Port))
			if err := app.Listen(":" + p.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if sched != nil {
			_ = sched.Stop()
		}
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
