package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/example/daily-planner/config"
	"github.com/example/daily-planner/modules/api"
	"github.com/example/daily-planner/modules/planner"
	"github.com/example/daily-planner/modules/reminder"
	"github.com/example/daily-planner/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planner HTTP server",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Println("=== Daily Planner ===")

	logLevel := mono.LogLevelInfo
	if cfg.Log.Level == config.LogLevelError {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	logger := app.Logger()

	// Order: independent modules first, then modules with dependencies
	modules := []mono.Module{
		task.NewModule(cfg.Storage, logger),               // Core domain (emits task events)
		reminder.NewModule(cfg.Reminder.Interval, logger), // Event consumer (depends on task)
		planner.NewModule(cfg.Planner, logger),            // Responder (depends on task)
		api.NewModule(cfg.HTTP, logger),                   // Driving adapter (depends on all)
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			return fmt.Errorf("failed to register %s module: %w", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
	return nil
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  storage: %s, planner mode: %s, reminder scan every %s",
		cfg.Storage.Driver, cfg.Planner.Mode, cfg.Reminder.Interval)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.HTTP.Port)
	log.Println("  POST   /add-task              - Add a task")
	log.Println("  GET    /schedule              - List tasks with status")
	log.Println("  GET    /reminders             - List reminder tasks")
	log.Println("  POST   /complete-task/:id     - Complete a task")
	log.Println("  DELETE /delete-task/:id       - Delete a task")
	log.Println("  PUT    /update-task/:id       - Update a task")
	log.Println("  POST   /daily-planner         - Chat with the planner")
	log.Println("  GET    /notifications         - Fired reminders")
	log.Println("  GET    /ws/daily-planner      - Chat over WebSocket")
	log.Println("  GET    /health                - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
