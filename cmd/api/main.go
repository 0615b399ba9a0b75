// Command api serves the event planner authentication API.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Rista10/event-planner-application/internal/infra/app"
	"github.com/Rista10/event-planner-application/internal/infra/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("event planner api: %v", err)
	}
}

func run() error {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return application.Run(ctx)
}
