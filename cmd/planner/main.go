package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"rail-planner/internal/config"
	"rail-planner/internal/logging"
)

func main() {
	// Load configuration from .env and environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogFormat, cfg.LogLevel, os.Stderr)

	// Root context with cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = newApp(cfg).RunContext(ctx, os.Args)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
