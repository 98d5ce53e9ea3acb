package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
)

const (
	releaseVersion     = "0.1.0"
	sentryFlushTimeout = 2 * time.Second
	composeTimeout     = 5 * time.Minute
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: Could not load .env file: %v", err)
		log.Println("   Continuing with environment variables...")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "bp3-compose@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), composeTimeout)
	code := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr, nil)
	cancel()
	if code != 0 {
		sentry.Flush(sentryFlushTimeout)
		os.Exit(code)
	}
}
