package main

import (
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
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "bp3sc@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			defer sentry.Flush(sentryFlushTimeout)
		}
	}

	code := run(cfg, os.Args[1:], os.Stdout, os.Stderr)
	if code != 0 {
		sentry.Flush(sentryFlushTimeout)
		os.Exit(code)
	}
}
