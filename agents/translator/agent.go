package translator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/Conceptual-Machines/bp3-agents-go/metrics"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/getsentry/sentry-go"
)

// Agent runs translations with tracing and metrics around the pure translator.
type Agent struct {
	startSymbol string
	maxDur      float64
	metrics     *metrics.SentryMetrics
}

// NewAgent creates a translator agent
func NewAgent(cfg *config.Config) *Agent {
	agent := &Agent{
		startSymbol: "S",
		metrics:     metrics.NewSentryMetrics(),
	}
	if cfg != nil {
		if cfg.StartSymbol != "" {
			agent.startSymbol = cfg.StartSymbol
		}
		agent.maxDur = cfg.MaxDur
	}

	log.Printf("🎼 TRANSLATOR AGENT INITIALIZED:")
	log.Printf("   Start symbol: %s", agent.startSymbol)

	return agent
}

// Translate compiles doc to SuperCollider code. Options left empty take the agent's
// configured defaults.
func (a *Agent) Translate(ctx context.Context, doc *models.Document, res Resources, opts Options) (*Result, error) {
	startTime := time.Now()
	if opts.StartSymbol == "" {
		opts.StartSymbol = a.startSymbol
	}
	if opts.MaxDur == nil && a.maxDur > 0 {
		maxDur := a.maxDur
		opts.MaxDur = &maxDur
	}
	log.Printf("🎼 TRANSLATION STARTED (Source: %s, Start: %s)", opts.SourceName, opts.StartSymbol)

	transaction := sentry.StartTransaction(ctx, "translator.translate")
	defer transaction.Finish()
	ctx = transaction.Context()

	transaction.SetTag("source", opts.SourceName)
	transaction.SetTag("start_symbol", opts.StartSymbol)

	stats := metrics.TranslationStats{Source: opts.SourceName}
	if doc != nil {
		stats.Blocks = len(doc.Blocks)
		for _, b := range doc.Blocks {
			if b != nil {
				stats.Rules += len(b.Rules)
			}
		}
	}

	result, err := Translate(doc, res, opts)
	stats.Duration = time.Since(startTime)
	if result != nil {
		stats.Terminals = len(result.Terminals)
		stats.Diagnostics = map[string]int{}
		for _, c := range result.Diagnostics.Counts() {
			stats.Diagnostics[string(c.Category)] = c.Count
		}
	}
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		a.metrics.RecordTranslation(ctx, stats)
		log.Printf("❌ TRANSLATION FAILED after %v: %v", stats.Duration, err)
		return result, fmt.Errorf("translation failed: %w", err)
	}

	stats.Success = true
	transaction.SetTag("success", "true")
	transaction.SetTag("diagnostic_count", fmt.Sprintf("%d", len(result.Diagnostics)))
	a.metrics.RecordTranslation(ctx, stats)

	log.Printf("✅ TRANSLATION COMPLETED in %v (%d blocks, %d rules, %d terminals, %d warnings)",
		stats.Duration, stats.Blocks, stats.Rules, stats.Terminals, len(result.Diagnostics))
	return result, nil
}
