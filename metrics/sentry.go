package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// TokenUsage is the token accounting of one composer request
type TokenUsage struct {
	Model     string
	Input     int
	Output    int
	Reasoning int
	Total     int
}

// RecordTokenUsage records LLM token usage on the current transaction and in a
// child span
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, usage TokenUsage) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", usage.Model)
		transaction.SetData("llm.total_tokens", usage.Total)
		transaction.SetData("llm.input_tokens", usage.Input)
		transaction.SetData("llm.output_tokens", usage.Output)
		transaction.SetData("llm.reasoning_tokens", usage.Reasoning)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", usage.Model)
	span.SetTag("total_tokens", fmt.Sprintf("%d", usage.Total))
	span.SetData("input_tokens", usage.Input)
	span.SetData("output_tokens", usage.Output)
	span.SetData("reasoning_tokens", usage.Reasoning)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", usage.Model)
}

// RecordComposition records how long a composer request took and how many
// grammars the model had to write
func (m *SentryMetrics) RecordComposition(ctx context.Context, duration time.Duration, attempts int, success bool) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "composer.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("attempts", attempts)

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Composition: %d attempt(s)", attempts)
}

// TranslationStats describes one grammar translation
type TranslationStats struct {
	Source      string
	Blocks      int
	Rules       int
	Terminals   int
	Diagnostics map[string]int // count per diagnostic category
	Duration    time.Duration
	Success     bool
}

// RecordTranslation records the size and outcome of a grammar translation
func (m *SentryMetrics) RecordTranslation(ctx context.Context, stats TranslationStats) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetData("bp3.blocks", stats.Blocks)
		transaction.SetData("bp3.rules", stats.Rules)
		transaction.SetData("bp3.terminals", stats.Terminals)
	}

	span := sentry.StartSpan(ctx, "translation.request")
	defer span.Finish()

	span.SetTag("success", fmt.Sprintf("%t", stats.Success))
	span.SetTag("source", stats.Source)

	span.SetData("duration_ms", stats.Duration.Milliseconds())
	span.SetData("blocks", stats.Blocks)
	span.SetData("rules", stats.Rules)
	span.SetData("terminals", stats.Terminals)
	total := 0
	for category, n := range stats.Diagnostics {
		span.SetData("diagnostics."+category, n)
		total += n
	}
	span.SetData("diagnostics", total)

	if stats.Success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("Translation: %s (%d warnings)", stats.Source, total)
}
