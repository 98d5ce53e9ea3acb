package composer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/grammar"
	"github.com/Conceptual-Machines/bp3-agents-go/agents/translator"
	"github.com/Conceptual-Machines/bp3-agents-go/config"
	"github.com/Conceptual-Machines/bp3-agents-go/llm"
	"github.com/Conceptual-Machines/bp3-agents-go/metrics"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/Conceptual-Machines/bp3-agents-go/prompt"
	"github.com/getsentry/sentry-go"
)

const (
	toolName        = "bp3_grammar"
	toolDescription = "Writes a Bol Processor (BP3) grammar. Output one block mode line, then one rule per line."
	maxAttempts     = 2
	defaultModel    = "gpt-5.1"
	composerSource  = "composer"
)

// ErrNoGrammar is returned when every attempt produced text that could not be used.
var ErrNoGrammar = errors.New("composer did not produce a usable grammar")

// Agent writes BP3 grammars from natural language and translates them
type Agent struct {
	provider      llm.Provider
	translator    *translator.Agent
	promptBuilder *prompt.ComposerPromptBuilder
	systemPrompt  string
	model         string
	startSymbol   string
	metrics       *metrics.SentryMetrics
}

// Result contains the grammar written by the model and its translation
type Result struct {
	Grammar     string             `json:"grammar"`
	Document    *models.Document   `json:"-"`
	Translation *translator.Result `json:"translation"`
	Attempts    int                `json:"attempts"`
	Usage       llm.TokenUsage     `json:"usage"`
}

// NewAgent creates a composer agent with the provider chosen from the config
func NewAgent(ctx context.Context, cfg *config.Config) (*Agent, error) {
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	provider, err := factory.GetProvider(ctx, cfg.ComposerModel, cfg.ComposerProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return NewAgentWithProvider(cfg, provider)
}

// NewAgentWithProvider creates a composer agent with a specific LLM provider
func NewAgentWithProvider(cfg *config.Config, provider llm.Provider) (*Agent, error) {
	builder := prompt.NewComposerPromptBuilder(toolName)
	systemPrompt, err := builder.BuildPrompt()
	if err != nil {
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	agent := &Agent{
		provider:      provider,
		translator:    translator.NewAgent(cfg),
		promptBuilder: builder,
		systemPrompt:  systemPrompt,
		model:         defaultModel,
		startSymbol:   "S",
		metrics:       metrics.NewSentryMetrics(),
	}
	if cfg != nil {
		if cfg.ComposerModel != "" {
			agent.model = cfg.ComposerModel
		}
		if cfg.StartSymbol != "" {
			agent.startSymbol = cfg.StartSymbol
		}
	}

	log.Printf("🎹 COMPOSER AGENT INITIALIZED:")
	log.Printf("   Provider: %s", provider.Name())
	log.Printf("   Model: %s", agent.model)

	return agent, nil
}

// Compose asks the model for a grammar matching request, parses it and translates
// it. A grammar that fails to parse is sent back once for repair.
func (a *Agent) Compose(ctx context.Context, request string, res translator.Resources, opts translator.Options) (*Result, error) {
	startTime := time.Now()
	log.Printf("🎹 COMPOSER REQUEST STARTED (Model: %s)", a.model)

	transaction := sentry.StartTransaction(ctx, "composer.compose")
	defer transaction.Finish()
	ctx = transaction.Context()

	transaction.SetTag("model", a.model)
	transaction.SetTag("provider", a.provider.Name())

	if opts.SourceName == "" {
		opts.SourceName = composerSource
	}
	if opts.StartSymbol == "" {
		opts.StartSymbol = a.startSymbol
	}

	inputArray := []map[string]any{{"role": "user", "content": request}}
	result := &Result{}
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt
		resp, err := a.provider.Generate(ctx, &llm.GenerationRequest{
			Model:        a.model,
			InputArray:   inputArray,
			SystemPrompt: a.systemPrompt,
			CFGGrammar: &llm.CFGConfig{
				ToolName:    toolName,
				Description: toolDescription,
				Grammar:     llm.GetBP3Grammar(),
				Syntax:      "lark",
			},
		})
		if err != nil {
			transaction.SetTag("success", "false")
			sentry.CaptureException(err)
			a.metrics.RecordComposition(ctx, time.Since(startTime), attempt, false)
			return nil, fmt.Errorf("provider request failed: %w", err)
		}
		addUsage(&result.Usage, resp.Usage)

		log.Printf("🎹 Grammar output (attempt %d, %d chars):\n%s", attempt, len(resp.RawOutput), resp.RawOutput)

		doc, err := a.check(resp.RawOutput, opts.StartSymbol)
		if err != nil {
			log.Printf("⚠️  Grammar rejected (attempt %d): %v", attempt, err)
			lastErr = err
			inputArray = append(inputArray, map[string]any{
				"role":    "user",
				"content": a.promptBuilder.BuildRepairMessage(resp.RawOutput, err.Error()),
			})
			continue
		}

		result.Grammar = resp.RawOutput
		result.Document = doc
		lastErr = nil
		break
	}

	a.metrics.RecordTokenUsage(ctx, metrics.TokenUsage{
		Model:     a.model,
		Input:     result.Usage.InputTokens,
		Output:    result.Usage.OutputTokens,
		Reasoning: result.Usage.ReasoningTokens,
		Total:     result.Usage.TotalTokens,
	})

	if lastErr != nil {
		err := fmt.Errorf("%w after %d attempts: %w", ErrNoGrammar, result.Attempts, lastErr)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		a.metrics.RecordComposition(ctx, time.Since(startTime), result.Attempts, false)
		return nil, err
	}

	translation, err := a.translator.Translate(ctx, result.Document, res, opts)
	if err != nil {
		transaction.SetTag("success", "false")
		a.metrics.RecordComposition(ctx, time.Since(startTime), result.Attempts, false)
		return nil, err
	}
	result.Translation = translation

	transaction.SetTag("success", "true")
	transaction.SetTag("attempts", fmt.Sprintf("%d", result.Attempts))
	a.metrics.RecordComposition(ctx, time.Since(startTime), result.Attempts, true)

	log.Printf("✅ COMPOSER COMPLETE in %v: %d blocks, %d attempts",
		time.Since(startTime), len(result.Document.Blocks), result.Attempts)
	return result, nil
}

// check parses grammar text and makes sure some rule defines the start symbol
func (a *Agent) check(text, startSymbol string) (*models.Document, error) {
	doc, err := grammar.Parse(text)
	if err != nil {
		return nil, err
	}
	if err := models.Validate(doc); err != nil {
		return nil, err
	}
	if !definesSymbol(doc, startSymbol) {
		return nil, fmt.Errorf("start symbol %s is never defined", startSymbol)
	}
	return doc, nil
}

func definesSymbol(doc *models.Document, name string) bool {
	for _, b := range doc.Blocks {
		for _, r := range b.Rules {
			if r.PrimaryName() == name {
				return true
			}
		}
	}
	return false
}

func addUsage(total *llm.TokenUsage, u llm.TokenUsage) {
	total.InputTokens += u.InputTokens
	total.OutputTokens += u.OutputTokens
	total.ReasoningTokens += u.ReasoningTokens
	total.TotalTokens += u.TotalTokens
}
