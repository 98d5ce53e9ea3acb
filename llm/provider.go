package llm

import (
	"context"
)

// Provider defines the interface for LLM providers used by the composer
type Provider interface {
	// Generate sends one request and returns the model's text output
	Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	InputArray    []map[string]any
	ReasoningMode string
	SystemPrompt  string
	// CFG Grammar constraining the output. Providers without CFG support
	// append the grammar to the system prompt instead.
	CFGGrammar *CFGConfig
}

// CFGConfig contains context-free grammar configuration
type CFGConfig struct {
	ToolName    string // Name of the tool that will receive the DSL output
	Description string // Description of what the tool does
	Grammar     string // Lark grammar definition
	Syntax      string // "lark" or "regex" (default: "lark")
}

// TokenUsage is the token accounting reported by the provider
type TokenUsage struct {
	InputTokens     int
	OutputTokens    int
	ReasoningTokens int
	TotalTokens     int
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	RawOutput string     // Text produced by the model (grammar text for the composer)
	Usage     TokenUsage // Zero when the provider did not report usage
}
