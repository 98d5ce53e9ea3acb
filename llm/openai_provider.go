package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/grammar-school-go/gs"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/tidwall/gjson"
)

const (
	// Role constants
	userRole      = "user"
	developerRole = "developer"

	// Reasoning effort levels
	reasoningNone    = "none"
	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"
	reasoningMin     = "min"
	reasoningMed     = "med"

	// Provider name
	providerNameOpenAI = "openai"

	openAIResponsesURL = "https://api.openai.com/v1/responses"

	// Logging limits
	maxPreviewChars      = 200
	maxErrorPreviewChars = 500
)

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client     *openai.Client
	apiKey     string // Used for raw HTTP requests carrying the CFG tool
	endpoint   string
	httpClient *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client:     &client,
		apiKey:     apiKey,
		endpoint:   openAIResponsesURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate implements non-streaming generation using OpenAI's Responses API.
// Requests with a CFG grammar go through a raw HTTP call since the SDK has no
// custom tool type.
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	// Start Sentry transaction
	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)
	transaction.SetTag("cfg_enabled", fmt.Sprintf("%t", request.CFGGrammar != nil))

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	var (
		result *GenerationResponse
		err    error
	)
	if request.CFGGrammar != nil {
		result, err = p.generateWithCFG(transaction.Context(), params, request.CFGGrammar)
	} else {
		result, err = p.generateText(transaction.Context(), params)
	}
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
		result.Usage.InputTokens, result.Usage.OutputTokens,
		result.Usage.ReasoningTokens, result.Usage.TotalTokens)
	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (%d chars)", time.Since(startTime), len(result.RawOutput))

	transaction.SetTag("success", "true")
	return result, nil
}

// generateText uses the SDK and returns the plain text output
func (p *OpenAIProvider) generateText(ctx context.Context, params responses.ResponseNewParams) (*GenerationResponse, error) {
	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, err
	}

	text := stripCodeFence(resp.OutputText())
	if text == "" {
		return nil, fmt.Errorf("openai response did not include any output text")
	}
	return &GenerationResponse{
		RawOutput: text,
		Usage: TokenUsage{
			InputTokens:     int(resp.Usage.InputTokens),
			OutputTokens:    int(resp.Usage.OutputTokens),
			ReasoningTokens: int(resp.Usage.OutputTokensDetails.ReasoningTokens),
			TotalTokens:     int(resp.Usage.TotalTokens),
		},
	}, nil
}

// generateWithCFG adds the grammar-school CFG tool to the request and reads the
// tool call input from the raw response
func (p *OpenAIProvider) generateWithCFG(ctx context.Context, params responses.ResponseNewParams, cfg *CFGConfig) (*GenerationResponse, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	var paramsMap map[string]any
	if err := json.Unmarshal(paramsJSON, &paramsMap); err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	syntax := cfg.Syntax
	if syntax == "" {
		syntax = "lark"
	}
	cleanedGrammar := gs.CleanGrammarForCFG(cfg.Grammar)
	log.Printf("📝 Grammar cleaned for CFG: %d chars (original: %d chars)", len(cleanedGrammar), len(cfg.Grammar))

	cfgTool := gs.BuildOpenAICFGTool(gs.CFGConfig{
		ToolName:    cfg.ToolName,
		Description: cfg.Description,
		Grammar:     cleanedGrammar,
		Syntax:      syntax,
	})
	paramsMap["text"] = gs.GetOpenAITextFormatForCFG()
	paramsMap["tools"] = []any{cfgTool}
	paramsMap["parallel_tool_calls"] = false
	log.Printf("🔧 CFG GRAMMAR CONFIGURED: %s (syntax: %s)", cfg.ToolName, syntax)

	body, err := json.Marshal(paramsMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	log.Printf("📤 Making raw HTTP request (JSON size: %d bytes)", len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil {
			log.Printf("⚠️  Failed to close response body: %v", closeErr)
		}
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", httpResp.StatusCode, truncate(string(respBody), maxErrorPreviewChars))
	}
	return parseCFGResponse(respBody)
}

// parseCFGResponse extracts the custom tool call input from a Responses API body.
// The model must answer through the tool; plain text output is an error.
func parseCFGResponse(body []byte) (*GenerationResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to parse response")
	}
	root := gjson.ParseBytes(body)

	usage := TokenUsage{
		InputTokens:     int(root.Get("usage.input_tokens").Int()),
		OutputTokens:    int(root.Get("usage.output_tokens").Int()),
		ReasoningTokens: int(root.Get("usage.output_tokens_details.reasoning_tokens").Int()),
		TotalTokens:     int(root.Get("usage.total_tokens").Int()),
	}

	code := root.Get(`output.#(type=="custom_tool_call").input`).String()
	if code != "" {
		log.Printf("🔧 Found CFG tool call input (%d chars): %s", len(code), truncate(code, maxPreviewChars))
		return &GenerationResponse{RawOutput: code, Usage: usage}, nil
	}

	if text := root.Get(`output.#(type=="message").content.0.text`).String(); text != "" {
		log.Printf("❌ CFG was configured but LLM generated text output instead: %s", truncate(text, maxPreviewChars))
	}
	return nil, fmt.Errorf("CFG grammar was configured but LLM did not use the CFG tool")
}

// buildRequestParams converts GenerationRequest to OpenAI-specific ResponseNewParams
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{}

	for _, item := range request.InputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		var roleEnum responses.EasyInputMessageRole
		switch role {
		case developerRole:
			roleEnum = responses.EasyInputMessageRoleDeveloper
		case userRole:
			roleEnum = responses.EasyInputMessageRoleUser
		default:
			roleEnum = responses.EasyInputMessageRoleUser
		}

		inputItems = append(inputItems,
			responses.ResponseInputItemParamOfMessage(content, roleEnum),
		)
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions: openai.String(request.SystemPrompt),
		Reasoning: shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		},
	}
	return params
}

// reasoningEffort maps a reasoning mode to the API enum; "low" is the default
func reasoningEffort(mode string) shared.ReasoningEffort {
	switch mode {
	case reasoningNone:
		return shared.ReasoningEffort("none")
	case reasoningMinimal, reasoningMin, reasoningLow:
		return responses.ReasoningEffortLow
	case reasoningMedium, reasoningMed:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	default:
		return responses.ReasoningEffortLow
	}
}

// stripCodeFence removes a markdown code fence around model output
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 && !strings.Contains(cleaned[:i], " ") {
		cleaned = cleaned[i+1:] // language tag
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
