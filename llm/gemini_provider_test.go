package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestSystemInstruction(t *testing.T) {
	request := &GenerationRequest{SystemPrompt: "write grammars"}
	assert.Equal(t, "write grammars", systemInstruction(request))

	request.CFGGrammar = &CFGConfig{Grammar: "start: rule+"}
	got := systemInstruction(request)
	assert.Contains(t, got, "write grammars\n\n")
	assert.Contains(t, got, "Lark grammar")
	assert.Contains(t, got, "start: rule+")
}

func TestBuildGeminiContents(t *testing.T) {
	contents := buildGeminiContents([]map[string]any{
		{"role": "user", "content": "a tabla theme"},
		{"role": "developer", "content": "keep it short"},
		{"role": "user"},
	})
	require.Len(t, contents, 2)
	for _, c := range contents {
		assert.Equal(t, "user", c.Role)
	}
	assert.Equal(t, "keep it short", contents[1].Parts[0].Text)
}

func TestProcessGeminiResponse(t *testing.T) {
	t.Run("joins parts and strips fences", func(t *testing.T) {
		result := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "```\nORD\n"},
					{Text: "gram#1[1] S --> do4\n```"},
				}},
			}},
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     10,
				CandidatesTokenCount: 5,
				TotalTokenCount:      15,
			},
		}
		resp, err := processGeminiResponse(result)
		require.NoError(t, err)
		assert.Equal(t, "ORD\ngram#1[1] S --> do4", resp.RawOutput)
		assert.Equal(t, 15, resp.Usage.TotalTokens)
		assert.Equal(t, 10, resp.Usage.InputTokens)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := processGeminiResponse(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("empty text", func(t *testing.T) {
		result := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}},
		}
		_, err := processGeminiResponse(result)
		assert.Error(t, err)
	})
}
