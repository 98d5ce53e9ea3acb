package prompt

import (
	"errors"
	"strings"
)

// ComposerPromptBuilder builds prompts for the BP3 composer agent
type ComposerPromptBuilder struct {
	toolName string
}

// NewComposerPromptBuilder creates a new composer prompt builder. toolName is
// the CFG tool the model must answer through.
func NewComposerPromptBuilder(toolName string) *ComposerPromptBuilder {
	return &ComposerPromptBuilder{toolName: toolName}
}

// BuildPrompt builds the complete system prompt for the composer
func (b *ComposerPromptBuilder) BuildPrompt() (string, error) {
	if b.toolName == "" {
		return "", errors.New("composer prompt needs a tool name")
	}
	sections := []string{
		b.getSystemInstructions(),
		b.getBP3Reference(),
		b.getOutputFormatInstructions(),
	}

	return strings.Join(sections, "\n\n"), nil
}

// BuildRepairMessage asks the model to fix a grammar the parser rejected
func (b *ComposerPromptBuilder) BuildRepairMessage(grammar string, problem string) string {
	return "The grammar below could not be used: " + problem + "\n\n" +
		grammar + "\n\n" +
		"Write the corrected grammar in full. Keep the musical idea, fix only what is needed."
}

func (b *ComposerPromptBuilder) getSystemInstructions() string {
	return `You are a composer who writes Bol Processor (BP3) grammars.

Your role is to:
1. Understand the musical request in natural language
2. Express it as a small BP3 grammar whose start symbol is S
3. Return the grammar using the ` + "`" + b.toolName + "`" + ` tool (ALWAYS use the tool, never return text directly)

When writing grammars:
- Every non-terminal you use on a right-hand side must be defined by a rule
- Start with an ORD block that rewrites S into sections, then refine the sections in later blocks
- Use RND blocks for variation and weights like <3> to prefer some choices
- Keep grammars short: a handful of blocks, a few rules each
- Prefer French note names (do4 re4 mi4) unless the request asks for another convention`
}

func (b *ComposerPromptBuilder) getBP3Reference() string {
	return `## BP3 REFERENCE

Block modes (one line before the rules of each block):
- ORD: rules are applied in order
- RND: one rule is chosen at random each time
- LIN: leftmost derivation
- SUB1 / SUB: substitution passes

Rules: gram#<block>[<rule>] <weight> LHS --> RHS
- gram#2[3] <5> Theme --> do4 re4 mi4
- A weight <50-12> starts at 50 and decreases by 12 each time the rule is used
- /Flag/ before the left-hand side is a condition, /Flag-1/ on the right-hand side changes it

Right-hand side elements:
- Notes: do4 re#4 sib3 (French), sa4 dha4 (Indian), C4 D#5 (English)
- Terminals: lowercase words such as dha tin ek
- Non-terminals: capitalized words such as Theme or Cadence
- Rests: - (silence), _ (prolongation)
- Polymetry: {2, do4 re4, mi4} plays the voices together over 2 beats
- Directives: _vel(80) _transpose(2) _mm(90) _legato(80) _ins(3)
- lambda: the empty sequence

Blocks are separated by a line of dashes (-----).`
}

func (b *ComposerPromptBuilder) getOutputFormatInstructions() string {
	return `## OUTPUT FORMAT

Output only the grammar text, one rule per line, no explanations and no markdown.

Example:
ORD
gram#1[1] S --> Intro Theme Theme
-----
RND
gram#2[1] <3> Theme --> do4 re4 {2, mi4 fa4, sol3}
gram#2[2] <1> Theme --> mi4 - re4 do4
gram#2[3] Intro --> _vel(70) sol3 - - do4`
}
