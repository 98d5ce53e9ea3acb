package translator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/require"
)

func nt(name string) models.Element { return models.NonTerminal{Name: name} }

func note(name string, octave int) models.Element {
	return models.Note{Name: name, Octave: octave, HasOctave: true}
}

func dir(name string, args ...string) models.Element {
	return models.Directive{Name: name, Args: args}
}

func rest() models.Element { return models.Rest{Determined: true} }

func lhs(names ...string) []models.Element {
	out := make([]models.Element, len(names))
	for i, n := range names {
		out[i] = nt(n)
	}
	return out
}

func rule(g, r int, left []models.Element, right ...models.Element) *models.Rule {
	return &models.Rule{GrammarNum: g, RuleNum: r, LHS: left, RHS: right}
}

func weighted(r *models.Rule, value, decrement int) *models.Rule {
	r.Weight = &models.Weight{Value: value, Decrement: decrement}
	return r
}

func flagged(r *models.Rule, flags ...models.Flag) *models.Rule {
	r.Flags = flags
	return r
}

func block(mode models.Mode, index int, rules ...*models.Rule) *models.Block {
	return &models.Block{Mode: mode, Index: index, Rules: rules}
}

func document(blocks ...*models.Block) *models.Document {
	return &models.Document{Blocks: blocks}
}

func translate(t *testing.T, doc *models.Document, res Resources, opts Options) *Result {
	t.Helper()
	result, err := Translate(doc, res, opts)
	require.NoError(t, err)
	require.NoError(t, checkBalanced(result.Code))
	assertNoCommentInsideBrackets(t, result.Code)
	assertNoBarePitchInSequences(t, result.Code)
	return result
}

// definition returns the single-line definition of name, or "".
func definition(code, name string) string {
	prefix := "Pdef(" + scSymbol(name) + ", "
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}

// block definition spanning several lines, up to the closing "}));".
func routine(code, name string) string {
	start := strings.Index(code, "Pdef("+scSymbol(name)+", Prout(")
	if start < 0 {
		return ""
	}
	end := strings.Index(code[start:], "}));")
	if end < 0 {
		return ""
	}
	return code[start : start+end+len("}));")]
}

// assertNoCommentInsideBrackets allows comments at the top level and directly inside
// the outer ( ... ) evaluation block, nowhere deeper.
func assertNoCommentInsideBrackets(t *testing.T, code string) {
	t.Helper()
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '/':
			if i+1 < len(code) && code[i+1] == '/' {
				if depth > 1 {
					line := strings.Count(code[:i], "\n") + 1
					t.Fatalf("comment inside brackets on line %d:\n%s", line, code)
				}
				for i < len(code) && code[i] != '\n' {
					i++
				}
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
}

var pitchList = regexp.MustCompile(`Pseq\(\[\d`)

func assertNoBarePitchInSequences(t *testing.T, code string) {
	t.Helper()
	const key = `\midinote, `
	for _, loc := range pitchList.FindAllStringIndex(code, -1) {
		if loc[0] < len(key) || code[loc[0]-len(key):loc[0]] != key {
			t.Fatalf("pitch list outside \\midinote at offset %d:\n%s", loc[0], code)
		}
	}
}

func pbind(pitches string) string {
	return `Pbind(\instrument, \bp2sc_default, \midinote, Pseq([` + pitches + `], 1), \dur, 0.25)`
}
