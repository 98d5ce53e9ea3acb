package translator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRule(t *testing.T) {
	tests := []struct {
		name string
		rule *models.Rule
		want string
	}{
		{
			name: "plain",
			rule: rule(1, 1, lhs("S"), nt("A"), note("do", 4), rest()),
			want: "gram#1[1] S --> A do4 -",
		},
		{
			name: "weight with decrement and flags",
			rule: flagged(weighted(rule(2, 3, lhs("S"), nt("A")), 50, 12),
				models.Flag{Name: "Ideas"},
				models.Flag{Name: "Ideas", Op: models.FlagDec, Value: "1"},
			),
			want: "gram#2[3] <50-12> /Ideas/ S --> /Ideas-1/ A",
		},
		{
			name: "polymetric, directives and comment",
			rule: &models.Rule{
				GrammarNum: 1, RuleNum: 2, LHS: lhs("X"), Comment: "intro",
				RHS: []models.Element{
					dir("vel", "80"),
					models.Polymetric{Ratio: 3, HasRatio: true, Voices: [][]models.Element{{nt("A")}, {nt("B"), nt("C")}}},
					models.Directive{Name: "mm_inline", Args: []string{"120"}},
				},
			},
			want: "gram#1[2] X --> _vel(80) {3, A, B C} ||120||  // intro",
		},
		{
			name: "empty right side",
			rule: rule(1, 4, lhs("X")),
			want: "gram#1[4] X -->",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRule(tt.rule))
		})
	}
}

func TestListRules(t *testing.T) {
	b := block(models.ModeRnd, 2, weighted(rule(2, 1, lhs("S"), note("do", 4)), 3, 0))
	b.Label = "intro"
	b.Preamble = []models.Directive{{Name: "mm", Args: []string{"60"}}}

	var buf bytes.Buffer
	require.NoError(t, ListRules(document(b), &buf))

	want := strings.Join([]string{
		strings.Repeat("=", 60),
		"Subgrammar 2 - Mode: RND [intro]",
		"  Preamble: _mm(60)",
		"  Rules: 1",
		"  gram#2[1] <3> S --> do4",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}
