package translator

import (
	"strings"
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_RuleSelection(t *testing.T) {
	seed := int64(42)
	tests := []struct {
		name  string
		mode  models.Mode
		rules []*models.Rule
		opts  Options
		want  string
	}{
		{
			name:  "ordered rules play in turn",
			mode:  models.ModeOrd,
			rules: []*models.Rule{rule(1, 1, lhs("S"), note("do", 4)), rule(1, 2, lhs("S"), note("re", 4))},
			want:  `Pdef(\S, Pseq([` + pbind("60") + `, ` + pbind("62") + `], 1));`,
		},
		{
			name:  "random rules are chosen uniformly",
			mode:  models.ModeRnd,
			rules: []*models.Rule{rule(1, 1, lhs("S"), note("do", 4)), rule(1, 2, lhs("S"), note("re", 4))},
			want:  `Pdef(\S, Prand([` + pbind("60") + `, ` + pbind("62") + `], 1));`,
		},
		{
			name: "weights use Pwrand",
			mode: models.ModeLin,
			rules: []*models.Rule{
				weighted(rule(1, 1, lhs("S"), note("do", 4)), 3, 0),
				rule(1, 2, lhs("S"), note("re", 4)),
			},
			want: `Pdef(\S, Pwrand([` + pbind("60") + `, ` + pbind("62") + `], [3, 1].normalizeSum, 1));`,
		},
		{
			name:  "seed wraps the choice",
			mode:  models.ModeRnd,
			rules: []*models.Rule{rule(1, 1, lhs("S"), note("do", 4)), rule(1, 2, lhs("S"), note("re", 4))},
			opts:  Options{Seed: &seed},
			want:  `Pdef(\S, Pseed(42, Prand([` + pbind("60") + `, ` + pbind("62") + `], 1)));`,
		},
		{
			name: "zero weight rules are dropped",
			mode: models.ModeRnd,
			rules: []*models.Rule{
				weighted(rule(1, 1, lhs("S"), note("re", 4)), 0, 0),
				rule(1, 2, lhs("S"), note("do", 4)),
			},
			want: `Pdef(\S, ` + pbind("60") + `);`,
		},
		{
			name: "all zero weights fall back to a uniform choice",
			mode: models.ModeRnd,
			rules: []*models.Rule{
				weighted(rule(1, 1, lhs("S"), note("do", 4)), 0, 0),
				weighted(rule(1, 2, lhs("S"), note("re", 4)), 0, 2),
			},
			want: `Pdef(\S, Prand([` + pbind("60") + `, ` + pbind("62") + `], 1));`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := translate(t, document(block(tt.mode, 1, tt.rules...)), Resources{}, tt.opts)
			assert.Equal(t, tt.want, definition(result.Code, "S"))
		})
	}
}

func TestTranslate_DecrementingWeights(t *testing.T) {
	doc := document(block(models.ModeRnd, 1,
		weighted(rule(1, 1, lhs("S"), note("do", 4)), 50, 12),
		weighted(rule(1, 2, lhs("S"), note("re", 4)), 1, 0),
	))
	result := translate(t, doc, Resources{}, Options{})

	want := strings.Join([]string{
		`Pdef(\S, Prout({ |ev|`,
		"\tvar w0 = 50;",
		"\tvar w1 = 1;",
		"\tinf.do {",
		"\t\tvar total = w0 + w1;",
		"\t\tvar r = total.rand;",
		"\t\tif(r < w0) {",
		"\t\t\t" + pbind("60") + ".embedInStream(ev);",
		"\t\t\tw0 = (w0 - 12).max(0);",
		"\t\t} {",
		"\t\t\t" + pbind("62") + ".embedInStream(ev);",
		"\t\t}",
		"\t}",
		"}));",
	}, "\n")
	assert.Equal(t, want, routine(result.Code, "S"))
}

func TestTranslate_DecrementingWeights_ThreeRules(t *testing.T) {
	doc := document(block(models.ModeRnd, 1,
		weighted(rule(1, 1, lhs("S"), note("do", 4)), 10, 2),
		weighted(rule(1, 2, lhs("S"), note("re", 4)), 5, 1),
		rule(1, 3, lhs("S"), note("mi", 4)),
	))
	code := routine(translate(t, doc, Resources{}, Options{}).Code, "S")

	assert.Contains(t, code, "\t\tvar total = w0 + w1 + w2;")
	assert.Contains(t, code, "\t\tif(r < w0) {")
	assert.Contains(t, code, "\t\t\tif(r < (w0 + w1)) {")
	assert.Contains(t, code, "w1 = (w1 - 1).max(0);")
	assert.NotContains(t, code, "w2 = (w2")
}

func TestTranslate_Flags(t *testing.T) {
	doc := document(
		block(models.ModeOrd, 1,
			flagged(rule(1, 1, lhs("S"), nt("I")), models.Flag{Name: "Ideas", Op: models.FlagAssign, Value: "20"}),
		),
		block(models.ModeRnd, 2,
			flagged(rule(2, 1, lhs("I"), note("do", 4)),
				models.Flag{Name: "Ideas"},
				models.Flag{Name: "Ideas", Op: models.FlagDec, Value: "1"},
			),
			rule(2, 2, lhs("I"), note("re", 4)),
		),
	)
	result := translate(t, doc, Resources{}, Options{})
	code := result.Code

	assert.Contains(t, code, "// --- Flag variables ---\n~Ideas = 20;\n")
	assert.Equal(t, strings.Join([]string{
		`Pdef(\S, Prout({ |ev|`,
		"\tinf.do {",
		"\t\t~Ideas = 20;",
		"\t\tPdef(\\I).embedInStream(ev);",
		"\t}",
		"}));",
	}, "\n"), routine(code, "S"))
	assert.Equal(t, strings.Join([]string{
		`Pdef(\I, Prout({ |ev|`,
		"\tinf.do {",
		"\t\tif((~Ideas > 0)) {",
		"\t\t\t~Ideas = ~Ideas - 1;",
		"\t\t\t" + pbind("60") + ".embedInStream(ev);",
		"\t\t} {",
		"\t\t\t" + pbind("62") + ".embedInStream(ev);",
		"\t\t}",
		"\t}",
		"}));",
	}, "\n"), routine(code, "I"))
}

func TestConditionExpr(t *testing.T) {
	tests := []struct {
		name  string
		flags []models.Flag
		want  string
	}{
		{name: "bare", flags: []models.Flag{{Name: "A"}}, want: "(~A > 0)"},
		{name: "greater", flags: []models.Flag{{Name: "A", Op: models.FlagGreater, Value: "2"}}, want: "(~A > 2)"},
		{name: "less", flags: []models.Flag{{Name: "A", Op: models.FlagLess, Value: "5"}}, want: "(~A < 5)"},
		{
			name:  "operations are skipped",
			flags: []models.Flag{{Name: "A"}, {Name: "B", Op: models.FlagInc, Value: "1"}},
			want:  "(~A > 0)",
		},
		{
			name:  "several conditions",
			flags: []models.Flag{{Name: "A"}, {Name: "B", Op: models.FlagGreater, Value: "2"}, {Name: "C", Op: models.FlagLess, Value: "1"}},
			want:  "(~A > 0) and: { (~B > 2) } and: { (~C < 1) }",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conditionExpr(tt.flags))
		})
	}
}

func TestFallbackLines(t *testing.T) {
	a := compiledRule{rule: &models.Rule{}, pattern: `Pdef(\A)`}
	b := compiledRule{rule: &models.Rule{}, pattern: `Pdef(\B)`}
	withOp := compiledRule{
		rule:    &models.Rule{Flags: []models.Flag{{Name: "n", Op: models.FlagInc, Value: "1"}}},
		pattern: `Pdef(\C)`,
	}

	assert.Equal(t, []string{"\tEvent.silent(0.25).embedInStream(ev);"}, fallbackLines(nil, 1))
	assert.Equal(t, []string{`	[Pdef(\A), Pdef(\B)].choose.embedInStream(ev);`}, fallbackLines([]compiledRule{a, b}, 1))
	assert.Equal(t,
		[]string{`	[{ Pdef(\A).embedInStream(ev); }, { ~n = ~n + 1; Pdef(\C).embedInStream(ev); }].choose.value;`},
		fallbackLines([]compiledRule{a, withOp}, 1))
}
