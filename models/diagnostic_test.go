package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "with rule location",
			diag: Diagnostic{Category: CategoryContextStripped, Message: "stripped", Grammar: 3, Rule: 47},
			want: "[context_stripped] gram#3[47] stripped",
		},
		{
			name: "block only",
			diag: Diagnostic{Category: CategoryApproximation, Message: "x", Grammar: 2},
			want: "[approximation] gram#2 x",
		},
		{
			name: "no location",
			diag: Diagnostic{Category: CategoryMissingResource, Message: "-se.foo not supplied"},
			want: "[missing_resource] -se.foo not supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}

func TestDiagnostics_CountsAndReport(t *testing.T) {
	ds := Diagnostics{
		{Category: CategoryApproximation, Message: "a"},
		{Category: CategoryUnsupportedFn, Message: "b"},
		{Category: CategoryUnsupportedFn, Message: "c"},
	}

	counts := ds.Counts()
	require.Len(t, counts, 2)
	assert.Equal(t, CategoryUnsupportedFn, counts[0].Category)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)

	assert.Contains(t, ds.Summary(), "3 warning(s):")
	assert.Contains(t, ds.Report(), "--- Summary ---")
	assert.Len(t, ds.Filter(CategoryUnsupportedFn), 2)
	assert.Equal(t, "No warnings.", Diagnostics(nil).Summary())
}

func TestValidate(t *testing.T) {
	valid := &Document{Blocks: []*Block{{
		Mode:  ModeOrd,
		Index: 1,
		Rules: []*Rule{{GrammarNum: 1, RuleNum: 1, LHS: []Element{NonTerminal{Name: "S"}}, RHS: []Element{Note{Name: "do", Octave: 4, HasOctave: true}}}},
	}}}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name string
		doc  *Document
	}{
		{name: "no blocks", doc: &Document{}},
		{name: "unknown mode", doc: &Document{Blocks: []*Block{{Mode: "FOO", Index: 1}}}},
		{name: "empty lhs", doc: &Document{Blocks: []*Block{{Mode: ModeOrd, Index: 1, Rules: []*Rule{{GrammarNum: 1, RuleNum: 1}}}}}},
		{name: "bare flag with operand", doc: &Document{Blocks: []*Block{{Mode: ModeRnd, Index: 1, Rules: []*Rule{{
			GrammarNum: 1, RuleNum: 1,
			LHS:   []Element{NonTerminal{Name: "S"}},
			Flags: []Flag{{Name: "Ideas", Op: FlagBare, Value: "3"}},
		}}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
		})
	}
}

func TestAlphabetTable_Homomorphism(t *testing.T) {
	table := &AlphabetTable{
		Sources: []string{"ruwet"},
		Homomorphisms: map[string][]HomoPair{
			"mineur": {{Source: "mi4", Target: "mib4"}},
		},
	}
	assert.Equal(t, map[string]string{"mi4": "mib4"}, table.Homomorphism("mineur"))
	assert.Nil(t, table.Homomorphism("majeur"))
	assert.True(t, table.Provides("ruwet"))

	var none *AlphabetTable
	assert.Nil(t, none.Homomorphism("mineur"))
	assert.False(t, none.Provides("ruwet"))
}
