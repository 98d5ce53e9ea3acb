package translator

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// maxInlineDepth bounds first-rule inlining when a homomorphism body is reduced to pitches.
const maxInlineDepth = 10

// compileHomo handles homomorphism labels and their (= ...) / (: ...) applications.
// A label selects the mapping for the rest of the rule.
func (c *compiler) compileHomo(st *scanState, h models.HomoApply) effect {
	if h.Kind == models.HomoRef {
		if len(h.Elements) == 0 {
			return effect{}
		}
		label := models.SymbolName(h.Elements[0])
		if label == "" {
			label = "?"
		}
		st.homoLabel = label
		if c.res.Alphabet.Homomorphism(label) == nil {
			c.warn(models.CategoryHomoNotExpanded,
				"homomorphism '%s' skipped (-ho. file not loaded)", label)
		}
		return effect{}
	}

	mapping := c.res.Alphabet.Homomorphism(st.homoLabel)
	if mapping != nil {
		if pitches, ok := c.reduceToPitches(h.Elements); ok {
			st.homoLabel = ""
			values := make([]string, len(pitches))
			for i, midi := range pitches {
				values[i] = strconv.Itoa(applyHomomorphism(midi, mapping))
			}
			return itemEffect(item{kind: itemPattern, code: pitchBind(scPseq(values), nil, defaultDur)})
		}
	}

	v := c.compileVoice(st, h.Elements)
	st.homoLabel = ""
	code := silentEvent
	switch len(v.items) {
	case 0:
	case 1:
		code = withMods(v.items[0].patternCode(), v.mods)
	default:
		code = withMods(scPseq(patternCodes(v.items)), v.mods)
	}
	return effect{item: &item{kind: itemPattern, code: code}, comment: strings.Join(v.comments, "; ")}
}

// reduceToPitches turns a homomorphism body into plain pitches, inlining the first rule
// of each symbol. Rests are skipped; anything else makes the body irreducible.
func (c *compiler) reduceToPitches(elems []models.Element) ([]int, bool) {
	var out []int
	for _, e := range elems {
		switch v := e.(type) {
		case models.Note:
			midi, ok := c.noteMIDI(v)
			if !ok {
				return nil, false
			}
			out = append(out, midi)
		case models.NonTerminal, models.Variable, models.Terminal:
			pitches := c.symbolPitches(models.SymbolName(v), 0)
			if len(pitches) == 0 {
				return nil, false
			}
			out = append(out, pitches...)
		case models.Rest:
		default:
			return nil, false
		}
	}
	return out, len(out) > 0
}

func (c *compiler) symbolPitches(name string, depth int) []int {
	if depth > maxInlineDepth {
		return nil
	}
	if midi, ok := c.idx.pitchOf[name]; ok {
		return []int{midi}
	}
	refs := c.idx.rulesByLHS[name]
	if len(refs) == 0 {
		return nil
	}
	var out []int
	for _, e := range refs[0].rule.RHS {
		switch v := e.(type) {
		case models.Note:
			if midi, ok := c.noteMIDI(v); ok {
				out = append(out, midi)
			}
		case models.NonTerminal, models.Variable, models.Terminal:
			out = append(out, c.symbolPitches(models.SymbolName(v), depth+1)...)
		}
	}
	return out
}

// applyHomomorphism maps a pitch through a note-name substitution table. Both the
// "p" sharp spelling (dop4) and the flat spelling (reb4) are looked up.
func applyHomomorphism(midi int, mapping map[string]string) int {
	if midi < 0 {
		return midi
	}
	name, flat := theory.FrenchName(midi)
	target, ok := mapping[name]
	if !ok && flat != "" {
		target, ok = mapping[flat]
	}
	if !ok {
		return midi
	}
	if out, ok := theory.ParseFrenchName(target); ok {
		return out
	}
	return midi
}
