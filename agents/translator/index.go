package translator

import (
	"sort"
	"strconv"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// ruleRef locates a rule inside the document.
type ruleRef struct {
	block int
	rule  *models.Rule
}

// index is everything the per-block compilation needs to know about the whole
// document. It is built once and only read afterwards.
type index struct {
	rulesByLHS map[string][]ruleRef
	// owners lists, per defined symbol, the ids of the blocks defining it in document
	// order.
	owners     map[string][]int
	// blockIDs holds a distinct number per block position.
	blockIDs   []int
	homoLabels map[string]bool
	terminals  []TerminalPitch
	pitchOf    map[string]int
	flagNames  []string
}

// blockNumber is the block's declared index, or its 1-based position when it has none.
func blockNumber(b *models.Block, pos int) int {
	if b.Index != 0 {
		return b.Index
	}
	return pos + 1
}

// lhsName is the name a rule defines. Rules without any symbol on the left get a
// synthetic name so they still produce a definition.
func lhsName(r *models.Rule) string {
	if name := r.PrimaryName(); name != "" {
		return name
	}
	return syntheticName(r)
}

// assignBlockIDs numbers blocks by their declared index. A block whose number an
// earlier block already took gets the next free one.
func assignBlockIDs(doc *models.Document) []int {
	ids := make([]int, len(doc.Blocks))
	taken := map[int]bool{}
	for pos, b := range doc.Blocks {
		n := blockNumber(b, pos)
		for taken[n] {
			n++
		}
		taken[n] = true
		ids[pos] = n
	}
	return ids
}

func syntheticName(r *models.Rule) string {
	return "gram" + strconv.Itoa(r.GrammarNum) + "_rule" + strconv.Itoa(r.RuleNum)
}

func newIndex(doc *models.Document, res Resources) *index {
	idx := &index{
		rulesByLHS: map[string][]ruleRef{},
		owners:     map[string][]int{},
		homoLabels: map[string]bool{},
		pitchOf:    map[string]int{},
		blockIDs:   assignBlockIDs(doc),
	}

	flags := map[string]bool{}
	for pos, b := range doc.Blocks {
		num := idx.blockIDs[pos]
		for _, r := range b.Rules {
			name := lhsName(r)
			idx.rulesByLHS[name] = append(idx.rulesByLHS[name], ruleRef{block: num, rule: r})
			if owned := idx.owners[name]; len(owned) == 0 || owned[len(owned)-1] != num {
				idx.owners[name] = append(owned, num)
			}

			for _, f := range r.Flags {
				flags[f.Name] = true
			}
			for _, e := range r.RHS {
				if h, ok := e.(models.HomoApply); ok && h.Kind == models.HomoRef {
					for _, inner := range h.Elements {
						if label := models.SymbolName(inner); label != "" {
							idx.homoLabels[label] = true
						}
					}
				}
			}
		}
	}

	for name := range flags {
		idx.flagNames = append(idx.flagNames, name)
	}
	sort.Strings(idx.flagNames)

	newClassifier(idx, res).classify(doc)
	return idx
}

func (idx *index) defined(name string) bool {
	_, ok := idx.rulesByLHS[name]
	return ok
}

// walkRHS visits elements depth-first, descending into polymetric voices and
// homomorphism bodies but not into homomorphism labels.
func walkRHS(elems []models.Element, visit func(models.Element)) {
	for _, e := range elems {
		visit(e)
		switch v := e.(type) {
		case models.Polymetric:
			for _, voice := range v.Voices {
				walkRHS(voice, visit)
			}
		case models.HomoApply:
			if v.Kind != models.HomoRef {
				walkRHS(v.Elements, visit)
			}
		}
	}
}
