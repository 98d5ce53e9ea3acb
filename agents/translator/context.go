package translator

import (
	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/google/go-cmp/cmp"
)

// stripContext removes pass-through context from a context-sensitive rule. Every
// element of the left side except the primary symbol is context. For each, last
// first, the last equal element of the right side is dropped. Context markers are
// conditions and are left alone.
func (c *compiler) stripContext(r *models.Rule) []models.Element {
	rhs := append([]models.Element(nil), r.RHS...)
	if !r.ContextSensitive() {
		return rhs
	}

	primary := r.PrimaryIndex()
	if primary < 0 {
		primary = 0
	}
	var context []models.Element
	for i, e := range r.LHS {
		if i == primary {
			continue
		}
		if _, marker := e.(models.ContextMarker); marker {
			continue
		}
		context = append(context, e)
	}

	for i := len(context) - 1; i >= 0; i-- {
		ctx := context[i]
		for j := len(rhs) - 1; j >= 0; j-- {
			if !cmp.Equal(rhs[j], ctx) {
				continue
			}
			rhs = append(rhs[:j], rhs[j+1:]...)
			c.warn(models.CategoryContextStripped,
				"pass-through context '%s' stripped from the right-hand side", describe(ctx))
			break
		}
	}
	return rhs
}

// describe renders an element briefly for diagnostics.
func describe(e models.Element) string {
	if name := models.SymbolName(e); name != "" {
		return name
	}
	return formatElement(e)
}
