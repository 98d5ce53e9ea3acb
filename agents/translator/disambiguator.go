package translator

import (
	"fmt"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// ambiguous reports whether more than one block defines name.
func (idx *index) ambiguous(name string) bool {
	return len(idx.owners[name]) > 1
}

// pdefName is the definition name of a symbol inside the given block.
func (idx *index) pdefName(name string, block int) string {
	if idx.ambiguous(name) {
		return fmt.Sprintf("%s_g%d", name, block)
	}
	return name
}

// playName is the definition the start statement refers to.
func (idx *index) playName(name string) string {
	if idx.ambiguous(name) {
		return idx.pdefName(name, idx.owners[name][0])
	}
	return name
}

// resolveRef picks the definition a reference inside the current block points to:
// the current block's own definition when it has one, otherwise the first owner.
func (c *compiler) resolveRef(name string) string {
	owners := c.idx.owners[name]
	if len(owners) < 2 {
		return name
	}
	for _, b := range owners {
		if b == c.block {
			return c.idx.pdefName(name, b)
		}
	}
	c.warn(models.CategoryMissingResource,
		"'%s' is not defined in subgrammar %d, using the definition from subgrammar %d",
		name, c.block, owners[0])
	return c.idx.pdefName(name, owners[0])
}
