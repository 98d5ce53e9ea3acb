package theory

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

//go:embed data/scale_map.json
var defaultScaleMap []byte

// ScaleTable maps lower-cased tuning and raga names to SuperCollider identifiers.
// A table is read-only once built.
type ScaleTable struct {
	Tunings map[string]string
	Ragas   map[string]string
}

var (
	defaultTableOnce sync.Once
	defaultTable     *ScaleTable
)

// DefaultScaleTable returns the built-in table.
func DefaultScaleTable() *ScaleTable {
	defaultTableOnce.Do(func() {
		t, err := ParseScaleTableJSON(defaultScaleMap)
		if err != nil {
			panic(fmt.Sprintf("embedded scale table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// ParseScaleTableJSON reads a {"tunings": {...}, "ragas": {...}} document.
func ParseScaleTableJSON(data []byte) (*ScaleTable, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("scale table is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	t := &ScaleTable{
		Tunings: map[string]string{},
		Ragas:   map[string]string{},
	}
	root.Get("tunings").ForEach(func(k, v gjson.Result) bool {
		t.Tunings[normalizeScaleName(k.String())] = v.String()
		return true
	})
	root.Get("ragas").ForEach(func(k, v gjson.Result) bool {
		t.Ragas[normalizeScaleName(k.String())] = v.String()
		return true
	})
	return t, nil
}

// Merge returns a new table with other's entries layered over t's.
func (t *ScaleTable) Merge(other *ScaleTable) *ScaleTable {
	out := &ScaleTable{
		Tunings: make(map[string]string, len(t.Tunings)),
		Ragas:   make(map[string]string, len(t.Ragas)),
	}
	for k, v := range t.Tunings {
		out.Tunings[k] = v
	}
	for k, v := range t.Ragas {
		out.Ragas[k] = v
	}
	if other == nil {
		return out
	}
	for k, v := range other.Tunings {
		out.Tunings[normalizeScaleName(k)] = v
	}
	for k, v := range other.Ragas {
		out.Ragas[normalizeScaleName(k)] = v
	}
	return out
}

func normalizeScaleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
