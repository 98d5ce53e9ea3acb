package resources

import (
	"errors"
	"fmt"
	"os"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// scaleTableRoot decodes an overlay such as:
//
//	tuning "bali pelog" {
//	  id = "Tuning.pelog"
//	}
//	raga "todi_ka_5" {
//	  id = "Scale.todi"
//	}
type scaleTableRoot struct {
	Tunings []*scaleEntry `hcl:"tuning,block"`
	Ragas   []*scaleEntry `hcl:"raga,block"`
	Remain  hcl.Body      `hcl:",remain"`
}

type scaleEntry struct {
	Name string `hcl:"name,label"`
	ID   string `hcl:"id"`
}

// ParseScaleTableHCL decodes an HCL scale table overlay.
func ParseScaleTableHCL(filename string, src []byte) (*theory.ScaleTable, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scale table %s: %w", filename, diags)
	}

	var root scaleTableRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scale table %s: %w", filename, diags)
	}

	table := &theory.ScaleTable{
		Tunings: make(map[string]string, len(root.Tunings)),
		Ragas:   make(map[string]string, len(root.Ragas)),
	}
	for _, e := range root.Tunings {
		table.Tunings[e.Name] = e.ID
	}
	for _, e := range root.Ragas {
		table.Ragas[e.Name] = e.ID
	}
	return table, nil
}

// LoadScaleTable reads an HCL overlay and layers it over the built-in table.
func LoadScaleTable(path string) (*theory.ScaleTable, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read scale table: %w", err)
	}
	overlay, err := ParseScaleTableHCL(path, src)
	if err != nil {
		return nil, err
	}
	return theory.DefaultScaleTable().Merge(overlay), nil
}
