package translator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// Resources are the lookup tables a translation may read. Every field is optional.
type Resources struct {
	Alphabet *models.AlphabetTable
	Settings *models.Settings
	Scales   *theory.ScaleTable
}

// Options tune a translation.
type Options struct {
	// SourceName appears in the generated header.
	SourceName string
	// StartSymbol is the symbol whose definition is played. Defaults to "S".
	StartSymbol string
	// Seed makes random choices reproducible with Pseed.
	Seed *int64
	// MaxDur bounds playback, in beats, with Pfindur.
	MaxDur *float64
}

// Result is the generated SuperCollider code and what was learned on the way.
type Result struct {
	Code        string             `json:"code"`
	Diagnostics models.Diagnostics `json:"diagnostics"`
	Terminals   []TerminalPitch    `json:"terminals"`
}

// diagnosticSink collects findings in emission order.
type diagnosticSink struct {
	items models.Diagnostics
}

func (s *diagnosticSink) add(cat models.Category, grammar, rule int, format string, args ...any) {
	s.items = append(s.items, models.Diagnostic{
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		Grammar:  grammar,
		Rule:     rule,
	})
}

// compiler holds the read-only index and the current location during emission.
type compiler struct {
	idx       *index
	res       Resources
	scales    *theory.ScaleTable
	opts      Options
	sink      *diagnosticSink
	keyOffset int

	block int
	rule  *models.Rule
}

func (c *compiler) warn(cat models.Category, format string, args ...any) {
	ruleNum := 0
	if c.rule != nil {
		ruleNum = c.rule.RuleNum
	}
	c.sink.add(cat, c.block, ruleNum, format, args...)
}

// Translate compiles a grammar document into SuperCollider pattern code. It fails only
// on an invalid document or when the generated code breaks delimiter balance; all
// other findings are returned as diagnostics.
func Translate(doc *models.Document, res Resources, opts Options) (*Result, error) {
	if err := models.Validate(doc); err != nil {
		return nil, err
	}
	if opts.StartSymbol == "" {
		opts.StartSymbol = "S"
	}
	if opts.SourceName == "" {
		opts.SourceName = "unknown"
	}

	c := &compiler{
		idx:    newIndex(doc, res),
		res:    res,
		scales: res.Scales,
		opts:   opts,
		sink:   &diagnosticSink{},
	}
	if c.scales == nil {
		c.scales = theory.DefaultScaleTable()
	}
	if res.Settings != nil {
		c.keyOffset = res.Settings.C4Key - 60
	}

	code := c.emit(doc)
	result := &Result{
		Code:        code,
		Diagnostics: c.sink.items,
		Terminals:   c.idx.terminals,
	}
	if err := checkBalanced(code); err != nil {
		result.Diagnostics = append(result.Diagnostics, models.Diagnostic{
			Category: models.CategoryStructuralViolation,
			Message:  err.Error(),
		})
		return result, err
	}
	return result, nil
}

func (c *compiler) emit(doc *models.Document) string {
	var parts []string

	parts = append(parts, scHeader("BP3 Grammar: "+c.opts.SourceName, c.opts.SourceName), "")
	parts = append(parts, scSynthDefDefault())

	if bpm, ok := c.tempo(doc); ok {
		parts = append(parts, scTempo(bpm), "")
	}

	parts = append(parts, c.headerComments(doc)...)
	parts = append(parts, "")

	if init := c.flagInit(); init != "" {
		parts = append(parts, init)
	}

	if len(c.idx.terminals) > 0 {
		parts = append(parts, scComment("--- Terminal sound-objects (customize to change sounds) ---"))
		for _, t := range c.idx.terminals {
			parts = append(parts, scPdef(t.Name, singleNote(t.MIDI)))
		}
		parts = append(parts, "")
	}

	for pos, b := range doc.Blocks {
		parts = append(parts, c.emitBlock(b, pos)...)
	}
	c.block, c.rule = 0, nil

	if c.idx.defined(c.opts.StartSymbol) {
		name := c.idx.playName(c.opts.StartSymbol)
		parts = append(parts, scComment("--- Play ---"))
		if c.opts.MaxDur != nil {
			parts = append(parts, scPfindurPlay(*c.opts.MaxDur, name))
		} else {
			parts = append(parts, scPlay(name))
		}
	} else {
		c.warn(models.CategoryMissingResource,
			"start symbol '%s' has no rules, no play statement emitted", c.opts.StartSymbol)
	}
	parts = append(parts, "", scFooter(), "")
	return strings.Join(parts, "\n")
}

// tempo is the last _mm(n) found in a block preamble, falling back to the settings tempo.
func (c *compiler) tempo(doc *models.Document) (float64, bool) {
	bpm, found := 0.0, false
	for _, b := range doc.Blocks {
		for _, d := range b.Preamble {
			if !strings.EqualFold(d.Name, "mm") || len(d.Args) == 0 {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(d.Args[0]), 64); err == nil && v > 0 {
				bpm, found = v, true
			}
		}
	}
	if !found && c.res.Settings != nil && c.res.Settings.TempoBPM > 0 {
		return round(c.res.Settings.TempoBPM, 4), true
	}
	return bpm, found
}

// headerComments echoes the document header and reports references whose resource was
// not supplied.
func (c *compiler) headerComments(doc *models.Document) []string {
	var out []string
	for _, h := range doc.Headers {
		switch v := h.(type) {
		case models.FileRef:
			out = append(out, scComment(fmt.Sprintf("BP3 reference: -%s.%s", v.Prefix, v.Name)))
			if !c.supplied(v) {
				c.warn(models.CategoryMissingResource, "-%s.%s referenced but not loaded", v.Prefix, v.Name)
			}
		case models.InitDirective:
			out = append(out, scComment("BP3 INIT: "+v.Text))
		case models.Comment:
			if strings.TrimSpace(v.Text) != "" {
				out = append(out, scComment(v.Text))
			}
		}
	}
	return out
}

func (c *compiler) supplied(ref models.FileRef) bool {
	switch ref.Prefix {
	case "se":
		return c.res.Settings != nil && c.res.Settings.Name == ref.Name
	case "al", "ho":
		return c.res.Alphabet.Provides(ref.Name)
	}
	return false
}

func (c *compiler) emitBlock(b *models.Block, pos int) []string {
	c.block = c.idx.blockIDs[pos]
	c.rule = nil
	if declared := blockNumber(b, pos); declared != c.block {
		c.warn(models.CategoryApproximation,
			"subgrammar number %d is used by an earlier subgrammar, numbered %d", declared, c.block)
	}

	parts := []string{scComment(fmt.Sprintf("--- Subgrammar %d (%s) ---", c.block, b.Mode))}
	if b.Label != "" {
		parts = append(parts, scComment("Label: "+b.Label))
	}
	if len(b.Preamble) > 0 {
		directives := make([]string, len(b.Preamble))
		for i, d := range b.Preamble {
			directives[i] = formatElement(d)
		}
		parts = append(parts, scComment("Preamble: "+strings.Join(directives, " ")))
	}
	parts = append(parts, "")

	var order []string
	groups := map[string][]*models.Rule{}
	for _, r := range b.Rules {
		name := lhsName(r)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], r)
	}
	for _, name := range order {
		parts = append(parts, c.compileSymbol(c.idx.pdefName(name, c.block), groups[name], b.Mode), "")
	}
	return parts
}
