package translator

import (
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// modifier is one event key set by a performance directive, e.g. \amp, 0.63.
type modifier struct {
	key   string
	value string
}

// orderedMods is the running modifier state. Keys keep the position of their first
// assignment; values are immutable so a snapshot can be shared.
type orderedMods []modifier

// with returns a copy with key set to value.
func (m orderedMods) with(key, value string) orderedMods {
	out := make(orderedMods, len(m), len(m)+1)
	copy(out, m)
	for i := range out {
		if out[i].key == key {
			out[i].value = value
			return out
		}
	}
	return append(out, modifier{key: key, value: value})
}

func (m orderedMods) get(key string) (string, bool) {
	for _, kv := range m {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

// equal compares the key/value sets, ignoring order.
func (m orderedMods) equal(o orderedMods) bool {
	if len(m) != len(o) {
		return false
	}
	for _, kv := range m {
		if v, ok := o.get(kv.key); !ok || v != kv.value {
			return false
		}
	}
	return true
}

func (m orderedMods) args() string {
	parts := make([]string, 0, len(m))
	for _, kv := range m {
		parts = append(parts, `\`+kv.key+", "+kv.value)
	}
	return strings.Join(parts, ", ")
}

type itemKind int

const (
	itemPitch itemKind = iota
	itemRest
	itemPattern
	itemTieStart
	itemTieEnd
)

// item is one sounding (or silent) element of a right-hand side.
type item struct {
	kind itemKind
	midi int
	code string
}

// patternCode renders the item where a playable event source is required.
func (it item) patternCode() string {
	switch it.kind {
	case itemPitch:
		return singleNote(it.midi)
	case itemTieStart:
		return tiedNote(it.midi)
	case itemRest, itemTieEnd:
		return silentEvent
	}
	return it.code
}

// valueCode renders the item inside a \midinote value list.
func (it item) valueCode() string {
	if it.kind == itemRest {
		return restMarker
	}
	return strconv.Itoa(it.midi)
}

// pitchOnly reports whether items fit in a single \midinote value list.
func pitchOnly(items []item) bool {
	pitched := false
	for _, it := range items {
		switch it.kind {
		case itemPitch:
			pitched = true
		case itemRest:
		default:
			return false
		}
	}
	return pitched
}

func valueCodes(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.valueCode()
	}
	return out
}

func patternCodes(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.patternCode()
	}
	return out
}

// effect is what one element contributes to the fold.
type effect struct {
	mods    []modifier
	comment string
	item    *item
}

func itemEffect(it item) effect {
	return effect{item: &it}
}

func modEffect(key, value string) effect {
	return effect{mods: []modifier{{key: key, value: value}}}
}

func commentEffect(text string) effect {
	return effect{comment: text}
}

// scanState is the accumulator of the left-to-right fold over one right-hand side.
type scanState struct {
	mods          orderedMods
	pendingRepeat int
	lastVel       int
	rndVel        int
	rndTime       float64
	tieMIDI       int
	tieOpen       bool
	homoLabel     string
}

func (c *compiler) newScanState() *scanState {
	st := &scanState{lastVel: 100}
	if c.res.Settings != nil && c.res.Settings.DefaultVelocity > 0 {
		st.lastVel = c.res.Settings.DefaultVelocity
	}
	return st
}

// takeRepeat applies a pending _repeat(N) to it.
func (st *scanState) takeRepeat(it item) item {
	if st.pendingRepeat <= 0 {
		return it
	}
	n := st.pendingRepeat
	st.pendingRepeat = 0
	return item{kind: itemPattern, code: scPn(it.patternCode(), n)}
}

// compileRHS folds a rule's right-hand side into one pattern expression. Comments
// produced on the way are returned separately so they can be placed outside brackets.
func (c *compiler) compileRHS(r *models.Rule) (string, []string) {
	c.rule = r
	defer func() { c.rule = nil }()

	type entry struct {
		it   item
		mods orderedMods
	}
	var (
		entries  []entry
		comments []string
	)

	st := c.newScanState()
	for _, e := range c.stripContext(r) {
		eff := c.compileElement(st, e)
		for _, m := range eff.mods {
			st.mods = st.mods.with(m.key, sanitizeNumber(m.value))
		}
		if eff.comment != "" {
			comments = append(comments, eff.comment)
		}
		if eff.item != nil {
			entries = append(entries, entry{it: st.takeRepeat(*eff.item), mods: st.mods})
		}
	}
	if len(entries) == 0 {
		return emptyEvent, comments
	}

	var groups []string
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i < len(entries) && entries[i].mods.equal(entries[start].mods) {
			continue
		}
		items := make([]item, 0, i-start)
		for _, en := range entries[start:i] {
			items = append(items, en.it)
		}
		groups = append(groups, wrapGroup(items, entries[start].mods))
		start = i
	}
	if len(groups) == 1 {
		return groups[0], comments
	}
	return scPseq(groups), comments
}

// wrapGroup renders consecutive items that share one modifier state.
func wrapGroup(items []item, mods orderedMods) string {
	if pitchOnly(items) {
		return pitchBind(scPseq(valueCodes(items)), mods, defaultDur)
	}
	codes := patternCodes(items)
	inner := codes[0]
	if len(codes) > 1 {
		inner = scPseq(codes)
	}
	if len(mods) == 0 {
		return inner
	}
	return scPbindf(inner, mods)
}

// compileElement is the per-element step of the fold.
func (c *compiler) compileElement(st *scanState, e models.Element) effect {
	switch v := e.(type) {
	case models.Note:
		midi, ok := c.noteMIDI(v)
		if !ok {
			c.warn(models.CategoryApproximation, "unknown note name '%s' emitted as a rest", v.Name)
			return itemEffect(item{kind: itemRest})
		}
		return itemEffect(item{kind: itemPitch, midi: midi})

	case models.Rest:
		return itemEffect(item{kind: itemRest})

	case models.UndeterminedRest:
		c.warn(models.CategoryApproximation, "undetermined rest '...' emitted as a fixed rest")
		return itemEffect(item{kind: itemRest})

	case models.NonTerminal:
		return itemEffect(item{kind: itemPattern, code: scPdefRef(c.resolveRef(v.Name))})

	case models.Variable:
		return itemEffect(item{kind: itemPattern, code: scPdefRef(c.resolveRef(v.Name))})

	case models.Terminal:
		return itemEffect(item{kind: itemPattern, code: scPdefRef(c.resolveRef(v.Name))})

	case models.Wildcard:
		c.warn(models.CategoryApproximation, "wildcard ?%d emitted as a rest", v.Index)
		return itemEffect(item{kind: itemRest})

	case models.Polymetric:
		code, comments := c.compilePolymetric(st, v)
		return effect{item: &item{kind: itemPattern, code: code}, comment: strings.Join(comments, "; ")}

	case models.Directive:
		return c.applyDirective(st, v)

	case models.HomoApply:
		return c.compileHomo(st, v)

	case models.TimeSig:
		c.warn(models.CategoryTimeSigIgnored, "time signature '%s' not used for duration", v.Text)
		return commentEffect("time sig: " + v.Text)

	case models.Quoted:
		c.warn(models.CategoryApproximation, "quoted symbol '%s' emitted as a terminal", v.Text)
		return itemEffect(item{kind: itemPattern, code: scPdefRef(v.Text)})

	case models.Tie:
		midi, ok := c.noteMIDI(v.Note)
		if !ok {
			c.warn(models.CategoryApproximation, "unknown note name '%s' emitted as a rest", v.Note.Name)
			return itemEffect(item{kind: itemRest})
		}
		if v.Start {
			st.tieMIDI, st.tieOpen = midi, true
			return itemEffect(item{kind: itemTieStart, midi: midi})
		}
		if st.tieOpen && st.tieMIDI == midi {
			st.tieOpen = false
			return itemEffect(item{kind: itemTieEnd, midi: midi})
		}
		return itemEffect(item{kind: itemPitch, midi: midi})

	case models.Goto:
		c.warn(models.CategoryUnsupportedFn, "_goto(%d,%d) not implemented", v.Grammar, v.Rule)
		return effect{}

	case models.Lambda, models.Annotation, models.ContextMarker:
		return effect{}

	default:
		c.warn(models.CategoryStructuralViolation, "unknown element type %T skipped", e)
		return effect{}
	}
}

func (c *compiler) noteMIDI(n models.Note) (int, bool) {
	midi, err := theory.NoteMIDI(n)
	if err != nil {
		return 0, false
	}
	return midi + c.keyOffset, true
}

// sanitizeNumber strips the leading + of a positive number, which SuperCollider rejects.
func sanitizeNumber(v string) string {
	return strings.TrimPrefix(v, "+")
}
