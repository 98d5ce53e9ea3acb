package models

// Mode is the rule selection mode of a grammar block.
type Mode string

const (
	ModeOrd  Mode = "ORD"  // sequential
	ModeRnd  Mode = "RND"  // uniform random
	ModeLin  Mode = "LIN"  // left-to-right random
	ModeSub  Mode = "SUB"  // substitution
	ModeSub1 Mode = "SUB1" // substitution, applied once
)

// Valid reports whether m is one of the five recognized modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeOrd, ModeRnd, ModeLin, ModeSub, ModeSub1:
		return true
	}
	return false
}

// Random reports whether rules of a block in this mode are chosen at random.
func (m Mode) Random() bool {
	return m == ModeRnd || m == ModeLin
}

// Document is one parsed grammar file.
type Document struct {
	Headers []Header
	Blocks  []*Block
}

// Header is an informational entry preceding the grammar blocks.
type Header interface {
	header()
}

// Comment is a "//" header line.
type Comment struct {
	Text string
}

// FileRef is a "-se.name", "-al.name", ... resource reference.
type FileRef struct {
	Prefix string
	Name   string
}

// InitDirective is an "INIT:" line.
type InitDirective struct {
	Text string
}

func (Comment) header()       {}
func (FileRef) header()       {}
func (InitDirective) header() {}

// Block is a grammar block: a group of rules sharing one selection mode.
type Block struct {
	Mode     Mode
	Index    int
	Label    string
	Preamble []Directive
	Rules    []*Rule
}

// Rule is a single production.
type Rule struct {
	GrammarNum int
	RuleNum    int
	Weight     *Weight
	Flags      []Flag
	LHS        []Element
	RHS        []Element
	Comment    string
}

// ContextSensitive reports whether the rule names context symbols after its primary symbol.
func (r *Rule) ContextSensitive() bool {
	return len(r.LHS) > 1
}

// Weight is a rule weight, optionally decremented after each use (<50-12>).
type Weight struct {
	Value     int
	Decrement int
}

// Decrements reports whether the weight shrinks after use.
func (w *Weight) Decrements() bool {
	return w != nil && w.Decrement > 0
}

// FlagOp is the operator of a flag expression.
type FlagOp string

const (
	FlagBare    FlagOp = ""
	FlagAssign  FlagOp = "="
	FlagInc     FlagOp = "+"
	FlagDec     FlagOp = "-"
	FlagGreater FlagOp = ">"
	FlagLess    FlagOp = "<"
)

// Flag is a named runtime variable used as a guard or mutated as a side effect.
type Flag struct {
	Name  string
	Op    FlagOp
	Value string
}

// IsCondition reports whether the flag guards rule selection.
func (f Flag) IsCondition() bool {
	return f.Op == FlagBare || f.Op == FlagGreater || f.Op == FlagLess
}

// IsOperation reports whether the flag mutates its variable.
func (f Flag) IsOperation() bool {
	return f.Op == FlagAssign || f.Op == FlagInc || f.Op == FlagDec
}

// String renders the flag the way it is written between slashes.
func (f Flag) String() string {
	if f.Op != FlagBare && f.Value != "" {
		return f.Name + string(f.Op) + f.Value
	}
	return f.Name
}

// SymbolName returns the name of a symbol element, or "" for non-symbols.
func SymbolName(e Element) string {
	switch v := e.(type) {
	case NonTerminal:
		return v.Name
	case Variable:
		return v.Name
	case Terminal:
		return v.Name
	}
	return ""
}

// PrimaryName returns the rule's left-hand-side symbol name.
func (r *Rule) PrimaryName() string {
	if i := r.PrimaryIndex(); i >= 0 {
		return SymbolName(r.LHS[i])
	}
	return ""
}

// PrimaryIndex is the position of the first symbol in the left-hand side, or -1.
func (r *Rule) PrimaryIndex() int {
	for i, e := range r.LHS {
		if SymbolName(e) != "" {
			return i
		}
	}
	return -1
}
