package models

// Element is one right-hand-side (or left-hand-side) item of a rule.
// The set of implementations is closed; consumers switch over all of them.
type Element interface {
	element()
}

// Note is a pitched note such as do4, sa6 or C#4.
type Note struct {
	Name      string
	Octave    int
	HasOctave bool
}

// Rest is "-" (determined) or "_" (prolongation).
type Rest struct {
	Determined bool
}

// UndeterminedRest is "...".
type UndeterminedRest struct{}

// Terminal is a lowercase symbol such as ek or tin.
type Terminal struct {
	Name string
}

// NonTerminal is an uppercase symbol such as S or Tihai.
type NonTerminal struct {
	Name string
}

// Variable is |name|.
type Variable struct {
	Name string
}

// Wildcard is ?N (0 for an anonymous ?).
type Wildcard struct {
	Index int
}

// Polymetric is {ratio, voice, voice...} or {voice}.
type Polymetric struct {
	Ratio    int
	HasRatio bool
	Voices   [][]Element
}

// Directive is a performance directive _name(args).
type Directive struct {
	Name string
	Args []string
}

// Lambda is the empty production marker.
type Lambda struct{}

// HomoKind tags a homomorphism application.
type HomoKind string

const (
	HomoMaster HomoKind = "master" // (= ...)
	HomoSlave  HomoKind = "slave"  // (: ...)
	HomoRef    HomoKind = "ref"    // label such as mineur
)

// HomoApply is a homomorphism application.
type HomoApply struct {
	Kind     HomoKind
	Elements []Element
}

// TimeSig is a time signature such as 4+4+4/4.
type TimeSig struct {
	Text string
}

// Annotation is a bracketed free-text annotation.
type Annotation struct {
	Text string
}

// Quoted is a single-quoted literal such as '1'.
type Quoted struct {
	Text string
}

// Tie is a tied note: C4& starts a tie, &C4 ends one.
type Tie struct {
	Note  Note
	Start bool
}

// ContextMarker is a context-sensitive marker (distant, open, close, wild, left).
type ContextMarker struct {
	Kind   string
	Symbol Element
}

// Goto is _goto(grammar, rule).
type Goto struct {
	Grammar int
	Rule    int
}

func (Note) element()             {}
func (Rest) element()             {}
func (UndeterminedRest) element() {}
func (Terminal) element()         {}
func (NonTerminal) element()      {}
func (Variable) element()         {}
func (Wildcard) element()         {}
func (Polymetric) element()       {}
func (Directive) element()        {}
func (Lambda) element()           {}
func (HomoApply) element()        {}
func (TimeSig) element()          {}
func (Annotation) element()       {}
func (Quoted) element()           {}
func (Tie) element()              {}
func (ContextMarker) element()    {}
func (Goto) element()             {}
