package translator

import (
	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// PitchSource says how a terminal got its pitch.
type PitchSource string

const (
	SourceAlphabet   PitchSource = "alphabet"
	SourcePitchName  PitchSource = "pitch-name"
	SourceSequential PitchSource = "sequential"
)

// TerminalPitch is a symbol used without any rule, bound to a MIDI pitch so that it
// produces a playable event.
type TerminalPitch struct {
	Name   string      `json:"name"`
	MIDI   int         `json:"midi"`
	Source PitchSource `json:"source"`
}

// firstSequentialPitch is middle C; unnamed terminals count up from it.
const firstSequentialPitch = 60

type classifier struct {
	idx       *index
	alphabet  *models.AlphabetTable
	order     []theory.Convention
	keyOffset int
	next      int
}

func newClassifier(idx *index, res Resources) *classifier {
	c := &classifier{
		idx:      idx,
		alphabet: res.Alphabet,
		next:     firstSequentialPitch,
	}
	if res.Settings != nil {
		c.order = theory.ConventionOrder(res.Settings.NoteConvention)
		c.keyOffset = res.Settings.C4Key - 60
	}
	return c
}

// classify assigns a pitch to every undefined symbol, in order of first appearance.
// Precedence: alphabet table, pitch-name pattern, next sequential number.
func (c *classifier) classify(doc *models.Document) {
	for _, b := range doc.Blocks {
		for _, r := range b.Rules {
			walkRHS(r.RHS, func(e models.Element) {
				switch v := e.(type) {
				case models.NonTerminal:
					c.add(v.Name, true)
				case models.Terminal:
					c.add(v.Name, true)
				case models.Quoted:
					c.add(v.Text, false)
				}
			})
		}
	}
}

func (c *classifier) add(name string, byName bool) {
	if name == "" || c.idx.defined(name) || c.idx.homoLabels[name] {
		return
	}
	if _, seen := c.idx.pitchOf[name]; seen {
		return
	}

	tp := TerminalPitch{Name: name}
	if midi, ok := c.alphabetPitch(name); ok {
		tp.MIDI, tp.Source = midi, SourceAlphabet
	} else if midi, _, ok := theory.PitchFromName(name, c.order...); ok && byName {
		tp.MIDI, tp.Source = midi+c.keyOffset, SourcePitchName
	} else {
		tp.MIDI, tp.Source = c.next, SourceSequential
		c.next++
	}
	c.idx.pitchOf[name] = tp.MIDI
	c.idx.terminals = append(c.idx.terminals, tp)
}

func (c *classifier) alphabetPitch(name string) (int, bool) {
	if c.alphabet == nil {
		return 0, false
	}
	midi, ok := c.alphabet.Terminals[name]
	return midi, ok
}
