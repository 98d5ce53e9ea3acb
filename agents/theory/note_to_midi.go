package theory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// Convention is a note naming convention.
type Convention string

const (
	ConventionFrench Convention = "french"
	ConventionIndian Convention = "indian"
	ConventionAnglo  Convention = "anglo"
)

// Semitone offsets from C (or sa). BP3 keeps Cb and B# in the written octave.
var (
	frenchSemitones = map[string]int{
		"do": 0, "re": 2, "mi": 4, "fa": 5, "sol": 7, "la": 9, "si": 11,
		"dob": -1, "do#": 1,
		"reb": 1, "re#": 3,
		"mib": 3, "mi#": 5,
		"fab": 4, "fa#": 6,
		"solb": 6, "sol#": 8,
		"lab": 8, "la#": 10,
		"sib": 10, "si#": 0,
	}

	indianSemitones = map[string]int{
		"sa": 0, "re": 2, "ga": 4, "ma": 5, "pa": 7, "dha": 9, "ni": 11,
	}

	angloSemitones = map[string]int{
		"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
		"C#": 1, "Db": 1, "D#": 3, "Eb": 3,
		"E#": 5, "Fb": 4, "F#": 6, "Gb": 6,
		"G#": 8, "Ab": 8, "A#": 10, "Bb": 10,
		"B#": 0, "Cb": -1,
	}
)

// Pitch-name patterns for symbols that were parsed as plain names.
var (
	anglo  = regexp.MustCompile(`^([A-G])(#|b)?(\d)$`)
	french = regexp.MustCompile(`^(do|re|mi|fa|sol|la|si)(b|#)?(\d)$`)
	indian = regexp.MustCompile(`^(sa|re|ga|ma|pa|dha|ni)(\d)$`)
)

// NoteToMIDI converts a note name and octave to a MIDI number.
// All conventions share one octave numbering: do4 = sa4 = C4 = 60.
func NoteToMIDI(name string, octave int) (int, error) {
	base := (octave + 1) * 12
	lower := strings.ToLower(name)
	if s, ok := frenchSemitones[lower]; ok {
		return base + s, nil
	}
	if s, ok := indianSemitones[lower]; ok {
		return base + s, nil
	}
	if s, ok := angloSemitones[name]; ok {
		return base + s, nil
	}
	return 0, fmt.Errorf("unknown note name: %q", name)
}

// NoteMIDI converts a parsed note, defaulting to octave 4 when none was written.
func NoteMIDI(n models.Note) (int, error) {
	octave := 4
	if n.HasOctave {
		octave = n.Octave
	}
	return NoteToMIDI(n.Name, octave)
}

// PitchFromName recognizes symbol names such as D#5, sol3 or dha6 and returns their MIDI
// number. The conventions are tried in the given order; an empty order tries anglo,
// french, indian.
func PitchFromName(name string, order ...Convention) (int, Convention, bool) {
	if len(order) == 0 {
		order = []Convention{ConventionAnglo, ConventionFrench, ConventionIndian}
	}
	for _, c := range order {
		var m []string
		switch c {
		case ConventionAnglo:
			m = anglo.FindStringSubmatch(name)
		case ConventionFrench:
			m = french.FindStringSubmatch(name)
		case ConventionIndian:
			if m = indian.FindStringSubmatch(name); m != nil {
				m = []string{m[0], m[1], "", m[2]}
			}
		}
		if m == nil {
			continue
		}
		octave, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		midi, err := NoteToMIDI(m[1]+m[2], octave)
		if err != nil {
			continue
		}
		return midi, c, true
	}
	return 0, "", false
}

// ConventionOrder returns the lookup order implied by a settings note convention.
func ConventionOrder(c models.NoteConvention) []Convention {
	switch c {
	case models.ConventionFrench:
		return []Convention{ConventionFrench, ConventionAnglo, ConventionIndian}
	case models.ConventionIndian:
		return []Convention{ConventionIndian, ConventionAnglo, ConventionFrench}
	}
	return []Convention{ConventionAnglo, ConventionFrench, ConventionIndian}
}

// DetectConvention guesses the convention used by a set of note names.
func DetectConvention(names []string) (Convention, bool) {
	frenchOnly := map[string]bool{"do": true, "sol": true, "si": true, "sib": true, "fa": true}
	indianOnly := map[string]bool{"sa": true, "ga": true, "ma": true, "pa": true, "dha": true, "ni": true}
	for _, n := range names {
		if frenchOnly[strings.ToLower(n)] {
			return ConventionFrench, true
		}
	}
	for _, n := range names {
		if indianOnly[strings.ToLower(n)] {
			return ConventionIndian, true
		}
	}
	for _, n := range names {
		if n != "" && n[0] >= 'A' && n[0] <= 'Z' {
			return ConventionAnglo, true
		}
	}
	return "", false
}

// frenchPitchClasses names the twelve pitch classes the way homomorphism files spell them.
var frenchPitchClasses = []string{"do", "dop", "re", "rep", "mi", "fa", "fap", "sol", "solp", "la", "lap", "si"}

var frenchFlatSpelling = map[string]string{
	"dop": "reb", "rep": "mib", "fap": "solb", "solp": "lab", "lap": "sib",
}

var frenchFlatClasses = map[string]int{"reb": 1, "mib": 3, "solb": 6, "lab": 8, "sib": 10}

// FrenchName spells a MIDI number in French with the "p" sharp suffix (61 → dop4),
// and also returns the flat spelling for black keys (reb4), or "".
func FrenchName(midi int) (string, string) {
	octave := midi/12 - 1
	pc := frenchPitchClasses[midi%12]
	name := fmt.Sprintf("%s%d", pc, octave)
	if alt, ok := frenchFlatSpelling[pc]; ok {
		return name, fmt.Sprintf("%s%d", alt, octave)
	}
	return name, ""
}

// ParseFrenchName is the inverse of FrenchName; it accepts both spellings.
func ParseFrenchName(name string) (int, bool) {
	name = strings.TrimSpace(name)
	// Longest class names first so "solp" wins over "sol".
	for _, width := range []int{4, 3, 2} {
		if len(name) <= width {
			continue
		}
		prefix := name[:width]
		octave, err := strconv.Atoi(name[width:])
		if err != nil {
			continue
		}
		for i, pc := range frenchPitchClasses {
			if pc == prefix {
				return (octave+1)*12 + i, true
			}
		}
		if pc, ok := frenchFlatClasses[prefix]; ok {
			return (octave+1)*12 + pc, true
		}
	}
	return 0, false
}
