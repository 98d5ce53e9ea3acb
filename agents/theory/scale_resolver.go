package theory

import (
	"regexp"
	"strconv"
	"strings"
)

// ResolutionKind says whether a resolution names a Scale or a Tuning.
type ResolutionKind string

const (
	KindScale  ResolutionKind = "scale"
	KindTuning ResolutionKind = "tuning"
)

// Resolution is the outcome of resolving a _scale(name, root) directive.
type Resolution struct {
	Kind ResolutionKind
	ID   string
	Root int
	// Unknown is set when nothing matched and the chromatic fallback was used.
	Unknown bool
}

var keyQuality = regexp.MustCompile(`(?i)^([A-G])([#b]?)(maj|min)$`)

var letterSemitones = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// Resolve maps a scale, tuning or raga name plus a root argument to a SuperCollider
// identifier. First match wins: key+quality (Cmaj, F#min), tunings, ragas, chromatic.
func (t *ScaleTable) Resolve(name, rootArg string) Resolution {
	if m := keyQuality.FindStringSubmatch(strings.TrimSpace(name)); m != nil {
		id := "Scale.major"
		if strings.EqualFold(m[3], "min") {
			id = "Scale.minor"
		}
		return Resolution{Kind: KindScale, ID: id, Root: letterRoot(m[1], m[2])}
	}

	key := normalizeScaleName(name)
	if t != nil {
		if id, ok := t.Tunings[key]; ok {
			return Resolution{Kind: KindTuning, ID: id, Root: ParseRoot(rootArg)}
		}
		if id, ok := t.Ragas[key]; ok {
			return Resolution{Kind: KindScale, ID: id, Root: ParseRoot(rootArg)}
		}
	}
	return Resolution{Kind: KindScale, ID: "Scale.chromatic", Root: ParseRoot(rootArg), Unknown: true}
}

func letterRoot(letter, accidental string) int {
	base := letterSemitones[strings.ToUpper(letter)]
	switch strings.ToLower(accidental) {
	case "#":
		base++
	case "b":
		base--
	}
	return mod12(base)
}

var (
	rootLetter    = regexp.MustCompile(`(?i)^([A-G])([#b]?)(\d)?$`)
	trailingDigit = regexp.MustCompile(`\d+$`)
	trailingIndex = regexp.MustCompile(`_\d+$`)
)

// French roots, with "p" or "d" for sharp and "b" for flat.
var frenchRoots = map[string]int{
	"do": 0, "dop": 1, "dod": 1, "dob": 11,
	"re": 2, "rep": 3, "red": 3, "reb": 1,
	"mi": 4, "mip": 5, "mid": 5, "mib": 3,
	"fa": 5, "fap": 6, "fad": 6, "fab": 4,
	"sol": 7, "solp": 8, "sold": 8, "solb": 6,
	"la": 9, "lap": 10, "lad": 10, "lab": 8,
	"si": 11, "sip": 0, "sid": 0, "sib": 10,
}

var indianRoots = map[string]int{"sa": 0, "ri": 2, "ga": 4, "ma": 5, "pa": 7, "dha": 9, "ni": 11}

// ParseRoot turns a root argument (7, C4, Bb, dop4, sa_4) into a pitch class in [0, 11].
// The octave is ignored. Unrecognized arguments give 0.
func ParseRoot(arg string) int {
	arg = strings.TrimSpace(arg)
	if n, err := strconv.Atoi(arg); err == nil {
		return mod12(n)
	}
	if m := rootLetter.FindStringSubmatch(arg); m != nil {
		return letterRoot(m[1], m[2])
	}
	lower := strings.ToLower(arg)
	if pc, ok := frenchRoots[trailingDigit.ReplaceAllString(lower, "")]; ok {
		return pc
	}
	if pc, ok := indianRoots[trailingIndex.ReplaceAllString(lower, "")]; ok {
		return pc
	}
	return 0
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}
