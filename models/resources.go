package models

// NoteConvention is the note naming convention declared by a settings file.
type NoteConvention int

const (
	ConventionEnglish NoteConvention = 0
	ConventionFrench  NoteConvention = 1
	ConventionIndian  NoteConvention = 2
	ConventionKeys    NoteConvention = 3
	ConventionTonal   NoteConvention = 4
)

func (c NoteConvention) String() string {
	switch c {
	case ConventionEnglish:
		return "English (C, D, E...)"
	case ConventionFrench:
		return "French (do, re, mi...)"
	case ConventionIndian:
		return "Indian (sa, re, ga...)"
	case ConventionKeys:
		return "Keys"
	case ConventionTonal:
		return "Tonal scales"
	}
	return "Unknown"
}

// Settings is the already-parsed content of a -se.* settings file.
type Settings struct {
	Name            string
	NoteConvention  NoteConvention
	TempoBPM        float64
	DefaultVelocity int
	DefaultVolume   int
	C4Key           int
	A4Freq          float64
	Quantization    int
	Striated        bool
}

// DefaultSettings mirrors the values BP3 assumes when a field is absent.
func DefaultSettings() Settings {
	return Settings{
		NoteConvention:  ConventionFrench,
		TempoBPM:        60 / (15.0 / 22.0),
		DefaultVelocity: 64,
		DefaultVolume:   90,
		C4Key:           60,
		A4Freq:          440,
		Quantization:    10,
		Striated:        true,
	}
}

// HomoPair is one source --> target substitution of a homomorphism.
type HomoPair struct {
	Source string
	Target string
}

// AlphabetTable is the already-parsed alphabet and homomorphism data for one document.
type AlphabetTable struct {
	// Sources lists the resource names the table was built from (without prefix).
	Sources []string
	// Terminals maps a terminal symbol to its MIDI pitch.
	Terminals map[string]int
	// Homomorphisms maps a label to its ordered substitution pairs.
	Homomorphisms map[string][]HomoPair
}

// Homomorphism returns the substitution map for label, or nil.
func (t *AlphabetTable) Homomorphism(label string) map[string]string {
	if t == nil {
		return nil
	}
	pairs, ok := t.Homomorphisms[label]
	if !ok || len(pairs) == 0 {
		return nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Source] = p.Target
	}
	return m
}

// Provides reports whether the table was built from the named resource.
func (t *AlphabetTable) Provides(name string) bool {
	if t == nil {
		return false
	}
	for _, s := range t.Sources {
		if s == name {
			return true
		}
	}
	return false
}
