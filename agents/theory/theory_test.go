package theory

import (
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteToMIDI(t *testing.T) {
	tests := []struct {
		name     string
		note     string
		octave   int
		expected int
	}{
		{"french do4", "do", 4, 60},
		{"french fa4", "fa", 4, 65},
		{"french sib4", "sib", 4, 70},
		{"indian sa4", "sa", 4, 60},
		{"indian dha6", "dha", 6, 93},
		{"anglo C4", "C", 4, 60},
		{"anglo C7", "C", 7, 96},
		{"anglo E7", "E", 7, 100},
		{"anglo C8", "C", 8, 108},
		{"anglo F#3", "F#", 3, 54},
		{"anglo Cb4", "Cb", 4, 59},
		{"anglo B#4", "B#", 4, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NoteToMIDI(tt.note, tt.octave)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := NoteToMIDI("xyz", 4)
	assert.Error(t, err)
}

func TestNoteMIDI_DefaultOctave(t *testing.T) {
	got, err := NoteMIDI(models.Note{Name: "la"})
	require.NoError(t, err)
	assert.Equal(t, 69, got)
}

func TestPitchFromName(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		expected int
		conv     Convention
		ok       bool
	}{
		{"anglo sharp", "D#5", 75, ConventionAnglo, true},
		{"anglo flat", "Bb3", 58, ConventionAnglo, true},
		{"anglo plain", "C7", 96, ConventionAnglo, true},
		{"french", "sol3", 55, ConventionFrench, true},
		{"indian", "dha6", 93, ConventionIndian, true},
		{"ordinary label", "Tihai", 0, "", false},
		{"two digit octave", "C10", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			midi, conv, ok := PitchFromName(tt.symbol)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, midi)
			assert.Equal(t, tt.conv, conv)
		})
	}
}

func TestPitchFromName_OrderFollowsConvention(t *testing.T) {
	// re4 exists in both the French and the Indian naming; the semitone is the same.
	midi, conv, ok := PitchFromName("re4", ConventionOrder(models.ConventionIndian)...)
	require.True(t, ok)
	assert.Equal(t, 62, midi)
	assert.Equal(t, ConventionIndian, conv)

	_, conv, _ = PitchFromName("re4", ConventionOrder(models.ConventionFrench)...)
	assert.Equal(t, ConventionFrench, conv)
}

func TestDetectConvention(t *testing.T) {
	c, ok := DetectConvention([]string{"re", "sol"})
	require.True(t, ok)
	assert.Equal(t, ConventionFrench, c)

	c, ok = DetectConvention([]string{"re", "ga"})
	require.True(t, ok)
	assert.Equal(t, ConventionIndian, c)

	c, ok = DetectConvention([]string{"C", "D"})
	require.True(t, ok)
	assert.Equal(t, ConventionAnglo, c)

	_, ok = DetectConvention([]string{"x"})
	assert.False(t, ok)
}

func TestFrenchNameRoundTrip(t *testing.T) {
	name, alt := FrenchName(61)
	assert.Equal(t, "dop4", name)
	assert.Equal(t, "reb4", alt)

	name, alt = FrenchName(67)
	assert.Equal(t, "sol4", name)
	assert.Empty(t, alt)

	for _, spelled := range []string{"dop4", "reb4", "solp3", "lab3", "si5", "do-1"} {
		midi, ok := ParseFrenchName(spelled)
		require.True(t, ok, spelled)
		back, flat := FrenchName(midi)
		assert.Contains(t, []string{back, flat}, spelled)
	}

	_, ok := ParseFrenchName("xx4")
	assert.False(t, ok)
}

func TestScaleTable_Resolve(t *testing.T) {
	table := DefaultScaleTable()

	tests := []struct {
		name     string
		scale    string
		root     string
		expected Resolution
	}{
		{"C major", "Cmaj", "0", Resolution{Kind: KindScale, ID: "Scale.major", Root: 0}},
		{"D minor", "Dmin", "0", Resolution{Kind: KindScale, ID: "Scale.minor", Root: 2}},
		{"F sharp minor", "F#min", "0", Resolution{Kind: KindScale, ID: "Scale.minor", Root: 6}},
		{"B flat major lower case", "bbmaj", "0", Resolution{Kind: KindScale, ID: "Scale.major", Root: 10}},
		{"just intonation", "just intonation", "C4", Resolution{Kind: KindTuning, ID: "Tuning.just", Root: 0}},
		{"zero tuning", "0", "0", Resolution{Kind: KindTuning, ID: "Tuning.et12", Root: 0}},
		{"raga", "todi_ka_4", "sa_4", Resolution{Kind: KindScale, ID: "Scale.todi", Root: 0}},
		{"raga case insensitive", "Todi_ka_4", "pa_4", Resolution{Kind: KindScale, ID: "Scale.todi", Root: 7}},
		{"unknown", "gloubibolga", "D4", Resolution{Kind: KindScale, ID: "Scale.chromatic", Root: 2, Unknown: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Resolve(tt.scale, tt.root))
		})
	}
}

func TestParseRoot(t *testing.T) {
	tests := []struct {
		arg      string
		expected int
	}{
		{"0", 0},
		{"7", 7},
		{"14", 2},
		{"-1", 11},
		{"C4", 0},
		{"D#5", 3},
		{"Bb3", 10},
		{"dop4", 1},
		{"sib", 10},
		{"sol4", 7},
		{"sa_4", 0},
		{"ri_4", 2},
		{"dha_5", 9},
		{"???", 0},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got := ParseRoot(tt.arg)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 11)
		})
	}
}

func TestScaleTable_Merge(t *testing.T) {
	base := DefaultScaleTable()
	merged := base.Merge(&ScaleTable{Ragas: map[string]string{"Gloubibolga": "Scale.whole"}})

	assert.Equal(t, "Scale.whole", merged.Resolve("gloubibolga", "0").ID)
	assert.True(t, base.Resolve("gloubibolga", "0").Unknown, "merge must not mutate the base table")
}

func TestParseScaleTableJSON_Invalid(t *testing.T) {
	_, err := ParseScaleTableJSON([]byte("{not json"))
	assert.Error(t, err)
}
