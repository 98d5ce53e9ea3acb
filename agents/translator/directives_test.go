package translator

import (
	"testing"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_Directives(t *testing.T) {
	const head = `Pbind(\instrument, \bp2sc_default, \midinote, Pseq([60], 1), `
	tests := []struct {
		name       string
		directives []models.Element
		want       string
	}{
		{name: "velocity", directives: []models.Element{dir("vel", "127")}, want: head + `\amp, 1, \dur, 0.25)`},
		{name: "volume", directives: []models.Element{dir("volume", "64")}, want: head + `\amp, 0.504, \dur, 0.25)`},
		{
			name:       "random velocity around the last velocity",
			directives: []models.Element{dir("vel", "100"), dir("rndvel", "10")},
			want:       head + `\amp, Pwhite(0.709, 0.866), \dur, 0.25)`,
		},
		{name: "transpose", directives: []models.Element{dir("transpose", "+2")}, want: head + `\ctranspose, 2, \dur, 0.25)`},
		{
			name:       "numeric instrument",
			directives: []models.Element{dir("ins", "3")},
			want:       `Pbind(\instrument, \inst_3, \midinote, Pseq([60], 1), \dur, 0.25)`,
		},
		{
			name:       "named instrument",
			directives: []models.Element{dir("ins", "Grand Piano")},
			want:       `Pbind(\instrument, \grand_piano, \midinote, Pseq([60], 1), \dur, 0.25)`,
		},
		{name: "random time", directives: []models.Element{dir("rndtime", "20")}, want: head + `\dur, Pwhite(0.2, 0.3))`},
		{name: "random time off", directives: []models.Element{dir("rndtime", "0")}, want: head + `\dur, 0.25)`},
		{name: "key scale", directives: []models.Element{dir("scale", "Cmaj")}, want: head + `\scale, Scale.major, \root, 0, \dur, 0.25)`},
		{name: "scale reset", directives: []models.Element{dir("scale")}, want: head + `\scale, Scale.chromatic, \root, 0, \dur, 0.25)`},
		{name: "tempo ratio", directives: []models.Element{dir("tempo", "2/3")}, want: head + `\stretch, 1.5, \dur, 0.25)`},
		{name: "inline metronome", directives: []models.Element{dir("mm_inline", "120")}, want: head + `\stretch, 0.5, \dur, 0.25)`},
		{name: "legato", directives: []models.Element{dir("legato", "80")}, want: head + `\legato, 0.8, \dur, 0.25)`},
		{name: "legato marker", directives: []models.Element{dir("legato_")}, want: head + `\legato, 1.5, \dur, 0.25)`},
		{name: "pressure", directives: []models.Element{dir("press", "64")}, want: head + `\aftertouch, 0.504, \dur, 0.25)`},
		{name: "pitch bend", directives: []models.Element{dir("pitchbend", "200")}, want: head + `\detune, 200, \dur, 0.25)`},
		{name: "channel", directives: []models.Element{dir("chan", "2")}, want: head + `\chan, 2, \dur, 0.25)`},
		{name: "program change", directives: []models.Element{dir("script", "MIDI program 12")}, want: head + `\program, 12, \dur, 0.25)`},
		{name: "sustain pedal", directives: []models.Element{dir("sustainstart_")}, want: head + `\sustain, 1, \dur, 0.25)`},
		{name: "custom value", directives: []models.Element{dir("value", "cutoff", "+800")}, want: head + `\cutoff, 800, \dur, 0.25)`},
		{
			name:       "later values replace earlier ones in place",
			directives: []models.Element{dir("vel", "127"), dir("transpose", "1"), dir("vel", "64")},
			want:       head + `\amp, 0.504, \ctranspose, 1, \dur, 0.25)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rhs := append(append([]models.Element{}, tt.directives...), note("do", 4))
			result := translate(t, document(block(models.ModeOrd, 1, rule(1, 1, lhs("S"), rhs...))), Resources{}, Options{})
			assert.Equal(t, `Pdef(\S, `+tt.want+`);`, definition(result.Code, "S"))
		})
	}
}

func TestTranslate_UnknownScaleFallsBackToChromatic(t *testing.T) {
	doc := document(block(models.ModeOrd, 1, rule(1, 1, lhs("S"), dir("scale", "gloubi", "C"), note("do", 4))))
	result := translate(t, doc, Resources{}, Options{})

	assert.Contains(t, definition(result.Code, "S"), `\scale, Scale.chromatic, \root, 0`)
	assert.Len(t, result.Diagnostics.Filter(models.CategoryApproximation), 1)
}

func TestTranslate_DirectiveComments(t *testing.T) {
	doc := document(block(models.ModeOrd, 1,
		rule(1, 1, lhs("S"), dir("mm", "90"), dir("part", "2"), note("do", 4)),
	))
	result := translate(t, doc, Resources{}, Options{})

	assert.Contains(t, result.Code, "// tempo: 90 BPM\n// part: 2\nPdef(\\S, "+pbind("60")+");")
	assert.Empty(t, result.Diagnostics)
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		arg  string
		want float64
		ok   bool
	}{
		{arg: "2", want: 2, ok: true},
		{arg: "1.5", want: 1.5, ok: true},
		{arg: "2/3", want: 2.0 / 3.0, ok: true},
		{arg: "3/0", ok: false},
		{arg: "0", ok: false},
		{arg: "fast", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, ok := parseRatio(tt.arg)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestInstrumentSymbol(t *testing.T) {
	tests := map[string]string{
		"3":           "inst_3",
		"Grand Piano": "grand_piano",
		"vibes":       "vibes",
		"":            defaultSynth,
	}
	for in, want := range tests {
		assert.Equal(t, want, instrumentSymbol(in), in)
	}
}

func TestScName(t *testing.T) {
	tests := map[string]string{
		"D#5":   "D_5",
		"1":     "t1",
		"Tihai": "Tihai",
		"A'":    "A_",
	}
	for in, want := range tests {
		assert.Equal(t, want, scName(in), in)
	}
}

func TestTranslate_NonNumericDirectiveArguments(t *testing.T) {
	tests := []struct {
		name    string
		dir     models.Element
		comment string
	}{
		{name: "unbalanced transpose", dir: dir("transpose", "2]"), comment: "// _transpose(2])"},
		{name: "word velocity", dir: dir("vel", "loud"), comment: "// _vel(loud)"},
		{name: "channel", dir: dir("chan", "x"), comment: "// _chan(x)"},
		{name: "pitch bend", dir: dir("pitchbend", "a)"), comment: "// _pitchbend(a))"},
		{name: "legato", dir: dir("legato", "long"), comment: "// _legato(long)"},
		{name: "pressure", dir: dir("press", "{1"), comment: "// _press({1)"},
		{name: "tempo", dir: dir("tempo", "fast"), comment: "// _tempo(fast)"},
		{name: "custom value", dir: dir("value", "cutoff", "[800"), comment: "// _value(cutoff, [800)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document(block(models.ModeOrd, 1, rule(1, 1, lhs("S"), tt.dir, note("do", 4))))
			result := translate(t, doc, Resources{}, Options{})

			assert.Equal(t, `Pdef(\S, `+pbind("60")+`);`, definition(result.Code, "S"))
			assert.Contains(t, result.Code, tt.comment+"\n")
			assert.Len(t, result.Diagnostics.Filter(models.CategoryUnsupportedFn), 1)
		})
	}
}

func TestTranslate_DecimalDirectiveArguments(t *testing.T) {
	const head = `Pbind(\instrument, \bp2sc_default, \midinote, Pseq([60], 1), `
	tests := []struct {
		name string
		dir  models.Element
		want string
	}{
		{name: "fractional transpose", dir: dir("transpose", "-0.5"), want: head + `\ctranspose, -0.5, \dur, 0.25)`},
		{name: "amplitude velocity", dir: dir("vel", ".8"), want: head + `\amp, 0.8, \dur, 0.25)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document(block(models.ModeOrd, 1, rule(1, 1, lhs("S"), tt.dir, note("do", 4))))
			result := translate(t, doc, Resources{}, Options{})
			assert.Equal(t, `Pdef(\S, `+tt.want+`);`, definition(result.Code, "S"))
			assert.Empty(t, result.Diagnostics)
		})
	}
}
