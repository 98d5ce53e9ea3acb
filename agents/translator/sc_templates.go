package translator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultSynth = "bp2sc_default"
	defaultDur   = "0.25"
	silentEvent  = "Event.silent(0.25)"
	emptyEvent   = "Event.silent(0)"
	restMarker   = "Rest()"
)

var scNameInvalid = regexp.MustCompile(`[^A-Za-z0-9_]`)

// scName turns a BP3 symbol into a SuperCollider symbol name.
func scName(name string) string {
	s := scNameInvalid.ReplaceAllString(name, "_")
	if s == "" {
		return "_"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "t" + s
	}
	return s
}

func scSymbol(name string) string {
	return `\` + scName(name)
}

func scComment(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	return "// " + text
}

func scPdef(name, pattern string) string {
	return fmt.Sprintf("Pdef(%s, %s);", scSymbol(name), pattern)
}

func scPdefRef(name string) string {
	return fmt.Sprintf("Pdef(%s)", scSymbol(name))
}

func scPseq(items []string) string {
	return fmt.Sprintf("Pseq([%s], 1)", strings.Join(items, ", "))
}

func scPrand(items []string) string {
	return fmt.Sprintf("Prand([%s], 1)", strings.Join(items, ", "))
}

func scPwrand(items, weights []string) string {
	return fmt.Sprintf("Pwrand([%s], [%s].normalizeSum, 1)",
		strings.Join(items, ", "), strings.Join(weights, ", "))
}

func scPpar(items []string) string {
	return fmt.Sprintf("Ppar([%s])", strings.Join(items, ", "))
}

func scPn(pattern string, repeats int) string {
	return fmt.Sprintf("Pn(%s, %d)", pattern, repeats)
}

func scPseed(seed int64, pattern string) string {
	return fmt.Sprintf("Pseed(%d, %s)", seed, pattern)
}

func scPbind(pairs []modifier) string {
	return "Pbind(" + orderedMods(pairs).args() + ")"
}

func scPbindf(pattern string, mods orderedMods) string {
	return fmt.Sprintf("Pbindf(%s, %s)", pattern, mods.args())
}

// pitchBind builds the event pattern for a \midinote value list. Invariant: the result
// always carries an instrument, a pitch and a duration key.
func pitchBind(midinote string, mods orderedMods, dur string) string {
	pairs := []modifier{{key: "instrument", value: `\` + defaultSynth}, {key: "midinote", value: midinote}}
	if v, ok := mods.get("instrument"); ok {
		pairs[0].value = v
	}
	for _, m := range mods {
		if m.key == "instrument" || m.key == "midinote" {
			continue
		}
		pairs = append(pairs, m)
	}
	if _, ok := mods.get("dur"); !ok {
		pairs = append(pairs, modifier{key: "dur", value: dur})
	}
	return scPbind(pairs)
}

// singleNote yields exactly one event for a pitch.
func singleNote(midi int) string {
	return pitchBind(scPseq([]string{strconv.Itoa(midi)}), nil, defaultDur)
}

func tiedNote(midi int) string {
	return pitchBind(scPseq([]string{strconv.Itoa(midi)}), orderedMods{{key: "legato", value: "2.0"}}, defaultDur)
}

func scHeader(title, source string) string {
	lines := []string{
		scComment(title),
		scComment("Source: " + source),
		scComment("Generated by bp3sc. Boot the server, then evaluate the block below."),
		"",
		"(",
	}
	return strings.Join(lines, "\n")
}

func scFooter() string {
	return ")"
}

func scSynthDefDefault() string {
	return `SynthDef(\` + defaultSynth + `, { |out = 0, freq = 440, amp = 0.1, gate = 1, pan = 0|
	var env = EnvGen.kr(Env.adsr(0.01, 0.1, 0.6, 0.2), gate, doneAction: 2);
	var sig = LPF.ar(Saw.ar(freq), freq * 4) * env * amp;
	Out.ar(out, Pan2.ar(sig, pan));
}).add;
`
}

func scTempo(bpm float64) string {
	return fmt.Sprintf("TempoClock.default.tempo = %s / 60;", formatNumber(bpm))
}

func scPlay(name string) string {
	return scPdefRef(name) + ".play;"
}

func scPfindurPlay(dur float64, name string) string {
	return fmt.Sprintf("Pfindur(%s, %s).play;", formatNumber(dur), scPdefRef(name))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func indent(depth int) string {
	return strings.Repeat("\t", depth)
}
