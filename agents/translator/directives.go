package translator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

var (
	instrumentInvalid = regexp.MustCompile(`[^a-z0-9_]`)
	midiProgram       = regexp.MustCompile(`^MIDI program (\d+)`)
	decimalNumber     = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// pedalKeys maps pedal markers (with or without the trailing underscore) to the
// event key and value they set.
var pedalKeys = map[string]modifier{
	"sustainstart":     {key: "sustain", value: "1"},
	"sustainstop":      {key: "sustain", value: "0"},
	"sustainstopstart": {key: "sustain", value: "1"},
	"sostenutostart":   {key: "sostenuto", value: "1"},
	"sostenutostop":    {key: "sostenuto", value: "0"},
	"softstart":        {key: "softPedal", value: "1"},
	"softstop":         {key: "softPedal", value: "0"},
}

// approximatedDirectives have no SuperCollider counterpart and survive as a comment.
var approximatedDirectives = map[string]string{
	"pitchrange": "pitchrange: %s",
	"step":       "step: %s",
	"keyxpand":   "keyxpand: %s",
	"pitchcont":  "pitchcont (continuous pitch)",
	"striated":   "striated time mode",
	"destru":     "_destru (remove structural markers)",
	"pitchstep":  "pitchstep (discrete pitch)",
}

// applyDirective translates one performance directive into modifier updates, a comment,
// an item, or nothing.
func (c *compiler) applyDirective(st *scanState, d models.Directive) effect {
	name := strings.ToLower(d.Name)
	args := make([]string, len(d.Args))
	for i, a := range d.Args {
		args[i] = strings.TrimSpace(a)
	}
	arg := ""
	if len(args) > 0 {
		arg = sanitizeNumber(args[0])
	}
	joined := strings.Join(args, ", ")

	if m, ok := pedalKeys[strings.TrimSuffix(name, "_")]; ok {
		return modEffect(m.key, m.value)
	}

	switch {
	case name == "transpose" && arg != "":
		return c.numericMod(d, joined, "ctranspose", arg)

	case (name == "vel" || name == "volume") && arg != "":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return c.numericMod(d, joined, "amp", arg)
		}
		st.lastVel = v
		return modEffect("amp", st.amp())

	case name == "rndvel" && arg != "":
		n, err := strconv.Atoi(arg)
		if err != nil {
			n = 0
		}
		st.rndVel = n
		return modEffect("amp", st.amp())

	case name == "rndtime":
		pct, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			pct = 0
		}
		st.rndTime = pct
		if pct <= 0 {
			return modEffect("dur", defaultDur)
		}
		lo := 0.25 * (1 - pct/100)
		hi := 0.25 * (1 + pct/100)
		return modEffect("dur", fmt.Sprintf("Pwhite(%s, %s)", formatNumber(round(lo, 4)), formatNumber(round(hi, 4))))

	case name == "mm" && arg != "":
		return commentEffect(fmt.Sprintf("tempo: %s BPM", arg))

	case name == "mm_inline" && arg != "":
		bpm, err := strconv.ParseFloat(arg, 64)
		if err != nil || bpm == 0 {
			return commentEffect(fmt.Sprintf("tempo inline: %s BPM", arg))
		}
		return modEffect("stretch", formatNumber(round(60/bpm, 4)))

	case name == "ins" && len(args) > 0:
		return modEffect("instrument", `\`+instrumentSymbol(args[0]))

	case (name == "pitchbend" || name == "mod") && arg != "":
		return c.numericMod(d, joined, "detune", arg)

	case (name == "staccato" || name == "legato") && arg != "":
		return c.numericMod(d, joined, "legato", scaled(arg, 100, 3))

	case name == "chan" && arg != "":
		return c.numericMod(d, joined, "chan", arg)

	case name == "press" && arg != "":
		return c.numericMod(d, joined, "aftertouch", scaled(arg, 127, 3))

	case name == "tempo" && arg != "":
		ratio, ok := parseRatio(arg)
		if !ok {
			return c.invalidArgument(d, joined)
		}
		return modEffect("stretch", formatNumber(round(1/ratio, 4)))

	case name == "scale":
		return c.scaleEffect(args)

	case name == "value" && len(args) >= 2:
		return c.numericMod(d, joined, scName(args[0]), sanitizeNumber(args[1]))

	case name == "script" && len(args) > 0:
		if m := midiProgram.FindStringSubmatch(strings.Join(args, " ")); m != nil {
			return modEffect("program", m[1])
		}
		c.warn(models.CategoryUnsupportedFn, "_script(%s) not implemented", strings.Join(args, " "))
		return commentEffect(fmt.Sprintf("_script(%s) not supported", strings.Join(args, " ")))

	case name == "repeat" && arg != "":
		n, err := strconv.Atoi(arg)
		if err != nil {
			n = 0
		}
		st.pendingRepeat = n
		return effect{}

	case name == "rest":
		return itemEffect(item{kind: itemRest})

	case name == "velcont":
		return commentEffect("velcont (continuous velocity)")

	case name == "part":
		if arg == "" {
			return effect{}
		}
		return commentEffect("part: " + args[0])

	case name == "switchon" || name == "switchoff":
		if len(args) == 0 {
			break
		}
		c.warn(models.CategoryApproximation, "_%s(%s) MIDI switch emitted as comment", name, joined)
		return commentEffect(fmt.Sprintf("MIDI _%s(%s)", name, joined))

	case name == "goto" || name == "failed":
		if len(args) == 0 {
			break
		}
		c.warn(models.CategoryUnsupportedFn, "_%s(%s) not implemented", name, joined)
		return commentEffect(fmt.Sprintf("_%s(%s) not supported", name, joined))

	case name == "legato_":
		return modEffect("legato", "1.5")

	case name == "nolegato_":
		return modEffect("legato", "0.8")

	case name == "retro" || name == "rotate":
		// Voice transforms; only meaningful at the head of a polymetric voice.
		return effect{}
	}

	if format, ok := approximatedDirectives[name]; ok {
		text := format
		if strings.Contains(format, "%s") {
			if len(args) == 0 {
				return c.unknownDirective(d, joined)
			}
			text = fmt.Sprintf(format, args[0])
			c.warn(models.CategoryApproximation, "_%s(%s) emitted as comment", name, args[0])
		} else {
			c.warn(models.CategoryApproximation, "_%s emitted as comment", name)
		}
		return commentEffect(text)
	}

	return c.unknownDirective(d, joined)
}

// numericMod sets key to value when value is a plain decimal number, written the way
// SuperCollider reads it (.8 becomes 0.8). Anything else becomes a comment.
func (c *compiler) numericMod(d models.Directive, joined, key, value string) effect {
	if !decimalNumber.MatchString(value) {
		return c.invalidArgument(d, joined)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return c.invalidArgument(d, joined)
	}
	return modEffect(key, formatNumber(f))
}

func (c *compiler) invalidArgument(d models.Directive, joined string) effect {
	c.warn(models.CategoryUnsupportedFn, "_%s(%s) has an argument that is not a number, emitted as comment", d.Name, joined)
	return commentEffect(fmt.Sprintf("_%s(%s)", d.Name, joined))
}

func (c *compiler) unknownDirective(d models.Directive, joined string) effect {
	c.warn(models.CategoryUnsupportedFn, "_%s(%s) unknown, emitted as comment", d.Name, joined)
	return commentEffect(fmt.Sprintf("_%s(%s)", d.Name, joined))
}

// amp is the \amp value for the last velocity, randomized when _rndvel is active.
func (st *scanState) amp() string {
	if st.rndVel == 0 {
		return formatNumber(round(float64(st.lastVel)/127, 3))
	}
	lo := max(0, st.lastVel-st.rndVel)
	hi := min(127, st.lastVel+st.rndVel)
	return fmt.Sprintf("Pwhite(%s, %s)",
		formatNumber(round(float64(lo)/127, 3)), formatNumber(round(float64(hi)/127, 3)))
}

func (c *compiler) scaleEffect(args []string) effect {
	name, root := "", "0"
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		root = args[1]
	}
	if name == "" {
		return effect{mods: []modifier{{key: "scale", value: "Scale.chromatic"}, {key: "root", value: "0"}}}
	}

	res := c.scales.Resolve(name, root)
	if res.Unknown {
		c.warn(models.CategoryApproximation, "_scale(%s) unknown scale name, using Scale.chromatic",
			strings.Join(args, ", "))
	}
	key := "scale"
	if res.Kind == theory.KindTuning {
		key = "tuning"
	}
	return effect{mods: []modifier{{key: key, value: res.ID}, {key: "root", value: strconv.Itoa(res.Root)}}}
}

// instrumentSymbol turns an instrument name into a valid symbol: Grand Piano → grand_piano,
// 3 → inst_3.
func instrumentSymbol(name string) string {
	sym := instrumentInvalid.ReplaceAllString(strings.ToLower(name), "_")
	if sym == "" {
		return defaultSynth
	}
	if sym[0] >= '0' && sym[0] <= '9' {
		sym = "inst_" + sym
	}
	return sym
}

// scaled divides an integer argument, keeping non-integer arguments verbatim.
func scaled(arg string, div float64, places int) string {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg
	}
	return formatNumber(round(float64(n)/div, places))
}

// parseRatio reads "2", "1.5" or "2/3".
func parseRatio(arg string) (float64, bool) {
	num, den := arg, "1"
	if i := strings.Index(arg, "/"); i >= 0 {
		num, den = arg[:i], arg[i+1:]
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 || n == 0 {
		return 0, false
	}
	return n / d, true
}
