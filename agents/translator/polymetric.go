package translator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// compilePolymetric renders {ratio, voice, ...}. A single voice is time-scaled to the
// ratio; several voices play in parallel. Comments raised inside the voices are
// returned so they can be placed outside brackets.
func (c *compiler) compilePolymetric(st *scanState, p models.Polymetric) (string, []string) {
	if len(p.Voices) == 0 {
		return silentEvent, nil
	}

	if len(p.Voices) == 1 {
		v := c.compileVoice(st, p.Voices[0])
		if len(v.items) == 0 {
			return silentEvent, v.comments
		}
		var pat string
		if pitchOnly(v.items) {
			pat = pitchBind(scPseq(valueCodes(v.items)), v.mods, defaultDur)
		} else {
			pat = withMods(scPseq(patternCodes(v.items)), v.mods)
		}
		if !p.HasRatio {
			return pat, v.comments
		}
		return fmt.Sprintf(`Pbindf(%s, \stretch, %d/%d)`, pat, p.Ratio, len(v.items)), v.comments
	}

	ratio := 1
	if p.HasRatio {
		ratio = p.Ratio
	}
	var voices, comments []string
	for _, elems := range p.Voices {
		v := c.compileVoice(st, elems)
		comments = append(comments, v.comments...)
		switch {
		case len(v.items) == 0:
			continue
		case pitchOnly(v.items):
			dur := strconv.Itoa(ratio)
			if len(v.items) > 1 {
				dur = fmt.Sprintf("%d / %d", ratio, len(v.items))
			}
			voices = append(voices, pitchBind(scPseq(valueCodes(v.items)), v.mods, dur))
		case len(v.items) == 1:
			voices = append(voices, withMods(v.items[0].patternCode(), v.mods))
		default:
			voices = append(voices, withMods(scPseq(patternCodes(v.items)), v.mods))
		}
	}
	switch len(voices) {
	case 0:
		return silentEvent, comments
	case 1:
		return voices[0], comments
	}
	return scPpar(voices), comments
}

// voice is one compiled polymetric voice or homomorphism body.
type voice struct {
	items    []item
	mods     orderedMods
	comments []string
}

// compileVoice renders the elements of one voice with its own modifier state, so
// modifiers and _repeat stay inside the voice. Modifiers apply to the whole voice.
// Leading _retro and _rotate(n) reverse or rotate the voice left by n.
func (c *compiler) compileVoice(st *scanState, elems []models.Element) voice {
	retro, rotate, start := false, 0, 0
	for i, e := range elems {
		d, ok := e.(models.Directive)
		if !ok {
			break
		}
		name := strings.ToLower(d.Name)
		if name == "retro" {
			retro, start = true, i+1
			continue
		}
		if name == "rotate" && len(d.Args) > 0 {
			if n, err := strconv.Atoi(sanitizeNumber(strings.TrimSpace(d.Args[0]))); err == nil {
				rotate = n
			}
			start = i + 1
			continue
		}
		break
	}

	vst := *st
	vst.mods, vst.pendingRepeat = nil, 0

	var v voice
	late := false
	for _, e := range elems[start:] {
		eff := c.compileElement(&vst, e)
		for _, m := range eff.mods {
			vst.mods = vst.mods.with(m.key, sanitizeNumber(m.value))
			late = late || len(v.items) > 0
		}
		if eff.comment != "" {
			v.comments = append(v.comments, eff.comment)
		}
		if eff.item != nil {
			v.items = append(v.items, vst.takeRepeat(*eff.item))
		}
	}
	if vst.pendingRepeat > 0 {
		c.warn(models.CategoryApproximation, "_repeat(%d) at the end of a voice has nothing to repeat", vst.pendingRepeat)
	}
	if late {
		c.warn(models.CategoryApproximation, "modifier after the first event of a voice applied to the whole voice")
	}
	v.mods = vst.mods

	if retro {
		slices.Reverse(v.items)
	}
	if l := len(v.items); rotate != 0 && l > 0 {
		n := ((rotate % l) + l) % l
		v.items = append(slices.Clone(v.items[n:]), v.items[:n]...)
	}
	return v
}

func withMods(pattern string, mods orderedMods) string {
	if len(mods) == 0 {
		return pattern
	}
	return scPbindf(pattern, mods)
}
