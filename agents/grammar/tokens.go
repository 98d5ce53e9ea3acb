package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// Element patterns, anchored at the current position.
var (
	lambdaWord   = regexp.MustCompile(`^lambda\b`)
	tempoInline  = regexp.MustCompile(`^\|\|(\d+(?:\.\d+)?)\|\|`)
	directiveFn  = regexp.MustCompile(`^_([a-zA-Z]\w*)\(([^)]*)\)`)
	directiveBar = regexp.MustCompile(`^_([a-zA-Z]\w*)`)
	homoMaster   = regexp.MustCompile(`^\(=\s*`)
	homoSlave    = regexp.MustCompile(`^\(:\s*`)
	variable     = regexp.MustCompile(`^\|([^|]+)\|`)
	wildcard     = regexp.MustCompile(`^\?(\d*)`)
	timeSig      = regexp.MustCompile(`^(\d+(?:\+\d+)+/\d+)\b`)
	annotation   = regexp.MustCompile(`^\[([^\]]*)\]`)
	homoName     = regexp.MustCompile(`^(mineur|majeur|trn)\b`)
	quoted       = regexp.MustCompile(`^'([^'\s]+)'`)

	frenchTie  = regexp.MustCompile(`^(&)?(do|re|mi|fa|sol|la|si)(b|#)?(\d)(&)?`)
	frenchNote = regexp.MustCompile(`^(do|re|mi|fa|sol|la|si)(b|#)?(\d)\b`)
	indianNote = regexp.MustCompile(`^(sa|re|ga|ma|pa|dha|ni)(\d)\b`)
	letterTie  = regexp.MustCompile(`^(&)?([A-G])(#|b)?(\d)(&)?`)
	upperName  = regexp.MustCompile(`^[A-Z][A-Za-z0-9_#'"]*`)
	lowerName  = regexp.MustCompile(`^[a-z][a-z0-9_'"]*`)
)

// reservedWords are mode keywords that never name a symbol.
var reservedWords = map[string]bool{"ORD": true, "RND": true, "LIN": true, "SUB1": true, "SUB": true, "INIT": true}

// tokenizer scans one side of a rule.
type tokenizer struct {
	text string
	lhs  bool
}

// parseSequence splits rule text into elements. Unrecognized characters are skipped.
func parseSequence(text string, lhs bool) []models.Element {
	t := tokenizer{text: strings.TrimSpace(text), lhs: lhs}
	var out []models.Element
	for pos := 0; pos < len(t.text); {
		if c := t.text[pos]; c == ' ' || c == '\t' {
			pos++
			continue
		}
		n, elem := t.next(pos)
		if elem != nil {
			out = append(out, elem)
		}
		pos += max(n, 1)
	}
	return out
}

// next reads one element at pos and returns the bytes consumed. A nil element with
// a positive count means the text was consumed without producing anything.
func (t tokenizer) next(pos int) (int, models.Element) {
	rest := t.text[pos:]

	if m := flagPrefix.FindString(rest); m != "" {
		return len(m), nil
	}
	if m := lambdaWord.FindString(rest); m != "" {
		return len(m), models.Lambda{}
	}
	if strings.HasPrefix(rest, "...") {
		return 3, models.UndeterminedRest{}
	}
	if m := tempoInline.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.Directive{Name: "mm_inline", Args: []string{m[1]}}
	}
	if m := directiveFn.FindStringSubmatch(rest); m != nil {
		return len(m[0]), directive(m[1], splitArgs(m[2]))
	}
	if m := directiveBar.FindStringSubmatch(rest); m != nil {
		if next := len(m[0]); next >= len(rest) || !isAlnum(rest[next]) && rest[next] != '(' {
			return next, models.Directive{Name: m[1]}
		}
	}

	if m := homoMaster.FindString(rest); m != "" {
		if n, elem, ok := t.group(pos, len(m), models.HomoMaster); ok {
			return n, elem
		}
	}
	if m := homoSlave.FindString(rest); m != "" {
		if n, elem, ok := t.group(pos, len(m), models.HomoSlave); ok {
			return n, elem
		}
	}
	if strings.HasPrefix(rest, "(") && t.lhs {
		if end := matching(t.text, pos, '(', ')'); end > 0 {
			inner := parseSequence(t.text[pos+1:end], true)
			marker := models.ContextMarker{Kind: "distant"}
			if len(inner) > 0 {
				marker.Symbol = inner[0]
			}
			return end - pos + 1, marker
		}
	}
	if strings.HasPrefix(rest, "{") {
		if end := matching(t.text, pos, '{', '}'); end > 0 {
			return end - pos + 1, parsePolymetric(t.text[pos+1 : end])
		}
	}

	if m := variable.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.Variable{Name: m[1]}
	}
	if m := wildcard.FindStringSubmatch(rest); m != nil {
		index, _ := strconv.Atoi(m[1])
		return len(m[0]), models.Wildcard{Index: index}
	}
	if m := timeSig.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.TimeSig{Text: m[1]}
	}
	if m := annotation.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.Annotation{Text: m[1]}
	}
	if m := homoName.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.HomoApply{Kind: models.HomoRef, Elements: []models.Element{models.NonTerminal{Name: m[1]}}}
	}
	if m := quoted.FindStringSubmatch(rest); m != nil {
		return len(m[0]), models.Quoted{Text: m[1]}
	}

	if m := frenchTie.FindStringSubmatch(rest); m != nil && (m[1] != "" || m[5] != "") {
		return len(m[0]), tie(m[2]+m[3], m[4], m[5] != "")
	}
	if m := frenchNote.FindStringSubmatch(rest); m != nil {
		return len(m[0]), note(m[1]+m[2], m[3])
	}
	if m := indianNote.FindStringSubmatch(rest); m != nil {
		return len(m[0]), note(m[1], m[2])
	}

	if rest[0] == '-' && (pos == 0 || strings.IndexByte(" \t{,", t.text[pos-1]) >= 0) {
		if pos+1 >= len(t.text) || strings.IndexByte(" \t},", t.text[pos+1]) >= 0 {
			return 1, models.Rest{Determined: true}
		}
	}
	if rest[0] == '_' && (len(rest) == 1 || !isAlpha(rest[1])) {
		return 1, models.Rest{}
	}

	if m := letterTie.FindStringSubmatch(rest); m != nil && (m[1] != "" || m[5] != "") {
		return len(m[0]), tie(m[2]+m[3], m[4], m[5] != "")
	}
	// Letter pitch names such as C8 or D#5 stay symbols; the translator gives them a pitch.
	if m := upperName.FindString(rest); m != "" {
		if reservedWords[m] {
			return len(m), nil
		}
		return len(m), models.NonTerminal{Name: m}
	}
	if m := lowerName.FindString(rest); m != "" {
		return len(m), models.Terminal{Name: m}
	}
	return 1, nil
}

// group parses a (= ...) or (: ...) homomorphism body.
func (t tokenizer) group(pos, open int, kind models.HomoKind) (int, models.Element, bool) {
	end := matching(t.text, pos, '(', ')')
	if end < 0 {
		return 0, nil, false
	}
	inner := parseSequence(t.text[pos+open:end], false)
	return end - pos + 1, models.HomoApply{Kind: kind, Elements: inner}, true
}

// parsePolymetric reads the inside of {...}: comma-separated voices, the first one
// optionally a tempo ratio.
func parsePolymetric(inner string) models.Polymetric {
	var p models.Polymetric
	parts := splitVoices(inner)
	if len(parts) > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && n > 0 {
			p.Ratio, p.HasRatio = n, true
			parts = parts[1:]
		}
	}
	for _, part := range parts {
		if voice := parseSequence(part, false); len(voice) > 0 {
			p.Voices = append(p.Voices, voice)
		}
	}
	return p
}

// splitVoices splits on commas outside nested braces and parentheses.
func splitVoices(text string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// matching returns the index of the delimiter closing the one at pos, or -1.
func matching(text string, pos int, opener, closer byte) int {
	depth := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func directive(name string, args []string) models.Element {
	if strings.EqualFold(name, "goto") && len(args) == 2 {
		g, errG := strconv.Atoi(args[0])
		r, errR := strconv.Atoi(args[1])
		if errG == nil && errR == nil {
			return models.Goto{Grammar: g, Rule: r}
		}
	}
	return models.Directive{Name: name, Args: args}
}

func note(name, octave string) models.Note {
	n, _ := strconv.Atoi(octave)
	return models.Note{Name: name, Octave: n, HasOctave: true}
}

// tie builds C4& (start) or &C4 (end).
func tie(name, octave string, start bool) models.Tie {
	return models.Tie{Note: note(name, octave), Start: start}
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(c byte) bool {
	return isAlpha(c) || c >= '0' && c <= '9'
}
