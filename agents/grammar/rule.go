package grammar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

var (
	weightPrefix       = regexp.MustCompile(`^<(\d+)(?:-(\d+))?>`)
	flagPrefix         = regexp.MustCompile(`^/\s*([A-Za-z]\w*\s*(?:[=+\-<>]\s*-?[\w.]+)?)\s*/`)
	flagAnywhere       = regexp.MustCompile(`/\s*([A-Za-z]\w*\s*(?:[=+\-<>]\s*-?[\w.]+)?)\s*/`)
	trailingAnnotation = regexp.MustCompile(`\[([^\]]*)\]\s*$`)
)

const arrow = "-->"

// parseRule parses what follows the gram#N[M] prefix: <weight> /conditions/ LHS --> RHS [comment].
func parseRule(text string, gram, num int) *models.Rule {
	r := &models.Rule{GrammarNum: gram, RuleNum: num}
	rest := strings.TrimSpace(text)

	if m := weightPrefix.FindStringSubmatch(rest); m != nil {
		value, _ := strconv.Atoi(m[1])
		decrement := 0
		if m[2] != "" {
			decrement, _ = strconv.Atoi(m[2])
		}
		r.Weight = &models.Weight{Value: value, Decrement: decrement}
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	for {
		m := flagPrefix.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		r.Flags = append(r.Flags, parseFlag(m[1]))
		rest = strings.TrimSpace(rest[len(m[0]):])
	}

	i := strings.Index(rest, arrow)
	if i < 0 {
		r.LHS = []models.Element{models.NonTerminal{Name: "?"}}
		return r
	}
	lhsText := strings.TrimSpace(rest[:i])
	rhsText := strings.TrimSpace(rest[i+len(arrow):])

	var comments []string
	for {
		loc := trailingAnnotation.FindStringSubmatchIndex(rhsText)
		if loc == nil {
			break
		}
		comments = append([]string{rhsText[loc[2]:loc[3]]}, comments...)
		rhsText = strings.TrimRight(rhsText[:loc[0]], " \t")
	}
	r.Comment = strings.Join(comments, " ")

	for _, m := range flagAnywhere.FindAllStringSubmatch(rhsText, -1) {
		r.Flags = append(r.Flags, parseFlag(m[1]))
	}
	rhsText = strings.TrimSpace(flagAnywhere.ReplaceAllString(rhsText, ""))

	r.LHS = parseSequence(lhsText, true)
	r.RHS = parseSequence(rhsText, false)
	return r
}

// parseFlag reads Ideas, Ideas=20, NumR+1, Ideas-1, A>2 or A<5. Operators are
// tried in that order, so Ideas=-1 assigns -1.
func parseFlag(expr string) models.Flag {
	expr = strings.TrimSpace(expr)
	for _, op := range []models.FlagOp{models.FlagAssign, models.FlagInc, models.FlagDec, models.FlagGreater, models.FlagLess} {
		if name, value, ok := strings.Cut(expr, string(op)); ok {
			return models.Flag{Name: strings.TrimSpace(name), Op: op, Value: strings.TrimSpace(value)}
		}
	}
	return models.Flag{Name: expr}
}
