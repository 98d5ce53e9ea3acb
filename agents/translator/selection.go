package translator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// compiledRule is a rule's pattern plus the comments that belong above its definition.
type compiledRule struct {
	rule     *models.Rule
	pattern  string
	comments []string
}

// compileSymbol emits the definition of one symbol from all its rules in a block.
func (c *compiler) compileSymbol(name string, rules []*models.Rule, mode models.Mode) string {
	active := make([]*models.Rule, 0, len(rules))
	for _, r := range rules {
		if r.Weight == nil || r.Weight.Value > 0 {
			active = append(active, r)
		}
	}
	zeroed := len(active) == 0
	if zeroed {
		active = rules
	}

	compiled := make([]compiledRule, len(active))
	for i, r := range active {
		pattern, comments := c.compileRHS(r)
		compiled[i] = compiledRule{rule: r, pattern: pattern, comments: comments}
	}

	var b strings.Builder
	for _, cr := range compiled {
		if cr.rule.Comment != "" {
			b.WriteString(scComment(cr.rule.Comment) + "\n")
		}
		for _, text := range cr.comments {
			b.WriteString(scComment(text) + "\n")
		}
	}

	hasFlags := false
	hasDecrement := false
	for _, r := range active {
		hasFlags = hasFlags || len(r.Flags) > 0
		hasDecrement = hasDecrement || r.Weight.Decrements()
	}

	switch {
	case hasFlags:
		b.WriteString(flaggedChoice(name, compiled))
	case len(compiled) == 1:
		b.WriteString(scPdef(name, compiled[0].pattern))
	case mode.Random() && zeroed:
		c.warn(models.CategoryApproximation, "every rule of '%s' has weight 0, choosing uniformly", name)
		b.WriteString(scPdef(name, c.seeded(scPrand(patterns(compiled)))))
	case mode.Random() && hasDecrement:
		b.WriteString(decrementChoice(name, compiled))
	case mode.Random():
		b.WriteString(scPdef(name, c.weightedChoice(compiled)))
	default:
		b.WriteString(scPdef(name, scPseq(patterns(compiled))))
	}
	return b.String()
}

func patterns(rules []compiledRule) []string {
	out := make([]string, len(rules))
	for i, cr := range rules {
		out[i] = cr.pattern
	}
	return out
}

func weightOf(r *models.Rule) int {
	if r.Weight == nil {
		return 1
	}
	return r.Weight.Value
}

// weightedChoice picks one rule per evaluation: uniformly when all weights are 1,
// proportionally otherwise.
func (c *compiler) weightedChoice(rules []compiledRule) string {
	weights := make([]string, len(rules))
	uniform := true
	for i, cr := range rules {
		w := weightOf(cr.rule)
		weights[i] = strconv.Itoa(w)
		uniform = uniform && w == 1
	}

	body := scPrand(patterns(rules))
	if !uniform {
		body = scPwrand(patterns(rules), weights)
	}
	return c.seeded(body)
}

func (c *compiler) seeded(pattern string) string {
	if c.opts.Seed != nil {
		return scPseed(*c.opts.Seed, pattern)
	}
	return pattern
}

// decrementChoice emits a routine that keeps one mutable weight per rule and lowers
// the weight of the chosen rule by its decrement, never below zero.
func decrementChoice(name string, rules []compiledRule) string {
	lines := []string{fmt.Sprintf("Pdef(%s, Prout({ |ev|", scSymbol(name))}
	vars := make([]string, len(rules))
	for i, cr := range rules {
		vars[i] = fmt.Sprintf("w%d", i)
		lines = append(lines, fmt.Sprintf("\tvar w%d = %d;", i, weightOf(cr.rule)))
	}
	lines = append(lines,
		"\tinf.do {",
		fmt.Sprintf("\t\tvar total = %s;", strings.Join(vars, " + ")),
		"\t\tvar r = total.rand;",
	)

	body := func(i, depth int) []string {
		cr := rules[i]
		out := []string{indent(depth) + cr.pattern + ".embedInStream(ev);"}
		if w := cr.rule.Weight; w.Decrements() {
			out = append(out, fmt.Sprintf("%sw%d = (w%d - %d).max(0);", indent(depth), i, i, w.Decrement))
		}
		return out
	}

	var branch func(i, depth int)
	branch = func(i, depth int) {
		if i == len(rules)-1 {
			lines = append(lines, body(i, depth)...)
			return
		}
		threshold := "w0"
		if i > 0 {
			threshold = "(" + strings.Join(vars[:i+1], " + ") + ")"
		}
		lines = append(lines, fmt.Sprintf("%sif(r < %s) {", indent(depth), threshold))
		lines = append(lines, body(i, depth+1)...)
		lines = append(lines, indent(depth)+"} {")
		branch(i+1, depth+1)
		lines = append(lines, indent(depth)+"}")
	}
	branch(0, 2)

	lines = append(lines, "\t}", "}));")
	return strings.Join(lines, "\n")
}

// flaggedChoice emits a routine testing flag conditions in rule order. Rules without
// conditions form the fallback branch.
func flaggedChoice(name string, rules []compiledRule) string {
	var guarded, fallback []compiledRule
	for _, cr := range rules {
		if hasCondition(cr.rule) {
			guarded = append(guarded, cr)
		} else {
			fallback = append(fallback, cr)
		}
	}

	lines := []string{fmt.Sprintf("Pdef(%s, Prout({ |ev|", scSymbol(name)), "\tinf.do {"}

	var branch func(i, depth int)
	branch = func(i, depth int) {
		if i == len(guarded) {
			lines = append(lines, fallbackLines(fallback, depth)...)
			return
		}
		cr := guarded[i]
		lines = append(lines, fmt.Sprintf("%sif(%s) {", indent(depth), conditionExpr(cr.rule.Flags)))
		lines = append(lines, embedLines(cr, depth+1)...)
		lines = append(lines, indent(depth)+"} {")
		branch(i+1, depth+1)
		lines = append(lines, indent(depth)+"}")
	}
	branch(0, 2)

	lines = append(lines, "\t}", "}));")
	return strings.Join(lines, "\n")
}

func hasCondition(r *models.Rule) bool {
	for _, f := range r.Flags {
		if f.IsCondition() {
			return true
		}
	}
	return false
}

func fallbackLines(rules []compiledRule, depth int) []string {
	switch len(rules) {
	case 0:
		return []string{indent(depth) + silentEvent + ".embedInStream(ev);"}
	case 1:
		return embedLines(rules[0], depth)
	}

	withOps := false
	for _, cr := range rules {
		withOps = withOps || len(operations(cr.rule.Flags)) > 0
	}
	if !withOps {
		return []string{fmt.Sprintf("%s[%s].choose.embedInStream(ev);", indent(depth), strings.Join(patterns(rules), ", "))}
	}

	choices := make([]string, len(rules))
	for i, cr := range rules {
		stmts := append(operations(cr.rule.Flags), cr.pattern+".embedInStream(ev);")
		choices[i] = "{ " + strings.Join(stmts, " ") + " }"
	}
	return []string{fmt.Sprintf("%s[%s].choose.value;", indent(depth), strings.Join(choices, ", "))}
}

func embedLines(cr compiledRule, depth int) []string {
	var lines []string
	for _, op := range operations(cr.rule.Flags) {
		lines = append(lines, indent(depth)+op)
	}
	return append(lines, indent(depth)+cr.pattern+".embedInStream(ev);")
}

// conditionExpr joins flag guards: (~a > 0) and: { (~b > 2) }.
func conditionExpr(flags []models.Flag) string {
	var conds []string
	for _, f := range flags {
		if !f.IsCondition() {
			continue
		}
		v := "~" + scName(f.Name)
		switch f.Op {
		case models.FlagGreater:
			conds = append(conds, fmt.Sprintf("(%s > %s)", v, f.Value))
		case models.FlagLess:
			conds = append(conds, fmt.Sprintf("(%s < %s)", v, f.Value))
		default:
			conds = append(conds, fmt.Sprintf("(%s > 0)", v))
		}
	}
	expr := conds[0]
	for _, cond := range conds[1:] {
		expr += " and: { " + cond + " }"
	}
	return expr
}

func operations(flags []models.Flag) []string {
	var ops []string
	for _, f := range flags {
		v := "~" + scName(f.Name)
		switch f.Op {
		case models.FlagAssign:
			ops = append(ops, fmt.Sprintf("%s = %s;", v, f.Value))
		case models.FlagInc:
			ops = append(ops, fmt.Sprintf("%s = %s + %s;", v, v, f.Value))
		case models.FlagDec:
			ops = append(ops, fmt.Sprintf("%s = %s - %s;", v, v, f.Value))
		}
	}
	return ops
}

// flagInit initializes every flag variable, taking "=" values from the first rule of
// the start symbol and 0 otherwise.
func (c *compiler) flagInit() string {
	if len(c.idx.flagNames) == 0 {
		return ""
	}
	initial := map[string]string{}
	if refs := c.idx.rulesByLHS[c.opts.StartSymbol]; len(refs) > 0 {
		for _, f := range refs[0].rule.Flags {
			if f.Op == models.FlagAssign && f.Value != "" {
				initial[f.Name] = f.Value
			}
		}
	}

	lines := []string{scComment("--- Flag variables ---")}
	for _, name := range c.idx.flagNames {
		v, ok := initial[name]
		if !ok {
			v = "0"
		}
		lines = append(lines, fmt.Sprintf("~%s = %s;", scName(name), v))
	}
	return strings.Join(lines, "\n") + "\n"
}
