package translator

import (
	"fmt"
	"io"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// ListRules prints a readable listing of every block and rule of a document.
func ListRules(doc *models.Document, w io.Writer) error {
	for pos, b := range doc.Blocks {
		var sb strings.Builder
		sb.WriteString(strings.Repeat("=", 60) + "\n")
		fmt.Fprintf(&sb, "Subgrammar %d - Mode: %s", blockNumber(b, pos), b.Mode)
		if b.Label != "" {
			fmt.Fprintf(&sb, " [%s]", b.Label)
		}
		sb.WriteString("\n")
		if len(b.Preamble) > 0 {
			directives := make([]string, len(b.Preamble))
			for i, d := range b.Preamble {
				directives[i] = formatElement(d)
			}
			fmt.Fprintf(&sb, "  Preamble: %s\n", strings.Join(directives, " "))
		}
		fmt.Fprintf(&sb, "  Rules: %d\n", len(b.Rules))
		for _, r := range b.Rules {
			sb.WriteString("  " + FormatRule(r) + "\n")
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return fmt.Errorf("failed to write rule listing: %w", err)
		}
	}
	return nil
}

// FormatRule renders a rule in BP3 notation: gram#1[2] <50-12> /Ideas/ S --> A B.
func FormatRule(r *models.Rule) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "gram#%d[%d] ", r.GrammarNum, r.RuleNum)
	if r.Weight != nil {
		if r.Weight.Decrements() {
			fmt.Fprintf(&sb, "<%d-%d> ", r.Weight.Value, r.Weight.Decrement)
		} else {
			fmt.Fprintf(&sb, "<%d> ", r.Weight.Value)
		}
	}
	for _, f := range r.Flags {
		if f.IsCondition() {
			sb.WriteString("/" + f.String() + "/ ")
		}
	}
	sb.WriteString(formatElements(r.LHS) + " -->")
	for _, f := range r.Flags {
		if f.IsOperation() {
			sb.WriteString(" /" + f.String() + "/")
		}
	}
	if rhs := formatElements(r.RHS); rhs != "" {
		sb.WriteString(" " + rhs)
	}
	if r.Comment != "" {
		sb.WriteString("  // " + r.Comment)
	}
	return sb.String()
}

func formatElements(elems []models.Element) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = formatElement(e)
	}
	return strings.Join(parts, " ")
}

func formatElement(e models.Element) string {
	switch v := e.(type) {
	case models.Note:
		if v.HasOctave {
			return fmt.Sprintf("%s%d", v.Name, v.Octave)
		}
		return v.Name
	case models.Rest:
		if v.Determined {
			return "-"
		}
		return "_"
	case models.UndeterminedRest:
		return "..."
	case models.Terminal:
		return v.Name
	case models.NonTerminal:
		return v.Name
	case models.Variable:
		return "|" + v.Name + "|"
	case models.Wildcard:
		if v.Index == 0 {
			return "?"
		}
		return fmt.Sprintf("?%d", v.Index)
	case models.Polymetric:
		voices := make([]string, 0, len(v.Voices)+1)
		if v.HasRatio {
			voices = append(voices, fmt.Sprint(v.Ratio))
		}
		for _, voice := range v.Voices {
			voices = append(voices, formatElements(voice))
		}
		return "{" + strings.Join(voices, ", ") + "}"
	case models.Directive:
		if strings.EqualFold(v.Name, "mm_inline") && len(v.Args) > 0 {
			return "||" + v.Args[0] + "||"
		}
		if len(v.Args) == 0 {
			return "_" + v.Name
		}
		return "_" + v.Name + "(" + strings.Join(v.Args, ",") + ")"
	case models.Lambda:
		return "lambda"
	case models.HomoApply:
		switch v.Kind {
		case models.HomoMaster:
			return "(= " + formatElements(v.Elements) + ")"
		case models.HomoSlave:
			return "(: " + formatElements(v.Elements) + ")"
		}
		return formatElements(v.Elements)
	case models.TimeSig:
		return v.Text
	case models.Annotation:
		return "[" + v.Text + "]"
	case models.Quoted:
		return "'" + v.Text + "'"
	case models.Tie:
		if v.Start {
			return formatElement(v.Note) + "&"
		}
		return "&" + formatElement(v.Note)
	case models.ContextMarker:
		if v.Symbol == nil {
			return "(" + v.Kind + ")"
		}
		return "(" + v.Kind + " " + formatElement(v.Symbol) + ")"
	case models.Goto:
		return fmt.Sprintf("_goto(%d,%d)", v.Grammar, v.Rule)
	}
	return fmt.Sprintf("<%T>", e)
}
