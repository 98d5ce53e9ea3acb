package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDocument is returned when a document violates a tree invariant.
var ErrInvalidDocument = errors.New("invalid grammar document")

// ValidationError lists every invariant violation found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks the structural invariants of a document before translation.
func Validate(doc *Document) error {
	if doc == nil {
		return &ValidationError{Problems: []string{"document is nil"}}
	}
	var problems []string
	if len(doc.Blocks) == 0 {
		problems = append(problems, "document has no grammar blocks")
	}
	for bi, b := range doc.Blocks {
		if b == nil {
			problems = append(problems, fmt.Sprintf("block %d is nil", bi+1))
			continue
		}
		if !b.Mode.Valid() {
			problems = append(problems, fmt.Sprintf("block %d has unknown mode %q", b.Index, b.Mode))
		}
		for ri, r := range b.Rules {
			if r == nil {
				problems = append(problems, fmt.Sprintf("block %d: rule %d is nil", bi+1, ri+1))
				continue
			}
			loc := fmt.Sprintf("gram#%d[%d]", r.GrammarNum, r.RuleNum)
			if len(r.LHS) == 0 {
				problems = append(problems, loc+": empty left-hand side")
			}
			if r.Weight != nil {
				if r.Weight.Value < 0 {
					problems = append(problems, loc+": negative weight")
				}
				if r.Weight.Decrement < 0 {
					problems = append(problems, loc+": negative weight decrement")
				}
			}
			for _, f := range r.Flags {
				if f.Name == "" {
					problems = append(problems, loc+": flag without name")
				}
				if f.Op == FlagBare && f.Value != "" {
					problems = append(problems, fmt.Sprintf("%s: bare flag %q carries an operand", loc, f.Name))
				}
			}
			problems = append(problems, validateElements(loc, r.RHS)...)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func validateElements(loc string, elems []Element) []string {
	var problems []string
	for _, e := range elems {
		switch v := e.(type) {
		case Wildcard:
			if v.Index < 0 {
				problems = append(problems, loc+": negative wildcard index")
			}
		case Polymetric:
			if v.HasRatio && v.Ratio <= 0 {
				problems = append(problems, loc+": non-positive polymetric ratio")
			}
			for _, voice := range v.Voices {
				problems = append(problems, validateElements(loc, voice)...)
			}
		case HomoApply:
			problems = append(problems, validateElements(loc, v.Elements)...)
		case nil:
			problems = append(problems, loc+": nil element")
		}
	}
	return problems
}
