package translator

import (
	"errors"
	"fmt"
)

// ErrStructuralInvariant is returned when generated code has unbalanced delimiters.
// It indicates a translator defect, never a problem with the input grammar.
var ErrStructuralInvariant = errors.New("structural invariant violation")

var closerFor = map[rune]rune{')': '(', ']': '[', '}': '{'}

// checkBalanced verifies that every (, [ and { in SuperCollider source is closed in
// order. Comments, strings, quoted symbols and character literals are skipped.
func checkBalanced(code string) error {
	type open struct {
		r    rune
		line int
	}
	var stack []open
	line := 1
	runes := []rune(code)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n':
			line++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				if runes[i] == '\n' {
					line++
				}
				i++
			}
			i++
		case r == '"' || r == '\'':
			quote := r
			for i++; i < len(runes) && runes[i] != quote; i++ {
				if runes[i] == '\\' {
					i++
				} else if runes[i] == '\n' {
					line++
				}
			}
		case r == '$':
			i++
		case r == '(' || r == '[' || r == '{':
			stack = append(stack, open{r: r, line: line})
		case r == ')' || r == ']' || r == '}':
			want := closerFor[r]
			if len(stack) == 0 {
				return fmt.Errorf("%w: unexpected %q on line %d", ErrStructuralInvariant, r, line)
			}
			top := stack[len(stack)-1]
			if top.r != want {
				return fmt.Errorf("%w: %q on line %d closes %q opened on line %d",
					ErrStructuralInvariant, r, line, top.r, top.line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return fmt.Errorf("%w: %q opened on line %d is never closed", ErrStructuralInvariant, top.r, top.line)
	}
	return nil
}
