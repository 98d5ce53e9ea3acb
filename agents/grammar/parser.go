package grammar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// ErrNoBlocks is returned when a text contains neither a mode line nor a rule.
var ErrNoBlocks = errors.New("no grammar blocks found")

// Line classification.
var (
	commentLine   = regexp.MustCompile(`^//(.*)$`)
	fileRefLine   = regexp.MustCompile(`^-(\w+)\.(.+)$`)
	initLine      = regexp.MustCompile(`^INIT:\s*(.+)$`)
	separatorLine = regexp.MustCompile(`^----*\s*$`)
	modeLine      = regexp.MustCompile(`^(ORD|RND|LIN|SUB1|SUB)(?:\s*\[([^\]]*)\])?(?:\s*\[([^\]]*)\])?\s*$`)
	ruleLine      = regexp.MustCompile(`(?i)^gram#(\d+)\[(\d+)\]`)
	bareRuleLine  = regexp.MustCompile(`^[A-Z][A-Za-z0-9_'"]*\s+-->`)
	commentMarker = "COMMENT:"
)

// Preamble items: _fn(args) or a bare _fn such as _striated.
var (
	preambleCall = regexp.MustCompile(`^_([a-zA-Z]\w*)\(([^)]*)\)`)
	preambleBare = regexp.MustCompile(`^_([a-zA-Z]\w*)(?:\s|$)`)
)

// ParseFile reads and parses a BP3 grammar file. Invalid UTF-8 is replaced.
func ParseFile(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read grammar file: %w", err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Parse reads BP3 grammar text. Lines are classified first (comment, header
// reference, INIT, separator, mode, preamble, rule); rule lines are then tokenized.
// Unrecognized lines are skipped.
func Parse(text string) (*models.Document, error) {
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	doc := &models.Document{}
	var current *models.Block
	inHeaders := true

	newBlock := func(mode models.Mode) *models.Block {
		b := &models.Block{Mode: mode}
		doc.Blocks = append(doc.Blocks, b)
		return b
	}
	// gramNum is the number bare rules take: the declared index, else the position.
	gramNum := func() int {
		if current.Index != 0 {
			return current.Index
		}
		return len(doc.Blocks)
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if line == commentMarker {
			break
		}

		if m := commentLine.FindStringSubmatch(line); m != nil {
			if inHeaders {
				doc.Headers = append(doc.Headers, models.Comment{Text: strings.TrimSpace(m[1])})
			}
			continue
		}
		if m := fileRefLine.FindStringSubmatch(line); m != nil && inHeaders {
			doc.Headers = append(doc.Headers, models.FileRef{Prefix: m[1], Name: m[2]})
			continue
		}
		if m := initLine.FindStringSubmatch(line); m != nil {
			doc.Headers = append(doc.Headers, models.InitDirective{Text: strings.TrimSpace(m[1])})
			continue
		}
		if separatorLine.MatchString(line) {
			continue
		}

		if m := modeLine.FindStringSubmatch(line); m != nil {
			inHeaders = false
			current = newBlock(models.Mode(m[1]))
			index, label := m[2], m[3]
			if n, err := strconv.Atoi(strings.TrimSpace(index)); err == nil {
				current.Index = n
			} else if label == "" && index != "" {
				label = index
			}
			current.Label = strings.TrimSpace(label)
			continue
		}

		isRule := ruleLine.MatchString(line) || bareRuleLine.MatchString(line)
		if current != nil && !isRule {
			if items := parsePreamble(line); len(items) > 0 {
				current.Preamble = append(current.Preamble, items...)
				continue
			}
		}

		if m := ruleLine.FindStringSubmatch(line); m != nil {
			inHeaders = false
			if current == nil {
				current = newBlock(models.ModeOrd)
			}
			g, _ := strconv.Atoi(m[1])
			r, _ := strconv.Atoi(m[2])
			current.Rules = append(current.Rules, parseRule(line[len(m[0]):], g, r))
			continue
		}

		if bareRuleLine.MatchString(line) {
			inHeaders = false
			if current == nil {
				current = newBlock(models.ModeOrd)
			}
			current.Rules = append(current.Rules, parseRule(line, gramNum(), len(current.Rules)+1))
		}
	}

	if len(doc.Blocks) == 0 {
		return nil, ErrNoBlocks
	}
	numberBlocks(doc.Blocks)
	return doc, nil
}

// parsePreamble reads the directives at the start of a line, e.g. _mm(88) _striated.
// Anything after the last directive is ignored. It returns nil when the line does
// not start with one.
func parsePreamble(line string) []models.Directive {
	var items []models.Directive
	rest := line
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		if m := preambleCall.FindStringSubmatch(rest); m != nil {
			items = append(items, models.Directive{Name: m[1], Args: splitArgs(m[2])})
			rest = rest[len(m[0]):]
			continue
		}
		if m := preambleBare.FindStringSubmatch(rest); m != nil {
			items = append(items, models.Directive{Name: m[1]})
			rest = rest[len(m[0]):]
			continue
		}
		break
	}
	return items
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// numberBlocks gives blocks without an index their position, or the next number no
// other block declares.
func numberBlocks(blocks []*models.Block) {
	taken := map[int]bool{}
	for _, b := range blocks {
		taken[b.Index] = true
	}
	for i, b := range blocks {
		if b.Index != 0 {
			continue
		}
		n := i + 1
		for taken[n] {
			n++
		}
		b.Index = n
		taken[n] = true
	}
}
