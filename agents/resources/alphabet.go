package resources

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// HomoSection is a named block of source --> target rules in an alphabet file.
type HomoSection struct {
	Name  string
	Pairs []models.HomoPair
}

// Alphabet is the parsed content of one -al.* (or -ho.*) file.
type Alphabet struct {
	Name          string
	Terminals     []string
	Homomorphisms map[string]*HomoSection
	FileRefs      []string
}

var (
	homoRuleLine  = regexp.MustCompile(`^(.+?)\s*-->\s*(.+)$`)
	fileRefLine   = regexp.MustCompile(`^-([a-z]{2})\.(.+)$`)
	separatorLine = regexp.MustCompile(`^-{3,}$`)
)

// ParseAlphabet reads an alphabet file. A bare line followed by "-->" rules names a
// homomorphism section; bare lines that are not followed by rules are terminals.
func ParseAlphabet(name string, r io.Reader) (*Alphabet, error) {
	a := &Alphabet{Name: name, Homomorphisms: map[string]*HomoSection{}}

	var current *HomoSection
	pending := ""
	closeSection := func() {
		if current != nil && len(current.Pairs) > 0 {
			a.Homomorphisms[current.Name] = current
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if m := fileRefLine.FindStringSubmatch(line); m != nil {
			a.FileRefs = append(a.FileRefs, fmt.Sprintf("-%s.%s", m[1], m[2]))
			continue
		}
		if separatorLine.MatchString(line) {
			closeSection()
			if pending != "" {
				a.Terminals = append(a.Terminals, pending)
			}
			pending = ""
			continue
		}
		if m := homoRuleLine.FindStringSubmatch(line); m != nil {
			if current == nil {
				label := pending
				if label == "" {
					label = "*"
				}
				current = &HomoSection{Name: label}
			}
			current.Pairs = append(current.Pairs, models.HomoPair{
				Source: strings.TrimSpace(m[1]),
				Target: strings.TrimSpace(m[2]),
			})
			pending = ""
			continue
		}
		if l := strings.ToLower(line); l == "sync" || l == "*" {
			continue
		}
		if current != nil && len(current.Pairs) > 0 {
			closeSection()
		}
		if pending != "" {
			a.Terminals = append(a.Terminals, pending)
		}
		pending = line
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alphabet %s: %w", name, err)
	}

	if pending != "" {
		a.Terminals = append(a.Terminals, pending)
	}
	closeSection()
	return a, nil
}

// LoadAlphabet reads an -al.* or -ho.* file from disk.
func LoadAlphabet(path string) (*Alphabet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open alphabet: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	name := strings.TrimPrefix(strings.TrimPrefix(base, alphabetPrefix), homoPrefix)
	return ParseAlphabet(name, f)
}

// AlphabetSet is every alphabet file of a directory, keyed by name without prefix.
type AlphabetSet map[string]*Alphabet

// LoadAlphabetDir reads all -al.* and -ho.* files in dir. Unreadable files are skipped.
func LoadAlphabetDir(dir string) (AlphabetSet, error) {
	set := AlphabetSet{}
	for _, prefix := range []string{alphabetPrefix, homoPrefix} {
		paths, err := filepath.Glob(filepath.Join(dir, prefix+"*"))
		if err != nil {
			return nil, fmt.Errorf("failed to list alphabets: %w", err)
		}
		for _, p := range paths {
			a, err := LoadAlphabet(p)
			if err != nil {
				continue
			}
			set[a.Name] = a
		}
	}
	return set, nil
}

// Homomorphism searches every file for a section with the given label.
// Files are searched in name order so the result does not depend on map order.
func (s AlphabetSet) Homomorphism(label string) (*HomoSection, bool) {
	for _, name := range s.names() {
		if sec, ok := s[name].Homomorphisms[label]; ok {
			return sec, true
		}
	}
	return nil, false
}

func (s AlphabetSet) names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Table builds the lookup table for a document from the alphabet and homomorphism
// files its header references. Terminals that look like letter note names keep their
// pitch, the others are numbered from 60 in file order.
func (s AlphabetSet) Table(doc *models.Document) *models.AlphabetTable {
	table := &models.AlphabetTable{
		Terminals:     map[string]int{},
		Homomorphisms: map[string][]models.HomoPair{},
	}
	if doc == nil {
		return table
	}
	for _, h := range doc.Headers {
		ref, ok := h.(models.FileRef)
		if !ok || (ref.Prefix != "al" && ref.Prefix != "ho") {
			continue
		}
		a, ok := s[ref.Name]
		if !ok {
			continue
		}
		table.Sources = append(table.Sources, ref.Name)
		for i, term := range a.Terminals {
			if _, seen := table.Terminals[term]; seen {
				continue
			}
			if midi, conv, ok := theory.PitchFromName(term, theory.ConventionAnglo); ok && conv == theory.ConventionAnglo {
				table.Terminals[term] = midi
				continue
			}
			table.Terminals[term] = 60 + i
		}
	}
	// Homomorphism labels may live in any loaded file, not only the referenced ones.
	for _, name := range s.names() {
		for label, sec := range s[name].Homomorphisms {
			if _, seen := table.Homomorphisms[label]; !seen {
				table.Homomorphisms[label] = sec.Pairs
			}
		}
	}
	return table
}
