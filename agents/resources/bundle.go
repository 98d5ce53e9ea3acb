package resources

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/Conceptual-Machines/bp3-agents-go/agents/theory"
	"github.com/Conceptual-Machines/bp3-agents-go/models"
)

// Options says where a document's resources live on disk.
type Options struct {
	// Dir holds -al.*, -ho.* and -se.* files referenced by grammar headers.
	Dir string
	// SettingsPath overrides the settings file named in the header.
	SettingsPath string
	// ScaleTablePath is an optional HCL overlay for the built-in scale table.
	ScaleTablePath string
}

// Bundle is the set of lookup tables a translation reads.
type Bundle struct {
	Alphabet *models.AlphabetTable
	Settings *models.Settings
	Scales   *theory.ScaleTable
}

// Load resolves the resources a document references. A referenced file that is
// missing is not an error here; the translator reports it as a diagnostic.
func Load(doc *models.Document, opts Options) (*Bundle, error) {
	b := &Bundle{Scales: theory.DefaultScaleTable()}

	if opts.ScaleTablePath != "" {
		scales, err := LoadScaleTable(opts.ScaleTablePath)
		if err != nil {
			return nil, err
		}
		b.Scales = scales
		log.Printf("🎼 Loaded scale table overlay: %s (%d tunings, %d ragas)",
			opts.ScaleTablePath, len(scales.Tunings), len(scales.Ragas))
	}

	if opts.Dir != "" {
		set, err := LoadAlphabetDir(opts.Dir)
		if err != nil {
			return nil, err
		}
		if len(set) > 0 {
			b.Alphabet = set.Table(doc)
			log.Printf("🔤 Loaded %d alphabet file(s) from %s (%d terminals, %d homomorphisms)",
				len(set), opts.Dir, len(b.Alphabet.Terminals), len(b.Alphabet.Homomorphisms))
		}
	}

	settingsPath := opts.SettingsPath
	if settingsPath == "" && opts.Dir != "" && doc != nil {
		for _, h := range doc.Headers {
			if ref, ok := h.(models.FileRef); ok && ref.Prefix == "se" {
				settingsPath = filepath.Join(opts.Dir, settingsPrefix+ref.Name)
				break
			}
		}
	}
	if settingsPath != "" {
		s, err := LoadSettings(settingsPath)
		switch {
		case err == nil:
			b.Settings = s
			log.Printf("⚙️  Loaded settings %s (convention: %s, tempo: %.2f BPM)",
				s.Name, s.NoteConvention, s.TempoBPM)
		case errors.Is(err, ErrNotFound) && opts.SettingsPath == "":
			log.Printf("⚠️  Settings file not found: %s", settingsPath)
		default:
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}

	return b, nil
}
