package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Conceptual-Machines/bp3-agents-go/models"
	"github.com/tidwall/gjson"
)

// ErrNotFound is returned when a named resource file does not exist.
var ErrNotFound = errors.New("resource not found")

const (
	settingsPrefix = "-se."
	alphabetPrefix = "-al."
	homoPrefix     = "-ho."
)

// ParseSettings reads a BP3 settings document. Entries look like
// {"Pclock": {"value": "15"}} and may also be bare values.
// Missing or malformed entries keep their BP3 defaults.
func ParseSettings(name string, data []byte) (*models.Settings, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("settings %s: invalid JSON", name)
	}
	root := gjson.ParseBytes(data)
	s := models.DefaultSettings()
	s.Name = name

	if v, ok := settingValue(root, "NoteConvention"); ok {
		if n, ok := asInt(v); ok {
			s.NoteConvention = models.NoteConvention(n)
		}
	}

	pclock, qclock := 15.0, 22.0
	if v, ok := settingValue(root, "Pclock"); ok {
		if f, ok := asFloat(v); ok {
			pclock = f
		}
	}
	if v, ok := settingValue(root, "Qclock"); ok {
		if f, ok := asFloat(v); ok {
			qclock = f
		}
	}
	s.TempoBPM = tempoFromClock(pclock, qclock)

	if v, ok := settingValue(root, "DeftVelocity"); ok {
		if n, ok := asInt(v); ok {
			s.DefaultVelocity = n
		}
	}
	if v, ok := settingValue(root, "DeftVolume"); ok {
		if n, ok := asInt(v); ok {
			s.DefaultVolume = n
		}
	}
	if v, ok := settingValue(root, "C4key"); ok {
		if n, ok := asInt(v); ok {
			s.C4Key = n
		}
	}
	if v, ok := settingValue(root, "A4freq"); ok {
		if f, ok := asFloat(v); ok {
			s.A4Freq = f
		}
	}
	if v, ok := settingValue(root, "Quantization"); ok {
		if n, ok := asInt(v); ok {
			s.Quantization = n
		}
	}
	if v, ok := settingValue(root, "Nature_of_time"); ok {
		if n, ok := asInt(v); ok {
			s.Striated = n == 1
		}
	}
	return &s, nil
}

// LoadSettings reads a -se.* file from disk.
func LoadSettings(path string) (*models.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(strings.TrimPrefix(filepath.Base(path), settingsPrefix), data)
}

// LoadSettingsDir reads every -se.* file in dir, keyed by name without prefix.
// Unreadable files are skipped.
func LoadSettingsDir(dir string) (map[string]*models.Settings, error) {
	paths, err := filepath.Glob(filepath.Join(dir, settingsPrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	out := make(map[string]*models.Settings, len(paths))
	for _, p := range paths {
		s, err := LoadSettings(p)
		if err != nil {
			continue
		}
		out[s.Name] = s
	}
	return out, nil
}

// tempoFromClock converts a Pclock/Qclock metronome period to beats per minute.
func tempoFromClock(pclock, qclock float64) float64 {
	if qclock == 0 {
		return 60
	}
	period := pclock / qclock
	if period <= 0 {
		return 60
	}
	return 60 / period
}

func settingValue(root gjson.Result, key string) (gjson.Result, bool) {
	entry := root.Get(gjson.Escape(key))
	if !entry.Exists() {
		return entry, false
	}
	if entry.IsObject() {
		v := entry.Get("value")
		return v, v.Exists()
	}
	return entry, true
}

func asInt(v gjson.Result) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0, false
		}
		r := gjson.Parse(s)
		if r.Type != gjson.Number {
			return 0, false
		}
		return r.Float(), true
	}
	return 0, false
}
