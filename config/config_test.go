package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"BP3_START_SYMBOL", "BP3_MAX_DUR", "BP3_COMPOSER_MODEL", "ENVIRONMENT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "S", cfg.StartSymbol)
	assert.Equal(t, "gpt-5.1", cfg.ComposerModel)
	assert.Zero(t, cfg.MaxDur)
}

func TestLoad_FromEnvironment(t *testing.T) {
	tests := []struct {
		name   string
		maxDur string
		want   float64
	}{
		{name: "number", maxDur: "32", want: 32},
		{name: "fraction", maxDur: "7.5", want: 7.5},
		{name: "garbage keeps default", maxDur: "long", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BP3_START_SYMBOL", "Tihai")
			t.Setenv("BP3_MAX_DUR", tt.maxDur)

			cfg := Load()
			assert.Equal(t, "Tihai", cfg.StartSymbol)
			assert.Equal(t, tt.want, cfg.MaxDur)
		})
	}
}
