package config

import (
	"os"
	"strconv"
)

// Config contains configuration for the BP3 agents
type Config struct {
	// Environment
	Environment string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for LLM provider
	GeminiAPIKey string // Google Gemini API key (optional)

	// Observability
	SentryDSN string // Sentry DSN for error tracking (optional)

	// Translation
	StartSymbol    string  // Symbol played by the generated code
	AlphabetDir    string  // Directory holding -al.*, -ho.* and -se.* files
	ScaleTablePath string  // Optional HCL overlay for the scale table
	MaxDur         float64 // Playback bound in beats, 0 for none

	// Composer
	ComposerModel    string // Model used to write grammars
	ComposerProvider string // "openai" or "gemini", empty to infer from the model
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		StartSymbol:      getEnv("BP3_START_SYMBOL", "S"),
		AlphabetDir:      getEnv("BP3_ALPHABET_DIR", ""),
		ScaleTablePath:   getEnv("BP3_SCALE_TABLE", ""),
		MaxDur:           getEnvFloat("BP3_MAX_DUR", 0),
		ComposerModel:    getEnv("BP3_COMPOSER_MODEL", "gpt-5.1"),
		ComposerProvider: getEnv("BP3_COMPOSER_PROVIDER", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
