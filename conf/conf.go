// Package conf loads the application configuration from layered sources:
// built-in defaults, an optional YAML file, and VIBEYF_-prefixed environment
// variables, in ascending precedence.
package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// VIBEYF_EMBEDDING_URL -> embedding.url.
const EnvPrefix = "VIBEYF_"

// ConfigPathEnvVar names an explicit config file location.
const ConfigPathEnvVar = "VIBEYF_CONFIG"

// defaultConfigPaths are searched in order when no explicit path is given.
var defaultConfigPaths = []string{
	"vibeyf.yaml",
	"config/vibeyf.yaml",
	"/etc/vibeyf/config.yaml",
}

// Config is the full application configuration. It is immutable after Load
// and safe for concurrent reads.
type Config struct {
	Corpus    CorpusConfig    `koanf:"corpus"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	GenAI     GenAIConfig     `koanf:"genai"`
	Engine    EngineConfig    `koanf:"engine"`
	Archive   ArchiveConfig   `koanf:"archive"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// CorpusConfig locates the recommendation corpus.
type CorpusConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// EmbeddingConfig configures the embedding inference server and its cache.
type EmbeddingConfig struct {
	URL          string        `koanf:"url" validate:"required,url"`
	Model        string        `koanf:"model"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=0"`
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gte=0"`
	CachePath    string        `koanf:"cache_path" validate:"required"`
}

// GenAIConfig configures the optional generative model used for text
// enrichment and report generation.
type GenAIConfig struct {
	Enabled  bool          `koanf:"enabled"`
	URL      string        `koanf:"url" validate:"omitempty,url"`
	Model    string        `koanf:"model"`
	MinWords int           `koanf:"min_words" validate:"gte=0"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
}

// EngineConfig holds the scoring weights and result sizes.
type EngineConfig struct {
	TopN             int     `koanf:"top_n" validate:"gt=0"`
	SemanticWeight   float64 `koanf:"semantic_weight" validate:"gte=0,lte=1"`
	MoodWeight       float64 `koanf:"mood_weight" validate:"gte=0,lte=1"`
	PreferenceWeight float64 `koanf:"preference_weight" validate:"gte=0,lte=1"`
	AudioWeight      float64 `koanf:"audio_weight" validate:"gte=0,lte=1"`
}

// ArchiveConfig configures response archival.
type ArchiveConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// defaultConfig returns the built-in defaults, matching the local-first
// deployment: llama.cpp embedding server and Ollama on their usual ports.
func defaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			Path: "corpus.json",
		},
		Embedding: EmbeddingConfig{
			URL:          "http://localhost:8082/embed/text",
			Timeout:      2 * time.Minute,
			MaxRetries:   3,
			RetryBackoff: 2 * time.Second,
			CachePath:    "data/embeddings",
		},
		GenAI: GenAIConfig{
			Enabled:  false,
			URL:      "http://localhost:11434",
			Model:    "llama3.1:8b",
			MinWords: 5,
			Timeout:  30 * time.Second,
		},
		Engine: EngineConfig{
			TopN:             10,
			SemanticWeight:   0.5,
			MoodWeight:       0.2,
			PreferenceWeight: 0.2,
			AudioWeight:      0.1,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "data/archive",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, then an optional YAML file,
// then environment variables, and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the scoring weight sum.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	sum := c.Engine.SemanticWeight + c.Engine.MoodWeight + c.Engine.PreferenceWeight + c.Engine.AudioWeight
	if sum < 1.0-1e-9 || sum > 1.0+1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
