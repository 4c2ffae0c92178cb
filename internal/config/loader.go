package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// validLogLevels lists the accepted Server.LogLevel values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// ValidProviderNames lists known provider names per provider kind. Used by
// [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"transcriber": {"whisper", "whisper-native", "deepgram"},
	"embedder":    {"openai", "ollama"},
	"classifier":  {"openai", "anyllm"},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, clamps tunable thresholds
// into their valid ranges, and validates the result. Useful in tests where
// configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	clampDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// clampDefaults applies spec-mandated clamps and fills zero-value defaults
// before struct-tag validation runs. A semantic threshold of 0.4 clamps to
// 0.5; 0.95 clamps to 0.9.
func clampDefaults(cfg *Config) {
	if cfg.LateHello.ThresholdSec == 0 {
		cfg.LateHello.ThresholdSec = 5
	}
	if cfg.VAD.MinSpeechDurationMs == 0 {
		cfg.VAD.MinSpeechDurationMs = 300
	}
	if cfg.Semantic.Threshold == 0 {
		cfg.Semantic.Threshold = 0.68
	}
	cfg.Semantic.Threshold = clamp(cfg.Semantic.Threshold, 0.5, 0.9)
	if cfg.Learning.ConfidenceThreshold == 0 {
		cfg.Learning.ConfidenceThreshold = 0.85
	}
	if cfg.Learning.FrequencyThreshold == 0 {
		cfg.Learning.FrequencyThreshold = 5
	}
	if cfg.Learning.AutoApproveThreshold == 0 {
		cfg.Learning.AutoApproveThreshold = 0.95
	}
	if cfg.Batch.PerFileTimeoutSec == 0 {
		if cfg.Batch.LiteMode {
			cfg.Batch.PerFileTimeoutSec = 30
		} else {
			cfg.Batch.PerFileTimeoutSec = 600
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !slices.Contains(validLogLevels, cfg.Server.LogLevel) {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: %v", cfg.Server.LogLevel, validLogLevels))
	}

	validateProviderName("transcriber", cfg.Providers.Transcriber.Name)
	validateProviderName("embedder", cfg.Providers.Embedder.Name)
	validateProviderName("classifier", cfg.Providers.Classifier.Name)

	if cfg.Providers.Embedder.Name != "" && cfg.Store.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embedder is configured but store.embedding_dimensions is not set; defaulting to 1536",
			"provider", cfg.Providers.Embedder.Name)
	}

	if cfg.Store.PostgresDSN == "" {
		slog.Warn("store.postgres_dsn is empty; the phrase repository will have no persisted phrases")
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
