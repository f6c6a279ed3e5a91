package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level vigia.yaml configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Advisor    AdvisorConfig    `yaml:"advisor"`
	Impulse    ImpulseConfig    `yaml:"impulse"`
	Suspicious SuspiciousConfig `yaml:"suspicious"`
}

// ServerConfig controls the HTTP read/dispatch surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AdvisorConfig controls the intent-classifier collaborator.
type AdvisorConfig struct {
	Model string `yaml:"model"`
}

// ImpulseConfig holds the pre-commit heuristic thresholds. They are named
// configuration so the detector logic never carries inline literals.
type ImpulseConfig struct {
	Enabled bool `yaml:"enabled"` // anti-impulse mode on account creation

	// RapidCount purchases within RapidWindowMinutes trigger a block
	// (the candidate itself counts toward RapidCount).
	RapidCount         int `yaml:"rapid_count"`
	RapidWindowMinutes int `yaml:"rapid_window_minutes"`

	// A candidate identical in amount and category to the newest ledger
	// entry within this window is a repeated purchase.
	RepeatedWindowMinutes int `yaml:"repeated_window_minutes"`

	// Hour-of-day window [start, end) treated as risky. Wraps midnight
	// when start > end.
	RiskyStartHour int `yaml:"risky_start_hour"`
	RiskyEndHour   int `yaml:"risky_end_hour"`
}

// RapidWindow returns the rapid-purchase window as a duration.
func (c ImpulseConfig) RapidWindow() time.Duration {
	return time.Duration(c.RapidWindowMinutes) * time.Minute
}

// RepeatedWindow returns the repeated-purchase window as a duration.
func (c ImpulseConfig) RepeatedWindow() time.Duration {
	return time.Duration(c.RepeatedWindowMinutes) * time.Minute
}

// SuspiciousConfig holds the post-commit heuristic thresholds.
type SuspiciousConfig struct {
	// Identical expenses closer together than this are duplicates.
	DuplicateWindowMinutes int `yaml:"duplicate_window_minutes"`

	// An amount above mean * UnusualMultiplier is unusual, but only once
	// the same-category history has more than MinCategoryHistory entries.
	UnusualMultiplier  float64 `yaml:"unusual_multiplier"`
	MinCategoryHistory int     `yaml:"min_category_history"`

	// Hour-of-day window [start, end) treated as unusual. Intentionally
	// narrower than the impulse risky window; it is a later-stage signal.
	UnusualStartHour int `yaml:"unusual_start_hour"`
	UnusualEndHour   int `yaml:"unusual_end_hour"`

	// This many earlier expenses with the same description mark the next
	// one as a possible subscription.
	SubscriptionMinRepeats int `yaml:"subscription_min_repeats"`
}

// DuplicateWindow returns the duplicate window as a duration.
func (c SuspiciousConfig) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowMinutes) * time.Minute
}

// Load reads a vigia.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with the stock heuristic thresholds.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Advisor: AdvisorConfig{
			Model: "gemini-2.5-flash",
		},
		Impulse: ImpulseConfig{
			Enabled:               true,
			RapidCount:            3,
			RapidWindowMinutes:    4,
			RepeatedWindowMinutes: 2,
			RiskyStartHour:        23,
			RiskyEndHour:          5,
		},
		Suspicious: SuspiciousConfig{
			DuplicateWindowMinutes: 5,
			UnusualMultiplier:      1.7,
			MinCategoryHistory:     3,
			UnusualStartHour:       1,
			UnusualEndHour:         5,
			SubscriptionMinRepeats: 2,
		},
	}
}
