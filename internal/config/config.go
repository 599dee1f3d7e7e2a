// Package config provides Viper-based configuration loading for the rules engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/rpgrules/internal/game/stats"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RulesConfig holds the game-balance constants the engine is built with.
type RulesConfig struct {
	StatMin int `mapstructure:"stat_min"`
	StatMax int `mapstructure:"stat_max"`
	// MaxLevel is the level cap; experience keeps accumulating past it.
	MaxLevel int `mapstructure:"max_level"`
	// PointsPerLevel is the stat pool distributed on each level-up.
	PointsPerLevel int `mapstructure:"points_per_level"`
	// ExperienceBase scales the generated threshold curve (level 2 threshold).
	ExperienceBase int `mapstructure:"experience_base"`
	// Thresholds optionally lists explicit cumulative thresholds starting at level 2.
	Thresholds []int `mapstructure:"thresholds"`
	// BaseHealth is added to every character's starting maximum health.
	BaseHealth int `mapstructure:"base_health"`
}

// Bounds returns the configured stat range.
func (r RulesConfig) Bounds() stats.Bounds {
	return stats.Bounds{Min: r.StatMin, Max: r.StatMax}
}

// ContentConfig locates the static catalog tables.
type ContentConfig struct {
	// Dir is a directory holding classes/, effects/, and schools/ subdirectories.
	// Empty uses the tables compiled into the binary.
	Dir string `mapstructure:"dir"`
	// ScriptsDir holds Lua effect hook scripts. Empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps opcodes per hook call; 0 uses the package default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Content   ContentConfig   `mapstructure:"content"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.StatMin < 0 {
		errs = append(errs, fmt.Sprintf("rules.stat_min must be >= 0, got %d", r.StatMin))
	}
	if r.StatMax < r.StatMin {
		errs = append(errs, fmt.Sprintf("rules.stat_max (%d) must be >= rules.stat_min (%d)", r.StatMax, r.StatMin))
	}
	if r.MaxLevel < 1 {
		errs = append(errs, fmt.Sprintf("rules.max_level must be >= 1, got %d", r.MaxLevel))
	}
	if r.PointsPerLevel < 0 {
		errs = append(errs, fmt.Sprintf("rules.points_per_level must be >= 0, got %d", r.PointsPerLevel))
	}
	if r.ExperienceBase < 1 {
		errs = append(errs, fmt.Sprintf("rules.experience_base must be >= 1, got %d", r.ExperienceBase))
	}
	prev := 0
	for i, v := range r.Thresholds {
		if v <= prev {
			errs = append(errs, fmt.Sprintf("rules.thresholds[%d] (%d) must exceed %d", i, v, prev))
			break
		}
		prev = v
	}
	if r.BaseHealth < 0 {
		errs = append(errs, fmt.Sprintf("rules.base_health must be >= 0, got %d", r.BaseHealth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with RPG_ prefix
	v.SetEnvPrefix("RPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the configuration produced by Load with no file or environment overrides.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rules.stat_min", 1)
	v.SetDefault("rules.stat_max", 99)
	v.SetDefault("rules.max_level", 20)
	v.SetDefault("rules.points_per_level", 5)
	v.SetDefault("rules.experience_base", 100)
	v.SetDefault("rules.thresholds", []int{})
	v.SetDefault("rules.base_health", 10)

	v.SetDefault("content.dir", "")
	v.SetDefault("content.scripts_dir", "")

	v.SetDefault("scripting.instruction_limit", 0)
}
