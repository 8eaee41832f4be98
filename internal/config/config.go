package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/wizzomafizzo/consolestrip/internal/filter"
	"github.com/wizzomafizzo/consolestrip/internal/textcodec"
)

// Write-back policies for rewritten files.
const (
	WriteBackSource  = "source"
	WriteBackPrimary = "primary"
)

var (
	ErrNoExtensions = errors.New("config must list at least one extension")
	ErrNoRules      = errors.New("config must contain at least one rule")
)

type Config struct {
	Extensions []string       `yaml:"extensions" mapstructure:"extensions"`
	Exclude    []string       `yaml:"exclude,omitempty" mapstructure:"exclude"`
	Rules      []Rule         `yaml:"rules" mapstructure:"rules"`
	Encoding   EncodingConfig `yaml:"encoding" mapstructure:"encoding"`
	Logging    LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

type Rule struct {
	Name       string   `yaml:"name" mapstructure:"name"`
	Match      []string `yaml:"match" mapstructure:"match"`
	IgnoreCase bool     `yaml:"ignore_case,omitempty" mapstructure:"ignore_case"`
}

type EncodingConfig struct {
	Primary   string   `yaml:"primary" mapstructure:"primary"`
	Fallback  []string `yaml:"fallback,omitempty" mapstructure:"fallback"`
	WriteBack string   `yaml:"write_back" mapstructure:"write_back"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
}

// EnvPrefix prefixes environment overrides, e.g. CONSOLESTRIP_ENCODING_PRIMARY.
const EnvPrefix = "CONSOLESTRIP"

// Load reads the config at path from fs. Keys missing from the file keep their
// default values. When allowMissing is set, a missing file yields the defaults.
func Load(fs afero.Fs, path string, allowMissing bool) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			data = nil
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads config from YAML bytes on top of the defaults and
// environment overrides.
func LoadFromYAML(data []byte) (*Config, error) {
	viperInstance := newViper()
	viperInstance.SetConfigType("yaml")

	if err := viperInstance.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var config Config
	if err := viperInstance.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func newViper() *viper.Viper {
	defaults := DefaultConfig()

	viperInstance := viper.New()
	viperInstance.SetDefault("extensions", defaults.Extensions)
	viperInstance.SetDefault("rules", defaults.Rules)
	viperInstance.SetDefault("encoding.primary", defaults.Encoding.Primary)
	viperInstance.SetDefault("encoding.fallback", defaults.Encoding.Fallback)
	viperInstance.SetDefault("encoding.write_back", defaults.Encoding.WriteBack)
	viperInstance.SetDefault("logging.level", defaults.Logging.Level)
	viperInstance.SetDefault("logging.max_size", defaults.Logging.MaxSize)
	viperInstance.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viperInstance.SetDefault("logging.max_age", defaults.Logging.MaxAge)

	viperInstance.SetEnvPrefix(EnvPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()
	return viperInstance
}

func (c *Config) Validate() error {
	if len(c.Extensions) == 0 {
		return ErrNoExtensions
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q: must start with '.'", ext)
		}
	}

	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	if len(c.Rules) == 0 {
		return ErrNoRules
	}
	if _, err := c.RuleSet(); err != nil {
		return err
	}

	if _, err := c.Codecs(); err != nil {
		return err
	}

	switch c.Encoding.WriteBack {
	case WriteBackSource, WriteBackPrimary:
	default:
		return fmt.Errorf("invalid write_back %q: must be one of: %s, %s",
			c.Encoding.WriteBack, WriteBackSource, WriteBackPrimary)
	}

	return nil
}

// FilterRules converts the configured rules to filter definitions.
func (c *Config) FilterRules() []filter.Rule {
	rules := make([]filter.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rule-%d", i+1)
		}
		rules = append(rules, filter.Rule{
			Name:       name,
			Signatures: r.Match,
			IgnoreCase: r.IgnoreCase,
		})
	}
	return rules
}

// RuleSet compiles the configured rules.
func (c *Config) RuleSet() (filter.RuleSet, error) {
	rs, err := filter.Compile(c.FilterRules())
	if err != nil {
		return filter.RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rs, nil
}

// Codecs resolves the primary and fallback encodings.
func (c *Config) Codecs() (textcodec.Chain, error) {
	chain, err := textcodec.NewChain(c.Encoding.Primary, c.Encoding.Fallback...)
	if err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}
	return chain, nil
}
