package config

import (
	"fmt"

	"github.com/wizzomafizzo/consolestrip/internal/filter"
	"gopkg.in/yaml.v3"
)

// DefaultExtensions lists the file extensions scanned out of the box.
func DefaultExtensions() []string {
	return []string{
		".cs", ".txt", ".log", ".xml", ".json", ".config", ".xaml",
		".js", ".ts", ".html", ".css", ".md", ".yml", ".yaml",
		".cpp", ".h", ".hpp", ".c", ".py", ".java", ".kt",
	}
}

// DefaultConfig returns the default consolestrip configuration
func DefaultConfig() *Config {
	defaults := filter.DefaultRules()
	rules := make([]Rule, 0, len(defaults))
	for _, r := range defaults {
		rules = append(rules, Rule{Name: r.Name, Match: r.Signatures, IgnoreCase: r.IgnoreCase})
	}

	return &Config{
		Extensions: DefaultExtensions(),
		Rules:      rules,
		Encoding: EncodingConfig{
			Primary:   "utf-8",
			Fallback:  []string{"gbk"},
			WriteBack: WriteBackSource,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
	}
}

// DefaultConfigYAML returns the default configuration as YAML bytes
func DefaultConfigYAML() ([]byte, error) {
	config := DefaultConfig()
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config to YAML: %w", err)
	}
	return data, nil
}
