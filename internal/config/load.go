package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := envPattern.FindStringSubmatch(m)[1]
		return os.Getenv(key)
	})
}

// fileConfig mirrors Config with optional numeric fields so a loaded file
// can distinguish "absent, use the default" from an explicit zero, which
// disables that criterion.
type fileConfig struct {
	Retention struct {
		MaxAgeDays      *int   `yaml:"maxAgeDays"`
		MaxCountPerFile *int   `yaml:"maxCountPerFile"`
		AutoPruneCron   string `yaml:"autoPruneCron"`
	} `yaml:"retention"`
	Scan struct {
		MaxDepth      *int           `yaml:"maxDepth"`
		Timeout       *time.Duration `yaml:"timeout"`
		ExtraSkipDirs []string       `yaml:"extraSkipDirs"`
	} `yaml:"scan"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	// read raw YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// expand $(ENV_VAR) placeholders
	expanded := expandEnvVars(string(data))

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}

	// overlay the file's set fields on the defaults
	cfg := Default()
	if fc.Retention.MaxAgeDays != nil {
		cfg.Retention.MaxAgeDays = *fc.Retention.MaxAgeDays
	}
	if fc.Retention.MaxCountPerFile != nil {
		cfg.Retention.MaxCountPerFile = *fc.Retention.MaxCountPerFile
	}
	if fc.Retention.AutoPruneCron != "" {
		cfg.Retention.AutoPruneCron = fc.Retention.AutoPruneCron
	}
	if fc.Scan.MaxDepth != nil {
		cfg.Scan.MaxDepth = *fc.Scan.MaxDepth
	}
	if fc.Scan.Timeout != nil {
		cfg.Scan.Timeout = *fc.Scan.Timeout
	}
	if len(fc.Scan.ExtraSkipDirs) > 0 {
		cfg.Scan.ExtraSkipDirs = fc.Scan.ExtraSkipDirs
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	return cfg, nil
}
