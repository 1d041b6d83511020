package config

import "time"

type Config struct {
	Retention RetentionConfig `yaml:"retention"`
	Scan      ScanConfig      `yaml:"scan"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type RetentionConfig struct {
	MaxAgeDays      int    `yaml:"maxAgeDays"`
	MaxCountPerFile int    `yaml:"maxCountPerFile"`
	AutoPruneCron   string `yaml:"autoPruneCron"` // empty disables the scheduler
}

type ScanConfig struct {
	MaxDepth      int           `yaml:"maxDepth"`
	Timeout       time.Duration `yaml:"timeout"` // e.g. 30s
	ExtraSkipDirs []string      `yaml:"extraSkipDirs"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // "info", "debug"
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	return &Config{
		Retention: RetentionConfig{
			MaxAgeDays:      30,
			MaxCountPerFile: 10,
		},
		Scan: ScanConfig{
			MaxDepth: 12,
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

