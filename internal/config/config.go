// Package config loads and validates the walkr configuration file. A broken
// configuration is fatal before any file is analyzed: degrading to "no
// rules" would produce a misleadingly clean compliance report.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the resolved settings object consumed by the engine. All pattern
// tables are validated (every expression compiled) before a run starts.
type Config struct {
	RootPath  string   `yaml:"root_path"`
	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"`
	Ignores   []string `yaml:"ignores"`

	EnableComplexity  bool `yaml:"enable_complexity"`
	EnableDBDetection bool `yaml:"enable_db_detection"`
	EnableDocCoverage bool `yaml:"enable_doc_coverage"`

	MaxFunctionLength  int     `yaml:"max_function_length"`
	MaxComplexityScore int     `yaml:"max_complexity_score"`
	MaxParameterCount  int     `yaml:"max_parameter_count"`
	MinDocCoverage     float64 `yaml:"min_doc_coverage"`

	// Generic database method and module names. A call site matching one of
	// these, but no violation or service rule, is reported as unclassified.
	DBMethods []string `yaml:"db_methods"`
	DBModules []string `yaml:"db_modules"`

	// Named pattern tables: category name → ordered list of regular
	// expressions, matched against raw call-site text.
	ViolationPatterns map[string][]string `yaml:"violation_patterns"`
	ServicePatterns   map[string][]string `yaml:"service_patterns"`
}

// Default returns the built-in configuration. Pattern defaults mirror the
// common direct-access and service-layer idioms of Python database code.
func Default() *Config {
	return &Config{
		RootPath:  ".",
		OutputDir: "./walkr_reports",
		Formats:   []string{"json"},
		Ignores: []string{
			"__init__", "__pycache__", "tests", "site-packages",
			"venv", ".venv", "build", "dist",
		},
		EnableComplexity:   true,
		EnableDBDetection:  true,
		EnableDocCoverage:  true,
		MaxFunctionLength:  30,
		MaxComplexityScore: 10,
		MaxParameterCount:  6,
		MinDocCoverage:     0.5,
		DBMethods: []string{
			"execute", "query", "find", "insert", "update", "delete",
			"save", "create", "drop", "select", "commit", "rollback",
		},
		DBModules: []string{
			"sqlite3", "sqlalchemy", "pymongo", "psycopg2", "mysql",
			"redis", "cassandra", "elasticsearch", "django.db",
		},
		// Patterns are matched against the callee expression only, never
		// against call arguments, so argument-shaped expressions (SQL text
		// like `SELECT\s+.*FROM`, or a trailing `\(`) would never fire and
		// are deliberately absent from the defaults.
		ViolationPatterns: map[string][]string{
			"direct_sql": {
				`cursor\.execute`,
				`\.executemany`,
				`\.executescript`,
			},
			"direct_redis": {
				`\.redis\.`,
				`\.lpush`,
				`\.xread`,
				`\.hget`,
				`\.zrangebyscore`,
				`\.pipeline`,
			},
			"direct_orm": {
				`session\.query`,
				`\.objects\.`,
			},
		},
		ServicePatterns: map[string][]string{
			"service_layer": {
				`_service\.`,
				`\.service\.`,
				`service_layer\.`,
			},
			"repository_pattern": {
				`_repo\.`,
				`\.repository\.`,
			},
		},
	}
}

// Load reads a YAML configuration file and merges it over the defaults.
// Missing keys keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks thresholds and compiles every configured pattern. It
// returns the first problem found; a Config that fails validation must not
// be handed to the engine.
func (c *Config) Validate() error {
	if c.MaxFunctionLength <= 0 {
		return fmt.Errorf("max_function_length must be positive, got %d", c.MaxFunctionLength)
	}
	if c.MaxComplexityScore <= 0 {
		return fmt.Errorf("max_complexity_score must be positive, got %d", c.MaxComplexityScore)
	}
	if c.MaxParameterCount <= 0 {
		return fmt.Errorf("max_parameter_count must be positive, got %d", c.MaxParameterCount)
	}
	if c.MinDocCoverage < 0 || c.MinDocCoverage > 1 {
		return fmt.Errorf("min_doc_coverage must be in [0,1], got %g", c.MinDocCoverage)
	}
	for _, table := range []struct {
		name     string
		patterns map[string][]string
	}{
		{"violation_patterns", c.ViolationPatterns},
		{"service_patterns", c.ServicePatterns},
	} {
		for category, exprs := range table.patterns {
			if len(exprs) == 0 {
				return fmt.Errorf("%s.%s: empty pattern list", table.name, category)
			}
			for _, expr := range exprs {
				if _, err := regexp.Compile(expr); err != nil {
					return fmt.Errorf("%s.%s: compile %q: %w", table.name, category, expr, err)
				}
			}
		}
	}
	return nil
}

// WriteDefault writes a starter configuration file to path. Fails if the
// file already exists.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
