package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bplint/bplint/pkg/models"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for bplint.
type Config struct {
	// Scan settings: candidate filtering and execution.
	Scan ScanConfig `koanf:"scan"`

	// Detectors toggles individual checks.
	Detectors DetectorConfig `koanf:"detectors"`

	// Thresholds for severity heuristics.
	Thresholds ThresholdConfig `koanf:"thresholds"`

	// Source settings for the directory corpus loader.
	Source SourceConfig `koanf:"source"`

	// Output settings.
	Output OutputConfig `koanf:"output"`
}

// ScanConfig controls which programs a scan covers and how it runs.
// It is consumed read-only once a scan starts.
type ScanConfig struct {
	// RootPath is the logical path prefix of the analyzed corpus.
	// Functions declared outside it are never reported as unused.
	RootPath string `koanf:"root_path"`

	IncludePaths []string `koanf:"include_paths"`
	ExcludePaths []string `koanf:"exclude_paths"`

	// EntryPointBases names base classes whose subclasses are global
	// singletons; such programs are excluded from scans entirely.
	EntryPointBases []string `koanf:"entry_point_bases"`

	Concurrency        bool `koanf:"concurrency"`
	MaxConcurrentTasks int  `koanf:"max_concurrent_tasks"`
}

// DetectorConfig controls which detectors run.
type DetectorConfig struct {
	DeadNode       bool `koanf:"dead_node"`
	OrphanNode     bool `koanf:"orphan_node"`
	CastAbuse      bool `koanf:"cast_abuse"`
	TickAbuse      bool `koanf:"tick_abuse"`
	UnusedFunction bool `koanf:"unused_function"`
}

// ThresholdConfig defines detector thresholds.
type ThresholdConfig struct {
	// TickComplexity is the connected-node count above which a per-frame
	// event is reported.
	TickComplexity int `koanf:"tick_complexity"`
}

// SourceConfig controls how the directory source finds program files.
type SourceConfig struct {
	Patterns  []string `koanf:"patterns"` // gitignore-syntax excludes
	Gitignore bool     `koanf:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with all detectors enabled.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			RootPath:           "/Game",
			EntryPointBases:    []string{"GameInstance"},
			Concurrency:        true,
			MaxConcurrentTasks: 4,
		},
		Detectors: DetectorConfig{
			DeadNode:       true,
			OrphanNode:     true,
			CastAbuse:      true,
			TickAbuse:      true,
			UnusedFunction: true,
		},
		Thresholds: ThresholdConfig{
			TickComplexity: 10,
		},
		Source: SourceConfig{
			Patterns:  []string{".git", "Saved", "Intermediate"},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layering it over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"bplint.toml",
		"bplint.yaml",
		"bplint.yml",
		"bplint.json",
		".bplint.toml",
		".bplint.yaml",
		".bplint.yml",
		".bplint.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			if cfg, err := Load(name); err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// EnabledDetectors returns the enabled issue types in reporting order.
func (c *Config) EnabledDetectors() []models.IssueType {
	var out []models.IssueType
	if c.Detectors.DeadNode {
		out = append(out, models.IssueDeadNode)
	}
	if c.Detectors.OrphanNode {
		out = append(out, models.IssueOrphanNode)
	}
	if c.Detectors.CastAbuse {
		out = append(out, models.IssueCastAbuse)
	}
	if c.Detectors.TickAbuse {
		out = append(out, models.IssueTickAbuse)
	}
	if c.Detectors.UnusedFunction {
		out = append(out, models.IssueUnusedFunction)
	}
	return out
}

// SetEnabledDetectors replaces the detector toggles from a type list.
func (c *Config) SetEnabledDetectors(types []models.IssueType) {
	c.Detectors = DetectorConfig{}
	for _, t := range types {
		switch t {
		case models.IssueDeadNode:
			c.Detectors.DeadNode = true
		case models.IssueOrphanNode:
			c.Detectors.OrphanNode = true
		case models.IssueCastAbuse:
			c.Detectors.CastAbuse = true
		case models.IssueTickAbuse:
			c.Detectors.TickAbuse = true
		case models.IssueUnusedFunction:
			c.Detectors.UnusedFunction = true
		}
	}
}

// ShouldProcessPath applies the include/exclude path filters to one
// program path. Matching is substring-based: a filter matches any program
// whose path contains it.
func (c *Config) ShouldProcessPath(path string) bool {
	for _, ex := range c.Scan.ExcludePaths {
		if ex != "" && strings.Contains(path, ex) {
			return false
		}
	}

	if len(c.Scan.IncludePaths) == 0 {
		return true
	}
	for _, in := range c.Scan.IncludePaths {
		if in != "" && strings.Contains(path, in) {
			return true
		}
	}
	return false
}
