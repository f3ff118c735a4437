// Package config handles configuration loading and validation for signoff.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/colonyops/signoff/internal/core/bundle"
	"gopkg.in/yaml.v3"
)

// RenderStyles are the glamour styles accepted by review.render_style.
var RenderStyles = []string{"auto", "dark", "light", "notty", "ascii", "dracula", "pink", "tokyo-night"}

// Config holds the application configuration.
type Config struct {
	// SessionsDir and MetadataDir are resolved against DataDir when relative.
	SessionsDir string `yaml:"sessions_dir"`
	MetadataDir string `yaml:"metadata_dir"`

	// ContentDir is the Hugo content root. Sections map each content type to
	// its directory under ContentDir and drive type inference in prepare.
	ContentDir string                 `yaml:"content_dir"`
	Sections   map[bundle.Type]string `yaml:"sections"`

	Review  ReviewConfig  `yaml:"review"`
	Metrics MetricsConfig `yaml:"metrics"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// ReviewConfig controls interactive review behavior.
type ReviewConfig struct {
	ConfirmApproval bool   `yaml:"confirm_approval"` // prompt before approving on a terminal
	RenderStyle     string `yaml:"render_style"`     // glamour style for summary --render
	WordWrap        int    `yaml:"word_wrap"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"` // empty disables the export
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SessionsDir: "sessions",
		MetadataDir: "signoff",
		ContentDir:  "content",
		Sections:    defaultSections(),
		Review: ReviewConfig{
			ConfirmApproval: true,
			RenderStyle:     "dark",
			WordWrap:        100,
		},
	}
}

func defaultSections() map[bundle.Type]string {
	return map[bundle.Type]string{
		bundle.TypeBlog:      filepath.Join("blog", "posts"),
		bundle.TypePortfolio: "portfolio",
		bundle.TypeTechRadar: "tools",
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.SessionsDir == "" {
		c.SessionsDir = defaults.SessionsDir
	}
	if c.MetadataDir == "" {
		c.MetadataDir = defaults.MetadataDir
	}
	if c.ContentDir == "" {
		c.ContentDir = defaults.ContentDir
	}
	if c.Review.RenderStyle == "" {
		c.Review.RenderStyle = defaults.Review.RenderStyle
	}
	if c.Review.WordWrap == 0 {
		c.Review.WordWrap = defaults.Review.WordWrap
	}

	// User sections override defaults per type
	merged := defaultSections()
	for t, dir := range c.Sections {
		merged[t] = dir
	}
	c.Sections = merged
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	sessions, metadata := filepath.Clean(c.SessionsPath()), filepath.Clean(c.MetadataPath())
	if sessions == metadata {
		return fmt.Errorf("sessions_dir and metadata_dir must differ (both resolve to %s)", sessions)
	}
	if within(sessions, metadata) || within(metadata, sessions) {
		return fmt.Errorf("sessions_dir and metadata_dir cannot be nested (%s, %s)", sessions, metadata)
	}

	for t, dir := range c.Sections {
		if !t.IsValid() {
			return fmt.Errorf("sections: unknown content type %q", t)
		}
		if dir == "" {
			return fmt.Errorf("sections: %s directory cannot be empty", t)
		}
	}

	if !slices.Contains(RenderStyles, c.Review.RenderStyle) {
		return fmt.Errorf("review.render_style %q is not a known style", c.Review.RenderStyle)
	}

	if c.Review.WordWrap < 0 {
		return fmt.Errorf("review.word_wrap cannot be negative")
	}

	return nil
}

// within reports whether path is strictly inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.DataDir, dir)
}

// SessionsPath returns the directory review session records are stored in.
func (c *Config) SessionsPath() string {
	return c.resolve(c.SessionsDir)
}

// MetadataPath returns the directory signoff metadata records are stored in.
func (c *Config) MetadataPath() string {
	return c.resolve(c.MetadataDir)
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "signoff.log")
}

// SectionDirs returns the section directory of every content type, joined
// with ContentDir.
func (c *Config) SectionDirs() map[bundle.Type]string {
	out := make(map[bundle.Type]string, len(c.Sections))
	for t, dir := range c.Sections {
		if filepath.IsAbs(dir) {
			out[t] = dir
			continue
		}
		out[t] = filepath.Join(c.ContentDir, dir)
	}
	return out
}
