// Package config holds the immutable run configuration for the binder.
// A Config is loaded once in main and passed into the engine; there are
// no process-wide mutable settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/pdfbinder/internal/errors"
)

// Config represents the application configuration
type Config struct {
	// Root is the directory tree to scan for .docx/.pdf files.
	Root string `yaml:"root"`
	// OutputDir holds intermediate artifacts (covers, contents, rendered files)
	// and the run catalog. Excluded from the scan.
	OutputDir string `yaml:"output_dir,omitempty"`
	// FinalPDF is the path of the merged, stamped, bookmarked output document.
	FinalPDF string `yaml:"final_pdf,omitempty"`

	Bates  BatesConfig  `yaml:"bates,omitempty"`
	Render RenderConfig `yaml:"render,omitempty"`

	// CatalogPath is the sqlite run catalog. Empty string after Normalize
	// means the catalog was explicitly disabled with "off".
	CatalogPath string `yaml:"catalog_path,omitempty"`
}

// BatesConfig controls sequential page numbering of the final document.
type BatesConfig struct {
	// Start is the number stamped on the first page. Final numbering is
	// zero-padded 3-digit, monotonically increasing with no gaps.
	Start    int `yaml:"start,omitempty"`
	FontSize int `yaml:"font_size,omitempty"`
}

// RenderConfig tunes the external rendering collaborator.
type RenderConfig struct {
	// Concurrency caps parallel cover/content renders. Values <1 coerce to 1.
	Concurrency int `yaml:"concurrency,omitempty"`
	// SofficePath locates the LibreOffice binary used for DOCX/HTML conversion.
	SofficePath string `yaml:"soffice_path,omitempty"`
	// TimeoutSeconds bounds a single conversion; 0 after Normalize never happens.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Load loads configuration from the specified file and applies defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, berrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnvOverrides()
	config.Normalize()
	return &config, nil
}

// Default returns a configuration with all defaults applied, rooted at root.
// Used when no config file is present.
func Default(root string) *Config {
	c := &Config{Root: root}
	c.applyEnvOverrides()
	c.Normalize()
	return c
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Root:      ".",
		OutputDir: "output",
		FinalPDF:  "final_output.pdf",
		Bates:     BatesConfig{Start: 1, FontSize: 14},
		Render:    RenderConfig{Concurrency: 4, SofficePath: "soffice", TimeoutSeconds: 120},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WorkDir returns the directory for a single run's intermediate artifacts.
func (c *Config) WorkDir(runID string) string {
	return filepath.Join(c.OutputDir, "work-"+runID)
}
