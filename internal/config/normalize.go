package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultOutputDir      = "output"
	defaultFinalPDF       = "final_output.pdf"
	defaultBatesStart     = 1
	defaultBatesFontSize  = 14
	defaultConcurrency    = 4
	defaultSofficePath    = "soffice"
	defaultRenderTimeout  = 120
	catalogDisabledMarker = "off"
)

// Normalize applies defaults and coerces out-of-range values. It is
// idempotent and must be called before a Config reaches the engine.
func (c *Config) Normalize() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.Root, defaultOutputDir)
	}
	if c.FinalPDF == "" {
		c.FinalPDF = filepath.Join(c.Root, defaultFinalPDF)
	}
	if c.Bates.Start < 1 {
		c.Bates.Start = defaultBatesStart
	}
	if c.Bates.FontSize < 1 {
		c.Bates.FontSize = defaultBatesFontSize
	}
	if c.Render.Concurrency < 1 {
		c.Render.Concurrency = defaultConcurrency
	}
	if c.Render.SofficePath == "" {
		c.Render.SofficePath = defaultSofficePath
	}
	if c.Render.TimeoutSeconds < 1 {
		c.Render.TimeoutSeconds = defaultRenderTimeout
	}
	switch c.CatalogPath {
	case "":
		c.CatalogPath = filepath.Join(c.OutputDir, "catalog.db")
	case catalogDisabledMarker:
		c.CatalogPath = ""
	}
}

// applyEnvOverrides lets PDFBINDER_* environment variables override file values.
// Only a small operational subset is exposed; structural settings stay in YAML.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PDFBINDER_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("PDFBINDER_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("PDFBINDER_FINAL_PDF"); v != "" {
		c.FinalPDF = v
	}
	if v := os.Getenv("PDFBINDER_SOFFICE_PATH"); v != "" {
		c.Render.SofficePath = v
	}
	if v := os.Getenv("PDFBINDER_BATES_START"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bates.Start = n
		}
	}
	if v := os.Getenv("PDFBINDER_RENDER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Render.Concurrency = n
		}
	}
}
