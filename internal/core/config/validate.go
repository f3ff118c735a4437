package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/signoff/internal/core/bundle"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility. The configPath argument specifies the config file location
// to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateMetricsFile(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if err := isDirectory(c.ContentDir); err != nil {
		warnings = append(warnings, ValidationWarning{
			Category: "Content",
			Item:     c.ContentDir,
			Message:  "content directory " + err.Error() + "; type inference is unavailable",
		})
		return warnings
	}

	dirs := c.SectionDirs()
	for _, t := range bundle.Types() {
		if err := isDirectory(dirs[t]); err != nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Sections",
				Item:     string(t),
				Message:  fmt.Sprintf("section directory %s %s", dirs[t], err),
			})
		}
	}

	return warnings
}

// validateFileAccess checks config file and the storage directories.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("sessions_dir", c.SessionsPath(), isDirectoryOrNotExist),
		criterio.Run("metadata_dir", c.MetadataPath(), isDirectoryOrNotExist),
	)
}

func (c *Config) validateMetricsFile() error {
	if c.Metrics.File == "" {
		return nil
	}

	var errs criterio.FieldErrorsBuilder
	if info, err := os.Stat(c.Metrics.File); err == nil && info.IsDir() {
		errs = errs.Append("metrics.file", fmt.Errorf("%s is a directory, not a file", c.Metrics.File))
	}
	if err := isDirectoryOrNotExist(filepath.Dir(c.Metrics.File)); err != nil {
		errs = errs.Append("metrics.file", fmt.Errorf("parent directory: %w", err))
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isDirectory(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("does not exist")
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("is not a directory")
	}
	return nil
}
