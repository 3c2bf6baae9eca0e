package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
)

// PathValidator confines file access to the configured export directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory.
// The directory does not have to exist yet.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	return &PathValidator{
		configuredDirectory: configuredDirectory,
	}, nil
}

// ConfiguredDirectory returns the configured directory path
func (v *PathValidator) ConfiguredDirectory() string {
	return v.configuredDirectory
}

// Resolve turns a user supplied path into an absolute path inside the
// configured directory. Relative paths are taken relative to it.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", sferrors.New(sferrors.ErrorTypeSecurityRestriction, "path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}

	return absPath, nil
}

// ValidatePath checks if a path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return sferrors.New(sferrors.ErrorTypeSecurityRestriction, "path cannot be empty")
	}

	within, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return sferrors.Newf(sferrors.ErrorTypeSecurityRestriction,
			"path is outside configured directory: %s", path)
	}

	return nil
}

// IsPathWithinDirectory checks if a path, after resolving symlinks, is the
// configured directory or below it. Any path is accepted while the
// configured directory does not exist.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	realDir := evalSymlinks(absDir)
	realPath := evalSymlinks(absPath)

	// both the path as given and its symlink target must be inside
	pathOk := contains(absDir, absPath) || contains(realDir, absPath)
	realPathOk := contains(absDir, realPath) || contains(realDir, realPath)

	return pathOk && realPathOk, nil
}

// ValidateDirectory checks if a directory path is within the configured directory
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return sferrors.Newf(sferrors.ErrorTypeInvalidInput, "path is not a directory: %s", dirPath)
	}

	return nil
}

// evalSymlinks resolves symlinks, walking up to the nearest existing parent
// for paths that do not exist yet.
func evalSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(evalSymlinks(parent), filepath.Base(path))
}

func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
