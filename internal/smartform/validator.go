package smartform

import (
	"os"
	"strings"

	sferrors "github.com/a3tai/mcp-smartform-parser/internal/smartform/errors"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

const rowExportExtension = ".json"

// Validator handles request and row export file validation
type Validator struct {
	maxFileSize int64
	maxRows     int
}

// NewValidator creates a new validator with the specified constraints
func NewValidator(maxFileSize int64, maxRows int) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
		maxRows:     maxRows,
	}
}

// ValidateRows checks that a row stream is within the configured limits.
// The rows themselves are never rejected for their content.
func (v *Validator) ValidateRows(rows []parser.Row) error {
	if v.maxRows > 0 && len(rows) > v.maxRows {
		return sferrors.Newf(sferrors.ErrorTypeRequestTooLarge,
			"too many rows: %d (max: %d)", len(rows), v.maxRows)
	}
	return nil
}

// ValidateSize checks a raw request body length against the size limit
func (v *Validator) ValidateSize(size int64) error {
	if v.maxFileSize > 0 && size > v.maxFileSize {
		return sferrors.Newf(sferrors.ErrorTypeRequestTooLarge,
			"request too large: %d bytes (max: %d bytes)", size, v.maxFileSize)
	}
	return nil
}

// ValidateFile performs validation on a row export file
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return sferrors.New(sferrors.ErrorTypeInvalidFile, "path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return sferrors.Newf(sferrors.ErrorTypeInvalidFile, "file does not exist: %s", filePath)
	}
	if err != nil {
		return sferrors.Wrap(sferrors.ErrorTypeInvalidFile, err).WithFile(filePath)
	}

	return v.ValidateFileInfo(filePath, fileInfo)
}

// ValidateFileInfo performs basic validation on file info without reading the file
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return sferrors.Newf(sferrors.ErrorTypeInvalidFile, "path is a directory, not a file: %s", filePath)
	}

	if !IsRowExportFile(filePath) {
		return sferrors.Newf(sferrors.ErrorTypeInvalidFile, "file is not a JSON row export: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return sferrors.Newf(sferrors.ErrorTypeInvalidFile, "file is empty: %s", filePath)
	}

	if err := v.ValidateSize(fileInfo.Size()); err != nil {
		return err
	}

	return nil
}

// IsRowExportFile reports whether name has the row export extension
func IsRowExportFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), rowExportExtension)
}
