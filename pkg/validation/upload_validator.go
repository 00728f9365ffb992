package validation

import (
	"fmt"
	"strings"

	apperrors "go-microplastic-inspector/internal/errors"
)

// Upload describes one selected file before it is read
type Upload struct {
	Name string
	Size int64
}

// UploadValidator handles upload batch validation logic.
// Any file type is accepted; only names and sizes are checked.
type UploadValidator struct {
	maxFiles    int
	maxFileSize int64
}

// NewUploadValidator creates an upload validator with default limits
func NewUploadValidator() *UploadValidator {
	return &UploadValidator{
		maxFiles:    50,
		maxFileSize: 10 * 1024 * 1024,
	}
}

// NewUploadValidatorWithOptions creates an upload validator with custom limits.
// A non-positive limit disables that check.
func NewUploadValidatorWithOptions(maxFiles int, maxFileSize int64) *UploadValidator {
	return &UploadValidator{
		maxFiles:    maxFiles,
		maxFileSize: maxFileSize,
	}
}

// ValidateBatch validates a whole selection of files
func (v *UploadValidator) ValidateBatch(uploads []Upload) error {
	if len(uploads) == 0 {
		return apperrors.NewValidationError("No files selected", nil)
	}

	if v.maxFiles > 0 && len(uploads) > v.maxFiles {
		return apperrors.NewValidationError(
			fmt.Sprintf("Too many files: %d selected, at most %d allowed", len(uploads), v.maxFiles), nil)
	}

	for _, u := range uploads {
		if err := v.ValidateUpload(u); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpload validates a single file
func (v *UploadValidator) ValidateUpload(u Upload) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperrors.NewValidationError("File name cannot be empty", nil)
	}

	if u.Size < 0 {
		return apperrors.NewValidationError("Invalid file size", nil)
	}

	if !v.isSizeAllowed(u.Size) {
		return apperrors.NewValidationError(
			fmt.Sprintf("File %q exceeds the %d byte limit", u.Name, v.maxFileSize), nil)
	}

	return nil
}

// isSizeAllowed checks the per-file limit
// Returns true if no limit is set
func (v *UploadValidator) isSizeAllowed(size int64) bool {
	if v.maxFileSize <= 0 {
		return true
	}
	return size <= v.maxFileSize
}
