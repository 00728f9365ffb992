package validation

import (
	"testing"

	apperrors "go-microplastic-inspector/internal/errors"
)

func TestNewUploadValidator(t *testing.T) {
	validator := NewUploadValidator()
	if validator == nil {
		t.Fatal("Expected non-nil upload validator")
	}

	if validator.maxFiles != 50 {
		t.Errorf("Expected 50 files per batch, got %d", validator.maxFiles)
	}
	if validator.maxFileSize != 10*1024*1024 {
		t.Errorf("Expected 10MB file limit, got %d", validator.maxFileSize)
	}
}

func TestValidateBatch_Valid(t *testing.T) {
	validator := NewUploadValidatorWithOptions(3, 100)

	err := validator.ValidateBatch([]Upload{
		{Name: "a.png", Size: 10},
		{Name: "notes.txt", Size: 100},
		{Name: "empty.jpg", Size: 0},
	})
	if err != nil {
		t.Errorf("Expected batch to pass validation, got error: %v", err)
	}
}

func TestValidateBatch_Invalid(t *testing.T) {
	validator := NewUploadValidatorWithOptions(2, 100)

	tests := []struct {
		name    string
		uploads []Upload
	}{
		{"empty selection", nil},
		{"too many files", []Upload{{Name: "a", Size: 1}, {Name: "b", Size: 1}, {Name: "c", Size: 1}}},
		{"blank name", []Upload{{Name: "   ", Size: 1}}},
		{"oversized file", []Upload{{Name: "big.png", Size: 101}}},
		{"negative size", []Upload{{Name: "odd.png", Size: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateBatch(tt.uploads)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error type, got %v", err)
			}
		})
	}
}

func TestValidateUpload_NoLimits(t *testing.T) {
	validator := NewUploadValidatorWithOptions(0, 0)

	if err := validator.ValidateUpload(Upload{Name: "huge.tif", Size: 1 << 40}); err != nil {
		t.Errorf("Expected no size limit, got %v", err)
	}

	uploads := make([]Upload, 500)
	for i := range uploads {
		uploads[i] = Upload{Name: "f.png", Size: 1}
	}
	if err := validator.ValidateBatch(uploads); err != nil {
		t.Errorf("Expected no batch limit, got %v", err)
	}
}
