package repository

import (
	"go-microplastic-inspector/pkg/models"
)

// HistoryRepository is the append-only, in-memory analysis history of one session.
// There is deliberately no way to remove or modify a record.
type HistoryRepository interface {
	// Append adds a record to the end of the history
	Append(record models.AnalyzedImage) error

	// Snapshot returns a copy of the history in append order
	Snapshot() []models.AnalyzedImage

	// Get finds a record by ID
	Get(id string) (models.AnalyzedImage, error)

	// Len returns the number of records
	Len() int
}

// PreviewRepository keeps the uploaded bytes so image cards can show a preview
type PreviewRepository interface {
	Put(id string, preview Preview)
	Get(id string) (Preview, bool)
}

// Preview is an uploaded file's content with its sniffed MIME type
type Preview struct {
	ContentType string
	Data        []byte
}
