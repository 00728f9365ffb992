package render

import "go-microplastic-inspector/pkg/models"

// TableRow is one line of the history table
type TableRow struct {
	ID           string `json:"id"`
	Image        string `json:"image"`
	DominantType string `json:"dominant_type"`
	SizeBucket   string `json:"size_bucket"`
	Accuracy     string `json:"accuracy"`
}

// RowFor derives the table row for a record
func RowFor(img models.AnalyzedImage) TableRow {
	return TableRow{
		ID:           img.ID,
		Image:        img.Name,
		DominantType: img.DominantType(),
		SizeBucket:   string(img.SizeBucket),
		Accuracy:     img.AccuracyPercent(),
	}
}

// Rows derives the history table, oldest record first
func Rows(snapshot []models.AnalyzedImage) []TableRow {
	rows := make([]TableRow, len(snapshot))
	for i, img := range snapshot {
		rows[i] = RowFor(img)
	}
	return rows
}
