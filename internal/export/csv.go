// Package export serializes a history snapshot to CSV or a printable report.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/pkg/models"
)

// CSVFileName is the download name offered for the CSV export
const CSVFileName = "microplastics_history.csv"

// CSVHeader returns the header fields, followed by one column per category
func CSVHeader() []string {
	header := []string{"Image", "DominantType", "Size", "Accuracy"}
	for _, c := range models.Categories {
		header = append(header, string(c))
	}
	return header
}

// CSVRecord returns the fields for one record
func CSVRecord(img models.AnalyzedImage) []string {
	fields := []string{img.Name, img.DominantType(), string(img.SizeBucket), img.AccuracyPercent()}
	for _, c := range img.Counts {
		fields = append(fields, strconv.Itoa(c))
	}
	return fields
}

// EncodeCSV serializes a snapshot. An empty snapshot is an empty-history error.
func EncodeCSV(snapshot []models.AnalyzedImage) ([]byte, error) {
	if len(snapshot) == 0 {
		return nil, apperrors.NewEmptyHistoryError()
	}

	lines := make([]string, 0, len(snapshot)+1)
	lines = append(lines, quoteLine(CSVHeader()))
	for _, img := range snapshot {
		lines = append(lines, quoteLine(CSVRecord(img)))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// WriteCSV writes the CSV document. Nothing is written when the snapshot is empty.
func WriteCSV(w io.Writer, snapshot []models.AnalyzedImage) error {
	data, err := EncodeCSV(snapshot)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// quoteLine wraps every field in double quotes, doubling embedded quotes
func quoteLine(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
