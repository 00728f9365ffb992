package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/internal/render"
	"go-microplastic-inspector/pkg/models"
)

//go:embed templates/report.html
var reportFS embed.FS

var reportTemplate = template.Must(template.ParseFS(reportFS, "templates/report.html"))

// ReportTitle heads the printable report
const ReportTitle = "Microplastic Analysis Report"

// DefaultPrintDelay lets the new surface finish rendering before printing
const DefaultPrintDelay = 400 * time.Millisecond

type reportData struct {
	Title       string
	GeneratedAt string
	Rows        []render.TableRow
}

// RenderReport builds the standalone report document
func RenderReport(snapshot []models.AnalyzedImage, generatedAt time.Time) ([]byte, error) {
	if len(snapshot) == 0 {
		return nil, apperrors.NewEmptyHistoryError()
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, reportData{
		Title:       ReportTitle,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05 MST"),
		Rows:        render.Rows(snapshot),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}

// Surface is a new viewing context the report is written into
type Surface interface {
	WriteDocument(doc []byte) error
	// Print hands the written document to the platform print facility after delay
	Print(delay time.Duration) error
}

// SurfaceOpener opens a viewing surface; it fails when the platform refuses
type SurfaceOpener interface {
	Open() (Surface, error)
}

// SurfaceOpenerFunc adapts a function to SurfaceOpener
type SurfaceOpenerFunc func() (Surface, error)

// Open implements SurfaceOpener
func (f SurfaceOpenerFunc) Open() (Surface, error) {
	return f()
}

// Printer produces the printable report
type Printer struct {
	delay time.Duration
	now   func() time.Time
}

// NewPrinter creates a printer with the given settling delay
func NewPrinter(delay time.Duration) *Printer {
	if delay < 0 {
		delay = DefaultPrintDelay
	}
	return &Printer{delay: delay, now: time.Now}
}

// Print renders the snapshot into a newly opened surface and requests printing.
// An empty snapshot fails before any surface is opened; a refused surface
// fails before anything is written.
func (p *Printer) Print(snapshot []models.AnalyzedImage, opener SurfaceOpener) error {
	if len(snapshot) == 0 {
		return apperrors.NewEmptyHistoryError()
	}

	surface, err := opener.Open()
	if err != nil || surface == nil {
		return apperrors.NewPopupBlockedError(err)
	}

	doc, err := RenderReport(snapshot, p.now())
	if err != nil {
		return err
	}
	if err := surface.WriteDocument(doc); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := surface.Print(p.delay); err != nil {
		return fmt.Errorf("printing report: %w", err)
	}
	return nil
}
