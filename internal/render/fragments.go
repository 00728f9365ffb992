package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageData is everything the page shell needs
type PageData struct {
	Title              string
	SessionID          string
	Tabs               []Tab
	ActiveTab          string
	Rows               []TableRow
	Cards              []Card
	ChartVersion       uint64
	CompositionURL     string
	AccuracyURL        string
	CSVFileName        string
	EmptyHistoryNotice string
	PopupBlockedNotice string
}

// RowHTML renders a single history table row
func RowHTML(row TableRow) (string, error) {
	return execute("row", row)
}

// CardHTML renders a single image card
func CardHTML(card Card) (string, error) {
	return execute("card", card)
}

// WritePage renders the full page shell
func WritePage(w io.Writer, data PageData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
