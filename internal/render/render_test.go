package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"testing"

	apperrors "go-microplastic-inspector/internal/errors"
	"go-microplastic-inspector/internal/projection"
	"go-microplastic-inspector/pkg/models"
)

func sampleHistory() []models.AnalyzedImage {
	mk := func(id string, counts [4]int, size models.SizeBucket, acc string) models.AnalyzedImage {
		return models.AnalyzedImage{
			ID:        id,
			Name:      id + ".png",
			ShortName: id + ".png",
			Detection: models.Detection{Counts: counts, SizeBucket: size, Accuracy: acc},
		}
	}
	return []models.AnalyzedImage{
		mk("one", [4]int{2, 2, 0, 0}, models.SizeBelow10, "71.2"),
		mk("two", [4]int{0, 1, 4, 0}, models.Size50To100, "90.0"),
		mk("three", [4]int{0, 0, 0, 3}, models.SizeAbove100, "98.7"),
	}
}

func previewURL(id string) string { return "/previews/" + id }

func TestRows_OldestFirst(t *testing.T) {
	rows := Rows(sampleHistory())

	want := []TableRow{
		{ID: "one", Image: "one.png", DominantType: "Fiber", SizeBucket: "<10 µm", Accuracy: "71.2%"},
		{ID: "two", Image: "two.png", DominantType: "Pellet", SizeBucket: "50-100 µm", Accuracy: "90.0%"},
		{ID: "three", Image: "three.png", DominantType: "Microbead", SizeBucket: ">100 µm", Accuracy: "98.7%"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, want[i], rows[i])
		}
	}
}

func TestCards_NewestFirst(t *testing.T) {
	cards := Cards(sampleHistory(), previewURL)

	order := []string{"three", "two", "one"}
	for i, id := range order {
		if cards[i].ID != id {
			t.Errorf("Card %d: expected %s, got %s", i, id, cards[i].ID)
		}
	}
	if cards[2].DominantType != "Fiber" {
		t.Errorf("Expected tie to resolve to Fiber, got %s", cards[2].DominantType)
	}
	if cards[0].PreviewURL != "/previews/three" {
		t.Errorf("Unexpected preview URL %s", cards[0].PreviewURL)
	}
	if len(cards[0].Counts) != models.CategoryCount || cards[0].Counts[3].Count != 3 {
		t.Errorf("Unexpected counts %+v", cards[0].Counts)
	}
}

func TestBoard_MirrorsBothOrderings(t *testing.T) {
	history := sampleHistory()
	board := NewBoard(previewURL)

	for _, img := range history {
		row, card := board.Add(img)
		if row.ID != img.ID || card.ID != img.ID {
			t.Fatalf("Expected row and card for %s, got %s and %s", img.ID, row.ID, card.ID)
		}
	}

	rows := board.Rows()
	cards := board.Cards()
	if board.Len() != len(history) || len(rows) != len(history) || len(cards) != len(history) {
		t.Fatalf("Expected %d entries, got len=%d rows=%d cards=%d", len(history), board.Len(), len(rows), len(cards))
	}
	for i, img := range history {
		if rows[i].ID != img.ID {
			t.Errorf("Row %d: expected %s, got %s", i, img.ID, rows[i].ID)
		}
		if cards[len(history)-1-i].ID != img.ID {
			t.Errorf("Card %d: expected %s, got %s", len(history)-1-i, img.ID, cards[len(history)-1-i].ID)
		}
	}

	// Board views must agree with the pure derivations over the same input
	derivedRows := Rows(history)
	derivedCards := Cards(history, previewURL)
	for i := range history {
		if rows[i] != derivedRows[i] {
			t.Errorf("Row %d differs from derived row", i)
		}
		if cards[i].ID != derivedCards[i].ID {
			t.Errorf("Card %d differs from derived card", i)
		}
	}
}

func TestNavigator(t *testing.T) {
	nav := NewNavigator(nil)

	if nav.Active() != TabUpload {
		t.Errorf("Expected first tab active, got %s", nav.Active())
	}
	if err := nav.Activate(TabCharts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	active := 0
	for _, tab := range nav.Tabs() {
		if tab.Active {
			active++
			if tab.Name != TabCharts {
				t.Errorf("Expected charts tab active, got %s", tab.Name)
			}
		}
	}
	if active != 1 {
		t.Errorf("Expected exactly one active tab, got %d", active)
	}

	err := nav.Activate("settings")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for unknown tab, got %v", err)
	}
	if nav.Active() != TabCharts {
		t.Errorf("Expected active tab to be unchanged, got %s", nav.Active())
	}

	if err := nav.Activate(""); err != nil || nav.Active() != TabCharts {
		t.Errorf("Expected empty name to keep the current tab")
	}
}

func TestFragments_EscapeNames(t *testing.T) {
	img := models.AnalyzedImage{
		ID:        "x",
		Name:      `<script>alert("hi")</script>.png`,
		ShortName: "<script>al...",
		Detection: models.Detection{Counts: [4]int{1, 0, 0, 0}, SizeBucket: models.Size10To50, Accuracy: "75.5"},
	}

	rowHTML, err := RowHTML(RowFor(img))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(rowHTML, "<script>") {
		t.Errorf("Expected file name to be escaped, got %s", rowHTML)
	}
	if !strings.Contains(rowHTML, "75.5%") || !strings.HasPrefix(rowHTML, "<tr") {
		t.Errorf("Unexpected row html %s", rowHTML)
	}

	cardHTML, err := CardHTML(CardFor(img, previewURL))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(cardHTML, "<script>") {
		t.Errorf("Expected card to be escaped, got %s", cardHTML)
	}
	if !strings.Contains(cardHTML, `src="/previews/x"`) {
		t.Errorf("Expected preview image in card, got %s", cardHTML)
	}
}

func TestWritePage(t *testing.T) {
	history := sampleHistory()
	nav := NewNavigator(nil)
	_ = nav.Activate(TabHistory)

	var buf bytes.Buffer
	err := WritePage(&buf, PageData{
		Title:          "Microplastic Inspector",
		SessionID:      "abc",
		Tabs:           nav.Tabs(),
		ActiveTab:      nav.Active(),
		Rows:           Rows(history),
		Cards:          Cards(history, previewURL),
		CompositionURL: "/c.png",
		AccuracyURL:    "/a.png",
		CSVFileName:    "microplastics_history.csv",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	page := buf.String()
	if !strings.Contains(page, `data-session="abc"`) {
		t.Error("Expected session id in page")
	}
	if !strings.Contains(page, `<section id="tab-history" class="active">`) {
		t.Error("Expected history section to be active")
	}
	if strings.Count(page, "<tr data-id=") != 3 {
		t.Errorf("Expected 3 history rows, got %d", strings.Count(page, "<tr data-id="))
	}
	first := strings.Index(page, `<article class="card" data-id="three"`)
	last := strings.Index(page, `<article class="card" data-id="one"`)
	if first < 0 || last < 0 || first > last {
		t.Error("Expected newest card to be rendered first")
	}
}

func TestCharts_EmptyProjectionRendersPlaceholder(t *testing.T) {
	size := ChartSize{Width: 320, Height: 200}
	empty := projection.Project(nil)

	for name, render := range map[string]func(*bytes.Buffer) error{
		"composition": func(b *bytes.Buffer) error { return RenderCompositionPNG(b, empty, size) },
		"accuracy":    func(b *bytes.Buffer) error { return RenderAccuracyPNG(b, empty, size) },
	} {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("%s: expected png output: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
			t.Errorf("%s: expected 320x200 placeholder, got %dx%d", name, b.Dx(), b.Dy())
		}
	}
}

func TestCharts_RenderHistory(t *testing.T) {
	size := ChartSize{Width: 640, Height: 320}
	data := projection.Project(sampleHistory())

	var comp, acc bytes.Buffer
	if err := RenderCompositionPNG(&comp, data, size); err != nil {
		t.Fatalf("Composition chart failed: %v", err)
	}
	if err := RenderAccuracyPNG(&acc, data, size); err != nil {
		t.Fatalf("Accuracy chart failed: %v", err)
	}
	if _, err := png.Decode(&comp); err != nil {
		t.Errorf("Expected composition png: %v", err)
	}
	if _, err := png.Decode(&acc); err != nil {
		t.Errorf("Expected accuracy png: %v", err)
	}
}

func TestBarLayout(t *testing.T) {
	size := ChartSize{Width: 800, Height: 300}

	w, total := barLayout(3, size)
	if w != maxBarWidth || total != 800 {
		t.Errorf("Expected wide bars on the base width, got bar=%d total=%d", w, total)
	}

	w, total = barLayout(200, size)
	if w != minBarWidth {
		t.Errorf("Expected minimum bar width, got %d", w)
	}
	if total <= 800 {
		t.Errorf("Expected chart to grow for many bars, got %d", total)
	}
}

func TestTerminalTable(t *testing.T) {
	out := TerminalTable(Rows(sampleHistory()))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// header + separator + 3 rows
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d:\n%s", len(lines), out)
	}
	for i, id := range []string{"one", "two", "three"} {
		if !strings.Contains(lines[i+2], fmt.Sprintf("%s.png", id)) {
			t.Errorf("Line %d: expected %s.png, got %q", i+2, id, lines[i+2])
		}
	}
}
