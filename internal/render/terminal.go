package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "4"})
	styleTableBorder = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "8"})
	styleTableRow    = lipgloss.NewStyle()
	styleTableRowAlt = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"})
)

var tableHeaders = []string{"Image", "Dominant type", "Size", "Accuracy"}

// TerminalTable renders history rows for a terminal, oldest first
func TerminalTable(rows []TableRow) string {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{r.Image, r.DominantType, r.SizeBucket, r.Accuracy}
	}

	// Column widths from content, measured in cells not bytes
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(styleTableHeader.Render(joinPadded(tableHeaders, widths)))
	b.WriteString("\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	b.WriteString(styleTableBorder.Render(strings.Join(sep, "  ")))
	b.WriteString("\n")

	for idx, row := range cells {
		style := styleTableRow
		if idx%2 == 1 {
			style = styleTableRowAlt
		}
		b.WriteString(style.Render(joinPadded(row, widths)))
		b.WriteString("\n")
	}
	return b.String()
}

func joinPadded(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
	}
	return strings.Join(parts, "  ")
}
