package render

import (
	"sync"

	"go-microplastic-inspector/pkg/models"
)

// Board mirrors a history as it grows: rows are appended, cards are prepended.
// It has no removal or update operation.
type Board struct {
	mu         sync.RWMutex
	rows       []TableRow
	cards      []Card // oldest first internally, exposed newest first
	previewURL PreviewURLFunc
}

// NewBoard creates an empty board
func NewBoard(previewURL PreviewURLFunc) *Board {
	return &Board{previewURL: previewURL}
}

// Add renders a newly appended record and returns its row and card
func (b *Board) Add(img models.AnalyzedImage) (TableRow, Card) {
	row := RowFor(img)
	card := CardFor(img, b.previewURL)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, row)
	b.cards = append(b.cards, card)
	return row, card
}

// Rows returns the table rows, oldest first
func (b *Board) Rows() []TableRow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]TableRow, len(b.rows))
	copy(out, b.rows)
	return out
}

// Cards returns the cards, newest first
func (b *Board) Cards() []Card {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Card, len(b.cards))
	for i, c := range b.cards {
		out[len(b.cards)-1-i] = c
	}
	return out
}

// Len returns the number of mirrored records
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}
