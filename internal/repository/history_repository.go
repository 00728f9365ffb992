package repository

import (
	"fmt"
	"sync"

	"go-microplastic-inspector/pkg/models"
)

// MemoryHistoryRepository implements HistoryRepository with a slice
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	records []models.AnalyzedImage
	index   map[string]int
}

// NewMemoryHistoryRepository creates an empty history
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		records: make([]models.AnalyzedImage, 0, 16),
		index:   make(map[string]int),
	}
}

// Append adds a record to the end of the history
func (r *MemoryHistoryRepository) Append(record models.AnalyzedImage) error {
	if err := validateRecord(record); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID != "" {
		if _, exists := r.index[record.ID]; exists {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidRecord, record.ID)
		}
		r.index[record.ID] = len(r.records)
	}
	r.records = append(r.records, record)
	return nil
}

// Snapshot returns a copy of the history in append order
func (r *MemoryHistoryRepository) Snapshot() []models.AnalyzedImage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.AnalyzedImage, len(r.records))
	copy(out, r.records)
	return out
}

// Get finds a record by ID
func (r *MemoryHistoryRepository) Get(id string) (models.AnalyzedImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return models.AnalyzedImage{}, ErrRecordNotFound
	}
	return r.records[i], nil
}

// Len returns the number of records
func (r *MemoryHistoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func validateRecord(record models.AnalyzedImage) error {
	for _, c := range record.Counts {
		if c < 0 {
			return fmt.Errorf("%w: negative count in %v", ErrInvalidRecord, record.Counts)
		}
	}
	if record.Total() < 1 {
		return fmt.Errorf("%w: no particles counted", ErrInvalidRecord)
	}
	if !record.SizeBucket.IsValid() {
		return fmt.Errorf("%w: unknown size bucket %q", ErrInvalidRecord, record.SizeBucket)
	}
	return nil
}

// MemoryPreviewRepository implements PreviewRepository with a map
type MemoryPreviewRepository struct {
	mu       sync.RWMutex
	previews map[string]Preview
}

// NewMemoryPreviewRepository creates an empty preview store
func NewMemoryPreviewRepository() *MemoryPreviewRepository {
	return &MemoryPreviewRepository{previews: make(map[string]Preview)}
}

// Put stores a preview under the record ID
func (r *MemoryPreviewRepository) Put(id string, preview Preview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previews[id] = preview
}

// Get returns the preview for a record ID
func (r *MemoryPreviewRepository) Get(id string) (Preview, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.previews[id]
	return p, ok
}
