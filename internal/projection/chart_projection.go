// Package projection derives chart-ready series from a history snapshot.
package projection

import (
	"sync"

	"go-microplastic-inspector/pkg/models"
)

// CategorySeries holds one category's count per image, in image order
type CategorySeries struct {
	Category models.Category `json:"category"`
	Counts   []int           `json:"counts"`
}

// ChartData is the full projection used by both charts.
// All slices are aligned with Labels.
type ChartData struct {
	Labels      []string         `json:"labels"`
	Composition []CategorySeries `json:"composition"`
	Accuracy    []float64        `json:"accuracy"`
}

// Len returns the number of images on the shared axis
func (d ChartData) Len() int {
	return len(d.Labels)
}

// Project derives both chart series from a snapshot in history order
func Project(snapshot []models.AnalyzedImage) ChartData {
	n := len(snapshot)
	data := ChartData{
		Labels:      make([]string, n),
		Composition: make([]CategorySeries, models.CategoryCount),
		Accuracy:    make([]float64, n),
	}
	for c, cat := range models.Categories {
		data.Composition[c] = CategorySeries{Category: cat, Counts: make([]int, n)}
	}

	for i, img := range snapshot {
		data.Labels[i] = img.ShortName
		data.Accuracy[i] = img.AccuracyValue()
		for c := range models.Categories {
			data.Composition[c].Counts[i] = img.Counts[c]
		}
	}
	return data
}

// Cache holds the most recent projection.
// Each Refresh replaces it wholesale and bumps the version.
type Cache struct {
	mu      sync.RWMutex
	data    ChartData
	version uint64
}

// NewCache creates a cache holding an empty projection
func NewCache() *Cache {
	return &Cache{data: Project(nil)}
}

// Refresh recomputes the projection from a snapshot and returns the new version
func (c *Cache) Refresh(snapshot []models.AnalyzedImage) uint64 {
	data := Project(snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.version++
	return c.version
}

// Current returns the cached projection and its version
func (c *Cache) Current() (ChartData, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data, c.version
}
