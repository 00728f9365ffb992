package models

import (
	"strconv"
	"time"
)

// Category is one of the fixed microplastic particle types
type Category string

const (
	CategoryFiber     Category = "Fiber"
	CategoryFragment  Category = "Fragment"
	CategoryPellet    Category = "Pellet"
	CategoryMicrobead Category = "Microbead"
)

// CategoryCount is the number of fixed particle categories
const CategoryCount = 4

// Categories lists the particle categories in their canonical order.
// Counts on AnalyzedImage are indexed by this order.
var Categories = [CategoryCount]Category{
	CategoryFiber,
	CategoryFragment,
	CategoryPellet,
	CategoryMicrobead,
}

// UnknownType is reported as the dominant type when no particle was counted
const UnknownType = "Unknown"

// SizeBucket is a fixed particle size range
type SizeBucket string

const (
	SizeBelow10  SizeBucket = "<10 µm"
	Size10To50   SizeBucket = "10-50 µm"
	Size50To100  SizeBucket = "50-100 µm"
	SizeAbove100 SizeBucket = ">100 µm"
)

// SizeBuckets lists the size ranges in ascending order
var SizeBuckets = [4]SizeBucket{
	SizeBelow10,
	Size10To50,
	Size50To100,
	SizeAbove100,
}

// IsValid reports whether b is one of the fixed size buckets
func (b SizeBucket) IsValid() bool {
	for _, s := range SizeBuckets {
		if b == s {
			return true
		}
	}
	return false
}

// Detection is the simulated result for a single file
type Detection struct {
	Counts     [CategoryCount]int `json:"counts"`
	SizeBucket SizeBucket         `json:"size_bucket"`
	Accuracy   string             `json:"accuracy"`
}

// Total returns the number of particles across all categories
func (d Detection) Total() int {
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	return total
}

// AnalyzedImage is one upload's simulated detection record.
// Values are never modified after the record is appended to a history.
type AnalyzedImage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ShortName   string    `json:"short_name"`
	ContentType string    `json:"content_type,omitempty"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
	Detection
}

// NewAnalyzedImage builds a record for the named file from a detection
func NewAnalyzedImage(id, name string, d Detection, analyzedAt time.Time) AnalyzedImage {
	return AnalyzedImage{
		ID:         id,
		Name:       name,
		ShortName:  ShortenName(name),
		AnalyzedAt: analyzedAt,
		Detection:  d,
	}
}

// DominantType returns the category with the highest count.
// Ties resolve to the earliest category.
func (a AnalyzedImage) DominantType() string {
	best := -1
	bestCount := 0
	for i, c := range a.Counts {
		if c > bestCount {
			best = i
			bestCount = c
		}
	}
	if best < 0 {
		return UnknownType
	}
	return string(Categories[best])
}

// AccuracyValue returns the accuracy as a number, or 0 if it cannot be parsed
func (a AnalyzedImage) AccuracyValue() float64 {
	v, err := strconv.ParseFloat(a.Accuracy, 64)
	if err != nil {
		return 0
	}
	return v
}

// AccuracyPercent returns the accuracy with a trailing percent sign
func (a AnalyzedImage) AccuracyPercent() string {
	return a.Accuracy + "%"
}

const (
	shortNameLimit = 18
	shortNameKeep  = 15
	ellipsis       = "..."
)

// ShortenName truncates long file names for display.
// Names of at most 18 characters are returned unchanged.
func ShortenName(name string) string {
	runes := []rune(name)
	if len(runes) <= shortNameLimit {
		return name
	}
	return string(runes[:shortNameKeep]) + ellipsis
}
