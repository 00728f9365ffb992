package analyzer

import "go-microplastic-inspector/pkg/models"

// Detector produces a detection result for a named file.
// Implementations never inspect file content.
type Detector interface {
	Detect(name string) models.Detection
}
