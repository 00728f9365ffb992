package analyzer

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go-microplastic-inspector/pkg/models"
)

// Simulator fabricates random detection results.
// It is safe for concurrent use.
type Simulator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	opts SimulationOptions
}

// NewSimulator creates a simulator from options
func NewSimulator(opts SimulationOptions) *Simulator {
	opts = opts.normalized()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		rng:  rand.New(rand.NewSource(seed)),
		opts: opts,
	}
}

// Detect implements Detector
func (s *Simulator) Detect(name string) models.Detection {
	return s.Simulate()
}

// Simulate draws one random detection
func (s *Simulator) Simulate() models.Detection {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d models.Detection
	for i := range d.Counts {
		d.Counts[i] = s.rng.Intn(s.opts.MaxCount + 1)
	}
	// Every image reports at least one particle
	if d.Total() == 0 {
		d.Counts[0] = 1
	}

	d.SizeBucket = models.SizeBuckets[s.rng.Intn(len(models.SizeBuckets))]

	span := s.opts.MaxAccuracy - s.opts.MinAccuracy
	acc := s.opts.MinAccuracy + s.rng.Float64()*span
	d.Accuracy = FormatAccuracy(acc)

	return d
}

// FormatAccuracy rounds to one decimal place and renders exactly one fractional digit
func FormatAccuracy(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
}
