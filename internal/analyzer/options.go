package analyzer

// SimulationOptions configures the randomized detection simulator
type SimulationOptions struct {
	// Per-category particle count range, inclusive
	MaxCount int

	// Accuracy range in percent, inclusive after rounding
	MinAccuracy float64
	MaxAccuracy float64

	// Seed makes the simulator deterministic when non-zero
	Seed int64
}

// DefaultOptions returns the simulator defaults
func DefaultOptions() SimulationOptions {
	return SimulationOptions{
		MaxCount:    5,
		MinAccuracy: 70.0,
		MaxAccuracy: 99.0,
		Seed:        0, // Seed from the clock
	}
}

// WithSeed returns options with a fixed seed
func (opts SimulationOptions) WithSeed(seed int64) SimulationOptions {
	opts.Seed = seed
	return opts
}

// normalized repairs ranges that would break sampling
func (opts SimulationOptions) normalized() SimulationOptions {
	def := DefaultOptions()
	if opts.MaxCount <= 0 {
		opts.MaxCount = def.MaxCount
	}
	if opts.MaxAccuracy < opts.MinAccuracy || opts.MinAccuracy < 0 || opts.MaxAccuracy > 100 {
		opts.MinAccuracy = def.MinAccuracy
		opts.MaxAccuracy = def.MaxAccuracy
	}
	return opts
}
