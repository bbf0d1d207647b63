package strategies

// Noop never signals. Useful for running the pipeline as a pure book and
// history tracker.
type Noop struct{}

func (Noop) Name() string                    { return "NOOP" }
func (Noop) Warmup() int                     { return 0 }
func (Noop) GenerateSignal([]float64) Signal { return None }
