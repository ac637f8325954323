// Package mode implements the four-state (plus Failure) control
// automaton that decides, on each telemetry tick, whether the splitter
// is idle, warming up, stable, or congested.
package mode

import "sync"

// State is the splitter's control-automaton state.
type State int

const (
	// Idle: no meaningful traffic observed; ratio held at Scale.
	Idle State = iota
	// Warmup: traffic detected, window not yet full.
	Warmup
	// Stable: window full, ratio computed once per episode.
	Stable
	// Congestion: latency elevated past the congestion threshold.
	Congestion
	// Failure: latched externally; ratio frozen until Reset.
	Failure
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Warmup:
		return "WARMUP"
	case Stable:
		return "STABLE"
	case Congestion:
		return "CONGESTION"
	case Failure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Thresholds collects the constants driving transitions. The two
// latency thresholds are per-mille; RDMAThreshold is in throughput
// units and IOPSThreshold in IOPS.
type Thresholds struct {
	RDMAThreshold        uint64
	IOPSThreshold        uint64
	LatencyCongestPermil uint64
	LatencyRecoverPermil uint64
}

// DefaultThresholds returns the reference threshold constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RDMAThreshold:        100,
		IOPSThreshold:        1000,
		LatencyCongestPermil: 700,
		LatencyRecoverPermil: 500,
	}
}

// Signals carries one tick's observations into the controller.
type Signals struct {
	Throughput    uint64
	LatencyPermil uint64
	IOPS          uint64
	WindowFull    bool
	CachingFailed bool
}

// Controller holds the current state plus the two flags the per-mode
// split-ratio policy consults (initialized, stableRatioComputed).
type Controller struct {
	mu                  sync.RWMutex
	state               State
	thresholds          Thresholds
	initialized         bool
	stableRatioComputed bool
}

// NewController creates a Controller in the Idle state.
func NewController(t Thresholds) *Controller {
	return &Controller{state: Idle, thresholds: t}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Initialized reports whether the Idle policy has seeded the ratio since
// the controller last left Idle; the Idle->Warmup transition and Reset
// both clear it.
func (c *Controller) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// SetInitialized records that the Idle policy has set the ratio once.
func (c *Controller) SetInitialized(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = v
}

// StableRatioComputed reports whether the current Stable episode has
// already recomputed its ratio.
func (c *Controller) StableRatioComputed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stableRatioComputed
}

// SetStableRatioComputed records that Stable has computed its ratio for
// this episode.
func (c *Controller) SetStableRatioComputed(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stableRatioComputed = v
}

// Advance evaluates the transition table against sig and returns the
// resulting state. CachingFailed is an unconditional latch into
// Failure: it is checked first and wins over every other transition.
func (c *Controller) Advance(sig Signals) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sig.CachingFailed {
		c.state = Failure
		return c.state
	}

	// Only an explicit Reset leaves Failure.
	if c.state == Failure {
		return c.state
	}

	if sig.Throughput <= c.thresholds.RDMAThreshold && sig.IOPS <= c.thresholds.IOPSThreshold {
		c.state = Idle
		return c.state
	}

	switch c.state {
	case Idle:
		c.state = Warmup
		c.initialized = false
	case Warmup:
		if sig.WindowFull {
			c.state = Stable
			c.stableRatioComputed = false
		}
	case Stable:
		if sig.LatencyPermil > c.thresholds.LatencyCongestPermil {
			c.state = Congestion
			c.stableRatioComputed = true
		}
	case Congestion:
		if sig.LatencyPermil < c.thresholds.LatencyRecoverPermil {
			c.state = Stable
			c.stableRatioComputed = false
		}
	}

	return c.state
}

// Reset returns the controller to Idle with both flags cleared.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	c.initialized = false
	c.stableRatioComputed = false
}
