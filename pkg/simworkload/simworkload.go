// Package simworkload scripts the synthetic telemetry phases used by
// the splitter's cmd-line harnesses (the simulation driver, the admin
// HTTP surface, and the terminal dashboard) so all three replay the
// same scenarios without real RDMA hardware or a live cache engine.
package simworkload

import "sync/atomic"

// Phase scripts one stretch of identical ticks.
type Phase struct {
	Name                string
	Ticks               int
	Throughput, Latency uint64
	IOPS                uint64
	CachingFailed       bool
}

// Script is an ordered sequence of phases, replayed once through and
// then held on the final phase.
type Script []Phase

// DefaultScript walks the splitter through every mode in order: cold
// start, warmup into stable, a congestion entry, hysteresis recovery
// back to stable, then an idle reversion.
func DefaultScript() Script {
	return Script{
		{Name: "cold-start", Ticks: 5, Throughput: 0, Latency: 0, IOPS: 0},
		{Name: "warmup", Ticks: 16, Throughput: 500, Latency: 100, IOPS: 5000},
		{Name: "stable", Ticks: 40, Throughput: 500, Latency: 100, IOPS: 5000},
		{Name: "congestion", Ticks: 20, Throughput: 500, Latency: 800, IOPS: 5000},
		{Name: "recovery", Ticks: 20, Throughput: 500, Latency: 100, IOPS: 5000},
		{Name: "idle-reversion", Ticks: 16, Throughput: 0, Latency: 0, IOPS: 0},
	}
}

// Generator replays a Script one phase-tick per MeasurePerformance
// call, implementing splitter.Sampler and splitter.FailureReporter.
type Generator struct {
	script      Script
	phaseIdx    int
	tickInPhase int
	onPhase     func(name string, tickInPhase int)
}

// NewGenerator creates a Generator over script. An empty script yields
// all-zero samples forever.
func NewGenerator(script Script) *Generator {
	return &Generator{script: script}
}

// OnPhase installs a callback invoked just before each sample is
// produced; the terminal dashboard uses it to show the running phase.
func (g *Generator) OnPhase(fn func(name string, tickInPhase int)) {
	g.onPhase = fn
}

func (g *Generator) current() Phase {
	if len(g.script) == 0 {
		return Phase{}
	}
	if g.phaseIdx >= len(g.script) {
		return g.script[len(g.script)-1]
	}
	return g.script[g.phaseIdx]
}

// MeasurePerformance implements splitter.Sampler: it returns the
// current phase's sample and advances to the next phase once the
// current one's tick count is exhausted, holding on the last phase
// once the script is fully replayed.
func (g *Generator) MeasurePerformance(elapsedMS uint64) (throughput, latency, iops uint64) {
	if len(g.script) == 0 {
		return 0, 0, 0
	}
	ph := g.current()
	if g.onPhase != nil {
		g.onPhase(ph.Name, g.tickInPhase)
	}
	g.tickInPhase++
	if g.tickInPhase >= ph.Ticks && g.phaseIdx < len(g.script)-1 {
		g.phaseIdx++
		g.tickInPhase = 0
	}
	return ph.Throughput, ph.Latency, ph.IOPS
}

// CachingFailed implements splitter.FailureReporter from the current
// phase's flag.
func (g *Generator) CachingFailed() bool { return g.current().CachingFailed }

// PhaseName reports the name of the phase currently being replayed.
func (g *Generator) PhaseName() string { return g.current().Name }

// SyntheticClock is a manually-advanced monotonic millisecond clock,
// letting a harness drive the splitter's rate-limited tick
// deterministically instead of sleeping in real time.
type SyntheticClock struct {
	ms uint64
}

// NowMS implements splitter.Clock.
func (c *SyntheticClock) NowMS() uint64 { return atomic.LoadUint64(&c.ms) }

// Advance moves the clock forward by deltaMS.
func (c *SyntheticClock) Advance(deltaMS uint64) { atomic.AddUint64(&c.ms, deltaMS) }

// Request is the minimal splitter.Request implementation the
// harnesses dispatch: a request is a miss whenever its index falls on
// the configured miss stride.
type Request struct {
	miss bool
}

// NewRequest creates a Request, marked as a miss when idx is a
// multiple of missStride, index 0 included (missStride <= 0 disables
// misses).
func NewRequest(idx int, missStride int) Request {
	if missStride <= 0 {
		return Request{}
	}
	return Request{miss: idx%missStride == 0}
}

// IsMiss implements splitter.Request.
func (r Request) IsMiss() bool { return r.miss }
