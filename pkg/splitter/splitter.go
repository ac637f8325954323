// Package splitter is the facade tying the telemetry window, bandwidth
// oracle, split calculator, mode controller, and dispatcher into the
// single procedural surface the cache engine calls on its hot path.
package splitter

import (
	"sync"

	gotaskflow "github.com/noneback/go-taskflow"

	"github.com/cyw0ng95/netcas-splitter/pkg/affinity"
	"github.com/cyw0ng95/netcas-splitter/pkg/assert"
	"github.com/cyw0ng95/netcas-splitter/pkg/dispatch"
	"github.com/cyw0ng95/netcas-splitter/pkg/logging"
	"github.com/cyw0ng95/netcas-splitter/pkg/mode"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/cyw0ng95/netcas-splitter/pkg/splitcalc"
	"github.com/cyw0ng95/netcas-splitter/pkg/telemetry"
)

// Request is the minimal capability the cache engine supplies per
// dispatch: whether the request is a cache miss.
type Request interface {
	IsMiss() bool
}

// Sampler measures fresh RDMA performance since the last call.
type Sampler interface {
	MeasurePerformance(elapsedMS uint64) (throughput, latency, iops uint64)
}

// FailureReporter is an optional capability a Sampler may also
// implement to surface the external caching_failed flag the mode
// controller latches on.
type FailureReporter interface {
	CachingFailed() bool
}

// Clock supplies a monotonic millisecond reading, injected so tests
// can drive the rate-limited tick deterministically.
type Clock interface {
	NowMS() uint64
}

// Params configures a Splitter's constants.
type Params struct {
	IODepth, NumJobs uint64

	RingCapacity         int
	StabilizationSamples uint64

	Window     uint64
	MaxPattern uint64
	Scale      uint64

	MonitorIntervalMS uint64
	LogIntervalMS     uint64

	Thresholds mode.Thresholds

	// PinCPU pins the tick goroutine to a CPU core via
	// golang.org/x/sys/unix so the periodic recomputation keeps a
	// predictable cadence under host load. A negative value (the
	// default) disables pinning entirely.
	PinCPU int
}

// DefaultParams returns the reference constants.
func DefaultParams() Params {
	return Params{
		IODepth:              16,
		NumJobs:              1,
		RingCapacity:         16,
		StabilizationSamples: 40,
		Window:               100,
		MaxPattern:           10,
		Scale:                10000,
		MonitorIntervalMS:    100,
		LogIntervalMS:        1000,
		Thresholds:           mode.DefaultThresholds(),
		PinCPU:               -1,
	}
}

// ObservabilityRecord is the record emitted once per LogIntervalMS.
type ObservabilityRecord struct {
	ThroughputAvg, LatencyAvg, LatencyBaseline  uint64
	IOPS                                        uint64
	ThroughputDropPermil, LatencyIncreasePermil uint64
	Mode                                        mode.State
	Ratio                                       uint64
}

// Splitter is the encapsulated controller owning every piece of shared
// mutable telemetry and the split ratio. The ratio cell is read-mostly
// behind an RWMutex, the tick is mutex-guarded with a non-blocking
// acquire, and the dispatch counters are serialized inside Dispatcher
// itself.
type Splitter struct {
	params  Params
	oracle  oracle.Oracle
	sampler Sampler
	clock   Clock
	logger  *logging.Logger

	metrics    *telemetry.Metrics
	controller *mode.Controller
	dispatcher *dispatch.Dispatcher
	taskExec   gotaskflow.Executor

	tickMu     sync.Mutex
	lastTickMS uint64
	lastLogMS  uint64
	lastIOPS   uint64
	pinOnce    sync.Once

	ratioMu sync.RWMutex
	ratio   uint64
}

// New constructs a Splitter. Init must still be called once before the
// first dispatch.
func New(params Params, o oracle.Oracle, sampler Sampler, clock Clock, logger *logging.Logger) *Splitter {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Splitter{
		params:     params,
		oracle:     o,
		sampler:    sampler,
		clock:      clock,
		logger:     logger,
		metrics:    telemetry.NewMetrics(params.RingCapacity, params.StabilizationSamples),
		controller: mode.NewController(params.Thresholds),
		dispatcher: dispatch.New(params.Window, params.MaxPattern, params.Scale),
		taskExec:   gotaskflow.NewExecutor(1),
	}
	return s
}

// Init must be called once before any dispatch. It seeds the ratio to
// Scale (100% cache).
func (s *Splitter) Init() {
	s.setRatio(s.params.Scale)
}

// Reset returns every field to its initial value: ratio to Scale, mode
// to Idle, telemetry windows and dispatch counters cleared.
func (s *Splitter) Reset() {
	s.tickMu.Lock()
	s.metrics.Reset()
	s.controller.Reset()
	s.lastTickMS = 0
	s.lastLogMS = 0
	s.lastIOPS = 0
	s.tickMu.Unlock()

	s.dispatcher.Reset()
	s.setRatio(s.params.Scale)
}

// SetDebug toggles verbose logging; level follows logging.LogLevel.
func (s *Splitter) SetDebug(level int32) {
	s.logger.SetLevel(logging.LogLevel(level))
}

func (s *Splitter) ratioValue() uint64 {
	s.ratioMu.RLock()
	defer s.ratioMu.RUnlock()
	return s.ratio
}

// setRatio publishes r to the read-mostly ratio cell and propagates it
// to the dispatcher, which rebuilds its pattern at the next window
// boundary.
func (s *Splitter) setRatio(r uint64) {
	assert.Invariant(r <= s.params.Scale, "split ratio %d exceeds scale %d", r, s.params.Scale)
	s.ratioMu.Lock()
	s.ratio = r
	s.ratioMu.Unlock()
	s.dispatcher.SetRatio(r)
}

// ShouldSendToBackend is the hot path: it runs the rate-limited tick,
// rebuilds the dispatch pattern as needed, and returns the routing
// decision for req.
func (s *Splitter) ShouldSendToBackend(req Request) bool {
	s.maybeTick()
	return s.dispatcher.ShouldSendToBackend(req.IsMiss())
}

// maybeTick drives the telemetry, mode, and split-ratio update at most
// once every MonitorIntervalMS, using a non-blocking acquire so a
// dispatch never waits on a tick owned by another goroutine; it just
// proceeds with the last published ratio.
func (s *Splitter) maybeTick() {
	now := s.clock.NowMS()

	if !s.tickMu.TryLock() {
		return
	}
	defer s.tickMu.Unlock()

	if s.params.PinCPU >= 0 {
		s.pinOnce.Do(s.pinTickGoroutine)
	}

	if s.lastTickMS != 0 && now-s.lastTickMS < s.params.MonitorIntervalMS {
		return
	}
	elapsed := s.params.MonitorIntervalMS
	s.lastTickMS = now

	s.runTick(elapsed)

	if s.lastLogMS == 0 || now-s.lastLogMS >= s.params.LogIntervalMS {
		s.lastLogMS = now
		s.emitObservability()
	}
}

// pinTickGoroutine binds whichever goroutine first wins the tick lock
// to PinCPU for the remaining lifetime of the process, and raises its
// I/O priority, so the periodic sample/mode/split recomputation keeps a
// predictable cadence under host load. Both are best-effort: a failure
// (typically missing CAP_SYS_NICE) is logged but never fatal.
func (s *Splitter) pinTickGoroutine() {
	if err := affinity.PinCurrentThread(s.params.PinCPU); err != nil {
		s.logger.Warn("netcas tick: failed to pin CPU affinity to core %d: %v", s.params.PinCPU, err)
	}
	if err := affinity.SetRealtimeIOPriority(); err != nil {
		s.logger.Warn("netcas tick: failed to raise I/O priority: %v", err)
	}
}

// runTick expresses the tick's internal dependency graph (sample ->
// window update -> mode transition -> conditional split recompute) as
// a small taskflow DAG, executed synchronously within the tick's lock.
func (s *Splitter) runTick(elapsedMS uint64) {
	tp, lat, iops := s.sampler.MeasurePerformance(elapsedMS)
	s.lastIOPS = iops

	tf := gotaskflow.NewTaskFlow("netcas-tick")

	sampleTask := tf.NewTask("sample", func() {
		s.metrics.ObserveThroughput(tp)
		s.metrics.ObserveLatency(lat)
	})

	var newState mode.State
	modeTask := tf.NewTask("mode", func() {
		var failed bool
		if fr, ok := s.sampler.(FailureReporter); ok {
			failed = fr.CachingFailed()
		}
		newState = s.controller.Advance(mode.Signals{
			Throughput:    s.metrics.ThroughputAverage(),
			LatencyPermil: s.metrics.LatencyIncreasePermil(),
			IOPS:          iops,
			WindowFull:    s.metrics.IsFull(),
			CachingFailed: failed,
		})
	})

	splitTask := tf.NewTask("split", func() {
		s.applyModePolicy(newState)
	})

	sampleTask.Precede(modeTask)
	modeTask.Precede(splitTask)

	s.taskExec.Run(tf).Wait()
}

// applyModePolicy implements the per-mode split-ratio policy.
func (s *Splitter) applyModePolicy(state mode.State) {
	bwDrop := s.metrics.ThroughputDropPermil()
	latInc := s.metrics.LatencyIncreasePermil()

	switch state {
	case mode.Idle:
		if !s.controller.Initialized() {
			s.setRatio(s.params.Scale)
			s.controller.SetInitialized(true)
		}
	case mode.Warmup:
		newRatio := splitcalc.OptimalSplit(s.oracle, s.params.IODepth, s.params.NumJobs, 0, 0, s.params.Thresholds.LatencyCongestPermil)
		s.publishIfChanged(newRatio)
	case mode.Stable:
		if s.metrics.IsFull() && !s.controller.StableRatioComputed() {
			newRatio := splitcalc.OptimalSplit(s.oracle, s.params.IODepth, s.params.NumJobs, bwDrop, latInc, s.params.Thresholds.LatencyCongestPermil)
			s.publishIfChanged(newRatio)
			s.controller.SetStableRatioComputed(true)
		}
	case mode.Congestion:
		if s.metrics.IsFull() {
			newRatio := splitcalc.OptimalSplit(s.oracle, s.params.IODepth, s.params.NumJobs, bwDrop, latInc, s.params.Thresholds.LatencyCongestPermil)
			s.publishIfChanged(newRatio)
		}
	case mode.Failure:
		// Ratio frozen; nothing to do.
	}
}

// publishIfChanged only writes the ratio cell (and propagates it to
// the dispatcher) when the computed value differs, keeping the
// read-mostly cell's write rate as low as the design assumes. A
// cache-only oracle endpoint of zero means "no information"; the
// previous ratio is kept rather than collapsing to zero.
func (s *Splitter) publishIfChanged(newRatio uint64) {
	if newRatio == 0 {
		return
	}
	if newRatio != s.ratioValue() {
		s.setRatio(newRatio)
	}
}

func (s *Splitter) emitObservability() {
	rec := s.snapshot()
	s.logger.Info("netcas tick: mode=%s ratio=%d.%02d%% tp_avg=%d lat_avg=%d lat_baseline=%d iops=%d tp_drop_permil=%d lat_inc_permil=%d",
		rec.Mode, rec.Ratio/100, rec.Ratio%100, rec.ThroughputAvg, rec.LatencyAvg, rec.LatencyBaseline,
		rec.IOPS, rec.ThroughputDropPermil, rec.LatencyIncreasePermil)
}

// snapshot assembles the current observability record.
func (s *Splitter) snapshot() ObservabilityRecord {
	return ObservabilityRecord{
		ThroughputAvg:         s.metrics.ThroughputAverage(),
		LatencyAvg:            s.metrics.LatencyAverage(),
		LatencyBaseline:       s.metrics.MinAvgLatency(),
		IOPS:                  s.lastIOPS,
		ThroughputDropPermil:  s.metrics.ThroughputDropPermil(),
		LatencyIncreasePermil: s.metrics.LatencyIncreasePermil(),
		Mode:                  s.controller.State(),
		Ratio:                 s.ratioValue(),
	}
}

// Mode returns the current controller state.
func (s *Splitter) Mode() mode.State { return s.controller.State() }

// Ratio returns the current split ratio on the Scale fixed-point scale.
func (s *Splitter) Ratio() uint64 { return s.ratioValue() }

// Snapshot exposes the latest observability record, used by the admin
// HTTP surface and the terminal dashboard.
func (s *Splitter) Snapshot() ObservabilityRecord { return s.snapshot() }

// DispatchStats exposes the dispatcher's running counters.
func (s *Splitter) DispatchStats() dispatch.Stats { return s.dispatcher.Stats() }
