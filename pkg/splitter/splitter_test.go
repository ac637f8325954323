package splitter

import (
	"testing"

	"github.com/cyw0ng95/netcas-splitter/pkg/mode"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ ms uint64 }

func (c *fakeClock) NowMS() uint64 { return c.ms }
func (c *fakeClock) advance(d uint64) { c.ms += d }

type fakeSampler struct {
	tp, lat, iops uint64
	failed        bool
}

func (f *fakeSampler) MeasurePerformance(elapsedMS uint64) (uint64, uint64, uint64) {
	return f.tp, f.lat, f.iops
}
func (f *fakeSampler) CachingFailed() bool { return f.failed }

type req struct{ miss bool }

func (r req) IsMiss() bool { return r.miss }

func newTestSplitter() (*Splitter, *fakeClock, *fakeSampler) {
	table := oracle.NewStaticTable()
	table.Set(16, 1, 100, 900000)
	table.Set(16, 1, 0, 300000)

	clock := &fakeClock{ms: 1000}
	sampler := &fakeSampler{}
	p := DefaultParams()
	// The reference StabilizationSamples (40) assumes a long-running
	// process; shrink it to the ring capacity so a short test run
	// establishes the latency baseline the moment the window first
	// fills, instead of needing dozens more ticks than any scenario
	// below issues.
	p.StabilizationSamples = uint64(p.RingCapacity)
	s := New(p, table, sampler, clock, nil)
	s.Init()
	return s, clock, sampler
}

func TestColdStartStaysIdleAtFullRatio(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 0, 0, 0

	for i := 0; i < 5; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}

	assert.Equal(t, mode.Idle, s.Mode())
	assert.Equal(t, uint64(10000), s.Ratio())

	// At the default ratio every non-miss dispatch targets the cache.
	stats := s.DispatchStats()
	assert.Equal(t, uint64(5), stats.Total)
	assert.Equal(t, uint64(5), stats.CacheServed)
}

func TestWarmupToStableConvergesOnSeventyFivePercent(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 5000, 100, 5000

	clock.advance(100)
	s.ShouldSendToBackend(req{})
	require.Equal(t, mode.Warmup, s.Mode())
	assert.Equal(t, uint64(7500), s.Ratio())

	for i := 0; i < 16; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}

	assert.Equal(t, mode.Stable, s.Mode())
	assert.Equal(t, uint64(7500), s.Ratio())
	assert.Equal(t, uint64(5000), s.Snapshot().IOPS)
}

func TestCongestionEntryDeratesRatio(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 5000, 100, 5000

	for i := 0; i < 17; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}
	require.Equal(t, mode.Stable, s.Mode())
	stableRatio := s.Ratio()

	// Push both latency (past the 700-per-mille congest threshold) and
	// throughput (so bw_drop is genuinely nonzero, not just the
	// latency-only case where the derating formula is a no-op) in the
	// same tick, so the recomputed ratio actually exercises
	// OptimalSplit's congestion-derating term rather than trivially
	// matching the undropped stable ratio.
	sampler.lat = 100000
	sampler.tp = 2500
	clock.advance(100)
	s.ShouldSendToBackend(req{})

	assert.Equal(t, mode.Congestion, s.Mode())
	// Reference table: bw(16,1,100)=900000, bw(16,1,0)=300000. A 16-deep
	// throughput window holding fifteen 5000 samples and one 2500 sample
	// averages 4843, against a 5000 high-watermark, for bw_drop_permil=31;
	// derated backend bandwidth is 300000*(1000-31)/1000=290700, giving
	// Formula(900000, 290700) = 7558.
	assert.Equal(t, uint64(7558), s.Ratio())
	assert.Greater(t, s.Ratio(), stableRatio)
}

func TestIdleReversionPreservesRatio(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 5000, 100, 5000

	for i := 0; i < 17; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}
	require.Equal(t, mode.Stable, s.Mode())
	ratioBeforeIdle := s.Ratio()

	sampler.tp, sampler.iops = 0, 0
	for i := 0; i < 3; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}

	assert.Equal(t, mode.Idle, s.Mode())
	assert.Equal(t, ratioBeforeIdle, s.Ratio())
}

func TestCachingFailedLatchesSplitterIntoFailure(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 5000, 100, 5000
	clock.advance(100)
	s.ShouldSendToBackend(req{})

	sampler.failed = true
	clock.advance(100)
	s.ShouldSendToBackend(req{})
	assert.Equal(t, mode.Failure, s.Mode())

	frozenRatio := s.Ratio()
	sampler.failed = false
	clock.advance(100)
	s.ShouldSendToBackend(req{})
	assert.Equal(t, mode.Failure, s.Mode())
	assert.Equal(t, frozenRatio, s.Ratio())

	s.Reset()
	assert.Equal(t, mode.Idle, s.Mode())
}

func TestResetIsLeftIdentity(t *testing.T) {
	s, clock, sampler := newTestSplitter()
	sampler.tp, sampler.lat, sampler.iops = 5000, 100, 5000
	for i := 0; i < 20; i++ {
		clock.advance(100)
		s.ShouldSendToBackend(req{})
	}

	s.Reset()
	assert.Equal(t, mode.Idle, s.Mode())
	assert.Equal(t, uint64(10000), s.Ratio())
	assert.Equal(t, uint64(0), s.DispatchStats().Total)
}
