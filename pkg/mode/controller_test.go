package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleStaysIdleBelowThresholds(t *testing.T) {
	c := NewController(DefaultThresholds())
	s := c.Advance(Signals{Throughput: 50, IOPS: 10})
	assert.Equal(t, Idle, s)
}

func TestIdleToWarmupToStable(t *testing.T) {
	c := NewController(DefaultThresholds())
	s := c.Advance(Signals{Throughput: 5000, IOPS: 5000})
	require.Equal(t, Warmup, s)
	assert.False(t, c.Initialized())

	s = c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true})
	assert.Equal(t, Stable, s)
	assert.False(t, c.StableRatioComputed())
}

func TestStableToCongestionAndHysteresis(t *testing.T) {
	c := NewController(DefaultThresholds())
	c.Advance(Signals{Throughput: 5000, IOPS: 5000})
	c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true})

	s := c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true, LatencyPermil: 800})
	assert.Equal(t, Congestion, s)

	// Hysteresis: between the two thresholds, stays Congestion.
	s = c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true, LatencyPermil: 600})
	assert.Equal(t, Congestion, s)

	s = c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true, LatencyPermil: 400})
	assert.Equal(t, Stable, s)
}

func TestCachingFailedLatchesUnconditionally(t *testing.T) {
	c := NewController(DefaultThresholds())
	c.Advance(Signals{Throughput: 5000, IOPS: 5000})
	c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true})

	s := c.Advance(Signals{Throughput: 5000, IOPS: 5000, WindowFull: true, CachingFailed: true})
	assert.Equal(t, Failure, s)

	// Failure only clears via Reset, not via any other signal.
	s = c.Advance(Signals{Throughput: 0, IOPS: 0})
	assert.Equal(t, Failure, s)

	c.Reset()
	assert.Equal(t, Idle, c.State())
}
