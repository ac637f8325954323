package dispatch

import (
	"testing"

	"github.com/cyw0ng95/netcas-splitter/pkg/splitcalc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCDConventionAtExtremes(t *testing.T) {
	assert.Equal(t, uint64(1), gcd(0, 100))
	assert.Equal(t, uint64(1), gcd(100, 0))
	assert.Equal(t, uint64(50), gcd(50, 50))
}

func TestDispatcherConvergesToTargetRatioOverWindow(t *testing.T) {
	d := New(100, 10, splitcalc.Scale)
	d.SetRatio(7500) // 75% to cache

	var cache, backend int
	for i := 0; i < 100; i++ {
		if d.ShouldSendToBackend(false) {
			backend++
		} else {
			cache++
		}
	}

	assert.InDelta(t, 75, cache, 10)
	stats := d.Stats()
	assert.Equal(t, uint64(100), stats.Total)
	assert.Equal(t, stats.Total, stats.CacheServed+stats.BackendServed)
}

func TestMissOverrideNeverConsumesCacheQuota(t *testing.T) {
	d := New(100, 10, splitcalc.Scale)
	d.SetRatio(5000)

	var cache, backend, backendFromMiss int
	for i := 0; i < 30; i++ {
		isMiss := i%3 == 0
		toBackend := d.ShouldSendToBackend(isMiss)
		switch {
		case isMiss:
			require.True(t, toBackend)
			backendFromMiss++
		case toBackend:
			backend++
		default:
			cache++
		}
	}
	assert.GreaterOrEqual(t, backendFromMiss, 10)

	// The non-miss remainder still converges on the 50% target within
	// the pattern-rounding bound.
	assert.Equal(t, 20, cache+backend)
	assert.InDelta(t, 10, cache, 10)

	stats := d.Stats()
	assert.Equal(t, uint64(30), stats.Total)
	assert.Equal(t, uint64(10), stats.MissServed)
	assert.Equal(t, stats.Total, stats.CacheServed+stats.BackendServed+stats.MissServed)
}

func TestResetReturnsToInitialState(t *testing.T) {
	d := New(100, 10, splitcalc.Scale)
	d.SetRatio(2500)
	for i := 0; i < 10; i++ {
		d.ShouldSendToBackend(false)
	}
	d.Reset()

	stats := d.Stats()
	assert.Equal(t, uint64(0), stats.Total)
}
