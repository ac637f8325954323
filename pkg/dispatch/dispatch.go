// Package dispatch realises a target cache/backend split ratio over a
// deterministic repeating pattern, absorbing forced cache-miss routings.
package dispatch

import (
	"sync"

	"github.com/cyw0ng95/netcas-splitter/pkg/assert"
)

// gcd computes the greatest common divisor, with the splitter's
// convention that gcd(0, x) == gcd(x, 0) == 1 so pattern construction
// never divides by zero at the extremes of the ratio.
func gcd(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 1
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Dispatcher realises the pattern-based dispatch scheme over a window
// of size Window requests.
type Dispatcher struct {
	mu sync.Mutex

	window     uint64
	maxPattern uint64
	scale      uint64

	cachePct uint64 // a: current target cache percentage, 0..100

	patternSize    uint64
	patternCache   uint64
	patternBackend uint64
	patternPos     uint64

	requestCounter uint64
	total          uint64
	cacheServed    uint64
	backendServed  uint64
	missServed     uint64

	cacheQuota   uint64
	backendQuota uint64
	lastWasCache bool
}

// New creates a Dispatcher with window W and pattern cap P_MAX.
func New(window, maxPattern, scale uint64) *Dispatcher {
	return &Dispatcher{window: window, maxPattern: maxPattern, scale: scale}
}

// rebuildPattern seeds the pattern and quotas from the current cache
// percentage a: size = min(window/gcd(a, window-a), maxPattern) and
// patternCache = a*size/window.
func (d *Dispatcher) rebuildPattern() {
	a := d.cachePct
	w := d.window
	b := w - a
	g := gcd(a, b)

	size := w / g
	if size > d.maxPattern {
		size = d.maxPattern
	}
	d.patternSize = size
	d.patternCache = (a * size) / w
	d.patternBackend = size - d.patternCache

	d.total = 0
	d.cacheServed = 0
	d.backendServed = 0
	d.missServed = 0
	d.patternPos = 0
	d.cacheQuota = a
	d.backendQuota = w - a
}

// SetRatio updates the target cache share from a split ratio on the
// splitcalc.Scale fixed-point scale, truncating to an integer
// percentage as the dispatcher's pattern construction requires.
func (d *Dispatcher) SetRatio(ratio uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cachePct = (ratio * 100) / d.scale
	if d.cachePct > 100 {
		d.cachePct = 100
	}
}

// ShouldSendToBackend makes the per-request decision: pattern/quota
// dispatch toward the current ratio, with an unconditional miss
// override that never consumes cache quota.
func (d *Dispatcher) ShouldSendToBackend(isMiss bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.requestCounter%d.window == 0 || d.patternSize == 0 {
		d.rebuildPattern()
	}
	d.requestCounter++
	d.total++

	// Misses are a forced backend route: they count toward total but
	// never consume cache quota or advance the pattern.
	if isMiss {
		d.missServed++
		return true
	}

	a := d.cachePct
	w := d.window
	expectedCache := (d.total * a) / w
	expectedBackend := d.total - expectedCache

	var toBackend bool
	switch {
	case d.cacheServed < expectedCache:
		toBackend = false
	case d.backendServed < expectedBackend:
		toBackend = true
	case d.patternPos < d.patternSize:
		toBackend = d.patternPos >= d.patternCache
		d.patternPos = (d.patternPos + 1) % d.patternSize
	case d.cacheQuota == 0:
		toBackend = true
	case d.backendQuota == 0:
		toBackend = false
	default:
		toBackend = d.lastWasCache
	}

	if toBackend {
		d.backendServed++
		if d.backendQuota > 0 {
			d.backendQuota--
		}
		d.lastWasCache = false
	} else {
		d.cacheServed++
		if d.cacheQuota > 0 {
			d.cacheQuota--
		}
		d.lastWasCache = true
	}

	assert.Invariant(d.total == d.cacheServed+d.backendServed+d.missServed,
		"total %d must equal cache %d + backend %d + miss %d",
		d.total, d.cacheServed, d.backendServed, d.missServed)

	return toBackend
}

// Stats is a snapshot of the running counters, used by observability
// records and reports.
type Stats struct {
	Total, CacheServed, BackendServed, MissServed uint64
}

// Stats returns the current counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{Total: d.total, CacheServed: d.cacheServed, BackendServed: d.backendServed, MissServed: d.missServed}
}

// Reset returns all counters, quotas, pattern, and the target ratio to
// their initial values.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cachePct = 0
	d.patternSize = 0
	d.patternCache = 0
	d.patternBackend = 0
	d.patternPos = 0
	d.requestCounter = 0
	d.total = 0
	d.cacheServed = 0
	d.backendServed = 0
	d.missServed = 0
	d.cacheQuota = 0
	d.backendQuota = 0
	d.lastWasCache = false
}
