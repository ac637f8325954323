// Package splitcalc computes the closed-form optimal cache/backend split
// ratio from bandwidth-oracle endpoints and congestion signals. It is
// pure: no shared state, no I/O, fixed-point arithmetic throughout.
package splitcalc

import "github.com/cyw0ng95/netcas-splitter/pkg/oracle"

// Scale is the fixed-point denominator the split ratio is expressed on;
// Scale denotes 100% of requests routed to the cache.
const Scale uint64 = 10000

// Formula returns (A*Scale)/(A+B) clamped to [0, Scale]. When A+B is 0
// the ratio is undefined; Formula returns 0 rather than dividing by zero.
func Formula(a, b uint64) uint64 {
	denom := a + b
	if denom == 0 {
		return 0
	}
	ratio := (a * Scale) / denom
	if ratio > Scale {
		return Scale
	}
	return ratio
}

// OptimalSplit applies congestion-aware derating: the bandwidth-drop
// term is folded into the backend-only estimate only when latency is
// simultaneously elevated past congestThresholdPermil.
func OptimalSplit(o oracle.Oracle, ioDepth, numjobs, bwDropPermil, latIncreasePermil, congestThresholdPermil uint64) uint64 {
	a := o.BW(ioDepth, numjobs, 100)
	b := o.BW(ioDepth, numjobs, 0)

	if latIncreasePermil > congestThresholdPermil {
		drop := bwDropPermil
		if drop > 1000 {
			drop = 1000
		}
		b = b * (1000 - drop) / 1000
	}

	return Formula(a, b)
}
