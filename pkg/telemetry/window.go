// Package telemetry maintains the moving-average windows over RDMA
// throughput and latency that the split calculator and mode controller
// consult on every tick.
package telemetry

// Window is a fixed-capacity ring of unsigned samples with a running
// sum and average. All arithmetic is fixed-point: no floating point
// anywhere in the hot path.
type Window struct {
	samples []uint64
	index   int
	count   int
	sum     uint64
}

// NewWindow creates a ring of the given capacity. Capacity <= 0 is
// treated as 1 to avoid a degenerate empty ring.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{samples: make([]uint64, capacity)}
}

// Observe appends x to the ring in O(1), evicting the oldest sample once
// the ring is full, and returns the new average.
func (w *Window) Observe(x uint64) uint64 {
	n := len(w.samples)
	if w.count == n {
		w.sum -= w.samples[w.index]
	} else {
		w.count++
	}
	w.samples[w.index] = x
	w.sum += x
	w.index = (w.index + 1) % n
	return w.Average()
}

// Average returns sum/count, or 0 when the window is empty.
func (w *Window) Average() uint64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / uint64(w.count)
}

// IsFull reports whether the ring has reached its capacity.
func (w *Window) IsFull() bool {
	return w.count == len(w.samples)
}

// Count returns the number of samples currently held.
func (w *Window) Count() int {
	return w.count
}

// Metrics pairs a throughput window and a latency window with the
// high/low watermarks and baseline-establishment bookkeeping the split
// calculator and mode controller depend on.
type Metrics struct {
	throughput *Window
	latency    *Window

	maxAvgThroughput uint64

	latencySampleCount   uint64
	stabilizationSamples uint64
	baselineEstablished  bool
	minAvgLatency        uint64
}

// NewMetrics constructs telemetry windows of the given ring capacity,
// with a latency baseline established only after stabilizationSamples
// observations.
func NewMetrics(ringCapacity int, stabilizationSamples uint64) *Metrics {
	return &Metrics{
		throughput:           NewWindow(ringCapacity),
		latency:              NewWindow(ringCapacity),
		stabilizationSamples: stabilizationSamples,
	}
}

// ObserveThroughput appends a throughput sample and updates the
// throughput high-watermark, which is monotonically non-decreasing.
func (m *Metrics) ObserveThroughput(x uint64) uint64 {
	avg := m.throughput.Observe(x)
	if avg > m.maxAvgThroughput {
		m.maxAvgThroughput = avg
	}
	return avg
}

// ObserveLatency appends a latency sample. Once latencySampleCount
// reaches the stabilization threshold and the average is non-zero, the
// baseline is established at that average; thereafter it tracks the
// minimum observed average.
func (m *Metrics) ObserveLatency(x uint64) uint64 {
	avg := m.latency.Observe(x)
	m.latencySampleCount++

	if !m.baselineEstablished {
		if m.latencySampleCount >= m.stabilizationSamples && avg > 0 {
			m.minAvgLatency = avg
			m.baselineEstablished = true
		}
		return avg
	}

	if avg < m.minAvgLatency {
		m.minAvgLatency = avg
	}
	return avg
}

// ThroughputAverage returns the current throughput window average.
func (m *Metrics) ThroughputAverage() uint64 { return m.throughput.Average() }

// LatencyAverage returns the current latency window average.
func (m *Metrics) LatencyAverage() uint64 { return m.latency.Average() }

// MaxAvgThroughput returns the throughput high-watermark.
func (m *Metrics) MaxAvgThroughput() uint64 { return m.maxAvgThroughput }

// MinAvgLatency returns the established latency baseline (0 if not yet
// established; check BaselineEstablished first).
func (m *Metrics) MinAvgLatency() uint64 { return m.minAvgLatency }

// BaselineEstablished reports whether the latency baseline has been set.
func (m *Metrics) BaselineEstablished() bool { return m.baselineEstablished }

// IsFull reports whether the throughput window has filled, which is the
// signal the mode controller uses to leave Warmup.
func (m *Metrics) IsFull() bool { return m.throughput.IsFull() }

// ThroughputDropPermil returns ((max_avg - current_avg) * 1000) / max_avg
// saturated at 0, or 0 when max_avg is 0.
func (m *Metrics) ThroughputDropPermil() uint64 {
	maxAvg := m.maxAvgThroughput
	if maxAvg == 0 {
		return 0
	}
	cur := m.throughput.Average()
	if cur >= maxAvg {
		return 0
	}
	return ((maxAvg - cur) * 1000) / maxAvg
}

// LatencyIncreasePermil returns ((current_avg - baseline) * 1000) / baseline
// saturated at 0 when current_avg < baseline, or when no baseline has
// been established yet or the baseline is 0.
func (m *Metrics) LatencyIncreasePermil() uint64 {
	if !m.baselineEstablished || m.minAvgLatency == 0 {
		return 0
	}
	cur := m.latency.Average()
	if cur <= m.minAvgLatency {
		return 0
	}
	return ((cur - m.minAvgLatency) * 1000) / m.minAvgLatency
}

// Reset returns every field to its initial value.
func (m *Metrics) Reset() {
	n := len(m.throughput.samples)
	m.throughput = NewWindow(n)
	m.latency = NewWindow(n)
	m.maxAvgThroughput = 0
	m.latencySampleCount = 0
	m.baselineEstablished = false
	m.minAvgLatency = 0
}
