// Package rdmahealth probes a configurable HTTP health endpoint
// standing in for the RDMA transport's liveness check, before
// backendstub reports a sample: a slow or failing probe is folded into
// the reported latency, giving an observable congestion path without
// real RDMA hardware.
package rdmahealth

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HealthStatus describes the outcome of one probe.
type HealthStatus struct {
	Healthy      bool
	LatencyNanos uint64
}

// Checker probes a backend health endpoint over HTTP.
type Checker struct {
	client   *resty.Client
	endpoint string
}

// NewChecker creates a Checker targeting endpoint with the given timeout.
func NewChecker(endpoint string, timeout time.Duration) *Checker {
	client := resty.New()
	client.SetTimeout(timeout)
	return &Checker{client: client, endpoint: endpoint}
}

// Probe issues one GET against the configured endpoint and reports
// whether it succeeded along with the observed round-trip latency.
func (c *Checker) Probe() HealthStatus {
	start := time.Now()
	resp, err := c.client.R().Get(c.endpoint)
	elapsed := uint64(time.Since(start).Nanoseconds())

	if err != nil || resp.IsError() {
		return HealthStatus{Healthy: false, LatencyNanos: elapsed}
	}
	return HealthStatus{Healthy: true, LatencyNanos: elapsed}
}
