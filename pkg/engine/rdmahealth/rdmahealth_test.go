package rdmahealth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbeHealthyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	status := NewChecker(srv.URL, time.Second).Probe()
	assert.True(t, status.Healthy)
	assert.Greater(t, status.LatencyNanos, uint64(0))
}

func TestProbeErrorStatusIsUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	assert.False(t, NewChecker(srv.URL, time.Second).Probe().Healthy)
}

func TestProbeUnreachableEndpointIsUnhealthy(t *testing.T) {
	status := NewChecker("http://127.0.0.1:1", 200*time.Millisecond).Probe()
	assert.False(t, status.Healthy)
}
