package main

import (
	"fmt"
	"time"

	"github.com/cyw0ng95/netcas-splitter/pkg/engine/backendstub"
	"github.com/cyw0ng95/netcas-splitter/pkg/engine/cachestub"
	"github.com/cyw0ng95/netcas-splitter/pkg/engine/rdmahealth"
	"github.com/cyw0ng95/netcas-splitter/pkg/logging"
	"github.com/cyw0ng95/netcas-splitter/pkg/simworkload"
)

// residentBlockCount is the size of the engineRun's synthetic block
// address range; the first half of it is pre-marked resident in
// cachestub, giving a mix of hits and misses instead of every request
// missing.
const residentBlockCount = 64

// engineRun drives the splitter through the bbolt-backed cache store,
// the gorm+sqlite-backed backend sample store, and an optional
// HTTP-probed health checker, instead of simworkload's in-memory stand-ins.
// simworkload.DefaultScript is still used as the believable source of
// raw throughput/latency/iops figures, but every sample is round-tripped
// through backendstub's sqlite store before the splitter ever sees it,
// and every dispatch decision's hit/miss outcome comes from a real
// cachestub lookup rather than a modulo stride.
type engineRun struct {
	cache   *cachestub.Store
	backend *backendstub.Store
	health  *rdmahealth.Checker
	source  *simworkload.Generator
	logger  *logging.Logger
}

// newEngineRun opens the bbolt and sqlite stores at cacheDB/backendDB,
// pre-populates half of residentBlockCount synthetic block addresses as
// cache-resident, and optionally wires an HTTP health checker against
// healthEndpoint.
func newEngineRun(cacheDB, backendDB, healthEndpoint string, logger *logging.Logger) (*engineRun, error) {
	cache, err := cachestub.Open(cacheDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	backend, err := backendstub.Open(backendDB)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to open backend store: %w", err)
	}

	for i := 0; i < residentBlockCount/2; i++ {
		if err := cache.MarkResident(blockAddr(i)); err != nil {
			cache.Close()
			backend.Close()
			return nil, fmt.Errorf("failed to seed resident block %d: %w", i, err)
		}
	}

	var health *rdmahealth.Checker
	if healthEndpoint != "" {
		health = rdmahealth.NewChecker(healthEndpoint, 500*time.Millisecond)
	}

	return &engineRun{
		cache:   cache,
		backend: backend,
		health:  health,
		source:  simworkload.NewGenerator(simworkload.DefaultScript()),
		logger:  logger,
	}, nil
}

func blockAddr(i int) string {
	return fmt.Sprintf("block-%d", i%residentBlockCount)
}

// MeasurePerformance implements splitter.Sampler: it pulls the next
// believable sample out of source, folds in the health checker's
// probe latency when unhealthy, records the result into the
// sqlite-backed backend store, and returns what that store replays -
// so the sample the splitter actually observes has round-tripped
// through gorm+sqlite exactly as it would from a real backend poller.
func (e *engineRun) MeasurePerformance(elapsedMS uint64) (uint64, uint64, uint64) {
	tp, lat, iops := e.source.MeasurePerformance(elapsedMS)

	if e.health != nil {
		status := e.health.Probe()
		if !status.Healthy {
			lat += status.LatencyNanos / 1000
			e.logger.Warn("rdma health probe unhealthy, latency nanos=%d", status.LatencyNanos)
		}
	}

	if err := e.backend.Record(tp, lat, iops); err != nil {
		e.logger.Warn("failed to record backend sample: %v", err)
		return tp, lat, iops
	}

	replayed, replayedLat, replayedIOPS, err := e.backend.Latest()
	if err != nil {
		e.logger.Warn("failed to replay backend sample: %v", err)
		return tp, lat, iops
	}
	return replayed, replayedLat, replayedIOPS
}

// CachingFailed implements splitter.FailureReporter from the
// underlying synthetic script, so the engine-backed run still exercises
// the mode controller's Failure state the same way the in-memory run does.
func (e *engineRun) CachingFailed() bool { return e.source.CachingFailed() }

// engineRequest implements splitter.Request by asking the bbolt-backed
// cache store whether idx's synthetic block address is resident.
type engineRequest struct {
	idx   int
	cache *cachestub.Store
}

func (r engineRequest) IsMiss() bool { return r.cache.IsMiss(blockAddr(r.idx)) }

// Close releases the cache and backend stores.
func (e *engineRun) Close() {
	e.cache.Close()
	e.backend.Close()
}
