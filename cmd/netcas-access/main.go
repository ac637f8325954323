// Command netcas-access is a read-only HTTP admin surface exposing the
// splitter's current mode, ratio, and telemetry as JSON, backed by a
// continuously-running simulated workload so the endpoints have live
// data without a real cache engine attached.
package main

import (
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cyw0ng95/netcas-splitter/pkg/logging"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/cyw0ng95/netcas-splitter/pkg/simworkload"
	"github.com/cyw0ng95/netcas-splitter/pkg/splitter"
)

const historyLimit = 120

// driver owns the running Splitter and the bounded history of
// observability records the /restful/history endpoint serves.
type driver struct {
	mu      sync.RWMutex
	history []splitter.ObservabilityRecord

	s      *splitter.Splitter
	clock  *simworkload.SyntheticClock
	params splitter.Params
}

func newDriver(logger *logging.Logger) *driver {
	t := oracle.NewStaticTable()
	t.Set(16, 1, 100, 900000)
	t.Set(16, 1, 0, 300000)

	clock := &simworkload.SyntheticClock{}
	gen := simworkload.NewGenerator(simworkload.DefaultScript())
	params := splitter.DefaultParams()

	s := splitter.New(params, t, gen, clock, logger)
	s.Init()

	return &driver{s: s, clock: clock, params: params}
}

// run drives one monitor-interval tick plus a handful of dispatch
// decisions every real-time period, forever, recording a snapshot
// into the bounded history after each tick.
func (d *driver) run(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	reqIdx := 0
	for range ticker.C {
		d.clock.Advance(d.params.MonitorIntervalMS)
		for i := 0; i < 20; i++ {
			d.s.ShouldSendToBackend(simworkload.NewRequest(reqIdx, 7))
			reqIdx++
		}

		rec := d.s.Snapshot()
		d.mu.Lock()
		d.history = append(d.history, rec)
		if len(d.history) > historyLimit {
			d.history = d.history[len(d.history)-historyLimit:]
		}
		d.mu.Unlock()
	}
}

func (d *driver) statusJSON() ([]byte, error) {
	rec := d.s.Snapshot()
	stats := d.s.DispatchStats()
	return sonic.Marshal(gin.H{
		"mode":                    rec.Mode.String(),
		"ratio":                   rec.Ratio,
		"ratio_pct":               float64(rec.Ratio) / 100,
		"throughput_avg":          rec.ThroughputAvg,
		"latency_avg":             rec.LatencyAvg,
		"latency_baseline":        rec.LatencyBaseline,
		"throughput_drop_permil":  rec.ThroughputDropPermil,
		"latency_increase_permil": rec.LatencyIncreasePermil,
		"dispatch": gin.H{
			"total":          stats.Total,
			"cache_served":   stats.CacheServed,
			"backend_served": stats.BackendServed,
			"miss_served":    stats.MissServed,
		},
	})
}

func (d *driver) historyJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sonic.Marshal(d.history)
}

func setupRouter(d *driver) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = os.Stderr
	gin.DefaultErrorWriter = os.Stderr

	router := gin.New()
	router.Use(gin.RecoveryWithWriter(os.Stderr))
	router.Use(cors.Default())

	restful := router.Group("/restful")
	restful.GET("/status", func(c *gin.Context) {
		data, err := d.statusJSON()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"retcode": 500, "message": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	})
	restful.GET("/history", func(c *gin.Context) {
		data, err := d.historyJSON()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"retcode": 500, "message": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	})

	return router
}

func main() {
	addr := flag.String("addr", "0.0.0.0:8090", "listen address")
	period := flag.Duration("tick", 100*time.Millisecond, "real-time period between simulated telemetry ticks")
	flag.Parse()

	logger := logging.Default()
	d := newDriver(logger)
	go d.run(*period)

	router := setupRouter(d)
	logger.Info("netcas-access listening on %s", *addr)
	if err := router.Run(*addr); err != nil {
		logger.Fatal("server error: %v", err)
	}
}
