// Command netcas-sim drives a splitter.Splitter through the scripted
// phases of simworkload.DefaultScript, printing one observability
// record per log interval, and optionally exporting the full run to an xlsx
// workbook via the report package. With -engine, the same script is
// replayed through the bbolt/sqlite/resty engine stubs instead of the
// in-memory generator, so the pattern dispatcher and mode controller
// are exercised against the domain stack's stand-in persistence and
// health-check layers rather than bare structs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyw0ng95/netcas-splitter/pkg/config"
	"github.com/cyw0ng95/netcas-splitter/pkg/logging"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle/htmltable"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle/provenance"
	"github.com/cyw0ng95/netcas-splitter/pkg/report"
	"github.com/cyw0ng95/netcas-splitter/pkg/simworkload"
	"github.com/cyw0ng95/netcas-splitter/pkg/splitter"
)

func main() {
	tablePath := flag.String("table", "", "path to an HTML bandwidth-table report (falls back to a built-in static table)")
	reportPath := flag.String("report", "", "write the full run to this .xlsx path")
	configPath := flag.String("config", "", "path to a netcas.json config file (falls back to the splitter's reference defaults)")
	requestsPerTick := flag.Int("requests-per-tick", 20, "dispatch decisions issued per telemetry tick")
	missStride := flag.Int("miss-stride", 7, "mark every Nth request a forced cache miss (<=0 disables misses)")
	pinCPU := flag.Int("pin-cpu", -1, "pin the tick goroutine to this CPU core (<0 disables pinning)")
	engineMode := flag.Bool("engine", false, "drive the splitter through the bbolt/sqlite engine stubs instead of the in-memory workload generator")
	cacheDB := flag.String("cache-db", "netcas-cache.db", "bbolt cache-residency store path, used when -engine is set")
	backendDB := flag.String("backend-db", "netcas-backend.db", "sqlite backend-sample store path, used when -engine is set")
	healthEndpoint := flag.String("health-endpoint", "", "HTTP endpoint probed for RDMA transport health, used when -engine is set (empty disables probing)")
	debug := flag.Int("debug", int(logging.InfoLevel), "log level: 0=debug 1=info 2=warn 3=error")
	flag.Parse()

	logger := logging.NewLogger(os.Stdout, logging.LogLevel(*debug))

	bwOracle, err := loadOracle(*tablePath)
	if err != nil {
		logger.Fatal("failed to load bandwidth oracle: %v", err)
	}
	if *tablePath != "" {
		logger.Info("bandwidth table provenance: %s", provenance.Describe(filepath.Dir(*tablePath)))
	}

	params, err := loadParams(*configPath)
	if err != nil {
		logger.Fatal("failed to load config: %v", err)
	}
	params.PinCPU = *pinCPU

	var sampler splitter.Sampler
	var makeRequest func(idx int) splitter.Request

	if *engineMode {
		er, err := newEngineRun(*cacheDB, *backendDB, *healthEndpoint, logger)
		if err != nil {
			logger.Fatal("failed to start engine-backed run: %v", err)
		}
		defer er.Close()
		sampler = er
		makeRequest = func(idx int) splitter.Request { return engineRequest{idx: idx, cache: er.cache} }
	} else {
		gen := simworkload.NewGenerator(simworkload.DefaultScript())
		sampler = gen
		makeRequest = func(idx int) splitter.Request { return simworkload.NewRequest(idx, *missStride) }
	}

	clock := &simworkload.SyntheticClock{}

	s := splitter.New(params, bwOracle, sampler, clock, logger)
	s.Init()
	s.SetDebug(int32(*debug))

	var writer *report.Writer
	if *reportPath != "" {
		writer = report.NewWriter()
	}

	lastMode := s.Mode()
	totalTicks := 0
	for _, ph := range simworkload.DefaultScript() {
		totalTicks += ph.Ticks
	}

	reqIdx := 0
	for tick := 0; tick < totalTicks; tick++ {
		clock.Advance(params.MonitorIntervalMS)

		for i := 0; i < *requestsPerTick; i++ {
			s.ShouldSendToBackend(makeRequest(reqIdx))
			reqIdx++
		}

		if writer != nil {
			rec := s.Snapshot()
			stats := s.DispatchStats()
			writer.AddSample(report.Sample{
				TimeMS:                clock.NowMS(),
				ThroughputAvg:         rec.ThroughputAvg,
				LatencyAvg:            rec.LatencyAvg,
				LatencyBaseline:       rec.LatencyBaseline,
				ThroughputDropPermil:  rec.ThroughputDropPermil,
				LatencyIncreasePermil: rec.LatencyIncreasePermil,
				Mode:                  rec.Mode,
				Ratio:                 rec.Ratio,
				CacheServed:           stats.CacheServed,
				BackendServed:         stats.BackendServed,
			})
			if rec.Mode != lastMode {
				writer.AddTransition(report.Transition{TimeMS: clock.NowMS(), From: lastMode, To: rec.Mode})
				lastMode = rec.Mode
			}
		} else if cur := s.Mode(); cur != lastMode {
			logger.Info("mode transition: %s -> %s", lastMode, cur)
			lastMode = cur
		}
	}

	final := s.Snapshot()
	fmt.Printf("run complete: mode=%s ratio=%d.%02d%% dispatch=%+v\n",
		final.Mode, final.Ratio/100, final.Ratio%100, s.DispatchStats())

	if writer != nil {
		if err := writer.Save(*reportPath); err != nil {
			logger.Fatal("failed to write report: %v", err)
		}
		logger.Info("wrote run report to %s", *reportPath)
	}
}

// loadParams loads splitter.Params from a config file when configPath
// is set, falling back to splitter.DefaultParams() so the common case
// (no -config flag) behaves exactly as before.
func loadParams(configPath string) (splitter.Params, error) {
	if configPath == "" {
		return splitter.DefaultParams(), nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return splitter.Params{}, err
	}
	return cfg.ToParams(), nil
}

// loadOracle loads an HTML benchmark table when tablePath is set,
// falling back to a built-in static table tuned to reproduce the
// splitter's warmup scenario (bw(100)=900000, bw(0)=300000 at
// io_depth=16, numjobs=1).
func loadOracle(tablePath string) (oracle.Oracle, error) {
	if tablePath != "" {
		return htmltable.Load(tablePath)
	}
	t := oracle.NewStaticTable()
	t.Set(16, 1, 100, 900000)
	t.Set(16, 1, 0, 300000)
	return t, nil
}
