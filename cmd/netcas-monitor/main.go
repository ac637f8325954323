// Command netcas-monitor is a live terminal dashboard rendering the
// splitter's telemetry window, mode, and split ratio while a synthetic
// workload drives it through the scripted phases of simworkload.
package main

import (
	"fmt"
	"time"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/cyw0ng95/netcas-splitter/pkg/logging"
	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/cyw0ng95/netcas-splitter/pkg/simworkload"
	"github.com/cyw0ng95/netcas-splitter/pkg/splitter"
)

const plotHistory = 60

func main() {
	if err := termui.Init(); err != nil {
		fmt.Printf("failed to initialize termui: %v\n", err)
		return
	}
	defer termui.Close()

	t := oracle.NewStaticTable()
	t.Set(16, 1, 100, 900000)
	t.Set(16, 1, 0, 300000)

	clock := &simworkload.SyntheticClock{}
	gen := simworkload.NewGenerator(simworkload.DefaultScript())
	phase := "cold-start"
	gen.OnPhase(func(name string, _ int) { phase = name })

	params := splitter.DefaultParams()
	logger := logging.NewLogger(nullWriter{}, logging.ErrorLevel)
	s := splitter.New(params, t, gen, clock, logger)
	s.Init()

	title := widgets.NewParagraph()
	title.Title = "netcas-splitter"
	title.Text = "adaptive request splitter — live telemetry"
	title.Border = true

	modeBox := widgets.NewParagraph()
	modeBox.Title = "Mode / Phase"
	modeBox.Border = true

	ratioGauge := widgets.NewGauge()
	ratioGauge.Title = "Cache Split Ratio"
	ratioGauge.Percent = 100
	ratioGauge.BarColor = termui.ColorGreen

	plot := widgets.NewPlot()
	plot.Title = "Throughput / Latency Avg"
	// Plot panics on series shorter than two points, so both start seeded.
	plot.Data = [][]float64{{0, 0}, {0, 0}}
	plot.LineColors = []termui.Color{termui.ColorCyan, termui.ColorYellow}
	plot.AxesColor = termui.ColorWhite

	grid := termui.NewGrid()
	w, h := termui.TerminalDimensions()
	grid.SetRect(0, 0, w, h)
	grid.Set(
		termui.NewRow(1.0/6, title),
		termui.NewRow(1.0/6, modeBox),
		termui.NewRow(1.0/6, ratioGauge),
		termui.NewRow(3.0/6, plot),
	)
	termui.Render(grid)

	tpHistory := make([]float64, 0, plotHistory)
	latHistory := make([]float64, 0, plotHistory)

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	uiEvents := termui.PollEvents()

	reqIdx := 0
	for {
		select {
		case e := <-uiEvents:
			if e.ID == "q" || e.ID == "<C-c>" {
				return
			}
		case <-ticker.C:
			clock.Advance(params.MonitorIntervalMS)
			for i := 0; i < 20; i++ {
				s.ShouldSendToBackend(simworkload.NewRequest(reqIdx, 7))
				reqIdx++
			}

			rec := s.Snapshot()
			stats := s.DispatchStats()

			modeBox.Text = fmt.Sprintf("mode=%s phase=%s\ntotal=%d cache=%d backend=%d",
				rec.Mode, phase, stats.Total, stats.CacheServed, stats.BackendServed)
			ratioGauge.Percent = int(rec.Ratio / 100)
			ratioGauge.Label = fmt.Sprintf("%d.%02d%%", rec.Ratio/100, rec.Ratio%100)

			tpHistory = appendBounded(tpHistory, float64(rec.ThroughputAvg), plotHistory)
			latHistory = appendBounded(latHistory, float64(rec.LatencyAvg), plotHistory)
			if len(tpHistory) >= 2 {
				plot.Data = [][]float64{tpHistory, latHistory}
			}

			termui.Render(grid)
		}
	}
}

func appendBounded(xs []float64, v float64, max int) []float64 {
	xs = append(xs, v)
	if len(xs) > max {
		xs = xs[len(xs)-max:]
	}
	return xs
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
