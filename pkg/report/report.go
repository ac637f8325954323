// Package report exports a simulation run's telemetry and dispatch
// history to an .xlsx workbook for offline analysis.
package report

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/cyw0ng95/netcas-splitter/pkg/mode"
)

// Sample is one recorded tick, mirroring splitter.ObservabilityRecord
// plus a timestamp and dispatch totals at the time it was taken.
type Sample struct {
	TimeMS                     uint64
	ThroughputAvg, LatencyAvg  uint64
	LatencyBaseline            uint64
	ThroughputDropPermil       uint64
	LatencyIncreasePermil      uint64
	Mode                       mode.State
	Ratio                      uint64
	CacheServed, BackendServed uint64
}

// Transition records one mode change.
type Transition struct {
	TimeMS   uint64
	From, To mode.State
}

// Writer accumulates samples and transitions for one run and exports
// them as an xlsx workbook with one sheet per concern.
type Writer struct {
	samples     []Sample
	transitions []Transition
}

// NewWriter creates an empty report Writer.
func NewWriter() *Writer { return &Writer{} }

// AddSample appends one telemetry sample.
func (w *Writer) AddSample(s Sample) { w.samples = append(w.samples, s) }

// AddTransition appends one mode transition.
func (w *Writer) AddTransition(t Transition) { w.transitions = append(w.transitions, t) }

// Save writes the accumulated run to path as an xlsx workbook with a
// "Telemetry" sheet, a "Transitions" sheet, and a "DispatchSummary" sheet.
func (w *Writer) Save(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	telemetrySheet := "Telemetry"
	f.SetSheetName("Sheet1", telemetrySheet)
	header := []string{"time_ms", "tp_avg", "lat_avg", "lat_baseline", "tp_drop_permil", "lat_inc_permil", "mode", "ratio", "cache_served", "backend_served"}
	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(telemetrySheet, cell, h)
	}
	for i, s := range w.samples {
		row := i + 2
		values := []interface{}{s.TimeMS, s.ThroughputAvg, s.LatencyAvg, s.LatencyBaseline, s.ThroughputDropPermil, s.LatencyIncreasePermil, s.Mode.String(), s.Ratio, s.CacheServed, s.BackendServed}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(telemetrySheet, cell, v)
		}
	}

	transitionsSheet := "Transitions"
	f.NewSheet(transitionsSheet)
	f.SetCellValue(transitionsSheet, "A1", "time_ms")
	f.SetCellValue(transitionsSheet, "B1", "from")
	f.SetCellValue(transitionsSheet, "C1", "to")
	for i, t := range w.transitions {
		row := i + 2
		f.SetCellValue(transitionsSheet, cellName("A", row), t.TimeMS)
		f.SetCellValue(transitionsSheet, cellName("B", row), t.From.String())
		f.SetCellValue(transitionsSheet, cellName("C", row), t.To.String())
	}

	summarySheet := "DispatchSummary"
	f.NewSheet(summarySheet)
	var lastCache, lastBackend uint64
	if len(w.samples) > 0 {
		last := w.samples[len(w.samples)-1]
		lastCache, lastBackend = last.CacheServed, last.BackendServed
	}
	f.SetCellValue(summarySheet, "A1", "cache_served")
	f.SetCellValue(summarySheet, "B1", "backend_served")
	f.SetCellValue(summarySheet, "A2", lastCache)
	f.SetCellValue(summarySheet, "B2", lastBackend)

	return f.SaveAs(path)
}

func cellName(col string, row int) string {
	return col + strconv.Itoa(row)
}
