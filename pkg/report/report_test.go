package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cyw0ng95/netcas-splitter/pkg/mode"
)

func TestSaveWritesAllThreeSheets(t *testing.T) {
	w := NewWriter()
	w.AddSample(Sample{TimeMS: 100, ThroughputAvg: 500, LatencyAvg: 100, Mode: mode.Warmup, Ratio: 7500, CacheServed: 15, BackendServed: 5})
	w.AddTransition(Transition{TimeMS: 100, From: mode.Idle, To: mode.Warmup})

	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Telemetry", "Transitions", "DispatchSummary"}, f.GetSheetList())

	got, err := f.GetCellValue("Telemetry", "B2")
	require.NoError(t, err)
	assert.Equal(t, "500", got)

	got, err = f.GetCellValue("Transitions", "C2")
	require.NoError(t, err)
	assert.Equal(t, "WARMUP", got)

	got, err = f.GetCellValue("DispatchSummary", "A2")
	require.NoError(t, err)
	assert.Equal(t, "15", got)
}

func TestSaveEmptyRunStillProducesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewWriter().Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 3)
}
