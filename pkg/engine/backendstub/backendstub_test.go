package backendstub

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestOnEmptyStoreIsZero(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "backend.db"))
	require.NoError(t, err)
	defer s.Close()

	tp, lat, iops, err := s.Latest()
	require.NoError(t, err)
	assert.Zero(t, tp)
	assert.Zero(t, lat)
	assert.Zero(t, iops)
}

func TestMeasurePerformanceReplaysNewestSample(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "backend.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Record(500, 100, 5000))
	require.NoError(t, s.Record(600, 120, 6000))

	tp, lat, iops := s.MeasurePerformance(100)
	assert.Equal(t, uint64(600), tp)
	assert.Equal(t, uint64(120), lat)
	assert.Equal(t, uint64(6000), iops)
}
