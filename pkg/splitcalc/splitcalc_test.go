package splitcalc

import (
	"testing"

	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
	"github.com/stretchr/testify/assert"
)

func TestFormulaClampsAndHandlesZeroDenominator(t *testing.T) {
	assert.Equal(t, Scale, Formula(900000, 0))
	assert.Equal(t, uint64(0), Formula(0, 0))
	assert.Equal(t, uint64(7500), Formula(900000, 300000))
}

func TestOptimalSplitNoCongestionUsesRawEndpoints(t *testing.T) {
	table := oracle.NewStaticTable()
	table.Set(16, 1, 100, 900000)
	table.Set(16, 1, 0, 300000)

	ratio := OptimalSplit(table, 16, 1, 0, 100, 700)
	assert.Equal(t, uint64(7500), ratio)
}

func TestOptimalSplitDeratesBackendUnderCongestion(t *testing.T) {
	table := oracle.NewStaticTable()
	table.Set(16, 1, 100, 900000)
	table.Set(16, 1, 0, 300000)

	baseline := OptimalSplit(table, 16, 1, 0, 100, 700)
	congested := OptimalSplit(table, 16, 1, 200, 800, 700)

	// Derating B lowers the denominator, so the cache share must rise.
	assert.Greater(t, congested, baseline)
}

// TestFormulaPatternSymmetry checks the splitter's pattern-symmetry
// law: swapping the two endpoints complements the ratio, i.e.
// Formula(x, y) + Formula(y, x) == Scale, up to the single unit of
// rounding integer division can introduce on either side.
func TestFormulaPatternSymmetry(t *testing.T) {
	cases := [][2]uint64{
		{900000, 300000},
		{300000, 900000},
		{1, 1},
		{1, 2},
		{7, 3},
		{123456, 654321},
		{0, 500},
		{500, 0},
	}

	for _, c := range cases {
		x, y := c[0], c[1]
		sum := Formula(x, y) + Formula(y, x)
		diff := int64(sum) - int64(Scale)
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqualf(t, diff, int64(1), "Formula(%d,%d)=%d Formula(%d,%d)=%d sum=%d want Scale=%d +-1",
			x, y, Formula(x, y), y, x, Formula(y, x), sum, Scale)
	}
}

func TestOptimalSplitAtOrBelowThresholdIsNotCongested(t *testing.T) {
	table := oracle.NewStaticTable()
	table.Set(16, 1, 100, 900000)
	table.Set(16, 1, 0, 300000)

	atThreshold := OptimalSplit(table, 16, 1, 500, 700, 700)
	assert.Equal(t, uint64(7500), atThreshold)
}
