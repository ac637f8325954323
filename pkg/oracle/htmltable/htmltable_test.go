package htmltable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `<html><body>
<h1>fio benchmark sweep</h1>
<table>
<tr><th>io_depth</th><th>numjobs</th><th>split_pct</th><th>iops</th></tr>
<tr><td>16</td><td>1</td><td>100</td><td>900000</td></tr>
<tr><td>16</td><td>1</td><td>0</td><td>300000</td></tr>
<tr><td>malformed</td><td>row</td><td>is</td><td>skipped</td></tr>
</table>
</body></html>`

func TestLoadParsesBenchmarkRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bw.html")
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(900000), table.BW(16, 1, 100))
	assert.Equal(t, uint64(300000), table.BW(16, 1, 0))
	assert.Zero(t, table.BW(99, 1, 0), "unknown rows read as zero")
}

func TestLoadFailsWhenNoRowsParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, os.WriteFile(path, []byte("<html><body><p>no table here</p></body></html>"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.html"))
	assert.Error(t, err)
}
