// Package oracle defines the bandwidth lookup capability the split
// calculator consults, and a deterministic in-memory implementation
// tests and simulation harnesses can supply instead of a real table.
package oracle

import "fmt"

// Oracle answers bw(io_depth, numjobs, split_pct) -> iops for a fixed
// (io_depth, numjobs) pair. Only the split_pct endpoints 0 and 100 are
// consulted by the split calculator. Implementations are assumed
// deterministic; a returned 0 for the 100 endpoint signals "no
// information" to callers.
type Oracle interface {
	BW(ioDepth, numjobs, splitPct uint64) uint64
}

type key struct {
	ioDepth, numjobs, splitPct uint64
}

// StaticTable is an in-memory Oracle backed by a fixed map, used by
// tests and by simulation runs that have no benchmark report
// configured.
type StaticTable struct {
	entries map[key]uint64
}

// NewStaticTable creates an empty StaticTable; rows are added with Set.
func NewStaticTable() *StaticTable {
	return &StaticTable{entries: make(map[key]uint64)}
}

// Set records the expected IOPS for one (io_depth, numjobs, split_pct) row.
func (t *StaticTable) Set(ioDepth, numjobs, splitPct, iops uint64) {
	t.entries[key{ioDepth, numjobs, splitPct}] = iops
}

// BW implements Oracle.
func (t *StaticTable) BW(ioDepth, numjobs, splitPct uint64) uint64 {
	return t.entries[key{ioDepth, numjobs, splitPct}]
}

// String renders the table for diagnostics.
func (t *StaticTable) String() string {
	return fmt.Sprintf("StaticTable{%d rows}", len(t.entries))
}
