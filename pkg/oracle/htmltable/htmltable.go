// Package htmltable loads a bandwidth lookup table from an HTML
// benchmark report (an fio-style results sheet), the concrete
// realization of the splitter's opaque bandwidth oracle. An optional
// libxml2 well-formedness pre-check is gated behind the libxml2 build
// tag.
package htmltable

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cyw0ng95/netcas-splitter/pkg/oracle"
)

var rowPattern = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s*$`)

// Load reads an HTML report at path and returns a StaticTable of
// (io_depth, numjobs, split_pct) -> iops rows parsed from its table
// cells. Each table row is expected to hold four whitespace-delimited
// integers: io_depth, numjobs, split_pct, iops.
func Load(path string) (*oracle.StaticTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bandwidth table: %w", err)
	}

	if err := checkWellFormed(raw); err != nil {
		return nil, fmt.Errorf("bandwidth table failed well-formedness check: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse bandwidth table HTML: %w", err)
	}

	table := oracle.NewStaticTable()
	rows := 0

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}
		text := strings.TrimSpace(cells.Eq(0).Text()) + " " +
			strings.TrimSpace(cells.Eq(1).Text()) + " " +
			strings.TrimSpace(cells.Eq(2).Text()) + " " +
			strings.TrimSpace(cells.Eq(3).Text())

		m := rowPattern.FindStringSubmatch(text)
		if m == nil {
			return
		}
		ioDepth, _ := strconv.ParseUint(m[1], 10, 64)
		numjobs, _ := strconv.ParseUint(m[2], 10, 64)
		splitPct, _ := strconv.ParseUint(m[3], 10, 64)
		iops, _ := strconv.ParseUint(m[4], 10, 64)
		table.Set(ioDepth, numjobs, splitPct, iops)
		rows++
	})

	if rows == 0 {
		return nil, fmt.Errorf("bandwidth table %s contained no parseable rows", path)
	}
	return table, nil
}
