//go:build libxml2

package htmltable

import (
	"bytes"
	"fmt"

	"github.com/lestrrat-go/libxml2/parser"
)

// checkWellFormed validates raw as parseable markup via libxml2 before
// goquery ever touches it, so a malformed benchmark report fails with a
// clear error instead of silently yielding an empty table.
func checkWellFormed(raw []byte) error {
	p := parser.New()
	doc, err := p.ParseReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("libxml2 parse failed: %w", err)
	}
	defer doc.Free()
	return nil
}
