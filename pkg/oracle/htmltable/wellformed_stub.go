//go:build !libxml2

package htmltable

// checkWellFormed is a no-op without the libxml2 build tag; goquery's
// own parse error below still catches genuinely broken markup.
func checkWellFormed(raw []byte) error {
	return nil
}
