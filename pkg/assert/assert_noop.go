//go:build !CONFIG_SPLITTER_ASSERTIONS

package assert

const enabled = false
