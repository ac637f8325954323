package affinity

import "testing"

func TestPinCurrentThreadToleratesRestrictedEnvironments(t *testing.T) {
	// Binding the current thread to a core needs no extra privileges on
	// most hosts, but cgroup cpusets can forbid it; either outcome is
	// acceptable, panicking is not.
	if err := PinCurrentThread(0); err != nil {
		t.Logf("pinning unavailable here: %v", err)
	}
}

func TestPinCurrentThreadWrapsOutOfRangeCore(t *testing.T) {
	if err := PinCurrentThread(1 << 20); err != nil {
		t.Logf("pinning unavailable here: %v", err)
	}
}
