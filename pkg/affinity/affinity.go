// Package affinity pins the splitter's tick goroutine to a single CPU
// core and raises its scheduling and I/O priority, so the periodic
// telemetry/mode/split recomputation is not starved by unrelated load
// sharing the host. All of it is best-effort: callers log failures
// (typically missing CAP_SYS_NICE) and continue unpinned.
package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

const (
	ioprioClassShift = 13
	ioprioClassRT    = 1
	ioprioPrioValue  = 0
	ioprioWhoProcess = 1
)

// PinCurrentThread locks the calling goroutine to its current OS thread
// and binds that thread to cpu. It must be called from the goroutine
// that will go on to do the pinned work; LockOSThread is never undone,
// since the tick goroutine is expected to keep ticking for the process
// lifetime.
func PinCurrentThread(cpu int) error {
	numCPU := runtime.NumCPU()
	if numCPU <= 1 {
		return nil // no point pinning on single-core systems
	}
	if cpu < 0 {
		cpu = 0
	}
	cpu %= numCPU

	runtime.LockOSThread()

	var cpuSet unix.CPUSet
	cpuSet.Zero()
	cpuSet.Set(cpu)

	tid := unix.Gettid()
	return unix.SchedSetaffinity(tid, &cpuSet)
}

// SetRealtimeIOPriority raises the current thread's I/O priority to the
// real-time class, so a cache engine's backing store I/O cannot starve
// the tick's own sampling and bookkeeping.
func SetRealtimeIOPriority() error {
	ioprio := (ioprioClassRT << ioprioClassShift) | ioprioPrioValue
	_, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, 0, uintptr(ioprio))
	if errno != 0 {
		return errno
	}
	return nil
}

// RaiseProcessPriority lowers the current process's nice value (raising
// its scheduling priority) so the hot path is not starved by
// co-located work.
func RaiseProcessPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -10)
}
