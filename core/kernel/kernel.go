// Package kernel implements Basin, the monolithic guest kernel: a typed,
// non-POSIX syscall surface over three statically allocated tables. Every
// handler is a fail-fast total function of its inputs and the current
// kernel state; preconditions are asserted before any mutation, so a failed
// syscall never leaves a table half-changed.
package kernel

import (
	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/log"
	"github.com/basinvm/basin/metrics"
)

// Table capacities, fixed at init. Dynamic resizing is disallowed:
// exhaustion answers table_full (or the operation's documented resource
// error), which keeps execution deterministic.
const (
	HandleTableSize  = 64
	MappingTableSize = 256
	ChannelTableSize = 64
)

// Syscall function IDs (a7). IDs below SysSpawn belong to the SBI layer.
const (
	SysSpawn         uint64 = 10
	SysExit          uint64 = 11
	SysYield         uint64 = 12
	SysWait          uint64 = 13
	SysMap           uint64 = 14
	SysUnmap         uint64 = 15
	SysProtect       uint64 = 16
	SysChannelCreate uint64 = 17
	SysChannelSend   uint64 = 18
	SysChannelRecv   uint64 = 19
	SysOpen          uint64 = 20
	SysRead          uint64 = 21
	SysWrite         uint64 = 22
	SysClose         uint64 = 23
	SysClockGettime  uint64 = 24
	SysSleepUntil    uint64 = 25
	SysSysinfo       uint64 = 26
)

// Kernel holds the Basin state machine. All tables are pre-allocated; a
// handle's validity is decided purely by linear lookup, which is fine
// because every table is small and bounded.
type Kernel struct {
	mem *rv64.Memory
	log *log.Logger

	handles  [HandleTableSize]handleEntry
	mappings [MappingTableSize]MappingEntry
	channels [ChannelTableSize]channelEntry

	nextHandle uint64

	halted     bool
	exitStatus uint64

	// nowNanos is the deterministic monotonic clock, derived from the
	// retired-instruction counter by the embedding machine.
	nowNanos func() uint64

	// bootRealtime anchors CLOCK_REALTIME, captured once at vm_start.
	bootRealtime uint64

	// imageDigest identifies the loaded program in sysinfo.
	imageDigest uint64

	// wakeDeadline records the latest sleep_until target. Sleeping is
	// synchronous in this version; the intent is recorded, not awaited.
	wakeDeadline uint64
}

// New creates a kernel over the given guest memory. now supplies monotonic
// nanoseconds; nil selects a clock that is permanently zero.
func New(mem *rv64.Memory, now func() uint64) *Kernel {
	if now == nil {
		now = func() uint64 { return 0 }
	}
	return &Kernel{
		mem:        mem,
		log:        log.Default().Module("kernel"),
		nextHandle: 1,
		nowNanos:   now,
	}
}

// SetLogger replaces the kernel's logger.
func (k *Kernel) SetLogger(l *log.Logger) {
	if l != nil {
		k.log = l
	}
}

// SetBootRealtime anchors CLOCK_REALTIME at the given nanosecond timestamp.
func (k *Kernel) SetBootRealtime(ns uint64) {
	k.bootRealtime = ns
}

// SetImageDigest records the loaded program's identity for sysinfo.
func (k *Kernel) SetImageDigest(prefix uint64) {
	k.imageDigest = prefix
}

// Halted reports whether the guest called exit.
func (k *Kernel) Halted() bool {
	return k.halted
}

// ExitStatus returns the status passed to exit. Only meaningful once
// Halted reports true.
func (k *Kernel) ExitStatus() uint64 {
	return k.exitStatus
}

// WakeDeadline returns the latest sleep_until target, or 0.
func (k *Kernel) WakeDeadline() uint64 {
	return k.wakeDeadline
}

// HandleSyscall dispatches one Basin syscall. The caller encodes the
// result into a0 and owns the PC advance.
func (k *Kernel) HandleSyscall(fn, a0, a1, a2, a3 uint64) Result {
	metrics.SyscallsHandled.Inc()

	var res Result
	switch fn {
	case SysSpawn:
		res = k.sysSpawn(a0, a1, a2)
	case SysExit:
		res = k.sysExit(a0)
	case SysYield:
		res = Ok(0)
	case SysWait:
		res = k.sysWait(a0)
	case SysMap:
		res = k.sysMap(a0, a1, a2)
	case SysUnmap:
		res = k.sysUnmap(a0, a1)
	case SysProtect:
		res = k.sysProtect(a0, a1, a2)
	case SysChannelCreate:
		res = k.sysChannelCreate()
	case SysChannelSend:
		res = k.sysChannelSend(a0, a1, a2)
	case SysChannelRecv:
		res = k.sysChannelRecv(a0, a1, a2)
	case SysOpen:
		res = k.sysOpen(a0, a1)
	case SysRead:
		res = k.sysRead(a0, a1, a2)
	case SysWrite:
		res = k.sysWrite(a0, a1, a2)
	case SysClose:
		res = k.sysClose(a0)
	case SysClockGettime:
		res = k.sysClockGettime(a0, a1)
	case SysSleepUntil:
		res = k.sysSleepUntil(a0)
	case SysSysinfo:
		res = k.sysSysinfo(a0)
	default:
		res = Err(ErrUnknownSyscall)
	}

	if !res.IsOK() {
		metrics.SyscallErrors.Inc()
		k.log.Debug("syscall failed", "fn", fn, "kind", res.Kind().String())
	}
	return res
}

// findHandle returns the open handle-table slot for h, or nil. The zero
// sentinel is rejected before any table walk.
func (k *Kernel) findHandle(h Handle, kind HandleKind) *handleEntry {
	if h == InvalidHandle {
		return nil
	}
	for i := range k.handles {
		e := &k.handles[i]
		if e.state == handleOpen && e.handle == h && e.kind == kind {
			return e
		}
	}
	return nil
}

// claimHandleSlot returns a free handle-table slot, or nil when the table
// is exhausted.
func (k *Kernel) claimHandleSlot() *handleEntry {
	for i := range k.handles {
		if k.handles[i].state == handleFree {
			return &k.handles[i]
		}
	}
	return nil
}
