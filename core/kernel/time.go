package kernel

// Clock IDs accepted by clock_gettime.
const (
	ClockRealtime  uint64 = 0
	ClockMonotonic uint64 = 1
)

// nsPerSec splits a nanosecond count into the two-word timespec the guest
// ABI expects: seconds at out_ptr, nanoseconds at out_ptr+8.
const nsPerSec = 1_000_000_000

// sysClockGettime implements syscall 24. The monotonic clock derives one
// nanosecond per retired instruction, which keeps runs reproducible; the
// realtime clock adds the boot timestamp the host captured at start.
func (k *Kernel) sysClockGettime(clockID, outPtr uint64) Result {
	var ns uint64
	switch clockID {
	case ClockMonotonic:
		ns = k.nowNanos()
	case ClockRealtime:
		ns = k.bootRealtime + k.nowNanos()
	default:
		return Err(ErrInvalidArgument)
	}

	if !k.mem.InRange(outPtr, 16) {
		return Err(ErrInvalidArgument)
	}
	if err := k.mem.StoreU64(outPtr, ns/nsPerSec); err != nil {
		return Err(ErrInvalidArgument)
	}
	if err := k.mem.StoreU64(outPtr+8, ns%nsPerSec); err != nil {
		return Err(ErrInvalidArgument)
	}
	return Ok(0)
}

// sysSleepUntil implements syscall 25. Sleeping is synchronous in this
// version: the target is validated and recorded, and the call returns
// immediately without pausing execution.
func (k *Kernel) sysSleepUntil(timestampNS uint64) Result {
	if timestampNS >= 1<<63 {
		return Err(ErrInvalidArgument)
	}
	k.wakeDeadline = timestampNS
	return Ok(0)
}
