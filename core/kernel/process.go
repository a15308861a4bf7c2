package kernel

import "github.com/basinvm/basin/metrics"

// MaxSpawnArgs bounds the argv count a spawn call may pass.
const MaxSpawnArgs = 64

// sysSpawn implements syscall 10. There is a single VM per process, so
// spawn does not start a second hart: it validates the request, records the
// process in the handle table, and returns a pid handle the guest can wait
// on. The executable path must name a file the guest has already opened;
// anything else is not_found.
func (k *Kernel) sysSpawn(execPtr, argsPtr, argc uint64) Result {
	path, ok := k.readPath(execPtr)
	if !ok {
		return Err(ErrInvalidArgument)
	}
	if argc > MaxSpawnArgs {
		return Err(ErrInvalidArgument)
	}
	// Each argv slot is a u64 pointer; the whole array must be readable.
	if argc > 0 && !k.mem.InRange(argsPtr, argc*8) {
		return Err(ErrInvalidArgument)
	}

	known := false
	for i := range k.handles {
		e := &k.handles[i]
		if e.state == handleOpen && e.kind == KindFile && e.path == path {
			known = true
			break
		}
	}
	if !known {
		return Err(ErrNotFound)
	}

	slot := k.claimHandleSlot()
	if slot == nil {
		return Err(ErrOutOfMemory)
	}
	*slot = handleEntry{
		handle: k.allocHandle(),
		kind:   KindProcess,
		state:  handleOpen,
		path:   path,
		argc:   argc,
	}
	metrics.HandlesAllocated.Inc()
	k.log.Debug("spawned", "path", path, "pid", uint64(slot.handle), "argc", argc)
	return Ok(uint64(slot.handle))
}

// sysExit implements syscall 11. The VM halts; PC is not advanced and the
// status becomes the authoritative result of the run.
func (k *Kernel) sysExit(status uint64) Result {
	k.halted = true
	k.exitStatus = status
	k.log.Info("guest exit", "status", status)
	return Ok(0)
}

// sysWait implements syscall 13. With no second hart a spawned process
// never runs, so wait reports the recorded status: zero until an exit has
// been attributed to it.
func (k *Kernel) sysWait(pid uint64) Result {
	e := k.findHandle(Handle(pid), KindProcess)
	if e == nil {
		return Err(ErrNotFound)
	}
	return Ok(e.exitStatus)
}
