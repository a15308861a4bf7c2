package kernel

import "github.com/basinvm/basin/metrics"

// MaxPathLen bounds a guest-supplied path string.
const MaxPathLen = 4096

// readPath copies a NUL-terminated path out of guest memory. It fails on
// an unreadable pointer, an empty path, or a path that never terminates
// within MaxPathLen bytes.
func (k *Kernel) readPath(ptr uint64) (string, bool) {
	var buf []byte
	for i := uint64(0); i < MaxPathLen; i++ {
		b, err := k.mem.LoadU8(ptr + i)
		if err != nil {
			return "", false
		}
		if b == 0 {
			if len(buf) == 0 {
				return "", false
			}
			return string(buf), true
		}
		buf = append(buf, b)
	}
	return "", false
}

// filesOpen counts open file handles, for the gauge.
func (k *Kernel) filesOpen() int64 {
	n := int64(0)
	for i := range k.handles {
		e := &k.handles[i]
		if e.state == handleOpen && e.kind == KindFile {
			n++
		}
	}
	return n
}

// sysOpen implements syscall 20. Files are in-process handles with no disk
// backing: the path is recorded, content is not modelled.
func (k *Kernel) sysOpen(pathPtr, flags uint64) Result {
	path, ok := k.readPath(pathPtr)
	if !ok {
		return Err(ErrInvalidArgument)
	}
	slot := k.claimHandleSlot()
	if slot == nil {
		return Err(ErrOutOfMemory)
	}
	*slot = handleEntry{
		handle:    k.allocHandle(),
		kind:      KindFile,
		state:     handleOpen,
		path:      path,
		openFlags: flags,
	}
	metrics.HandlesAllocated.Inc()
	metrics.FilesOpen.Set(k.filesOpen())
	k.log.Debug("opened", "path", path, "handle", uint64(slot.handle))
	return Ok(uint64(slot.handle))
}

// sysRead implements syscall 21. Content is not modelled; the destination
// range is validated in full, zero-filled, and reported as read. The whole
// range is checked before the first byte is written.
func (k *Kernel) sysRead(h, buf, n uint64) Result {
	e := k.findHandle(Handle(h), KindFile)
	if e == nil {
		return Err(ErrNotFound)
	}
	if !k.mem.InRange(buf, n) {
		return Err(ErrInvalidArgument)
	}
	if err := k.mem.Zero(buf, n); err != nil {
		return Err(ErrInvalidArgument)
	}
	return Ok(n)
}

// sysWrite implements syscall 22. The source range is validated and the
// write is reported as complete; nothing persists.
func (k *Kernel) sysWrite(h, buf, n uint64) Result {
	e := k.findHandle(Handle(h), KindFile)
	if e == nil {
		return Err(ErrNotFound)
	}
	if !k.mem.InRange(buf, n) {
		return Err(ErrInvalidArgument)
	}
	return Ok(n)
}

// sysClose implements syscall 23. It accepts file, channel, and process
// handles; the slot is freed, returning the table to its state
// before the corresponding open.
func (k *Kernel) sysClose(h uint64) Result {
	if Handle(h) == InvalidHandle {
		return Err(ErrNotFound)
	}
	if k.closeChannel(Handle(h)) {
		return Ok(0)
	}
	for i := range k.handles {
		e := &k.handles[i]
		if e.state == handleOpen && e.handle == Handle(h) {
			*e = handleEntry{}
			metrics.FilesOpen.Set(k.filesOpen())
			return Ok(0)
		}
	}
	return Err(ErrNotFound)
}
