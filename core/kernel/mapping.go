package kernel

import (
	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/metrics"
)

// Mapping permission flags.
const (
	MapRead  uint64 = 1 << 0
	MapWrite uint64 = 1 << 1
	MapExec  uint64 = 1 << 2

	mapFlagsMask = MapRead | MapWrite | MapExec
)

// MappingState is the lifecycle of a mapping-table slot.
type MappingState int

const (
	MappingFree MappingState = iota
	MappingAllocated
	MappingProtected
)

// String returns the state name.
func (s MappingState) String() string {
	switch s {
	case MappingFree:
		return "free"
	case MappingAllocated:
		return "allocated"
	case MappingProtected:
		return "protected"
	default:
		return "unknown"
	}
}

// MappingEntry is one slot of the mapping table. The kernel owns it
// exclusively; userspace only ever sees its handle and base address.
type MappingEntry struct {
	Handle Handle
	Base   uint64
	Length uint64
	Flags  uint64
	State  MappingState
}

// live reports whether the entry occupies address space. Protected entries
// still own their range for overlap purposes.
func (e *MappingEntry) live() bool {
	return e.State == MappingAllocated || e.State == MappingProtected
}

// overlapsLive reports whether [addr, addr+size) intersects any live
// mapping.
func (k *Kernel) overlapsLive(addr, size uint64) bool {
	for i := range k.mappings {
		e := &k.mappings[i]
		if !e.live() {
			continue
		}
		if !(addr+size <= e.Base || e.Base+e.Length <= addr) {
			return true
		}
	}
	return false
}

// lowestFreeBase picks the lowest page-aligned base where a size-byte
// mapping fits without overlapping any live entry. Candidates are the
// bottom of RAM and the end of every live mapping, which covers every
// possible lowest placement; ties cannot arise because candidates are
// distinct addresses.
func (k *Kernel) lowestFreeBase(size uint64) (uint64, bool) {
	best := uint64(0)
	found := false
	try := func(cand uint64) {
		if cand+size > k.mem.Top() {
			return
		}
		if k.overlapsLive(cand, size) {
			return
		}
		if !found || cand < best {
			best, found = cand, true
		}
	}
	try(k.mem.Base())
	for i := range k.mappings {
		e := &k.mappings[i]
		if e.live() {
			try(e.Base + e.Length)
		}
	}
	return best, found
}

// mappingsActive counts live entries, for the gauge.
func (k *Kernel) mappingsActive() int64 {
	n := int64(0)
	for i := range k.mappings {
		if k.mappings[i].live() {
			n++
		}
	}
	return n
}

// sysMap implements syscall 14. addr 0 asks the kernel to choose the
// lowest free base; a non-zero addr claims exactly that range.
func (k *Kernel) sysMap(addr, size, flags uint64) Result {
	if size == 0 || size%rv64.PageSize != 0 {
		return Err(ErrInvalidArgument)
	}
	if flags == 0 || flags&^mapFlagsMask != 0 {
		return Err(ErrInvalidArgument)
	}

	if addr == 0 {
		base, ok := k.lowestFreeBase(size)
		if !ok {
			return Err(ErrOutOfMemory)
		}
		addr = base
	} else {
		if addr < k.mem.Base() || addr+size > k.mem.Top() {
			return Err(ErrInvalidArgument)
		}
		// Overlap is reported before alignment so that a request landing
		// inside a live mapping names the real conflict.
		if k.overlapsLive(addr, size) {
			return Err(ErrOverlap)
		}
		if addr%rv64.PageSize != 0 {
			return Err(ErrInvalidArgument)
		}
	}

	var slot *MappingEntry
	for i := range k.mappings {
		if k.mappings[i].State == MappingFree {
			slot = &k.mappings[i]
			break
		}
	}
	if slot == nil {
		return Err(ErrTableFull)
	}

	*slot = MappingEntry{
		Handle: k.allocHandle(),
		Base:   addr,
		Length: size,
		Flags:  flags,
		State:  MappingAllocated,
	}
	metrics.HandlesAllocated.Inc()
	metrics.MappingsActive.Set(k.mappingsActive())
	k.log.Debug("mapped", "base", addr, "size", size, "flags", flags)
	return Ok(addr)
}

// sysUnmap implements syscall 15. Only an exact (base, length) match of an
// allocated entry unmaps; partial unmap is an error. The released bytes are
// not zeroed -- a fresh allocation from the free list returns whatever the
// page last held.
func (k *Kernel) sysUnmap(addr, size uint64) Result {
	for i := range k.mappings {
		e := &k.mappings[i]
		if e.State == MappingAllocated && e.Base == addr && e.Length == size {
			*e = MappingEntry{}
			metrics.MappingsActive.Set(k.mappingsActive())
			k.log.Debug("unmapped", "base", addr, "size", size)
			return Ok(0)
		}
	}
	return Err(ErrNotFound)
}

// sysProtect implements syscall 16. The range must cover an allocated or
// protected entry exactly; the entry's flags are replaced and the entry
// moves to (or stays in) the protected state.
func (k *Kernel) sysProtect(addr, size, flags uint64) Result {
	if flags&^mapFlagsMask != 0 {
		return Err(ErrInvalidArgument)
	}
	for i := range k.mappings {
		e := &k.mappings[i]
		if e.live() && e.Base == addr && e.Length == size {
			e.Flags = flags
			e.State = MappingProtected
			k.log.Debug("protected", "base", addr, "size", size, "flags", flags)
			return Ok(0)
		}
	}
	return Err(ErrNotFound)
}
