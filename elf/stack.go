package elf

import (
	"errors"

	"github.com/basinvm/basin/core/rv64"
)

// Stack layout constants. The guard sits at the very top of RAM; the argv
// block occupies one page below it and the stack grows down from the
// block's base.
const (
	// StackGuard is the reserved region at the top of memory.
	StackGuard = rv64.PageSize

	// ArgvRegion is the page holding argc, the pointer array, and the
	// argument strings.
	ArgvRegion = rv64.PageSize
)

var ErrArgvTooLarge = errors.New("elf: argv does not fit its region")

// StackLayout reports where SetupStack placed things.
type StackLayout struct {
	// SP is the initial stack pointer: the base of the argv block.
	SP uint64

	// Argc is the argument count.
	Argc uint64

	// ArgvPtr is the guest address of the pointer array.
	ArgvPtr uint64
}

// SetupStack writes the argv block and returns the initial stack state.
// Layout, from the block base up: argc as a u64, argc+1 pointer slots (the
// last one zero), then the NUL-terminated strings.
func SetupStack(mem *rv64.Memory, argv []string) (StackLayout, error) {
	base := mem.Top() - StackGuard - ArgvRegion

	// argc + pointer slots + strings must fit the region.
	need := 8 + uint64(len(argv)+1)*8
	for _, a := range argv {
		need += uint64(len(a)) + 1
	}
	if need > ArgvRegion {
		return StackLayout{}, ErrArgvTooLarge
	}

	if err := mem.StoreU64(base, uint64(len(argv))); err != nil {
		return StackLayout{}, err
	}

	ptrs := base + 8
	strs := ptrs + uint64(len(argv)+1)*8
	for i, a := range argv {
		if err := mem.StoreU64(ptrs+uint64(i)*8, strs); err != nil {
			return StackLayout{}, err
		}
		if err := mem.WriteRange(strs, append([]byte(a), 0)); err != nil {
			return StackLayout{}, err
		}
		strs += uint64(len(a)) + 1
	}
	if err := mem.StoreU64(ptrs+uint64(len(argv))*8, 0); err != nil {
		return StackLayout{}, err
	}

	return StackLayout{
		SP:      base,
		Argc:    uint64(len(argv)),
		ArgvPtr: ptrs,
	}, nil
}
