package rv64

import (
	"errors"
	"fmt"
)

// Sentinel errors for the host-facing accessors.
var (
	ErrInvalidRegister = errors.New("rv64: invalid register index")
	ErrMisaligned      = errors.New("rv64: misaligned address")
	ErrOutOfRange      = errors.New("rv64: memory access out of range")
)

// FaultKind classifies an internal VM fault. A fault transitions the machine
// to the errored state; it is distinct from a syscall error, which is
// reported to the guest via a0.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultInvalidRegister
	FaultMisalignedAddress
	FaultMemoryOutOfRange
	FaultIllegalInstruction
	FaultDecodeFailure
)

// String returns the taxonomy name of the fault kind.
func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultInvalidRegister:
		return "invalid_register"
	case FaultMisalignedAddress:
		return "misaligned_address"
	case FaultMemoryOutOfRange:
		return "memory_out_of_range"
	case FaultIllegalInstruction:
		return "illegal_instruction"
	case FaultDecodeFailure:
		return "decode_failure"
	default:
		return fmt.Sprintf("fault(%d)", int(k))
	}
}

// Fault captures the hart state at the point of failure. Register and memory
// contents are preserved for post-mortem inspection.
type Fault struct {
	Kind FaultKind
	PC   uint64
	Insn uint32
	Addr uint64
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Insn != 0 {
		return fmt.Sprintf("rv64: %s at pc=%#x insn=%#08x (%s) addr=%#x",
			f.Kind, f.PC, f.Insn, Mnemonic(f.Insn), f.Addr)
	}
	return fmt.Sprintf("rv64: %s at pc=%#x addr=%#x", f.Kind, f.PC, f.Addr)
}
