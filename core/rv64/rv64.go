// Package rv64 implements a deterministic single-threaded RV64I interpreter:
// a 32-register file, a bounded linear memory, and an instruction
// decoder/executor. The package knows nothing about the kernel sitting above
// it; an ECALL surfaces as an event for the embedding machine to dispatch.
package rv64

// Memory layout constants.
const (
	// PageSize is the unit of mapping alignment and granularity.
	PageSize = 4096

	// DefaultMemorySize is the guest RAM size used when the host does not
	// override it.
	DefaultMemorySize = 64 << 20
)

// Register ABI indices used throughout the machine.
const (
	RegZero = 0  // x0, hardwired zero
	RegRA   = 1  // x1, return address
	RegSP   = 2  // x2, stack pointer
	RegFP   = 8  // x8, frame pointer
	RegA0   = 10 // x10, first argument / return value
	RegA1   = 11
	RegA2   = 12
	RegA3   = 13
	RegA7   = 17 // x17, syscall function ID
)

// Config controls the compatibility shims of the interpreter. The zero value
// is the permissive profile expected by the current guest toolchain.
type Config struct {
	// StrictAlign faults every naturally misaligned 32/64-bit access
	// instead of auto-truncating the address.
	StrictAlign bool

	// StrictDecode faults the compiler-quirk opcodes instead of taking
	// their graceful decode paths.
	StrictDecode bool

	// NoFramePointerFallback disables the x8->x2 base substitution for
	// loads and stores whose x8-based effective address is out of range.
	NoFramePointerFallback bool

	// Tracer, when non-nil, observes every retired instruction and fault.
	Tracer Tracer
}

// Event tells the embedding machine what a Step produced beyond ordinary
// register/memory effects.
type Event int

const (
	// EventNone means the instruction retired with no trap.
	EventNone Event = iota

	// EventEcall means the instruction was an ECALL. PC still points at
	// the ECALL; the dispatcher decides whether and how far to advance.
	EventEcall
)

// CPU is the RV64I hart state. Regs is exported for harness access; x0 is
// kept zero by construction because no execution path ever writes it.
type CPU struct {
	Regs [32]uint64
	PC   uint64
	Mem  *Memory

	cfg   Config
	fault *Fault
}

// NewCPU creates a hart attached to mem with the given compatibility
// configuration.
func NewCPU(mem *Memory, cfg Config) *CPU {
	mem.strictAlign = cfg.StrictAlign
	return &CPU{Mem: mem, cfg: cfg}
}

// Fault returns the fault that stopped the hart, or nil.
func (c *CPU) Fault() *Fault {
	return c.fault
}

// readReg returns the value of x[idx]. Decoded register fields are 5 bits
// wide, so idx is always in range here.
func (c *CPU) readReg(idx uint32) uint64 {
	return c.Regs[idx]
}

// writeReg sets x[idx], discarding writes to x0.
func (c *CPU) writeReg(idx uint32, v uint64) {
	if idx != RegZero {
		c.Regs[idx] = v
	}
}

// RegRead is the host introspection accessor: x0 reads as zero and an index
// above 31 is reported as an invalid-register fault value.
func (c *CPU) RegRead(idx int) (uint64, error) {
	if idx < 0 || idx > 31 {
		return 0, ErrInvalidRegister
	}
	return c.Regs[idx], nil
}

// RegWrite is the host accessor for seeding registers. Writes to x0 are
// discarded; an out-of-range index is an error.
func (c *CPU) RegWrite(idx int, v uint64) error {
	if idx < 0 || idx > 31 {
		return ErrInvalidRegister
	}
	if idx != RegZero {
		c.Regs[idx] = v
	}
	return nil
}

// Step fetches, decodes and executes a single instruction. On a fault the
// CPU records it, leaves all register and memory state untouched for
// post-mortem inspection, and returns the fault as the error.
func (c *CPU) Step() (Event, error) {
	insn, err := c.Mem.LoadU32(c.PC)
	if err != nil {
		return EventNone, c.failAt(FaultMemoryOutOfRange, c.PC, 0)
	}
	if c.cfg.Tracer != nil {
		c.cfg.Tracer.OnStep(c.PC, insn)
	}
	ev, err := c.execute(insn)
	if err != nil {
		return EventNone, err
	}
	return ev, nil
}

// failAt records a fault and returns it. The hart does not attempt recovery;
// the embedding machine transitions to the errored state.
func (c *CPU) failAt(kind FaultKind, addr uint64, insn uint32) *Fault {
	f := &Fault{Kind: kind, PC: c.PC, Insn: insn, Addr: addr}
	c.fault = f
	if c.cfg.Tracer != nil {
		c.cfg.Tracer.OnFault(f)
	}
	return f
}
