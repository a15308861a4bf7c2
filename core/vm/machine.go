// Package vm assembles the Basin virtual machine: the RV64 hart, the SBI
// platform layer, and the Basin kernel, glued together by the ECALL
// dispatcher and a four-state lifecycle. Everything runs on the caller's
// goroutine; execution is deterministic given the same image and inputs.
package vm

import (
	"errors"

	"github.com/basinvm/basin/core/kernel"
	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/core/sbi"
	"github.com/basinvm/basin/log"
	"github.com/basinvm/basin/metrics"
)

// State is the machine lifecycle. Terminal states do not transition.
type State int

const (
	StateInitialised State = iota
	StateRunning
	StateHalted
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInitialised:
		return "initialised"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

var (
	ErrNotRunning   = errors.New("vm: machine is not running")
	ErrNotLoadable  = errors.New("vm: machine already started, cannot load")
	ErrNotStartable = errors.New("vm: machine cannot start from this state")
)

// sbiFnLimit splits the ECALL function ID space: IDs below it belong to
// the platform layer, the rest to the Basin kernel.
const sbiFnLimit = 10

// SyscallHandler is the kernel dispatch signature. A test harness may
// override the built-in kernel with its own handler.
type SyscallHandler func(fn, a0, a1, a2, a3 uint64) kernel.Result

// Machine is a single-guest Basin VM.
type Machine struct {
	cpu    *rv64.CPU
	mem    *rv64.Memory
	kernel *kernel.Kernel
	sbi    *sbi.Handler
	log    *log.Logger

	state      State
	steps      uint64
	exitStatus uint64
	override   SyscallHandler
	accel      Accelerator
	tracer     *rv64.StructuredTracer
}

// New constructs a machine in the initialised state.
func New(cfg Config) *Machine {
	size := cfg.MemorySize
	if size == 0 {
		size = rv64.DefaultMemorySize
	}
	m := &Machine{
		mem: rv64.NewMemory(size),
		sbi: sbi.NewHandler(),
		log: log.Default().Module("vm"),
	}

	rvCfg := rv64.Config{
		StrictAlign:            cfg.StrictAlign,
		StrictDecode:           cfg.StrictDecode,
		NoFramePointerFallback: cfg.NoFramePointerFallback,
	}
	if cfg.Debug {
		m.tracer = rv64.NewStructuredTracer(cfg.TraceDepth)
		rvCfg.Tracer = m.tracer
	}
	m.cpu = rv64.NewCPU(m.mem, rvCfg)

	// The kernel's monotonic clock is the retired-instruction counter:
	// one nanosecond per instruction keeps time reproducible.
	m.kernel = kernel.New(m.mem, func() uint64 { return m.steps })
	m.kernel.SetBootRealtime(cfg.BootRealtime)
	return m
}

// Memory exposes guest RAM, primarily for the loader and tests.
func (m *Machine) Memory() *rv64.Memory {
	return m.mem
}

// CPU exposes the hart, primarily for the loader and tests.
func (m *Machine) CPU() *rv64.CPU {
	return m.cpu
}

// Kernel exposes the Basin kernel.
func (m *Machine) Kernel() *kernel.Kernel {
	return m.kernel
}

// Serial returns the host-observable serial ring.
func (m *Machine) Serial() *sbi.Serial {
	return m.sbi.Serial()
}

// QueueInput feeds host key bytes to SBI console-getchar.
func (m *Machine) QueueInput(b []byte) {
	m.sbi.QueueInput(b)
}

// SetSyscallHandler overrides the built-in kernel dispatch. Passing nil
// restores the kernel.
func (m *Machine) SetSyscallHandler(fn SyscallHandler) {
	m.override = fn
}

// State returns the lifecycle state.
func (m *Machine) State() State {
	return m.state
}

// Steps returns the number of retired instructions.
func (m *Machine) Steps() uint64 {
	return m.steps
}

// ExitStatus returns the status passed to exit. Only meaningful in the
// halted state.
func (m *Machine) ExitStatus() uint64 {
	return m.exitStatus
}

// Fault returns the fault that errored the machine, or nil.
func (m *Machine) Fault() *rv64.Fault {
	return m.cpu.Fault()
}

// Trace returns the recorded instruction window when debug tracing is on.
func (m *Machine) Trace() []rv64.TraceStep {
	if m.tracer == nil {
		return nil
	}
	return m.tracer.Steps()
}

// RegRead is the host register accessor.
func (m *Machine) RegRead(idx int) (uint64, error) {
	return m.cpu.RegRead(idx)
}

// PCRead returns the program counter.
func (m *Machine) PCRead() uint64 {
	return m.cpu.PC
}

// Start transitions initialised -> running. Any other source state is an
// invalid transition.
func (m *Machine) Start() error {
	if m.state != StateInitialised {
		return ErrNotStartable
	}
	m.state = StateRunning
	m.log.Info("started", "pc", m.cpu.PC, "sp", m.cpu.Regs[rv64.RegSP])
	return nil
}

// Step executes one instruction. A fault moves the machine to errored and
// is returned; reaching exit moves it to halted and returns nil.
func (m *Machine) Step() error {
	if m.state != StateRunning {
		return ErrNotRunning
	}

	if m.stepAccelerated() {
		return nil
	}

	ev, err := m.cpu.Step()
	if err != nil {
		m.state = StateErrored
		metrics.VMFaults.Inc()
		m.log.Error("fault", "err", err.Error(), "pc", m.cpu.PC, "steps", m.steps)
		return err
	}

	m.steps++
	metrics.InstructionsRetired.Inc()

	if ev == rv64.EventEcall {
		m.dispatchEcall()
	}
	return nil
}

// StepN executes up to n instructions, stopping early when the machine
// leaves the running state. It returns the number executed.
func (m *Machine) StepN(n uint64) (uint64, error) {
	var done uint64
	for done < n && m.state == StateRunning {
		if err := m.Step(); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}

// dispatchEcall routes a trap by function ID: platform services below the
// split, Basin syscalls above it. The result lands in a0 and PC advances
// past the ECALL -- except on exit, where PC stays put and fetch stops.
func (m *Machine) dispatchEcall() {
	fn := m.cpu.Regs[rv64.RegA7]
	a0 := m.cpu.Regs[rv64.RegA0]

	if fn < sbiFnLimit {
		ret, shutdown := m.sbi.Call(fn, a0)
		if shutdown {
			m.state = StateHalted
			m.exitStatus = 0
			m.log.Info("sbi shutdown")
			return
		}
		m.cpu.Regs[rv64.RegA0] = ret
		m.cpu.PC += 4
		return
	}

	a1 := m.cpu.Regs[rv64.RegA1]
	a2 := m.cpu.Regs[rv64.RegA2]
	a3 := m.cpu.Regs[rv64.RegA3]

	var res kernel.Result
	if m.override != nil {
		res = m.override(fn, a0, a1, a2, a3)
	} else {
		res = m.kernel.HandleSyscall(fn, a0, a1, a2, a3)
		if m.kernel.Halted() {
			m.state = StateHalted
			m.exitStatus = m.kernel.ExitStatus()
			return
		}
	}

	m.cpu.Regs[rv64.RegA0] = res.Encode()
	m.cpu.PC += 4
}
