package vm

import (
	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/metrics"
)

// Accelerator is the optional JIT hook. Before interpreting at the current
// PC, the machine offers the accelerator a chance to run a translated
// block. Contract: the accelerator retires whole instructions with the same
// architectural effects as the interpreter, and it must hand control back
// (ok=false, or a stop after n instructions) before any ECALL or potential
// fault, which always execute interpreted.
type Accelerator interface {
	// Execute runs translated code at cpu.PC. It returns how many guest
	// instructions it retired; ok=false means no translation covers this
	// PC and the interpreter proceeds.
	Execute(cpu *rv64.CPU) (retired uint64, ok bool)
}

// SetAccelerator attaches a JIT backend. Passing nil detaches it.
func (m *Machine) SetAccelerator(a Accelerator) {
	m.accel = a
}

// stepAccelerated gives the accelerator one shot at the current PC and
// accounts for whatever it retired.
func (m *Machine) stepAccelerated() bool {
	if m.accel == nil {
		return false
	}
	retired, ok := m.accel.Execute(m.cpu)
	if !ok || retired == 0 {
		return false
	}
	m.steps += retired
	metrics.InstructionsRetired.Add(int64(retired))
	return true
}
