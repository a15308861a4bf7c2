package vm

import (
	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/elf"
)

// LoadELF populates guest memory from an RV64 ELF image, points PC at its
// entry, lays out argv below the stack guard, and seeds the stack pointer
// and argument registers. It is only legal before Start.
func (m *Machine) LoadELF(data []byte, argv []string) error {
	if m.state != StateInitialised {
		return ErrNotLoadable
	}

	img, err := elf.Load(data, m.mem)
	if err != nil {
		return err
	}
	layout, err := elf.SetupStack(m.mem, argv)
	if err != nil {
		return err
	}

	m.cpu.PC = img.Entry
	m.cpu.Regs[rv64.RegSP] = layout.SP
	m.cpu.Regs[rv64.RegA0] = layout.Argc
	m.cpu.Regs[rv64.RegA1] = layout.ArgvPtr
	m.kernel.SetImageDigest(img.DigestPrefix())
	return nil
}
