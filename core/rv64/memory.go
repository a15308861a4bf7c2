package rv64

import "encoding/binary"

// LoadBase is the fixed guest address of the first byte of RAM. It matches
// the default RV64 link base, so address 0 (a typical uninitialised frame
// pointer) is never a valid guest address.
const LoadBase uint64 = 0x10000

// Memory is the guest physical RAM: a single statically-sized byte array
// base-aligned at LoadBase. Accessors take absolute guest addresses, are
// little-endian, and enforce the alignment policy selected at construction.
//
// In permissive mode (the default for the current guest toolchain) the
// addresses of 32-bit and 64-bit accesses are auto-truncated to their
// natural alignment; 16-bit accesses always require alignment. Strict mode
// faults every misaligned access so a conformance suite can refuse the shim.
type Memory struct {
	base        uint64
	data        []byte
	strictAlign bool
}

// NewMemory allocates size bytes of zeroed guest RAM at LoadBase.
func NewMemory(size uint64) *Memory {
	return &Memory{base: LoadBase, data: make([]byte, size)}
}

// Size returns the RAM size in bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// Base returns the guest address of the first RAM byte.
func (m *Memory) Base() uint64 {
	return m.base
}

// Top returns the guest address one past the last RAM byte.
func (m *Memory) Top() uint64 {
	return m.base + uint64(len(m.data))
}

// InRange reports whether [addr, addr+n) lies entirely within RAM.
func (m *Memory) InRange(addr, n uint64) bool {
	return addr >= m.base && addr+n >= addr && addr+n <= m.Top()
}

// effective bounds-checks an n-byte access at its raw address, then applies
// the alignment policy. It returns the (possibly truncated) address as an
// offset into the backing array. Bounds come first: an access whose raw
// range runs past the top of RAM is out of range even when truncation would
// pull it back in.
func (m *Memory) effective(addr, n uint64) (uint64, error) {
	if !m.InRange(addr, n) {
		return 0, ErrOutOfRange
	}
	if n >= 4 {
		if m.strictAlign {
			if addr%n != 0 {
				return 0, ErrMisaligned
			}
		} else {
			addr &^= n - 1
		}
	} else if addr%n != 0 {
		return 0, ErrMisaligned
	}
	return addr - m.base, nil
}

// LoadU8 reads one byte.
func (m *Memory) LoadU8(addr uint64) (uint8, error) {
	if !m.InRange(addr, 1) {
		return 0, ErrOutOfRange
	}
	return m.data[addr-m.base], nil
}

// LoadU16 reads a 16-bit little-endian value at a 2-byte-aligned address.
func (m *Memory) LoadU16(addr uint64) (uint16, error) {
	off, err := m.effective(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[off:]), nil
}

// LoadU32 reads a 32-bit little-endian value.
func (m *Memory) LoadU32(addr uint64) (uint32, error) {
	off, err := m.effective(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[off:]), nil
}

// LoadU64 reads a 64-bit little-endian value.
func (m *Memory) LoadU64(addr uint64) (uint64, error) {
	off, err := m.effective(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[off:]), nil
}

// StoreU8 writes one byte.
func (m *Memory) StoreU8(addr uint64, v uint8) error {
	if !m.InRange(addr, 1) {
		return ErrOutOfRange
	}
	m.data[addr-m.base] = v
	return nil
}

// StoreU16 writes a 16-bit little-endian value at a 2-byte-aligned address.
func (m *Memory) StoreU16(addr uint64, v uint16) error {
	off, err := m.effective(addr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[off:], v)
	return nil
}

// StoreU32 writes a 32-bit little-endian value.
func (m *Memory) StoreU32(addr uint64, v uint32) error {
	off, err := m.effective(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[off:], v)
	return nil
}

// StoreU64 writes a 64-bit little-endian value.
func (m *Memory) StoreU64(addr uint64, v uint64) error {
	off, err := m.effective(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[off:], v)
	return nil
}

// ReadRange copies n bytes starting at addr. The whole range is validated
// before the first byte is copied.
func (m *Memory) ReadRange(addr, n uint64) ([]byte, error) {
	if !m.InRange(addr, n) {
		return nil, ErrOutOfRange
	}
	out := make([]byte, n)
	copy(out, m.data[addr-m.base:])
	return out, nil
}

// WriteRange copies buf into RAM at addr. The whole range is validated
// before the first byte is written; a failed write leaves RAM untouched.
func (m *Memory) WriteRange(addr uint64, buf []byte) error {
	if !m.InRange(addr, uint64(len(buf))) {
		return ErrOutOfRange
	}
	copy(m.data[addr-m.base:], buf)
	return nil
}

// Zero clears [addr, addr+n).
func (m *Memory) Zero(addr, n uint64) error {
	if !m.InRange(addr, n) {
		return ErrOutOfRange
	}
	off := addr - m.base
	clear(m.data[off : off+n])
	return nil
}
