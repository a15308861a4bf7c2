package rv64

import "errors"

// execute runs a single decoded instruction. Control-flow instructions set
// PC directly; everything else falls through to the PC+4 advance at the
// bottom. An ECALL leaves PC on the ECALL itself and reports the event.
func (c *CPU) execute(insn uint32) (Event, error) {
	op := opcode(insn)

	switch op {
	case OpLui:
		c.writeReg(rd(insn), uint64(immU(insn)))

	case OpAuipc:
		c.writeReg(rd(insn), c.PC+uint64(immU(insn)))

	case OpJal:
		target := (c.PC + uint64(immJ(insn))) &^ 3
		c.writeReg(rd(insn), c.PC+4)
		c.PC = target
		return EventNone, nil

	case OpJalr:
		target := (c.readReg(rs1(insn)) + uint64(immI(insn))) &^ 3
		c.writeReg(rd(insn), c.PC+4)
		c.PC = target
		return EventNone, nil

	case OpBranch:
		return c.execBranch(insn)

	case OpLoad:
		if err := c.execLoad(insn); err != nil {
			return EventNone, err
		}

	case OpStore:
		if err := c.execStore(insn); err != nil {
			return EventNone, err
		}

	case OpOpImm:
		if err := c.execOpImm(insn); err != nil {
			return EventNone, err
		}

	case OpOpImm32:
		if err := c.execOpImm32(insn); err != nil {
			return EventNone, err
		}

	case OpOp:
		if err := c.execOp(insn); err != nil {
			return EventNone, err
		}

	case OpOp32:
		if err := c.execOp32(insn); err != nil {
			return EventNone, err
		}

	case OpSystem:
		if funct3(insn) == 0 && insn>>20 == 0 {
			// ECALL: the dispatcher owns the PC advance.
			return EventEcall, nil
		}
		return EventNone, c.failAt(FaultIllegalInstruction, c.PC, insn)

	default:
		if err := c.execQuirk(insn); err != nil {
			return EventNone, err
		}
	}

	c.PC += 4
	return EventNone, nil
}

// execBranch evaluates a conditional branch. A taken branch has its target's
// low 2 bits cleared rather than faulting on a misaligned offset.
func (c *CPU) execBranch(insn uint32) (Event, error) {
	r1 := c.readReg(rs1(insn))
	r2 := c.readReg(rs2(insn))

	var taken bool
	switch funct3(insn) {
	case 0b000: // BEQ
		taken = r1 == r2
	case 0b001: // BNE
		taken = r1 != r2
	case 0b100: // BLT
		taken = int64(r1) < int64(r2)
	case 0b101: // BGE
		taken = int64(r1) >= int64(r2)
	case 0b110: // BLTU
		taken = r1 < r2
	case 0b111: // BGEU
		taken = r1 >= r2
	default:
		return EventNone, c.failAt(FaultIllegalInstruction, c.PC, insn)
	}

	if taken {
		c.PC = (c.PC + uint64(immB(insn))) &^ 3
	} else {
		c.PC += 4
	}
	return EventNone, nil
}

// effAddr computes the effective address of an n-byte access. Code that
// reaches the load/store path before establishing a frame uses x8 with a
// garbage base; when the x8-based address falls outside memory the stack
// pointer is substituted as the base instead.
func (c *CPU) effAddr(base uint32, imm int64, n uint64) uint64 {
	ea := c.readReg(base) + uint64(imm)
	if base == RegFP && !c.cfg.NoFramePointerFallback && !c.Mem.InRange(ea, n) {
		ea = c.readReg(RegSP) + uint64(imm)
	}
	return ea
}

func (c *CPU) execLoad(insn uint32) error {
	f3 := funct3(insn)
	var n uint64
	switch f3 {
	case 0b000, 0b100:
		n = 1
	case 0b001, 0b101:
		n = 2
	case 0b010, 0b110:
		n = 4
	case 0b011:
		n = 8
	default:
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}
	addr := c.effAddr(rs1(insn), immI(insn), n)

	var val uint64
	var err error
	switch f3 {
	case 0b000: // LB
		v, e := c.Mem.LoadU8(addr)
		val, err = uint64(int64(int8(v))), e
	case 0b001: // LH
		v, e := c.Mem.LoadU16(addr)
		val, err = uint64(int64(int16(v))), e
	case 0b010: // LW
		v, e := c.Mem.LoadU32(addr)
		val, err = uint64(int64(int32(v))), e
	case 0b011: // LD
		val, err = c.Mem.LoadU64(addr)
	case 0b100: // LBU
		v, e := c.Mem.LoadU8(addr)
		val, err = uint64(v), e
	case 0b101: // LHU
		v, e := c.Mem.LoadU16(addr)
		val, err = uint64(v), e
	case 0b110: // LWU
		v, e := c.Mem.LoadU32(addr)
		val, err = uint64(v), e
	}
	if err != nil {
		return c.memFault(err, addr, insn)
	}
	c.writeReg(rd(insn), val)
	return nil
}

func (c *CPU) execStore(insn uint32) error {
	f3 := funct3(insn)
	var n uint64
	switch f3 {
	case 0b000:
		n = 1
	case 0b001:
		n = 2
	case 0b010:
		n = 4
	case 0b011:
		n = 8
	default:
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}
	addr := c.effAddr(rs1(insn), immS(insn), n)
	val := c.readReg(rs2(insn))

	var err error
	switch f3 {
	case 0b000: // SB
		err = c.Mem.StoreU8(addr, uint8(val))
	case 0b001: // SH
		err = c.Mem.StoreU16(addr, uint16(val))
	case 0b010: // SW
		err = c.Mem.StoreU32(addr, uint32(val))
	case 0b011: // SD
		err = c.Mem.StoreU64(addr, val)
	}
	if err != nil {
		return c.memFault(err, addr, insn)
	}
	return nil
}

// aluImm implements the I-type ALU group for a given funct3. The quirk
// decoder reuses it for unrecognised opcodes whose funct3 maps onto a
// natural I-type analogue.
func (c *CPU) aluImm(insn uint32, f3 uint32) error {
	a := c.readReg(rs1(insn))
	imm := immI(insn)

	var out uint64
	switch f3 {
	case 0b000: // ADDI
		out = a + uint64(imm)
	case 0b010: // SLTI
		if int64(a) < imm {
			out = 1
		}
	case 0b011: // SLTIU
		if a < uint64(imm) {
			out = 1
		}
	case 0b100: // XORI
		out = a ^ uint64(imm)
	case 0b110: // ORI
		out = a | uint64(imm)
	case 0b111: // ANDI
		out = a & uint64(imm)
	case 0b001: // SLLI
		if insn>>26&0x3f != 0 {
			return c.failAt(FaultIllegalInstruction, c.PC, insn)
		}
		out = a << shamt(insn)
	case 0b101: // SRLI / SRAI
		switch insn >> 26 & 0x3f {
		case 0:
			out = a >> shamt(insn)
		case 0b010000:
			out = uint64(int64(a) >> shamt(insn))
		default:
			return c.failAt(FaultIllegalInstruction, c.PC, insn)
		}
	}
	c.writeReg(rd(insn), out)
	return nil
}

func (c *CPU) execOpImm(insn uint32) error {
	return c.aluImm(insn, funct3(insn))
}

func (c *CPU) execOpImm32(insn uint32) error {
	a := uint32(c.readReg(rs1(insn)))

	var out int32
	switch funct3(insn) {
	case 0b000: // ADDIW
		out = int32(a) + int32(immI(insn))
	case 0b001: // SLLIW
		if insn>>25&0x7f != 0 {
			return c.failAt(FaultIllegalInstruction, c.PC, insn)
		}
		out = int32(a << shamt32(insn))
	case 0b101: // SRLIW / SRAIW
		switch insn >> 25 & 0x7f {
		case 0:
			out = int32(a >> shamt32(insn))
		case 0b0100000:
			out = int32(a) >> shamt32(insn)
		default:
			return c.failAt(FaultIllegalInstruction, c.PC, insn)
		}
	default:
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}
	c.writeReg(rd(insn), uint64(int64(out)))
	return nil
}

func (c *CPU) execOp(insn uint32) error {
	a := c.readReg(rs1(insn))
	b := c.readReg(rs2(insn))
	f3 := funct3(insn)
	f7 := funct7(insn)

	var out uint64
	switch {
	case f3 == 0b000 && f7 == 0x00: // ADD
		out = a + b
	case f3 == 0b000 && f7 == 0x20: // SUB
		out = a - b
	case f3 == 0b001 && f7 == 0x00: // SLL
		out = a << (b & 0x3f)
	case f3 == 0b010 && f7 == 0x00: // SLT
		if int64(a) < int64(b) {
			out = 1
		}
	case f3 == 0b011 && f7 == 0x00: // SLTU
		if a < b {
			out = 1
		}
	case f3 == 0b100 && f7 == 0x00: // XOR
		out = a ^ b
	case f3 == 0b101 && f7 == 0x00: // SRL
		out = a >> (b & 0x3f)
	case f3 == 0b101 && f7 == 0x20: // SRA
		out = uint64(int64(a) >> (b & 0x3f))
	case f3 == 0b110 && f7 == 0x00: // OR
		out = a | b
	case f3 == 0b111 && f7 == 0x00: // AND
		out = a & b
	default:
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}
	c.writeReg(rd(insn), out)
	return nil
}

func (c *CPU) execOp32(insn uint32) error {
	a := uint32(c.readReg(rs1(insn)))
	b := uint32(c.readReg(rs2(insn)))
	f3 := funct3(insn)
	f7 := funct7(insn)

	var out int32
	switch {
	case f3 == 0b000 && f7 == 0x00: // ADDW
		out = int32(a + b)
	case f3 == 0b000 && f7 == 0x20: // SUBW
		out = int32(a - b)
	case f3 == 0b001 && f7 == 0x00: // SLLW
		out = int32(a << (b & 0x1f))
	case f3 == 0b101 && f7 == 0x00: // SRLW
		out = int32(a >> (b & 0x1f))
	case f3 == 0b101 && f7 == 0x20: // SRAW
		out = int32(a) >> (b & 0x1f)
	default:
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}
	c.writeReg(rd(insn), uint64(int64(out)))
	return nil
}

// execQuirk handles the non-standard opcodes emitted by the guest compiler.
// The strict profile refuses all of them.
func (c *CPU) execQuirk(insn uint32) error {
	op := opcode(insn)
	if c.cfg.StrictDecode || !quirkOpcodes[op] {
		return c.failAt(FaultIllegalInstruction, c.PC, insn)
	}

	switch f3 := funct3(insn); f3 {
	case 0b001:
		// Decodes as SLLI. The upper immediate bits are not validated:
		// these encodings carry whatever the compiler left there.
		c.writeReg(rd(insn), c.readReg(rs1(insn))<<shamt(insn))
		return nil
	case 0b011:
		return nil // NOP
	default:
		return c.aluImm(insn, f3)
	}
}

// memFault translates a memory accessor error into the hart fault taxonomy.
func (c *CPU) memFault(err error, addr uint64, insn uint32) *Fault {
	kind := FaultMemoryOutOfRange
	if errors.Is(err, ErrMisaligned) {
		kind = FaultMisalignedAddress
	}
	return c.failAt(kind, addr, insn)
}
