package rv64

// Instruction encoders. The test suites across the repository assemble
// their guest programs with these instead of carrying pre-built binaries.

// EncodeRType assembles an R-type instruction.
func EncodeRType(op, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | op
}

// EncodeIType assembles an I-type instruction with a 12-bit signed
// immediate.
func EncodeIType(op, rd, funct3, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | op
}

// EncodeSType assembles an S-type (store) instruction.
func EncodeSType(op, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0xfff
	return (u>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | op
}

// EncodeBType assembles a B-type (branch) instruction. imm is the signed
// byte offset from the branch; its low bit is ignored.
func EncodeBType(op, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm) & 0x1fff
	enc := (u >> 12 & 0x1) << 31
	enc |= (u >> 5 & 0x3f) << 25
	enc |= (u >> 1 & 0xf) << 8
	enc |= (u >> 11 & 0x1) << 7
	return enc | rs2<<20 | rs1<<15 | funct3<<12 | op
}

// EncodeUType assembles a U-type instruction. imm carries the value with
// its low 12 bits already zero (LUI x1, 0x12345000 is imm=0x12345000).
func EncodeUType(op, rd, imm uint32) uint32 {
	return imm&0xfffff000 | rd<<7 | op
}

// EncodeJType assembles a J-type (JAL) instruction. imm is the signed byte
// offset from the jump; its low bit is ignored.
func EncodeJType(op, rd uint32, imm int32) uint32 {
	u := uint32(imm) & 0x1fffff
	enc := (u >> 20 & 0x1) << 31
	enc |= (u >> 1 & 0x3ff) << 21
	enc |= (u >> 11 & 0x1) << 20
	enc |= (u >> 12 & 0xff) << 12
	return enc | rd<<7 | op
}

// EncodeEcall assembles the ECALL instruction.
func EncodeEcall() uint32 {
	return 0x00000073
}
