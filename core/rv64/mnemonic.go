package rv64

// Mnemonic returns the assembler name of an instruction word, or "unknown"
// for anything the decoder would refuse. It is used by the tracer and by
// fault reports; it never allocates beyond the returned string.
func Mnemonic(insn uint32) string {
	switch opcode(insn) {
	case OpLui:
		return "lui"
	case OpAuipc:
		return "auipc"
	case OpJal:
		return "jal"
	case OpJalr:
		return "jalr"
	case OpBranch:
		switch funct3(insn) {
		case 0b000:
			return "beq"
		case 0b001:
			return "bne"
		case 0b100:
			return "blt"
		case 0b101:
			return "bge"
		case 0b110:
			return "bltu"
		case 0b111:
			return "bgeu"
		}
	case OpLoad:
		switch funct3(insn) {
		case 0b000:
			return "lb"
		case 0b001:
			return "lh"
		case 0b010:
			return "lw"
		case 0b011:
			return "ld"
		case 0b100:
			return "lbu"
		case 0b101:
			return "lhu"
		case 0b110:
			return "lwu"
		}
	case OpStore:
		switch funct3(insn) {
		case 0b000:
			return "sb"
		case 0b001:
			return "sh"
		case 0b010:
			return "sw"
		case 0b011:
			return "sd"
		}
	case OpOpImm:
		switch funct3(insn) {
		case 0b000:
			return "addi"
		case 0b001:
			return "slli"
		case 0b010:
			return "slti"
		case 0b011:
			return "sltiu"
		case 0b100:
			return "xori"
		case 0b101:
			if insn>>26&0x3f == 0b010000 {
				return "srai"
			}
			return "srli"
		case 0b110:
			return "ori"
		case 0b111:
			return "andi"
		}
	case OpOpImm32:
		switch funct3(insn) {
		case 0b000:
			return "addiw"
		case 0b001:
			return "slliw"
		case 0b101:
			if insn>>25&0x7f == 0b0100000 {
				return "sraiw"
			}
			return "srliw"
		}
	case OpOp:
		switch funct3(insn) {
		case 0b000:
			if funct7(insn) == 0x20 {
				return "sub"
			}
			return "add"
		case 0b001:
			return "sll"
		case 0b010:
			return "slt"
		case 0b011:
			return "sltu"
		case 0b100:
			return "xor"
		case 0b101:
			if funct7(insn) == 0x20 {
				return "sra"
			}
			return "srl"
		case 0b110:
			return "or"
		case 0b111:
			return "and"
		}
	case OpOp32:
		switch funct3(insn) {
		case 0b000:
			if funct7(insn) == 0x20 {
				return "subw"
			}
			return "addw"
		case 0b001:
			return "sllw"
		case 0b101:
			if funct7(insn) == 0x20 {
				return "sraw"
			}
			return "srlw"
		}
	case OpSystem:
		if funct3(insn) == 0 && insn>>20 == 0 {
			return "ecall"
		}
	}
	if quirkOpcodes[opcode(insn)] {
		return "quirk"
	}
	return "unknown"
}
