package rv64

import (
	"encoding/binary"
	"testing"
)

// cpuWithProgram builds a hart whose RAM holds the given instruction words
// at the load base, with PC pointing at the first one.
func cpuWithProgram(t *testing.T, instrs []uint32, cfg Config) *CPU {
	t.Helper()
	mem := NewMemory(1 << 20)
	code := make([]byte, len(instrs)*4)
	for i, instr := range instrs {
		binary.LittleEndian.PutUint32(code[i*4:], instr)
	}
	if err := mem.WriteRange(mem.Base(), code); err != nil {
		t.Fatalf("WriteRange: %v", err)
	}
	cpu := NewCPU(mem, cfg)
	cpu.PC = mem.Base()
	return cpu
}

// run steps the hart until it reaches the ECALL terminator.
func run(t *testing.T, cpu *CPU) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		ev, err := cpu.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if ev == EventEcall {
			return
		}
	}
	t.Fatal("program did not reach ECALL within 10000 steps")
}

func TestCPU_LUI(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpLui, 1, 0x12345000),
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[1] != 0x12345000 {
		t.Errorf("LUI: got 0x%08x, want 0x12345000", cpu.Regs[1])
	}
}

func TestCPU_LUISignExtends(t *testing.T) {
	// LUI with bit 31 set sign-extends into the upper 32 bits on RV64.
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpLui, 1, 0x80000000),
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[1] != 0xFFFFFFFF80000000 {
		t.Errorf("LUI: got 0x%016x, want 0xffffffff80000000", cpu.Regs[1])
	}
}

func TestCPU_AUIPC(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpAuipc, 2, 0x10000000),
		EncodeEcall(),
	}, Config{})
	base := cpu.Mem.Base()
	run(t, cpu)
	if cpu.Regs[2] != base+0x10000000 {
		t.Errorf("AUIPC: got 0x%x, want 0x%x", cpu.Regs[2], base+0x10000000)
	}
}

func TestCPU_ADDI(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 42),
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[1] != 42 {
		t.Errorf("ADDI: got %d, want 42", cpu.Regs[1])
	}
}

func TestCPU_ADDISignExtend(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, -1),
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[1] != 0xFFFFFFFFFFFFFFFF {
		t.Errorf("ADDI(-1): got 0x%016x, want all ones", cpu.Regs[1])
	}
}

func TestCPU_ADDAndSUB(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 10),
		EncodeIType(OpOpImm, 2, 0, 0, 7),
		EncodeRType(OpOp, 3, 0, 1, 2, 0),    // ADD x3, x1, x2
		EncodeRType(OpOp, 4, 0, 1, 2, 0x20), // SUB x4, x1, x2
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 17 {
		t.Errorf("ADD: got %d, want 17", cpu.Regs[3])
	}
	if cpu.Regs[4] != 3 {
		t.Errorf("SUB: got %d, want 3", cpu.Regs[4])
	}
}

func TestCPU_LogicalOps(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 0xFF),
		EncodeIType(OpOpImm, 2, 0, 0, 0x0F),
		EncodeRType(OpOp, 3, 7, 1, 2, 0), // AND
		EncodeRType(OpOp, 4, 6, 1, 2, 0), // OR
		EncodeRType(OpOp, 5, 4, 1, 2, 0), // XOR
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 0x0F {
		t.Errorf("AND: got 0x%x, want 0x0F", cpu.Regs[3])
	}
	if cpu.Regs[4] != 0xFF {
		t.Errorf("OR: got 0x%x, want 0xFF", cpu.Regs[4])
	}
	if cpu.Regs[5] != 0xF0 {
		t.Errorf("XOR: got 0x%x, want 0xF0", cpu.Regs[5])
	}
}

func TestCPU_ImmediateLogicalOps(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 0xFF),
		EncodeIType(OpOpImm, 2, 4, 1, 0x0F), // XORI
		EncodeIType(OpOpImm, 3, 6, 1, 0x0F), // ORI
		EncodeIType(OpOpImm, 4, 7, 1, 0x0F), // ANDI
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[2] != 0xF0 {
		t.Errorf("XORI: got 0x%x, want 0xF0", cpu.Regs[2])
	}
	if cpu.Regs[3] != 0xFF {
		t.Errorf("ORI: got 0x%x, want 0xFF", cpu.Regs[3])
	}
	if cpu.Regs[4] != 0x0F {
		t.Errorf("ANDI: got 0x%x, want 0x0F", cpu.Regs[4])
	}
}

func TestCPU_Shifts(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 0x80),
		EncodeIType(OpOpImm, 2, 1, 1, 2),  // SLLI x2, x1, 2
		EncodeIType(OpOpImm, 3, 0, 0, -8), // x3 = -8
		EncodeIType(OpOpImm, 4, 5, 3, 1),  // SRLI x4, x3, 1
		EncodeIType(OpOpImm, 5, 5, 3, int32(1|0x400)), // SRAI x5, x3, 1
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[2] != 0x200 {
		t.Errorf("SLLI: got 0x%x, want 0x200", cpu.Regs[2])
	}
	if cpu.Regs[4] != 0x7FFFFFFFFFFFFFFC {
		t.Errorf("SRLI: got 0x%x, want 0x7ffffffffffffffc", cpu.Regs[4])
	}
	if int64(cpu.Regs[5]) != -4 {
		t.Errorf("SRAI: got %d, want -4", int64(cpu.Regs[5]))
	}
}

func TestCPU_RegisterShifts(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, -16),
		EncodeIType(OpOpImm, 2, 0, 0, 2),
		EncodeRType(OpOp, 3, 1, 1, 2, 0),    // SLL
		EncodeRType(OpOp, 4, 5, 1, 2, 0),    // SRL
		EncodeRType(OpOp, 5, 5, 1, 2, 0x20), // SRA
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if int64(cpu.Regs[3]) != -64 {
		t.Errorf("SLL: got %d, want -64", int64(cpu.Regs[3]))
	}
	if cpu.Regs[4] != 0x3FFFFFFFFFFFFFFC {
		t.Errorf("SRL: got 0x%x, want 0x3ffffffffffffffc", cpu.Regs[4])
	}
	if int64(cpu.Regs[5]) != -4 {
		t.Errorf("SRA: got %d, want -4", int64(cpu.Regs[5]))
	}
}

func TestCPU_SetLessThan(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, -1),
		EncodeIType(OpOpImm, 2, 0, 0, 1),
		EncodeRType(OpOp, 3, 2, 1, 2, 0),  // SLT x3 = (-1 < 1) = 1
		EncodeRType(OpOp, 4, 3, 1, 2, 0),  // SLTU x4 = (2^64-1 < 1) = 0
		EncodeIType(OpOpImm, 5, 2, 1, 0),  // SLTI x5 = (-1 < 0) = 1
		EncodeIType(OpOpImm, 6, 3, 2, -1), // SLTIU x6 = (1 < 2^64-1) = 1
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 1 {
		t.Errorf("SLT: got %d, want 1", cpu.Regs[3])
	}
	if cpu.Regs[4] != 0 {
		t.Errorf("SLTU: got %d, want 0", cpu.Regs[4])
	}
	if cpu.Regs[5] != 1 {
		t.Errorf("SLTI: got %d, want 1", cpu.Regs[5])
	}
	if cpu.Regs[6] != 1 {
		t.Errorf("SLTIU: got %d, want 1", cpu.Regs[6])
	}
}

func TestCPU_Word32Ops(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpLui, 1, 0x7FFFF000),
		EncodeIType(OpOpImm, 1, 6, 1, 0x7FF),  // x1 = 0x7FFFF7FF
		EncodeIType(OpOpImm32, 2, 0, 1, 0x7FF), // ADDIW x2 = 0x7FFFFFFE, just below the sign bit
		EncodeRType(OpOp32, 3, 0, 1, 1, 0),    // ADDW x3 = x1+x1 (wraps to negative)
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[2] != 0x7FFFFFFE {
		t.Errorf("ADDIW: got 0x%016x, want 0x7ffffffe", cpu.Regs[2])
	}
	if cpu.Regs[3] != 0xFFFFFFFFFFFFEFFE {
		t.Errorf("ADDW: got 0x%016x, want 0xffffffffffffeffe", cpu.Regs[3])
	}
}

func TestCPU_Branches(t *testing.T) {
	// BEQ over a poison ADDI; BNE not taken falls through.
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 5),
		EncodeIType(OpOpImm, 2, 0, 0, 5),
		EncodeBType(OpBranch, 0, 1, 2, 8), // BEQ x1, x2, +8
		EncodeIType(OpOpImm, 3, 0, 0, 99), // skipped
		EncodeBType(OpBranch, 1, 1, 2, 8), // BNE x1, x2, +8: not taken
		EncodeIType(OpOpImm, 4, 0, 0, 7),  // executed
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 0 {
		t.Errorf("BEQ did not skip: x3 = %d, want 0", cpu.Regs[3])
	}
	if cpu.Regs[4] != 7 {
		t.Errorf("BNE fall-through: x4 = %d, want 7", cpu.Regs[4])
	}
}

func TestCPU_SignedUnsignedBranches(t *testing.T) {
	// x1 = -1 (unsigned max), x2 = 1.
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, -1),
		EncodeIType(OpOpImm, 2, 0, 0, 1),
		EncodeBType(OpBranch, 0b100, 1, 2, 8), // BLT (signed): taken
		EncodeIType(OpOpImm, 3, 0, 0, 99),     // skipped
		EncodeBType(OpBranch, 0b110, 1, 2, 8), // BLTU: not taken
		EncodeIType(OpOpImm, 4, 0, 0, 7),      // executed
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 0 {
		t.Errorf("BLT did not skip: x3 = %d, want 0", cpu.Regs[3])
	}
	if cpu.Regs[4] != 7 {
		t.Errorf("BLTU fall-through: x4 = %d, want 7", cpu.Regs[4])
	}
}

func TestCPU_JAL(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeJType(OpJal, 1, 8),          // JAL x1, +8
		EncodeIType(OpOpImm, 3, 0, 0, 99), // skipped
		EncodeEcall(),
	}, Config{})
	base := cpu.Mem.Base()
	run(t, cpu)
	if cpu.Regs[1] != base+4 {
		t.Errorf("JAL link: got 0x%x, want 0x%x", cpu.Regs[1], base+4)
	}
	if cpu.Regs[3] != 0 {
		t.Errorf("JAL did not skip: x3 = %d, want 0", cpu.Regs[3])
	}
}

func TestCPU_JALR(t *testing.T) {
	// The 12-bit immediate cannot hold the base, so compute the target in a
	// register instead: x5 = base via AUIPC.
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpAuipc, 5, 0),        // x5 = base
		EncodeIType(OpJalr, 1, 0, 5, 12),  // JALR x1, 12(x5)
		EncodeIType(OpOpImm, 3, 0, 0, 99), // skipped
		EncodeEcall(),
	}, Config{})
	base := cpu.Mem.Base()
	run(t, cpu)
	if cpu.Regs[1] != base+8 {
		t.Errorf("JALR link: got 0x%x, want 0x%x", cpu.Regs[1], base+8)
	}
	if cpu.Regs[3] != 0 {
		t.Errorf("JALR did not skip: x3 = %d, want 0", cpu.Regs[3])
	}
}

func TestCPU_JALRTargetAutoAligned(t *testing.T) {
	// Target base+14 has its low 2 bits cleared, landing on base+12.
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpAuipc, 5, 0),
		EncodeIType(OpJalr, 1, 0, 5, 14),
		EncodeIType(OpOpImm, 3, 0, 0, 99), // skipped
		EncodeIType(OpOpImm, 4, 0, 0, 7),  // landed here
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 0 {
		t.Errorf("misaligned JALR executed skipped insn: x3 = %d", cpu.Regs[3])
	}
	if cpu.Regs[4] != 7 {
		t.Errorf("auto-aligned JALR target: x4 = %d, want 7", cpu.Regs[4])
	}
}

func TestCPU_LoadsStores(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpAuipc, 5, 0x1000),        // x5 = base + 0x1000
		EncodeIType(OpOpImm, 1, 0, 0, -2),      // x1 = 0xFFFF...FE
		EncodeSType(OpStore, 3, 5, 1, 0),       // SD x1, 0(x5)
		EncodeIType(OpLoad, 2, 3, 5, 0),        // LD x2
		EncodeIType(OpLoad, 3, 0, 5, 0),        // LB -> sign-extended 0xFE
		EncodeIType(OpLoad, 4, 4, 5, 0),        // LBU -> 0xFE
		EncodeIType(OpLoad, 6, 1, 5, 0),        // LH -> sign-extended
		EncodeIType(OpLoad, 7, 5, 5, 0),        // LHU
		EncodeIType(OpLoad, 8, 2, 5, 0),        // LW
		EncodeIType(OpLoad, 9, 6, 5, 0),        // LWU
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[2] != 0xFFFFFFFFFFFFFFFE {
		t.Errorf("LD: got 0x%016x", cpu.Regs[2])
	}
	if int64(cpu.Regs[3]) != -2 {
		t.Errorf("LB: got %d, want -2", int64(cpu.Regs[3]))
	}
	if cpu.Regs[4] != 0xFE {
		t.Errorf("LBU: got 0x%x, want 0xFE", cpu.Regs[4])
	}
	if int64(cpu.Regs[6]) != -2 {
		t.Errorf("LH: got %d, want -2", int64(cpu.Regs[6]))
	}
	if cpu.Regs[7] != 0xFFFE {
		t.Errorf("LHU: got 0x%x, want 0xFFFE", cpu.Regs[7])
	}
	if int64(cpu.Regs[8]) != -2 {
		t.Errorf("LW: got %d, want -2", int64(cpu.Regs[8]))
	}
	if cpu.Regs[9] != 0xFFFFFFFE {
		t.Errorf("LWU: got 0x%x, want 0xFFFFFFFE", cpu.Regs[9])
	}
}

func TestCPU_ByteStoresAreNarrow(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpAuipc, 5, 0x1000),
		EncodeIType(OpOpImm, 1, 0, 0, -1),
		EncodeSType(OpStore, 3, 5, 1, 0), // SD all-ones
		EncodeIType(OpOpImm, 2, 0, 0, 0),
		EncodeSType(OpStore, 0, 5, 2, 0), // SB zero over the first byte
		EncodeIType(OpLoad, 3, 3, 5, 0),  // LD back
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[3] != 0xFFFFFFFFFFFFFF00 {
		t.Errorf("SB: got 0x%016x, want 0xffffffffffffff00", cpu.Regs[3])
	}
}

func TestCPU_X0AlwaysZero(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 0, 0, 0, 42), // ADDI x0, x0, 42: discarded
		EncodeRType(OpOp, 1, 0, 0, 0, 0),  // ADD x1, x0, x0
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[0] != 0 {
		t.Errorf("x0 = %d, want 0", cpu.Regs[0])
	}
	if cpu.Regs[1] != 0 {
		t.Errorf("x1 = %d, want 0", cpu.Regs[1])
	}
}

func TestCPU_PCAdvancesBy4(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 1),
		EncodeIType(OpOpImm, 2, 0, 0, 2),
		EncodeEcall(),
	}, Config{})
	start := cpu.PC
	for i := 0; i < 2; i++ {
		before := cpu.PC
		if _, err := cpu.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if cpu.PC != before+4 {
			t.Errorf("step %d: PC = 0x%x, want 0x%x", i, cpu.PC, before+4)
		}
	}
	if cpu.PC != start+8 {
		t.Errorf("PC = 0x%x, want 0x%x", cpu.PC, start+8)
	}
}

func TestCPU_IllegalInstruction(t *testing.T) {
	// Opcode 0x7f is not covered by any handler.
	cpu := cpuWithProgram(t, []uint32{0x0000007f}, Config{})
	_, err := cpu.Step()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("Step: got %v, want *Fault", err)
	}
	if f.Kind != FaultIllegalInstruction {
		t.Errorf("fault kind = %v, want illegal_instruction", f.Kind)
	}
	if f.PC != cpu.Mem.Base() {
		t.Errorf("fault PC = 0x%x, want 0x%x", f.PC, cpu.Mem.Base())
	}
	if cpu.Fault() != f {
		t.Error("Fault() does not return the recorded fault")
	}
}

func TestCPU_QuirkOpcodes(t *testing.T) {
	// Opcode 0x2e is a known compiler quirk: funct3=001 decodes as SLLI,
	// funct3=011 as a NOP, funct3=000 as ADDI.
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 1),
		EncodeIType(0x2e, 1, 1, 1, 4),  // SLLI x1, x1, 4
		EncodeIType(0x2e, 2, 3, 1, 0),  // NOP: x2 untouched
		EncodeIType(0x2e, 3, 0, 1, 10), // ADDI x3, x1, 10
		EncodeEcall(),
	}, Config{})
	run(t, cpu)
	if cpu.Regs[1] != 16 {
		t.Errorf("quirk SLLI: got %d, want 16", cpu.Regs[1])
	}
	if cpu.Regs[2] != 0 {
		t.Errorf("quirk NOP wrote x2: got %d", cpu.Regs[2])
	}
	if cpu.Regs[3] != 26 {
		t.Errorf("quirk ADDI: got %d, want 26", cpu.Regs[3])
	}
}

func TestCPU_QuirkOpcodesStrictDecode(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(0x2e, 1, 1, 1, 4),
	}, Config{StrictDecode: true})
	_, err := cpu.Step()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("Step: got %v, want *Fault", err)
	}
	if f.Kind != FaultIllegalInstruction {
		t.Errorf("fault kind = %v, want illegal_instruction", f.Kind)
	}
}

func TestCPU_FramePointerFallback(t *testing.T) {
	// x8 = 0 points outside memory; the store must use x2 as the base.
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 0x55),
		EncodeSType(OpStore, 3, RegFP, 1, 0), // SD x1, 0(x8)
		EncodeEcall(),
	}, Config{})
	sp := cpu.Mem.Base() + 0x8000
	cpu.Regs[RegSP] = sp
	run(t, cpu)
	v, err := cpu.Mem.LoadU64(sp)
	if err != nil {
		t.Fatalf("LoadU64: %v", err)
	}
	if v != 0x55 {
		t.Errorf("fallback store: got 0x%x at sp, want 0x55", v)
	}
}

func TestCPU_FramePointerFallbackDisabled(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 0x55),
		EncodeSType(OpStore, 3, RegFP, 1, 0),
	}, Config{NoFramePointerFallback: true})
	cpu.Regs[RegSP] = cpu.Mem.Base() + 0x8000
	if _, err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	_, err := cpu.Step()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("Step: got %v, want *Fault", err)
	}
	if f.Kind != FaultMemoryOutOfRange {
		t.Errorf("fault kind = %v, want memory_out_of_range", f.Kind)
	}
}

func TestCPU_StoreAtMemoryBounds(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{
		EncodeUType(OpLui, 5, 0),               // placeholder, x5 set below
		EncodeSType(OpStore, 3, 5, 1, 0),       // SD x1, 0(x5)
		EncodeEcall(),
	}, Config{})
	cpu.Regs[1] = 0x1234
	// First step consumes the LUI; then aim x5 at the last valid slot.
	if _, err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	cpu.Regs[5] = cpu.Mem.Top() - 8
	if _, err := cpu.Step(); err != nil {
		t.Fatalf("SD at top-8: %v", err)
	}
	v, err := cpu.Mem.LoadU64(cpu.Mem.Top() - 8)
	if err != nil {
		t.Fatalf("LoadU64: %v", err)
	}
	if v != 0x1234 {
		t.Errorf("SD at top-8: got 0x%x, want 0x1234", v)
	}

	// The raw range of an SD at top-7 runs one byte past the end of RAM,
	// so it is out of range even in the permissive profile.
	cpu = cpuWithProgram(t, []uint32{
		EncodeSType(OpStore, 3, 5, 1, 0),
	}, Config{})
	cpu.Regs[5] = cpu.Mem.Top() - 7
	_, err = cpu.Step()
	f, ok := err.(*Fault)
	if !ok {
		t.Fatalf("Step: got %v, want *Fault", err)
	}
	if f.Kind != FaultMemoryOutOfRange {
		t.Errorf("fault kind = %v, want memory_out_of_range", f.Kind)
	}
}

func TestCPU_TracerSeesSteps(t *testing.T) {
	tr := NewStructuredTracer(16)
	cpu := cpuWithProgram(t, []uint32{
		EncodeIType(OpOpImm, 1, 0, 0, 1),
		EncodeEcall(),
	}, Config{Tracer: tr})
	run(t, cpu)
	steps := tr.Steps()
	if len(steps) != 2 {
		t.Fatalf("trace length = %d, want 2", len(steps))
	}
	if steps[0].Mnemonic != "addi" {
		t.Errorf("step 0 mnemonic = %q, want addi", steps[0].Mnemonic)
	}
	if steps[1].Mnemonic != "ecall" {
		t.Errorf("step 1 mnemonic = %q, want ecall", steps[1].Mnemonic)
	}
}

func TestCPU_RegReadWriteHostAccessors(t *testing.T) {
	cpu := cpuWithProgram(t, []uint32{EncodeEcall()}, Config{})
	if err := cpu.RegWrite(0, 99); err != nil {
		t.Fatalf("RegWrite x0: %v", err)
	}
	v, err := cpu.RegRead(0)
	if err != nil {
		t.Fatalf("RegRead x0: %v", err)
	}
	if v != 0 {
		t.Errorf("x0 = %d, want 0", v)
	}
	if _, err := cpu.RegRead(32); err != ErrInvalidRegister {
		t.Errorf("RegRead(32): got %v, want ErrInvalidRegister", err)
	}
	if err := cpu.RegWrite(-1, 0); err != ErrInvalidRegister {
		t.Errorf("RegWrite(-1): got %v, want ErrInvalidRegister", err)
	}
}
