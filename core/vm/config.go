package vm

// Config selects the machine's memory size and compatibility profile. The
// zero value is the permissive profile over the default RAM size.
type Config struct {
	// MemorySize is the guest RAM size in bytes; 0 selects the default.
	MemorySize uint64

	// StrictAlign faults naturally misaligned accesses instead of
	// auto-truncating their addresses.
	StrictAlign bool

	// StrictDecode faults the compiler-quirk opcodes instead of taking
	// their graceful decode paths.
	StrictDecode bool

	// NoFramePointerFallback disables the x8->x2 base substitution for
	// out-of-range frame-pointer addressing.
	NoFramePointerFallback bool

	// Debug enables the bounded instruction tracer.
	Debug bool

	// TraceDepth bounds the tracer window; 0 selects the default.
	TraceDepth int

	// BootRealtime anchors the guest CLOCK_REALTIME, in nanoseconds
	// since the epoch, captured by the host at start.
	BootRealtime uint64
}
