package metrics

// Pre-defined metrics for the Basin virtual machine host. All metrics live in
// DefaultRegistry so they are globally accessible without passing a registry
// around.

var (
	// ---- VM metrics ----

	// InstructionsRetired counts instructions the VM has retired.
	InstructionsRetired = DefaultRegistry.Counter("vm.instructions_retired")
	// VMFaults counts faults that transitioned the VM to the errored state.
	VMFaults = DefaultRegistry.Counter("vm.faults")
	// StepBatchTime records the duration of a StepN batch in milliseconds.
	StepBatchTime = DefaultRegistry.Histogram("vm.step_batch_ms")

	// ---- Syscall metrics ----

	// SyscallsHandled counts ECALLs routed to the Basin kernel.
	SyscallsHandled = DefaultRegistry.Counter("kernel.syscalls")
	// SyscallErrors counts kernel syscalls that returned an error result.
	SyscallErrors = DefaultRegistry.Counter("kernel.syscall_errors")
	// HandlesAllocated counts kernel handles handed out to the guest.
	HandlesAllocated = DefaultRegistry.Counter("kernel.handles_allocated")
	// MappingsActive tracks the number of allocated or protected mappings.
	MappingsActive = DefaultRegistry.Gauge("kernel.mappings_active")
	// ChannelsOpen tracks the number of open channels.
	ChannelsOpen = DefaultRegistry.Gauge("kernel.channels_open")
	// FilesOpen tracks the number of open file handles.
	FilesOpen = DefaultRegistry.Gauge("kernel.files_open")

	// ---- SBI metrics ----

	// SBICalls counts ECALLs routed to the SBI platform layer.
	SBICalls = DefaultRegistry.Counter("sbi.calls")
	// ConsoleBytes counts bytes written to the serial ring buffer.
	ConsoleBytes = DefaultRegistry.Counter("sbi.console_bytes")

	// ---- Loader metrics ----

	// ImagesLoaded counts ELF images successfully loaded into guest memory.
	ImagesLoaded = DefaultRegistry.Counter("elf.images_loaded")
	// ImageLoadTime records ELF load duration in milliseconds.
	ImageLoadTime = DefaultRegistry.Histogram("elf.load_ms")
)
