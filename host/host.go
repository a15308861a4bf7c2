package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/basinvm/basin/core/vm"
	"github.com/basinvm/basin/log"
	"github.com/basinvm/basin/metrics"
)

// ErrStepBudget is returned when the guest is still running after MaxSteps
// instructions. The machine itself stays in the running state; the caller
// decides whether to schedule more steps or give up.
var ErrStepBudget = errors.New("host: instruction budget exhausted, guest still running")

// Host owns one Basin machine and drives it to completion: load, start,
// step in batches, drain the serial ring between batches, and report the
// outcome.
type Host struct {
	cfg     Config
	machine *vm.Machine
	log     *log.Logger

	// Output receives drained serial bytes; defaults to stdout.
	Output io.Writer
}

// New validates the configuration and builds the machine.
func New(cfg Config) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := vm.New(vm.Config{
		MemorySize:             cfg.MemorySize,
		StrictAlign:            cfg.StrictAlign,
		StrictDecode:           cfg.StrictDecode,
		NoFramePointerFallback: cfg.NoFramePointerFallback,
		Debug:                  cfg.Debug,
		BootRealtime:           uint64(time.Now().UnixNano()),
	})
	return &Host{
		cfg:     cfg,
		machine: m,
		log:     log.Default().Module("host"),
		Output:  os.Stdout,
	}, nil
}

// Machine exposes the underlying VM for introspection.
func (h *Host) Machine() *vm.Machine {
	return h.machine
}

// QueueInput feeds key bytes to the guest console.
func (h *Host) QueueInput(b []byte) {
	h.machine.QueueInput(b)
}

// Run loads the image and drives the machine until it halts, faults, or
// exhausts the step budget. It returns the guest exit status; a fault or
// budget overrun is reported through the error instead.
func (h *Host) Run(image []byte, argv []string) (uint64, error) {
	if err := h.machine.LoadELF(image, argv); err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}
	if err := h.machine.Start(); err != nil {
		return 0, err
	}

	var total uint64
	for h.machine.State() == vm.StateRunning {
		batch := h.cfg.StepBatch
		if h.cfg.MaxSteps != 0 {
			remaining := h.cfg.MaxSteps - total
			if remaining == 0 {
				h.drainSerial()
				return 0, ErrStepBudget
			}
			if batch > remaining {
				batch = remaining
			}
		}

		start := time.Now()
		done, err := h.machine.StepN(batch)
		metrics.StepBatchTime.Observe(float64(time.Since(start).Microseconds()) / 1000)
		total += done
		h.drainSerial()

		if err != nil {
			h.reportFault()
			return 0, err
		}
	}

	status := h.machine.ExitStatus()
	h.log.Info("guest halted", "status", status, "steps", h.machine.Steps())
	return status, nil
}

// drainSerial moves buffered console bytes to the host output.
func (h *Host) drainSerial() {
	out := h.machine.Serial().Drain()
	if len(out) > 0 && h.Output != nil {
		h.Output.Write(out)
	}
}

// reportFault logs the post-mortem: the fault itself, the PC, and the full
// register file, which the errored machine preserves for inspection.
func (h *Host) reportFault() {
	f := h.machine.Fault()
	if f == nil {
		return
	}
	h.log.Error("guest fault", "kind", f.Kind.String(), "pc", f.PC,
		"insn", f.Insn, "addr", f.Addr, "steps", h.machine.Steps())
	for i := 0; i < 32; i++ {
		v, _ := h.machine.RegRead(i)
		if v != 0 {
			h.log.Debug("register", "x", i, "value", v)
		}
	}
	if trace := h.machine.Trace(); len(trace) > 0 {
		for _, s := range trace {
			h.log.Debug("trace", "pc", s.PC, "mnemonic", s.Mnemonic)
		}
	}
}
