// Package sbi implements the platform services layer below the Basin
// kernel: console I/O and system reset, reached via ECALL with a function ID
// below 10 in a7. From the VM's perspective it is a pure function of its
// arguments plus a host-observable serial ring buffer.
package sbi

import (
	"github.com/basinvm/basin/metrics"
)

// Function IDs, following the legacy SBI numbering.
const (
	FnConsolePutchar uint64 = 1
	FnConsoleGetchar uint64 = 2
	FnShutdown       uint64 = 8
)

// NoChar is returned by console-getchar when no input is queued.
const NoChar = ^uint64(0)

// Handler services SBI calls. It owns the serial ring the host reads
// between step batches and the input queue the host feeds key bytes into.
type Handler struct {
	serial *Serial
	input  []byte
}

// NewHandler creates an SBI handler with an empty serial ring.
func NewHandler() *Handler {
	return &Handler{serial: NewSerial()}
}

// Serial returns the host-observable serial ring.
func (h *Handler) Serial() *Serial {
	return h.serial
}

// QueueInput appends host key bytes for console-getchar to drain.
func (h *Handler) QueueInput(b []byte) {
	h.input = append(h.input, b...)
}

// Call services one SBI function. It returns the value for a0 and whether
// the call requested a system reset. Unknown function IDs return zero; the
// platform layer has no error channel.
func (h *Handler) Call(fn, arg uint64) (ret uint64, shutdown bool) {
	metrics.SBICalls.Inc()
	switch fn {
	case FnConsolePutchar:
		h.serial.WriteByte(byte(arg))
		metrics.ConsoleBytes.Inc()
		return 0, false
	case FnConsoleGetchar:
		if len(h.input) == 0 {
			return NoChar, false
		}
		b := h.input[0]
		h.input = h.input[1:]
		return uint64(b), false
	case FnShutdown:
		return 0, true
	default:
		return 0, false
	}
}
