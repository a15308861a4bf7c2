// Command basin runs an RV64 guest image under the Basin virtual machine.
//
// Usage:
//
//	basin [flags] <image.elf> [guest args...]
//
// Flags:
//
//	--config       Host configuration file path
//	--memory       Guest RAM size in bytes (default: 64 MiB)
//	--max-steps    Instruction budget, 0 = unbounded (default: 0)
//	--strict-align Fault misaligned accesses instead of auto-aligning
//	--strict-decode Fault compiler-quirk opcodes
//	--no-fp-fallback Disable the frame-pointer load/store fallback
//	--debug        Record a bounded instruction trace
//	--verbosity    Log level 0-5 (default: 3)
//	--metrics      Print a metrics report at exit
//	--version      Print version and exit
package main

import (
	"fmt"
	"os"

	"github.com/basinvm/basin/host"
	"github.com/basinvm/basin/log"
	"github.com/basinvm/basin/metrics"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	cfg, rest, exit, code := parseFlags(args)
	if exit {
		return code
	}
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "basin: no guest image given")
		return 2
	}

	level := log.VerbosityToLevel(cfg.Verbosity)
	if cfg.LogFormat == "text" {
		log.SetDefault(log.NewText(level))
	} else {
		log.SetDefault(log.New(level))
	}
	logger := log.Default().Module("main")
	logger.Info("basin starting", "version", version, "commit", commit,
		"memory", cfg.MemorySize, "max_steps", cfg.MaxSteps,
		"strict_align", cfg.StrictAlign, "strict_decode", cfg.StrictDecode)

	image, err := os.ReadFile(rest[0])
	if err != nil {
		logger.Error("cannot read guest image", "err", err.Error())
		return 1
	}

	h, err := host.New(cfg)
	if err != nil {
		logger.Error("invalid configuration", "err", err.Error())
		return 1
	}

	status, err := h.Run(image, rest)
	if cfg.Metrics {
		exporter := metrics.NewPrometheusExporter(metrics.DefaultRegistry,
			metrics.DefaultPrometheusConfig())
		fmt.Fprint(os.Stderr, exporter.Export())
	}
	if err != nil {
		logger.Error("run failed", "err", err.Error())
		return 1
	}

	logger.Info("guest finished", "status", status)
	return int(status & 0xff)
}
