package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/basinvm/basin/host"
)

// parseFlags parses CLI arguments into a host.Config plus the remaining
// positional arguments (guest image and argv). It returns whether the
// caller should exit immediately, and with what code.
func parseFlags(args []string) (host.Config, []string, bool, int) {
	cfg := host.DefaultConfig()

	fs := newCustomFlagSet("basin")
	configPath := fs.String("config", "", "host configuration file path")
	fs.Uint64Var(&cfg.MemorySize, "memory", cfg.MemorySize, "guest RAM size in bytes")
	fs.Uint64Var(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "instruction budget, 0 = unbounded")
	strictAlign := fs.Bool("strict-align", false, "fault misaligned accesses")
	strictDecode := fs.Bool("strict-decode", false, "fault compiler-quirk opcodes")
	noFPFallback := fs.Bool("no-fp-fallback", false, "disable the frame-pointer load/store fallback")
	debug := fs.Bool("debug", false, "record a bounded instruction trace")
	verbosity := fs.Int("verbosity", cfg.Verbosity, "log level 0-5")
	metricsOn := fs.Bool("metrics", false, "print a metrics report at exit")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, nil, true, 2
	}
	if *showVersion {
		fmt.Printf("basin %s (%s)\n", version, commit)
		return cfg, nil, true, 0
	}

	// The config file provides the base; flags given explicitly win over it.
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot read config: %v\n", err)
			return cfg, nil, true, 1
		}
		loaded, err := host.LoadConfig(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return cfg, nil, true, 1
		}
		base := *loaded
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "memory":
				base.MemorySize = cfg.MemorySize
			case "max-steps":
				base.MaxSteps = cfg.MaxSteps
			case "verbosity":
				base.Verbosity = *verbosity
			}
		})
		cfg = base
	}

	if *strictAlign {
		cfg.StrictAlign = true
	}
	if *strictDecode {
		cfg.StrictDecode = true
	}
	if *noFPFallback {
		cfg.NoFramePointerFallback = true
	}
	if *debug {
		cfg.Debug = true
	}
	if *metricsOn {
		cfg.Metrics = true
	}
	if *configPath == "" {
		cfg.Verbosity = *verbosity
	}

	return cfg, fs.Args(), false, 0
}

// flagSet wraps flag.FlagSet to add support for uint64 flags.
type flagSet struct {
	*flag.FlagSet
}

// newCustomFlagSet creates a flagSet with ContinueOnError behavior.
func newCustomFlagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &flagSet{FlagSet: fs}
}

// Uint64Var defines a uint64 flag. Go's standard flag package lacks uint64
// support, so we use a custom Value implementation.
func (fs *flagSet) Uint64Var(p *uint64, name string, value uint64, usage string) {
	fs.FlagSet.Var(&uint64Value{p: p}, name, usage)
	*p = value
}

// uint64Value implements flag.Value for uint64 flags.
type uint64Value struct {
	p *uint64
}

func (v *uint64Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v *uint64Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}
