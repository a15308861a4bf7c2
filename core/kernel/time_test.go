package kernel

import (
	"testing"

	"github.com/basinvm/basin/core/rv64"
)

func TestClockGettime_Monotonic(t *testing.T) {
	mem := rv64.NewMemory(1 << 20)
	ticks := uint64(3*nsPerSec + 500)
	k := New(mem, func() uint64 { return ticks })

	out := mem.Base() + 0x1000
	res := k.HandleSyscall(SysClockGettime, ClockMonotonic, out, 0, 0)
	if !res.IsOK() {
		t.Fatalf("clock_gettime: %v", res)
	}
	sec, _ := mem.LoadU64(out)
	nsec, _ := mem.LoadU64(out + 8)
	if sec != 3 {
		t.Errorf("sec = %d, want 3", sec)
	}
	if nsec != 500 {
		t.Errorf("nsec = %d, want 500", nsec)
	}
}

func TestClockGettime_RealtimeAddsBootAnchor(t *testing.T) {
	mem := rv64.NewMemory(1 << 20)
	k := New(mem, func() uint64 { return 10 })
	k.SetBootRealtime(7 * nsPerSec)

	out := mem.Base() + 0x1000
	res := k.HandleSyscall(SysClockGettime, ClockRealtime, out, 0, 0)
	if !res.IsOK() {
		t.Fatalf("clock_gettime: %v", res)
	}
	sec, _ := mem.LoadU64(out)
	nsec, _ := mem.LoadU64(out + 8)
	if sec != 7 {
		t.Errorf("sec = %d, want 7", sec)
	}
	if nsec != 10 {
		t.Errorf("nsec = %d, want 10", nsec)
	}
}

func TestClockGettime_Validation(t *testing.T) {
	k, mem := newTestKernel(t)
	if res := k.HandleSyscall(SysClockGettime, 9, mem.Base(), 0, 0); res.Kind() != ErrInvalidArgument {
		t.Errorf("bad clock id: got %v, want err(invalid_argument)", res)
	}
	if res := k.HandleSyscall(SysClockGettime, ClockMonotonic, mem.Top()-8, 0, 0); res.Kind() != ErrInvalidArgument {
		t.Errorf("short out buffer: got %v, want err(invalid_argument)", res)
	}
}

func TestSleepUntil(t *testing.T) {
	k, _ := newTestKernel(t)
	res := k.HandleSyscall(SysSleepUntil, 12345, 0, 0, 0)
	if !res.IsOK() {
		t.Fatalf("sleep_until: %v", res)
	}
	if k.WakeDeadline() != 12345 {
		t.Errorf("wake deadline = %d, want 12345", k.WakeDeadline())
	}
	// The top bit is reserved; such timestamps are rejected.
	if res := k.HandleSyscall(SysSleepUntil, 1<<63, 0, 0, 0); res.Kind() != ErrInvalidArgument {
		t.Errorf("huge timestamp: got %v, want err(invalid_argument)", res)
	}
}

func TestSysinfo(t *testing.T) {
	mem := rv64.NewMemory(1 << 20)
	k := New(mem, func() uint64 { return 42 })
	k.SetImageDigest(0xABCDEF)

	// One live mapping so the count is non-zero.
	if res := k.HandleSyscall(SysMap, 0, rv64.PageSize, MapRead|MapWrite, 0); !res.IsOK() {
		t.Fatalf("map: %v", res)
	}

	out := mem.Base() + 0x2000
	res := k.HandleSyscall(SysSysinfo, out, 0, 0, 0)
	if !res.IsOK() {
		t.Fatalf("sysinfo: %v", res)
	}

	want := []uint64{mem.Base(), mem.Size(), rv64.PageSize, 42, 1, 0xABCDEF}
	for i, w := range want {
		v, err := mem.LoadU64(out + uint64(i)*8)
		if err != nil {
			t.Fatalf("LoadU64 word %d: %v", i, err)
		}
		if v != w {
			t.Errorf("sysinfo word %d = %#x, want %#x", i, v, w)
		}
	}

	if res := k.HandleSyscall(SysSysinfo, mem.Top()-8, 0, 0, 0); res.Kind() != ErrInvalidArgument {
		t.Errorf("short sysinfo buffer: got %v, want err(invalid_argument)", res)
	}
}
