package kernel

import "github.com/basinvm/basin/core/rv64"

// Sysinfo guest ABI: six u64 words written at out_ptr, in order:
//
//	+0   memory base address
//	+8   memory size in bytes
//	+16  page size
//	+24  instructions retired (monotonic nanoseconds)
//	+32  live mapping count
//	+40  image digest prefix (first 8 bytes of the Keccak-256 of the ELF)
const sysinfoSize = 48

// sysSysinfo implements syscall 26. The destination range is validated in
// full before the first word is written.
func (k *Kernel) sysSysinfo(outPtr uint64) Result {
	if !k.mem.InRange(outPtr, sysinfoSize) {
		return Err(ErrInvalidArgument)
	}
	words := [6]uint64{
		k.mem.Base(),
		k.mem.Size(),
		rv64.PageSize,
		k.nowNanos(),
		uint64(k.mappingsActive()),
		k.imageDigest,
	}
	for i, w := range words {
		if err := k.mem.StoreU64(outPtr+uint64(i)*8, w); err != nil {
			return Err(ErrInvalidArgument)
		}
	}
	return Ok(0)
}
