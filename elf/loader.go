package elf

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/basinvm/basin/core/rv64"
	"github.com/basinvm/basin/log"
	"github.com/basinvm/basin/metrics"
)

// Image is the result of a successful load. The ELF buffer itself is not
// retained; the digest identifies the program in logs and sysinfo.
type Image struct {
	Entry    uint64
	Segments []Segment
	Digest   [32]byte
}

// DigestPrefix returns the first 8 digest bytes as a little-endian word,
// the form sysinfo hands to the guest.
func (img *Image) DigestPrefix() uint64 {
	return binary.LittleEndian.Uint64(img.Digest[:8])
}

// Load populates guest memory from an ELF image. The three stages run in
// order: header validation, mapping checks across every segment, then the
// data loads. Nothing is written until every segment has been validated,
// so a rejected image leaves memory untouched.
func Load(data []byte, mem *rv64.Memory) (*Image, error) {
	start := time.Now()

	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	segs, err := loadSegments(data, h)
	if err != nil {
		return nil, err
	}
	if err := mapSegments(segs, data, mem); err != nil {
		return nil, err
	}
	if err := copySegments(segs, data, mem); err != nil {
		return nil, err
	}

	img := &Image{Entry: h.Entry, Segments: segs}
	kec := sha3.NewLegacyKeccak256()
	kec.Write(data)
	kec.Sum(img.Digest[:0])

	metrics.ImagesLoaded.Inc()
	metrics.ImageLoadTime.Observe(float64(time.Since(start).Microseconds()) / 1000)
	log.Default().Module("elf").Info("image loaded",
		"entry", h.Entry, "segments", len(segs), "digest", img.DigestPrefix())
	return img, nil
}

// mapSegments is the second stage: every segment's invariants are checked
// before the first byte moves.
func mapSegments(segs []Segment, data []byte, mem *rv64.Memory) error {
	for _, s := range segs {
		if s.MemSize < s.FileSize {
			return ErrBadSegment
		}
		end := s.FileOffset + s.FileSize
		if end < s.FileOffset || end > uint64(len(data)) {
			return ErrTruncated
		}
		if !mem.InRange(s.MemOffset, s.MemSize) {
			return ErrSegmentBounds
		}
	}
	return nil
}

// copySegments is the third stage: file bytes in, BSS zeroed.
func copySegments(segs []Segment, data []byte, mem *rv64.Memory) error {
	for _, s := range segs {
		if err := mem.WriteRange(s.MemOffset, data[s.FileOffset:s.FileOffset+s.FileSize]); err != nil {
			return err
		}
		if s.MemSize > s.FileSize {
			if err := mem.Zero(s.MemOffset+s.FileSize, s.MemSize-s.FileSize); err != nil {
				return err
			}
		}
	}
	return nil
}
