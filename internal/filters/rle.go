package filters

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
)

const (
	rleEOD    = 128
	rleMaxRun = 128
)

// RLEFilter implements RunLengthDecode (PackBits).
type RLEFilter struct {
	alloc *alloc.Allocator
}

// NewRLEFilter creates a RunLengthDecode filter bound to a.
func NewRLEFilter(a *alloc.Allocator) *RLEFilter {
	return &RLEFilter{alloc: alloc.Or(a)}
}

// Encode writes repeat records (length 257-n) for runs of two or more equal
// bytes and literal records (length n-1) otherwise, then the EOD byte.
func (f *RLEFilter) Encode(data []byte, out *bytes.Buffer) error {
	i := 0
	for i < len(data) {
		run := runLength(data[i:])
		if run >= 2 {
			out.WriteByte(byte(257 - run))
			out.WriteByte(data[i])
			i += run
			continue
		}

		start := i
		for i < len(data) && i-start < rleMaxRun {
			if i+1 < len(data) && data[i] == data[i+1] {
				break
			}
			i++
		}
		out.WriteByte(byte(i - start - 1))
		out.Write(data[start:i])
	}
	out.WriteByte(rleEOD)
	return nil
}

// runLength counts how many leading bytes of data equal data[0], up to the
// longest run a single record can hold.
func runLength(data []byte) int {
	n := 1
	for n < len(data) && n < rleMaxRun && data[n] == data[0] {
		n++
	}
	return n
}

// Decode expands PackBits records until the EOD byte or the end of input.
// A record cut short by the end of input is copied as far as it goes and
// reported as corrupt.
func (f *RLEFilter) Decode(data []byte, out *bytes.Buffer) error {
	i := 0
	for i < len(data) {
		n := int(data[i])
		i++
		switch {
		case n == rleEOD:
			return nil
		case n < rleEOD:
			count := n + 1
			if i+count > len(data) {
				out.Write(data[i:])
				logger.Warn("rle: truncated literal record",
					zap.Int("want", count), zap.Int("have", len(data)-i))
				return corruptf("rle: literal record of %d bytes truncated to %d", count, len(data)-i)
			}
			out.Write(data[i : i+count])
			i += count
		default:
			if i >= len(data) {
				logger.Warn("rle: repeat record without a byte")
				return corruptf("rle: repeat record at end of data")
			}
			b := data[i]
			i++
			for j := 0; j < 257-n; j++ {
				out.WriteByte(b)
			}
		}
	}
	return nil
}

// RunLengthDecode decodes PackBits run-length encoded data.
func RunLengthDecode(data []byte) ([]byte, error) {
	return run(NewRLEFilter(nil).Decode, data)
}

// RunLengthEncode encodes data with PackBits, terminated by the EOD byte.
func RunLengthEncode(data []byte) ([]byte, error) {
	return run(NewRLEFilter(nil).Encode, data)
}
