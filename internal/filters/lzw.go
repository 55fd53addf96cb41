package filters

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
)

const (
	lzwClear     = 256
	lzwEOD       = 257
	lzwFirstCode = 258
	lzwMaxCodes  = 4096
	lzwMinWidth  = 9
	lzwMaxWidth  = 12
)

// LZWFilter implements LZWDecode with 9 to 12 bit codes.
//
// EarlyChange is the DecodeParms entry of the same name: 1 (the default)
// widens codes one entry before the table reaches a power of two, 0 widens
// exactly at it.
type LZWFilter struct {
	alloc       *alloc.Allocator
	earlyChange int
}

// NewLZWFilter creates an LZWDecode filter bound to a. Any earlyChange other
// than 0 is treated as 1.
func NewLZWFilter(a *alloc.Allocator, earlyChange int) *LZWFilter {
	if earlyChange != 0 {
		earlyChange = 1
	}
	return &LZWFilter{alloc: alloc.Or(a), earlyChange: earlyChange}
}

// codeWidth is the width of the next code once the table holds n entries.
func (f *LZWFilter) codeWidth(n int) uint {
	n += f.earlyChange
	switch {
	case n < 512:
		return 9
	case n < 1024:
		return 10
	case n < 2048:
		return 11
	default:
		return 12
	}
}

// Decode expands LZW codes until the EOD code or the end of input.
func (f *LZWFilter) Decode(data []byte, out *bytes.Buffer) error {
	br := bitReader{data: data}
	table := lzwTable()
	width := uint(lzwMinWidth)
	prev := -1
	full := false

	for {
		code, ok := br.read(width)
		if !ok {
			return nil
		}
		switch code {
		case lzwClear:
			table = table[:lzwFirstCode]
			width = lzwMinWidth
			prev = -1
			full = false
			continue
		case lzwEOD:
			return nil
		}

		var entry []byte
		switch {
		case code < len(table):
			entry = table[code]
		case code == len(table) && prev >= 0:
			// Code not yet in the table: previous entry plus its own first byte.
			p := table[prev]
			entry = make([]byte, len(p)+1)
			copy(entry, p)
			entry[len(p)] = p[0]
		default:
			return corruptf("lzw: code %d outside table of %d entries", code, len(table))
		}
		out.Write(entry)

		if prev >= 0 {
			if len(table) < lzwMaxCodes {
				p := table[prev]
				next := make([]byte, len(p)+1)
				copy(next, p)
				next[len(p)] = entry[0]
				table = append(table, next)
			} else if !full {
				full = true
				logger.Warn("lzw: code table full without a clear code", zap.Int("offset", br.pos))
			}
		}
		prev = code

		if width < lzwMaxWidth && len(table)+f.earlyChange >= 1<<width {
			width++
		}
	}
}

// lzwTable returns a table holding the 256 single-byte entries and two
// placeholders for the clear and EOD codes.
func lzwTable() [][]byte {
	table := make([][]byte, lzwFirstCode, lzwMaxCodes)
	for i := 0; i < 256; i++ {
		table[i] = []byte{byte(i)}
	}
	return table
}

type lzwKey struct {
	prefix int
	next   byte
}

// Encode compresses data, starting with a clear code and ending with EOD.
// Each code is written at the width the decoder will be reading at, and the
// table is cleared before it overflows.
func (f *LZWFilter) Encode(data []byte, out *bytes.Buffer) error {
	bw := bitWriter{out: out}
	dict := make(map[lzwKey]int)
	nextCode := lzwFirstCode
	decLen := lzwFirstCode // decoder's table length when it reads the next code
	first := true

	emit := func(code int) {
		bw.write(uint32(code), f.codeWidth(decLen))
		if !first {
			decLen++
		}
		first = false
	}
	reset := func() {
		bw.write(lzwClear, f.codeWidth(decLen))
		for k := range dict {
			delete(dict, k)
		}
		nextCode = lzwFirstCode
		decLen = lzwFirstCode
		first = true
	}

	bw.write(lzwClear, lzwMinWidth)
	if len(data) > 0 {
		prefix := int(data[0])
		for _, b := range data[1:] {
			k := lzwKey{prefix: prefix, next: b}
			if code, ok := dict[k]; ok {
				prefix = code
				continue
			}
			emit(prefix)
			dict[k] = nextCode
			nextCode++
			prefix = int(b)
			if nextCode == lzwMaxCodes {
				reset()
			}
		}
		emit(prefix)
	}
	bw.write(lzwEOD, f.codeWidth(decLen))
	bw.flush()
	return nil
}

// LZWDecode decodes LZW compressed data with EarlyChange 1.
func LZWDecode(data []byte) ([]byte, error) {
	return run(NewLZWFilter(nil, 1).Decode, data)
}

// LZWEncode compresses data with LZW and EarlyChange 1.
func LZWEncode(data []byte) ([]byte, error) {
	return run(NewLZWFilter(nil, 1).Encode, data)
}

// bitReader reads MSB-first codes from a byte slice.
type bitReader struct {
	data  []byte
	pos   int
	acc   uint32
	nbits uint
}

func (r *bitReader) read(width uint) (int, bool) {
	for r.nbits < width {
		if r.pos >= len(r.data) {
			return 0, false
		}
		r.acc = r.acc<<8 | uint32(r.data[r.pos])
		r.pos++
		r.nbits += 8
	}
	r.nbits -= width
	code := int(r.acc>>r.nbits) & (1<<width - 1)
	r.acc &= 1<<r.nbits - 1
	return code, true
}

// bitWriter packs MSB-first codes into a buffer.
type bitWriter struct {
	out   *bytes.Buffer
	acc   uint32
	nbits uint
}

func (w *bitWriter) write(code uint32, width uint) {
	w.acc = w.acc<<width | code&(1<<width-1)
	w.nbits += width
	for w.nbits >= 8 {
		w.nbits -= 8
		w.out.WriteByte(byte(w.acc >> w.nbits))
	}
	w.acc &= 1<<w.nbits - 1
}

// flush writes any remaining bits padded with zeros.
func (w *bitWriter) flush() {
	if w.nbits > 0 {
		w.out.WriteByte(byte(w.acc << (8 - w.nbits)))
		w.acc = 0
		w.nbits = 0
	}
}
