package filters

import (
	"bytes"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
)

const hexDigits = "0123456789ABCDEF"

// HexFilter implements ASCIIHexDecode.
type HexFilter struct {
	alloc *alloc.Allocator
}

// NewHexFilter creates an ASCIIHexDecode filter bound to a.
func NewHexFilter(a *alloc.Allocator) *HexFilter {
	return &HexFilter{alloc: alloc.Or(a)}
}

// Encode writes two uppercase hex digits per byte followed by the > marker.
func (f *HexFilter) Encode(data []byte, out *bytes.Buffer) error {
	out.Grow(2*len(data) + 1)
	for _, b := range data {
		out.WriteByte(hexDigits[b>>4])
		out.WriteByte(hexDigits[b&0x0F])
	}
	out.WriteByte('>')
	return nil
}

// Decode reads pairs of hexadecimal digits up to the first '>'. Bytes that
// are not hex digits are skipped. A final unpaired digit is treated as if
// followed by 0.
func (f *HexFilter) Decode(data []byte, out *bytes.Buffer) error {
	var hi byte
	pending := false
	for _, c := range data {
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if pending {
			out.WriteByte(hi<<4 | v)
			pending = false
		} else {
			hi = v
			pending = true
		}
	}
	if pending {
		out.WriteByte(hi << 4)
	}
	return nil
}

// ASCIIHexDecode decodes ASCII hexadecimal encoded data.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	return run(NewHexFilter(nil).Decode, data)
}

// ASCIIHexEncode encodes data as ASCII hexadecimal terminated by '>'.
func ASCIIHexEncode(data []byte) ([]byte, error) {
	return run(NewHexFilter(nil).Encode, data)
}

// ASCII85Filter implements ASCII85Decode.
type ASCII85Filter struct {
	alloc *alloc.Allocator
}

// NewASCII85Filter creates an ASCII85Decode filter bound to a.
func NewASCII85Filter(a *alloc.Allocator) *ASCII85Filter {
	return &ASCII85Filter{alloc: alloc.Or(a)}
}

// Encode writes the base-85 form of data. A full group of four zero bytes
// becomes 'z'; a final group of n bytes becomes n+1 characters. No
// end-of-data marker is written.
func (f *ASCII85Filter) Encode(data []byte, out *bytes.Buffer) error {
	var group [5]byte
	for len(data) > 0 {
		n := 4
		if len(data) < n {
			n = len(data)
		}
		var tuple uint32
		for i := 0; i < 4; i++ {
			tuple <<= 8
			if i < n {
				tuple |= uint32(data[i])
			}
		}
		data = data[n:]

		if n == 4 && tuple == 0 {
			out.WriteByte('z')
			continue
		}
		for i := 4; i >= 0; i-- {
			group[i] = byte(tuple%85) + '!'
			tuple /= 85
		}
		out.Write(group[:n+1])
	}
	return nil
}

// Decode reads base-85 groups until the ~> marker or the end of data.
// Whitespace is ignored. 'z' stands for four zero bytes. A final partial
// group of 2 to 4 characters is padded with 'u' and yields 1 to 3 bytes.
func (f *ASCII85Filter) Decode(data []byte, out *bytes.Buffer) error {
	data = bytes.TrimPrefix(bytes.TrimLeft(data, " \t\r\n\f\x00"), []byte("<~"))

	var tuple uint64
	count := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isWhitespace(c) || c == '\b' || c == 0x7F:
			continue
		case c == '~':
			if i+1 < len(data) && data[i+1] != '>' {
				return corruptf("ascii85: '~' not followed by '>' at offset %d", i)
			}
			return f.flush(tuple, count, out)
		case c == 'z':
			if count != 0 {
				return corruptf("ascii85: 'z' inside a group at offset %d", i)
			}
			out.Write([]byte{0, 0, 0, 0})
		case c >= '!' && c <= 'u':
			tuple = tuple*85 + uint64(c-'!')
			count++
			if count == 5 {
				if tuple > 0xFFFFFFFF {
					return corruptf("ascii85: group overflows 32 bits at offset %d", i)
				}
				writeTuple(out, uint32(tuple), 4)
				tuple = 0
				count = 0
			}
		default:
			logger.Warn("ascii85: illegal character", zap.Int("offset", i), zap.Uint8("char", c))
			return corruptf("ascii85: illegal character %#x at offset %d", c, i)
		}
	}
	return f.flush(tuple, count, out)
}

// flush writes a final partial group.
func (f *ASCII85Filter) flush(tuple uint64, count int, out *bytes.Buffer) error {
	switch count {
	case 0:
		return nil
	case 1:
		return corruptf("ascii85: final group has a single character")
	}
	for i := count; i < 5; i++ {
		tuple = tuple*85 + 84 // 'u' - '!'
	}
	if tuple > 0xFFFFFFFF {
		return corruptf("ascii85: final group overflows 32 bits")
	}
	writeTuple(out, uint32(tuple), count-1)
	return nil
}

// writeTuple writes the n most significant bytes of tuple.
func writeTuple(out *bytes.Buffer, tuple uint32, n int) {
	for j := 0; j < n; j++ {
		out.WriteByte(byte(tuple >> (24 - j*8)))
	}
}

// ASCII85Decode decodes ASCII base-85 (Ascii85) encoded data.
func ASCII85Decode(data []byte) ([]byte, error) {
	return run(NewASCII85Filter(nil).Decode, data)
}

// ASCII85Encode encodes data as ASCII base-85 without the ~> marker.
func ASCII85Encode(data []byte) ([]byte, error) {
	return run(NewASCII85Filter(nil).Encode, data)
}

// hexValue converts a hexadecimal character to its numeric value (0-15).
func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

// isWhitespace reports whether c is a PDF whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
