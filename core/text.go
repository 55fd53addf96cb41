package core

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/tsawler/pdfgraph/alloc"
)

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
)

// pdfDocHigh maps the PDFDocEncoding bytes that differ from Latin-1.
// Zero marks an undefined code.
var pdfDocHigh = map[byte]rune{
	0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9,
	0x1C: 0x02DD, 0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
	0x7F: 0,
	0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026,
	0x84: 0x2014, 0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044,
	0x88: 0x2039, 0x89: 0x203A, 0x8A: 0x2212, 0x8B: 0x2030,
	0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D, 0x8F: 0x2018,
	0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
	0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160,
	0x98: 0x0178, 0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142,
	0x9C: 0x0153, 0x9D: 0x0161, 0x9E: 0x017E, 0x9F: 0,
	0xA0: 0x20AC, 0xAD: 0,
}

var pdfDocReverse = func() map[rune]byte {
	m := make(map[rune]byte, len(pdfDocHigh))
	for b, r := range pdfDocHigh {
		if r != 0 {
			m[r] = b
		}
	}
	return m
}()

// Text decodes the string as a PDF text string: UTF-16 or UTF-8 when it
// starts with a byte order mark, PDFDocEncoding otherwise.
func (s String) Text() string {
	data := s.Bytes()
	switch {
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian)
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):])
	}

	var sb bytes.Buffer
	for _, b := range data {
		if r, ok := pdfDocHigh[b]; ok {
			if r == 0 {
				r = utf8.RuneError
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

func decodeUTF16(data []byte, order unicode.Endianness) string {
	dec := unicode.UTF16(order, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return string(bytes.ToValidUTF8(out, []byte(string(utf8.RuneError))))
	}
	return string(out)
}

// NewTextString creates a string holding text as a PDF text string:
// PDFDocEncoding when every rune has a code there, UTF-16BE with a byte
// order mark otherwise.
func NewTextString(a *alloc.Allocator, text string) String {
	if enc, ok := encodePDFDoc(text); ok {
		return NewString(a, enc)
	}
	enc, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		// Only invalid UTF-8 input fails; keep it byte for byte.
		return NewString(a, []byte(text))
	}
	return NewString(a, enc)
}

func encodePDFDoc(text string) ([]byte, bool) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if b, ok := pdfDocReverse[r]; ok {
			out = append(out, b)
			continue
		}
		if r > 0xFF || r == utf8.RuneError {
			return nil, false
		}
		if _, special := pdfDocHigh[byte(r)]; special {
			return nil, false
		}
		out = append(out, byte(r))
	}
	return out, true
}
