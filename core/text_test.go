package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfgraph/alloc"
)

func TestStringText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"ascii", []byte("Hello"), "Hello"},
		{"latin1", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"pdfdoc bullet", []byte{0x80, ' ', 'x'}, "• x"},
		{"pdfdoc euro", []byte{0xA0, '5'}, "€5"},
		{"undefined code", []byte{'a', 0x9F}, "a�"},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i', 0x26, 0x3A}, "Hi☺"},
		{"utf16le", []byte{0xFF, 0xFE, 'O', 0x00, 'K', 0x00}, "OK"},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 0xE2, 0x82, 0xAC}, "€"},
		{"empty", nil, ""},
	}

	a := alloc.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewString(a, tt.data)
			defer s.Release()
			if got := s.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTextString(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []byte
	}{
		{"ascii", "Title", []byte("Title")},
		{"latin1", "Résumé", []byte{'R', 0xE9, 's', 'u', 'm', 0xE9}},
		{"pdfdoc", "“quoted”", []byte{0x8D, 'q', 'u', 'o', 't', 'e', 'd', 0x8E}},
		{"needs utf16", "日本", []byte{0xFE, 0xFF, 0x65, 0xE5, 0x67, 0x2C}},
	}

	a := alloc.New()
	defer checkReleased(t, a)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTextString(a, tt.text)
			defer s.Release()
			if diff := cmp.Diff(tt.want, s.Bytes()); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
			if got := s.Text(); got != tt.text {
				t.Errorf("Text() round trip = %q, want %q", got, tt.text)
			}
		})
	}
}
