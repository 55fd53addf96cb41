package filters

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestASCIIHexDecodeBasic tests basic ASCII hex decoding
func TestASCIIHexDecodeBasic(t *testing.T) {
	// "Hello" = 48 65 6C 6C 6F
	encoded := []byte("48656C6C6F>")
	expected := []byte("Hello")

	decoded, err := ASCIIHexDecode(encoded)
	if err != nil {
		t.Fatalf("ASCIIHexDecode failed: %v", err)
	}

	if !bytes.Equal(decoded, expected) {
		t.Errorf("decoded data doesn't match\ngot:  %s\nwant: %s", decoded, expected)
	}
}

func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"whitespace", "48 65\n6C\t6C 6F>", []byte("Hello")},
		{"lowercase", "48656c6c6f>", []byte("Hello")},
		{"odd digits", "48656C6C6>", []byte("Hell`")},
		{"no EOD", "48656C6C6F", []byte("Hello")},
		{"stops at EOD", "4865>6C6C", []byte("He")},
		{"skips non-hex", "48G5", []byte{0x48, 0x50}},
		{"empty", ">", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCIIHexDecode([]byte(tt.input))
			if err != nil {
				t.Fatalf("ASCIIHexDecode(%q) error: %v", tt.input, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ASCIIHexDecode(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestASCIIHexEncode(t *testing.T) {
	got, err := ASCIIHexEncode([]byte{0x00, 0x9F, 0xAB, 0xFF})
	if err != nil {
		t.Fatalf("ASCIIHexEncode failed: %v", err)
	}
	if want := "009FABFF>"; string(got) != want {
		t.Errorf("ASCIIHexEncode = %q, want %q", got, want)
	}
}

// TestASCII85DecodeBasic tests basic ASCII85 decoding
func TestASCII85DecodeBasic(t *testing.T) {
	decoded, err := ASCII85Decode([]byte("9jqo^~>"))
	if err != nil {
		t.Fatalf("ASCII85Decode failed: %v", err)
	}
	if string(decoded) != "Man " {
		t.Errorf("got %q, want %q", decoded, "Man ")
	}
}

func TestASCII85Zero(t *testing.T) {
	encoded, err := ASCII85Encode([]byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("ASCII85Encode failed: %v", err)
	}
	if string(encoded) != "z" {
		t.Errorf("ASCII85Encode([0 0 0 0]) = %q, want %q", encoded, "z")
	}

	decoded, err := ASCII85Decode([]byte("z"))
	if err != nil {
		t.Fatalf("ASCII85Decode failed: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0}, decoded); diff != "" {
		t.Errorf("ASCII85Decode(z) mismatch (-want +got):\n%s", diff)
	}
}

func TestASCII85Decode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whitespace", "9jq\no^ ~>", "Man "},
		{"prefix", "<~9jqo^~>", "Man "},
		{"multiple groups", "9jqo^BlbD-BleB1DJ+*+F(f,q~>", "Man is distinguished"},
		{"no EOD", "9jqo^", "Man "},
		{"partial group", "9jqo~>", "Man"},
		{"two char group", "9`~>", "M"},
		{"z between groups", "9jqo^z9jqo^~>", "Man \x00\x00\x00\x00Man "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("ASCII85Decode(%q) error: %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("ASCII85Decode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestASCII85DecodeCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		partial string
	}{
		{"illegal character", "9jqo^v", "Man "},
		{"z inside group", "9jqo^9jz", "Man "},
		{"single char group", "9jqo^9~>", "Man "},
		{"overflow", "s8W-\"9jqo^", ""},
		{"bad terminator", "9jqo^~x", "Man "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ASCII85Decode([]byte(tt.input))
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("ASCII85Decode(%q) error = %v, want ErrCorrupt", tt.input, err)
			}
			if string(got) != tt.partial {
				t.Errorf("partial output = %q, want %q", got, tt.partial)
			}
		})
	}
}

func TestASCII85EncodePartialGroup(t *testing.T) {
	got, err := ASCII85Encode([]byte("Man"))
	if err != nil {
		t.Fatalf("ASCII85Encode failed: %v", err)
	}
	if string(got) != "9jqo" {
		t.Errorf("ASCII85Encode(Man) = %q, want %q", got, "9jqo")
	}

	// A trailing zero group shorter than four bytes is not abbreviated.
	got, _ = ASCII85Encode([]byte{0, 0})
	if string(got) != "!!!" {
		t.Errorf("ASCII85Encode([0 0]) = %q, want %q", got, "!!!")
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	codecs := []struct {
		name   string
		encode func([]byte) ([]byte, error)
		decode func([]byte) ([]byte, error)
	}{
		{"hex", ASCIIHexEncode, ASCIIHexDecode},
		{"ascii85", ASCII85Encode, ASCII85Decode},
	}

	for _, c := range codecs {
		for _, input := range roundTripInputs() {
			encoded, err := c.encode(input)
			if err != nil {
				t.Fatalf("%s encode: %v", c.name, err)
			}
			decoded, err := c.decode(encoded)
			if err != nil {
				t.Fatalf("%s decode: %v", c.name, err)
			}
			if !bytes.Equal(decoded, input) {
				t.Errorf("%s round trip of %d bytes failed", c.name, len(input))
			}
		}
	}
}

// roundTripInputs returns a fixed set of buffers covering empty input,
// partial groups, long runs and random bytes.
func roundTripInputs() [][]byte {
	rng := rand.New(rand.NewSource(42))
	inputs := [][]byte{
		{},
		{0},
		{0xFF},
		{0, 0, 0, 0, 0},
		bytes.Repeat([]byte{0xAA}, 130),
		[]byte("Hello, World!"),
	}
	for _, n := range []int{3, 7, 64, 129, 1000, 4099} {
		b := make([]byte, n)
		rng.Read(b)
		inputs = append(inputs, b)
	}
	mixed := make([]byte, 0, 600)
	for i := 0; i < 20; i++ {
		mixed = append(mixed, bytes.Repeat([]byte{byte(i)}, i*3)...)
		mixed = append(mixed, byte(rng.Intn(256)), byte(rng.Intn(256)))
	}
	return append(inputs, mixed)
}

func TestHexValue(t *testing.T) {
	tests := []struct {
		input byte
		want  byte
		ok    bool
	}{
		{'0', 0, true},
		{'9', 9, true},
		{'A', 10, true},
		{'f', 15, true},
		{'G', 0, false},
		{' ', 0, false},
	}

	for _, tt := range tests {
		got, ok := hexValue(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("hexValue(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

// TestIsWhitespace tests the whitespace helper
func TestIsWhitespace(t *testing.T) {
	for _, c := range []byte{' ', '\t', '\r', '\n', '\f', 0} {
		if !isWhitespace(c) {
			t.Errorf("isWhitespace(%q) = false, want true", c)
		}
	}
	for _, c := range []byte{'a', '0', '~'} {
		if isWhitespace(c) {
			t.Errorf("isWhitespace(%q) = true, want false", c)
		}
	}
}
