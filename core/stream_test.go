package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/internal/filters"
)

// xorCrypter is a reversible stand-in for a security handler.
type xorCrypter struct {
	authenticated bool
	calls         int
}

func (c *xorCrypter) Authenticated() bool { return c.authenticated }

func (c *xorCrypter) Encrypt(data []byte, objNum, genNum uint32) []byte {
	return c.xor(data, objNum, genNum)
}

func (c *xorCrypter) Decrypt(data []byte, objNum, genNum uint32) []byte {
	return c.xor(data, objNum, genNum)
}

func (c *xorCrypter) xor(data []byte, objNum, genNum uint32) []byte {
	c.calls++
	key := byte(objNum) ^ byte(genNum<<4)
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}

func streamLength(t *testing.T, s Stream) int64 {
	t.Helper()
	n, ok := s.Dict().GetInt("Length")
	if !ok {
		t.Fatal("stream has no Length")
	}
	return n
}

func TestStreamConstructors(t *testing.T) {
	a := alloc.New()
	defer checkReleased(t, a)

	empty := NewStream(a)
	defer empty.Release()
	if empty.RawSize() != 0 || streamLength(t, empty) != 0 {
		t.Errorf("empty stream: RawSize = %d, Length = %d", empty.RawSize(), streamLength(t, empty))
	}

	owned := NewStreamBytes(a, []byte("hello"))
	defer owned.Release()
	if owned.RawSize() != 5 || streamLength(t, owned) != 5 || owned.IsView() {
		t.Errorf("owned stream: RawSize = %d, Length = %d, view = %v", owned.RawSize(), streamLength(t, owned), owned.IsView())
	}
	raw, err := owned.RawBytes()
	if err != nil || string(raw) != "hello" {
		t.Errorf("RawBytes() = %q, %v", raw, err)
	}

	src := strings.NewReader("0123456789")
	view := NewStreamView(a, src, 2, 5)
	defer view.Release()
	if !view.IsView() || view.RawSize() != 5 || streamLength(t, view) != 5 {
		t.Errorf("view stream: view = %v, RawSize = %d", view.IsView(), view.RawSize())
	}
	raw, err = view.RawBytes()
	if err != nil || string(raw) != "23456" {
		t.Errorf("view RawBytes() = %q, %v", raw, err)
	}
	if got := view.String(); got != "<</Length 5>> stream (5 bytes)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStreamRawData(t *testing.T) {
	a := alloc.New()
	s := NewStreamBytes(a, []byte("abcdef"))
	defer s.Release()

	tests := []struct {
		name    string
		offset  int64
		size    int
		want    string
		wantEOF bool
	}{
		{"start", 0, 3, "abc", false},
		{"middle", 2, 2, "cd", false},
		{"short", 4, 5, "ef", true},
		{"past end", 6, 1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			n, err := s.RawData(tt.offset, buf)
			if got := string(buf[:n]); got != tt.want {
				t.Errorf("RawData() = %q, want %q", got, tt.want)
			}
			if gotEOF := errors.Is(err, io.EOF); gotEOF != tt.wantEOF {
				t.Errorf("RawData() err = %v, want EOF %v", err, tt.wantEOF)
			}
		})
	}

	if _, err := s.RawData(-1, make([]byte, 1)); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("negative offset err = %v", err)
	}
}

func TestStreamViewReadError(t *testing.T) {
	a := alloc.New()
	s := NewStreamView(a, strings.NewReader("abc"), 1, 10)
	defer s.Release()

	if _, err := s.RawBytes(); err == nil {
		t.Error("reading past the source succeeded")
	}

	c := s.Clone()
	defer c.Release()
	if c.IsView() {
		t.Error("clone of a view is still a view")
	}
	raw, _ := c.RawBytes()
	if string(raw) != "bc" || streamLength(t, c) != 2 {
		t.Errorf("clone keeps %q with Length %d, want \"bc\" with 2", raw, streamLength(t, c))
	}
}

func TestStreamCloneMaterializesView(t *testing.T) {
	a := alloc.New()
	defer checkReleased(t, a)

	src := []byte("xxPAYLOADxx")
	s := NewStreamView(a, bytes.NewReader(src), 2, 7)
	defer s.Release()
	s.Dict().SetName("Type", "Metadata")

	c := s.Clone()
	defer c.Release()
	if c.IsView() {
		t.Fatal("clone is still view backed")
	}
	if c.IsModified() {
		t.Error("fresh clone reports modified")
	}
	copy(src, "yyyyyyyyyyy")
	raw, _ := c.RawBytes()
	if string(raw) != "PAYLOAD" {
		t.Errorf("clone data = %q, want PAYLOAD", raw)
	}
	if name, _ := c.Dict().GetName("Type"); name != "Metadata" {
		t.Errorf("clone Type = %q", name)
	}

	c.Dict().SetName("Type", "XML")
	if name, _ := s.Dict().GetName("Type"); name != "Metadata" {
		t.Errorf("original Type = %q after mutating clone", name)
	}
}

func TestStreamSetRawData(t *testing.T) {
	payload := []byte(strings.Repeat("stream payload ", 20))

	tests := []struct {
		filter string
		want   string
	}{
		{"", ""},
		{filters.ASCIIHex, filters.ASCIIHex},
		{filters.ASCII85, filters.ASCII85},
		{filters.Flate, filters.Flate},
		{"Fl", filters.Flate},
		{filters.LZW, filters.LZW},
		{filters.RunLength, filters.RunLength},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			a := alloc.New()
			defer checkReleased(t, a)

			s := NewStreamBytes(a, []byte("old"))
			defer s.Release()
			s.Dict().SetDict("DecodeParms").SetInteger("Predictor", 12)

			if err := s.SetRawData(payload, tt.filter); err != nil {
				t.Fatalf("SetRawData() error = %v", err)
			}
			if !s.IsModified() {
				t.Error("SetRawData did not mark the stream modified")
			}
			if s.Dict().Has("DecodeParms") {
				t.Error("DecodeParms kept")
			}
			name, _ := s.Dict().GetName("Filter")
			if name != tt.want {
				t.Errorf("Filter = %q, want %q", name, tt.want)
			}
			if streamLength(t, s) != s.RawSize() {
				t.Errorf("Length = %d, RawSize = %d", streamLength(t, s), s.RawSize())
			}

			got, err := s.Decode()
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(payload, got); diff != "" {
				t.Errorf("decoded mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStreamSetRawDataRejectsDecodeOnly(t *testing.T) {
	a := alloc.New()
	s := NewStreamBytes(a, []byte("keep"))
	defer s.Release()

	for _, f := range []string{filters.CCITTFax, filters.DCT, "Bogus"} {
		if err := s.SetRawData([]byte("x"), f); err == nil {
			t.Errorf("SetRawData with %s succeeded", f)
		}
	}
	raw, _ := s.RawBytes()
	if string(raw) != "keep" || s.IsModified() {
		t.Errorf("failed SetRawData changed the stream: %q modified=%v", raw, s.IsModified())
	}
}

func TestStreamCrypter(t *testing.T) {
	a := alloc.New()
	s := NewStream(a)
	defer s.Release()
	s.SetObjectID(7, 0)

	c := &xorCrypter{}
	s.SetCrypter(c)

	// Not yet authenticated: data passes through.
	if err := s.SetRawData([]byte("plain"), ""); err != nil {
		t.Fatal(err)
	}
	if c.calls != 0 {
		t.Errorf("crypter called %d times before authentication", c.calls)
	}

	c.authenticated = true
	if err := s.SetRawData([]byte("secret"), ""); err != nil {
		t.Fatal(err)
	}
	stored := s.o.stream.data
	if string(stored) == "secret" {
		t.Error("stored data was not encrypted")
	}

	raw, err := s.RawBytes()
	if err != nil || string(raw) != "secret" {
		t.Errorf("RawBytes() = %q, %v", raw, err)
	}

	buf := make([]byte, 3)
	if n, _ := s.RawData(3, buf); string(buf[:n]) != "ret" {
		t.Errorf("RawData(3) = %q", buf[:n])
	}

	got, err := s.Decode()
	if err != nil || string(got) != "secret" {
		t.Errorf("Decode() = %q, %v", got, err)
	}
}

func TestStreamSetDictionary(t *testing.T) {
	a := alloc.New()
	defer checkReleased(t, a)

	s := NewStreamBytes(a, []byte("12345"))
	defer s.Release()

	d := NewDict(a)
	d.SetName("Type", "EmbeddedFile")
	d.SetInteger("Length", 999)
	s.SetDictionary(d)

	if streamLength(t, s) != 5 {
		t.Errorf("Length = %d, want 5", streamLength(t, s))
	}
	if name, _ := s.Dict().GetName("Type"); name != "EmbeddedFile" {
		t.Errorf("Type = %q", name)
	}
	if !s.IsModified() {
		t.Error("SetDictionary did not mark modified")
	}

	arr := NewArray(a)
	defer arr.Release()
	expectPanic(t, func() { s.SetDictionary(arr.AsDict()) })
}
