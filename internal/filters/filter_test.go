package filters

import (
	"bytes"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfgraph/alloc"
)

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"AHx":          ASCIIHex,
		"A85":          ASCII85,
		"LZW":          LZW,
		"Fl":           Flate,
		"RL":           RunLength,
		"CCF":          CCITTFax,
		"DCT":          DCT,
		"FlateDecode":  Flate,
		"CustomFilter": "CustomFilter",
	}
	for in, want := range tests {
		if got := Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUsesPredictor(t *testing.T) {
	for _, name := range []string{LZW, Flate, "Fl"} {
		if !UsesPredictor(name) {
			t.Errorf("UsesPredictor(%q) = false, want true", name)
		}
	}
	for _, name := range []string{ASCIIHex, RunLength, DCT} {
		if UsesPredictor(name) {
			t.Errorf("UsesPredictor(%q) = true, want false", name)
		}
	}
}

func TestDefaultRegistryNames(t *testing.T) {
	want := []string{ASCII85, ASCIIHex, CCITTFax, DCT, Flate, JBIG2, JPX, LZW, RunLength}
	if diff := cmp.Diff(want, DefaultRegistry().Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryUnknown(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{Crypt, "Bogus"} {
		if _, err := r.New(name, nil, nil); !errors.Is(err, ErrUnsupportedFilter) {
			t.Errorf("New(%q) error = %v, want ErrUnsupportedFilter", name, err)
		}
	}
}

func TestRegistryAbbreviation(t *testing.T) {
	f, err := DefaultRegistry().New("AHx", nil, nil)
	if err != nil {
		t.Fatalf("New(AHx) failed: %v", err)
	}
	if _, ok := f.(*HexFilter); !ok {
		t.Errorf("New(AHx) = %T, want *HexFilter", f)
	}
}

func TestRegistryInvalidParams(t *testing.T) {
	_, err := DefaultRegistry().New(CCITTFax, nil, Params{"Columns": 0})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("error = %v, want ErrInvalidParams", err)
	}
}

func TestRegistryReplace(t *testing.T) {
	r := DefaultRegistry()
	called := false
	r.Register(JPX, JPXFactory(func(data []byte) (image.Image, error) {
		called = true
		return image.NewGray(image.Rect(0, 0, 1, 1)), nil
	}))

	f, err := r.New(JPX, nil, nil)
	if err != nil {
		t.Fatalf("New(JPX) failed: %v", err)
	}
	var out bytes.Buffer
	if err := f.Decode([]byte{1}, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !called || out.Len() != 1 {
		t.Errorf("custom decoder called=%v, output %d bytes", called, out.Len())
	}
}

func TestRegistryFiltersUseAllocator(t *testing.T) {
	a := alloc.New()
	r := DefaultRegistry()
	input := bytes.Repeat([]byte("allocator "), 1000)

	for _, name := range []string{ASCIIHex, ASCII85, RunLength, LZW, Flate} {
		f, err := r.New(name, a, nil)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", name, err)
		}
		var enc, dec bytes.Buffer
		if err := f.Encode(input, &enc); err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		if err := f.Decode(enc.Bytes(), &dec); err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !bytes.Equal(dec.Bytes(), input) {
			t.Errorf("%s round trip failed", name)
		}
	}
	if got := a.Stats().Bytes; got != 0 {
		t.Errorf("allocator holds %d bytes, want 0", got)
	}
}
