package filters

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func TestDCTDecodeGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var src bytes.Buffer
	if err := jpeg.Encode(&src, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}

	var out bytes.Buffer
	if err := NewDCTFilter(nil).Decode(src.Bytes(), &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.Len() != 64 {
		t.Fatalf("decoded %d bytes, want 64", out.Len())
	}
	for i, b := range out.Bytes() {
		if b < 0x7C || b > 0x84 {
			t.Fatalf("sample %d = %#x, want about 0x80", i, b)
		}
	}
}

func TestDCTDecodeCorrupt(t *testing.T) {
	var out bytes.Buffer
	err := NewDCTFilter(nil).Decode([]byte("not a jpeg"), &out)
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("error = %v, want ErrCorrupt", err)
	}
}

func TestJPXNoDecoder(t *testing.T) {
	var out bytes.Buffer
	if err := NewJPXFilter(nil, nil).Decode([]byte{0}, &out); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("error = %v, want ErrNoDecoder", err)
	}
}

func TestJPXDecoder(t *testing.T) {
	dec := func(data []byte) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 2, 1))
		img.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
		img.Set(1, 0, color.RGBA{R: 4, G: 5, B: 6, A: 255})
		return img, nil
	}
	var out bytes.Buffer
	if err := NewJPXFilter(nil, dec).Decode([]byte{0}, &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if want := []byte{1, 2, 3, 4, 5, 6}; !bytes.Equal(out.Bytes(), want) {
		t.Errorf("Decode = %v, want %v", out.Bytes(), want)
	}
}

func TestJBIG2Decoder(t *testing.T) {
	var gotGlobals []byte
	dec := func(page, globals []byte) (image.Image, error) {
		gotGlobals = globals
		img := image.NewGray(image.Rect(0, 0, 10, 2))
		for i := range img.Pix {
			img.Pix[i] = 0xFF
		}
		img.SetGray(0, 0, color.Gray{})
		img.SetGray(9, 1, color.Gray{})
		return img, nil
	}

	var out bytes.Buffer
	f := NewJBIG2Filter(nil, dec, []byte("globals"))
	if err := f.Decode([]byte("page"), &out); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(gotGlobals) != "globals" {
		t.Errorf("decoder saw globals %q, want %q", gotGlobals, "globals")
	}
	want := []byte{0x7F, 0xC0, 0xFF, 0x80}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("Decode = %x, want %x", out.Bytes(), want)
	}
}

func TestJBIG2NoDecoder(t *testing.T) {
	var out bytes.Buffer
	if err := NewJBIG2Filter(nil, nil, nil).Decode([]byte{0}, &out); !errors.Is(err, ErrNoDecoder) {
		t.Errorf("error = %v, want ErrNoDecoder", err)
	}
}
