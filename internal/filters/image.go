package filters

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/tsawler/pdfgraph/alloc"
)

// ImageDecoder decodes one encoded image, such as a JPEG 2000 codestream.
type ImageDecoder func(data []byte) (image.Image, error)

// JBIG2Decoder decodes a JBIG2 page stream. globals holds the shared
// segments from the JBIG2Globals stream and may be nil.
type JBIG2Decoder func(page, globals []byte) (image.Image, error)

// DCTFilter implements DCTDecode with image/jpeg. Decoded samples are
// written row by row: one byte per pixel for gray, three for RGB and YCbCr,
// four for CMYK.
type DCTFilter struct {
	alloc *alloc.Allocator
}

// NewDCTFilter creates a DCTDecode filter bound to a.
func NewDCTFilter(a *alloc.Allocator) *DCTFilter {
	return &DCTFilter{alloc: alloc.Or(a)}
}

// Encode is not supported.
func (f *DCTFilter) Encode(data []byte, out *bytes.Buffer) error {
	return ErrEncodeUnsupported
}

// Decode decodes a baseline or progressive JPEG.
func (f *DCTFilter) Decode(data []byte, out *bytes.Buffer) error {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return corruptf("dct: %v", err)
	}
	writePixels(img, out)
	return nil
}

// JPXFilter adapts an external JPEG 2000 decoder.
type JPXFilter struct {
	alloc  *alloc.Allocator
	decode ImageDecoder
}

// NewJPXFilter creates a JPXDecode filter. With a nil decoder every Decode
// fails with ErrNoDecoder.
func NewJPXFilter(a *alloc.Allocator, decode ImageDecoder) *JPXFilter {
	return &JPXFilter{alloc: alloc.Or(a), decode: decode}
}

// Encode is not supported.
func (f *JPXFilter) Encode(data []byte, out *bytes.Buffer) error {
	return ErrEncodeUnsupported
}

// Decode runs the external decoder and copies its pixels to out.
func (f *JPXFilter) Decode(data []byte, out *bytes.Buffer) error {
	if f.decode == nil {
		return ErrNoDecoder
	}
	img, err := f.decode(data)
	if err != nil {
		return corruptf("jpx: %v", err)
	}
	writePixels(img, out)
	return nil
}

// JBIG2Filter adapts an external JBIG2 decoder. Output is one bit per pixel,
// rows padded to a byte, with 0 for black as in an image mask.
type JBIG2Filter struct {
	alloc   *alloc.Allocator
	decode  JBIG2Decoder
	globals []byte
}

// NewJBIG2Filter creates a JBIG2Decode filter. With a nil decoder every
// Decode fails with ErrNoDecoder.
func NewJBIG2Filter(a *alloc.Allocator, decode JBIG2Decoder, globals []byte) *JBIG2Filter {
	return &JBIG2Filter{alloc: alloc.Or(a), decode: decode, globals: globals}
}

// Encode is not supported.
func (f *JBIG2Filter) Encode(data []byte, out *bytes.Buffer) error {
	return ErrEncodeUnsupported
}

// Decode runs the external decoder and packs its pixels.
func (f *JBIG2Filter) Decode(data []byte, out *bytes.Buffer) error {
	if f.decode == nil {
		return ErrNoDecoder
	}
	img, err := f.decode(data, f.globals)
	if err != nil {
		return corruptf("jbig2: %v", err)
	}

	b := img.Bounds()
	row := f.alloc.Bytes((b.Dx() + 7) / 8)
	defer f.alloc.Free(row)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for i := range row {
			row[i] = 0
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y >= 128 {
				i := x - b.Min.X
				row[i/8] |= 0x80 >> uint(i%8)
			}
		}
		out.Write(row)
	}
	return nil
}

// JPXFactory returns a registry factory that decodes JPXDecode streams with dec.
func JPXFactory(dec ImageDecoder) Factory {
	return func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewJPXFilter(a, dec), nil
	}
}

// JBIG2Factory returns a registry factory that decodes JBIG2Decode streams
// with dec. The JBIG2Globals parameter, when present, must already hold the
// decoded globals bytes.
func JBIG2Factory(dec JBIG2Decoder) Factory {
	return func(a *alloc.Allocator, p Params) (Filter, error) {
		return NewJBIG2Filter(a, dec, getBytesParam(p, "JBIG2Globals")), nil
	}
}

// writePixels copies the samples of img to out in row order.
func writePixels(img image.Image, out *bytes.Buffer) {
	b := img.Bounds()
	switch m := img.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			out.Write(m.Pix[i : i+b.Dx()])
		}
	case *image.CMYK:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			out.Write(m.Pix[i : i+4*b.Dx()])
		}
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := m.YCbCrAt(x, y)
				r, g, bl := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				out.Write([]byte{r, g, bl})
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
				out.Write([]byte{c.R, c.G, c.B})
			}
		}
	}
}
