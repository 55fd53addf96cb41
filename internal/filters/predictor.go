package filters

import (
	"bytes"

	"github.com/tsawler/pdfgraph/alloc"
)

// PNG row filter tags.
const (
	pngNone = iota
	pngSub
	pngUp
	pngAverage
	pngPaeth
)

// Predictor reverses (Decode) or applies (Encode) the TIFF or PNG
// prediction that may follow LZWDecode and FlateDecode.
//
// Predictor 1 is the identity, 2 is TIFF Predictor 2 and 10-15 are the PNG
// predictors. PNG data carries one tag byte per row, so decoding honors the
// tag regardless of which PNG value was declared. Encoding with 10-14 uses
// tag Predictor-10 on every row; 15 picks the tag per row.
type Predictor struct {
	alloc  *alloc.Allocator
	params PredictorParams
}

// NewPredictor creates a predictor stage bound to a.
func NewPredictor(a *alloc.Allocator, params PredictorParams) *Predictor {
	return &Predictor{alloc: alloc.Or(a), params: params}
}

// Decode undoes the prediction. A final row shorter than the stride is
// decoded as far as it goes and reported as corrupt.
func (p *Predictor) Decode(data []byte, out *bytes.Buffer) error {
	switch {
	case p.params.Predictor == 2:
		return p.tiff(data, out, true)
	case p.params.Predictor >= 10:
		return p.pngDecode(data, out)
	default:
		out.Write(data)
		return nil
	}
}

// Encode applies the prediction.
func (p *Predictor) Encode(data []byte, out *bytes.Buffer) error {
	switch {
	case p.params.Predictor == 2:
		return p.tiff(data, out, false)
	case p.params.Predictor >= 10:
		return p.pngEncode(data, out)
	default:
		out.Write(data)
		return nil
	}
}

// tiff runs TIFF Predictor 2 over each row: every component is stored as
// the difference from the same component of the pixel to its left.
func (p *Predictor) tiff(data []byte, out *bytes.Buffer, decode bool) error {
	stride := p.params.Stride()
	bpc := p.params.BitsPerComponent
	colors := p.params.Colors
	mask := uint32(1)<<uint(bpc) - 1

	row := p.alloc.Bytes(stride)
	defer p.alloc.Free(row)
	left := make([]uint32, colors)

	for len(data) > 0 {
		n := copy(row, data)
		for i := n; i < stride; i++ {
			row[i] = 0
		}
		for c := range left {
			left[c] = 0
		}

		for i := 0; i < p.params.Columns*colors; i++ {
			c := i % colors
			v := getComponent(row, i, bpc)
			if decode {
				v = (v + left[c]) & mask
				left[c] = v
			} else {
				left[c], v = v, (v-left[c])&mask
			}
			putComponent(row, i, bpc, v)
		}
		out.Write(row[:n])
		data = data[n:]
		if n < stride {
			return corruptf("predictor: final row has %d of %d bytes", n, stride)
		}
	}
	return nil
}

func (p *Predictor) pngDecode(data []byte, out *bytes.Buffer) error {
	stride := p.params.Stride()
	bpp := p.params.BytesPerPixel()

	prev := p.alloc.Bytes(stride)
	defer p.alloc.Free(prev)
	cur := p.alloc.Bytes(stride)
	defer p.alloc.Free(cur)

	for len(data) > 0 {
		tag := data[0]
		data = data[1:]
		n := copy(cur, data)
		for i := n; i < stride; i++ {
			cur[i] = 0
		}
		data = data[n:]

		if tag > pngPaeth {
			out.Write(cur[:n])
			return corruptf("predictor: unknown PNG row tag %d", tag)
		}
		for i := 0; i < stride; i++ {
			var a, c byte
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			cur[i] += pngPredict(tag, a, prev[i], c)
		}
		out.Write(cur[:n])
		if n < stride {
			return corruptf("predictor: final row has %d of %d bytes", n, stride)
		}
		prev, cur = cur, prev
	}
	return nil
}

func (p *Predictor) pngEncode(data []byte, out *bytes.Buffer) error {
	stride := p.params.Stride()
	bpp := p.params.BytesPerPixel()

	prev := p.alloc.Bytes(stride)
	defer p.alloc.Free(prev)
	cur := p.alloc.Bytes(stride)
	defer p.alloc.Free(cur)
	enc := p.alloc.Bytes(stride)
	defer p.alloc.Free(enc)

	for len(data) > 0 {
		n := copy(cur, data)
		for i := n; i < stride; i++ {
			cur[i] = 0
		}
		data = data[n:]

		tag := byte(p.params.Predictor - 10)
		if p.params.Predictor == 15 {
			tag = bestPNGTag(cur, prev, bpp)
		}
		pngFilterRow(enc, cur, prev, bpp, tag)
		out.WriteByte(tag)
		out.Write(enc)
		prev, cur = cur, prev
	}
	return nil
}

// pngFilterRow writes the tag-filtered form of cur into dst.
func pngFilterRow(dst, cur, prev []byte, bpp int, tag byte) {
	for i := range cur {
		var a, c byte
		if i >= bpp {
			a = cur[i-bpp]
			c = prev[i-bpp]
		}
		dst[i] = cur[i] - pngPredict(tag, a, prev[i], c)
	}
}

// bestPNGTag chooses the tag with the smallest sum of absolute signed
// residuals, the heuristic suggested by the PNG specification.
func bestPNGTag(cur, prev []byte, bpp int) byte {
	best, bestSum := byte(pngNone), -1
	for tag := byte(pngNone); tag <= pngPaeth; tag++ {
		sum := 0
		for i := range cur {
			var a, c byte
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			sum += abs(int(int8(cur[i] - pngPredict(tag, a, prev[i], c))))
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = tag, sum
		}
	}
	return best
}

// pngPredict returns the predicted byte for a PNG row tag, given the byte to
// the left (a), above (b) and above-left (c).
func pngPredict(tag, a, b, c byte) byte {
	switch tag {
	case pngSub:
		return a
	case pngUp:
		return b
	case pngAverage:
		return byte((int(a) + int(b)) / 2)
	case pngPaeth:
		return paethPredictor(a, b, c)
	default:
		return 0
	}
}

// paethPredictor implements the Paeth predictor algorithm from the PNG specification.
// It selects the neighbor (left, above, or upper-left) closest to a linear prediction.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// getComponent reads the i-th sample of bpc bits from a packed row.
func getComponent(row []byte, i, bpc int) uint32 {
	switch bpc {
	case 8:
		return uint32(row[i])
	case 16:
		return uint32(row[2*i])<<8 | uint32(row[2*i+1])
	default:
		bit := i * bpc
		shift := uint(8 - bpc - bit%8)
		return uint32(row[bit/8]>>shift) & (1<<uint(bpc) - 1)
	}
}

// putComponent stores the i-th sample of bpc bits into a packed row.
func putComponent(row []byte, i, bpc int, v uint32) {
	switch bpc {
	case 8:
		row[i] = byte(v)
	case 16:
		row[2*i] = byte(v >> 8)
		row[2*i+1] = byte(v)
	default:
		bit := i * bpc
		shift := uint(8 - bpc - bit%8)
		mask := byte(1<<uint(bpc)-1) << shift
		row[bit/8] = row[bit/8]&^mask | byte(v)<<shift&mask
	}
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ApplyPredictor reverses the predictor described by params. Data is
// returned unchanged when params name no predictor.
func ApplyPredictor(data []byte, params Params) ([]byte, error) {
	pp, err := PredictorParamsFrom(params)
	if err != nil {
		return nil, err
	}
	if pp.Predictor == 1 {
		return data, nil
	}
	return run(NewPredictor(nil, pp).Decode, data)
}
