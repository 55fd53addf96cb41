package filters

import (
	"bytes"
	"errors"

	"go.uber.org/zap"
)

const (
	faxEOL     = 0x001 // 000000000001
	faxEOLBits = 12
	faxRTC     = 6 // consecutive EOLs ending a block
)

var (
	errFaxCode = errors.New("invalid code")
	errFaxEOD  = errors.New("end of data")
)

type faxMode int

const (
	faxPass faxMode = iota
	faxHorizontal
	faxVertical
)

// faxModeCode is a two-dimensional coding mode. For vertical modes delta is
// the offset of a1 from b1.
type faxModeCode struct {
	mode  faxMode
	delta int
	bits  string
}

var faxModeCodes = []faxModeCode{
	{faxPass, 0, "0001"},
	{faxHorizontal, 0, "001"},
	{faxVertical, 0, "1"},
	{faxVertical, 1, "011"},
	{faxVertical, 2, "000011"},
	{faxVertical, 3, "0000011"},
	{faxVertical, -1, "010"},
	{faxVertical, -2, "000010"},
	{faxVertical, -3, "0000010"},
}

// faxKey identifies a code by its bit length and value.
type faxKey struct {
	n int
	v uint32
}

func parseFaxBits(bits string) faxKey {
	k := faxKey{n: len(bits)}
	for i := 0; i < len(bits); i++ {
		k.v <<= 1
		if bits[i] == '1' {
			k.v |= 1
		}
	}
	return k
}

func faxRunTable(codes []faxCode) map[faxKey]int {
	m := make(map[faxKey]int, len(codes))
	for _, c := range codes {
		m[parseFaxBits(c.bits)] = c.run
	}
	return m
}

var (
	faxWhiteRuns = faxRunTable(faxWhiteCodes)
	faxBlackRuns = faxRunTable(faxBlackCodes)
	faxModes     = func() map[faxKey]faxModeCode {
		m := make(map[faxKey]faxModeCode, len(faxModeCodes))
		for _, c := range faxModeCodes {
			m[parseFaxBits(c.bits)] = c
		}
		return m
	}()
)

// faxMaxCodeBits is the longest run-length code.
const faxMaxCodeBits = 13

// faxBits reads a byte slice MSB first. Bits past the end read as zero.
type faxBits struct {
	data []byte
	pos  int
}

func (b *faxBits) remaining() int { return len(b.data)*8 - b.pos }

func (b *faxBits) peek(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v <<= 1
		p := b.pos + i
		if p>>3 < len(b.data) && b.data[p>>3]&(0x80>>(p&7)) != 0 {
			v |= 1
		}
	}
	return v
}

func (b *faxBits) skip(n int) { b.pos += n }

func (b *faxBits) align() { b.pos = (b.pos + 7) &^ 7 }

// faxMatch consumes the shortest code of at most limit bits found in codes.
func faxMatch[T any](b *faxBits, codes map[faxKey]T, limit int) (T, error) {
	for n := 1; n <= limit && n <= b.remaining(); n++ {
		if c, ok := codes[faxKey{n, b.peek(n)}]; ok {
			b.skip(n)
			return c, nil
		}
	}
	var zero T
	if b.remaining() < limit {
		return zero, errFaxEOD
	}
	return zero, errFaxCode
}

// faxRowDecoder decodes Group 3 data one row at a time. It handles what
// x/image/ccitt does not: rows without end-of-line codes, and K > 0 where
// each row carries a tag bit, 1 for a one-dimensional row and 0 for a row
// coded against the previous one.
type faxRowDecoder struct {
	p    FaxParams
	bits faxBits
	ref  []bool // previous row, true is black
	cur  []bool
	row  []byte
}

// newFaxRowDecoder decodes data into row, which holds one packed row.
func newFaxRowDecoder(p FaxParams, data, row []byte) *faxRowDecoder {
	return &faxRowDecoder{
		p:    p,
		bits: faxBits{data: data},
		ref:  make([]bool, p.Columns),
		cur:  make([]bool, p.Columns),
		row:  row,
	}
}

func (d *faxRowDecoder) decode(out *bytes.Buffer) error {
	damaged := 0
	for rows := 0; d.p.Rows == 0 || rows < d.p.Rows; rows++ {
		twoD, ok := d.startRow()
		if !ok {
			return nil
		}

		n, err := d.decodeRow(twoD)
		switch {
		case err == nil:
		case errors.Is(err, errFaxEOD):
			if n > 0 {
				d.emit(out)
			}
			return nil
		case d.p.EndOfLine && d.p.K >= 0 && damaged < d.p.DamagedRowsBeforeError:
			damaged++
			logger.Warn("ccittfax: damaged row", zap.Int("row", rows), zap.Int("damaged", damaged))
			d.emit(out)
			d.skipToEOL()
			continue
		default:
			return corruptf("ccittfax: row %d: %v", rows, err)
		}

		d.emit(out)
		if d.p.EncodedByteAlign && !d.p.EndOfLine {
			d.bits.align()
		}
	}
	return nil
}

// startRow consumes fill bits and EOL codes ahead of a row and reports
// whether the row is two-dimensional. It returns false at the end of the
// data or of the block.
func (d *faxRowDecoder) startRow() (twoD, ok bool) {
	eols, tagged := 0, false
	for d.bits.remaining() > 0 {
		switch d.bits.peek(faxEOLBits) {
		case 0:
			d.bits.skip(1)
		case faxEOL:
			d.bits.skip(faxEOLBits)
			eols++
			if d.p.EndOfBlock && eols == faxRTC {
				return false, false
			}
			if d.p.K > 0 {
				twoD, tagged = d.bits.peek(1) == 0, true
				d.bits.skip(1)
			}
		default:
			if d.p.K > 0 && !tagged {
				twoD = d.bits.peek(1) == 0
				d.bits.skip(1)
			}
			return twoD, true
		}
	}
	return false, false
}

// decodeRow fills cur and returns how far into the row it got.
func (d *faxRowDecoder) decodeRow(twoD bool) (int, error) {
	if twoD {
		return d.decode2D()
	}
	return d.decode1D()
}

func (d *faxRowDecoder) decode1D() (int, error) {
	cols := d.p.Columns
	a, black := 0, false
	for a < cols {
		run, err := d.run(black)
		if err != nil {
			return a, err
		}
		end := min(a+run, cols)
		d.fill(a, end, black)
		a = end
		black = !black
	}
	return a, nil
}

func (d *faxRowDecoder) decode2D() (int, error) {
	cols := d.p.Columns
	a0, black := -1, false
	for a0 < cols {
		start := max(a0, 0)
		m, err := faxMatch(&d.bits, faxModes, 7)
		if err != nil {
			return start, err
		}

		b1 := d.b1(a0, black)
		switch m.mode {
		case faxPass:
			b2 := d.nextChange(b1)
			d.fill(start, b2, black)
			a0 = b2
		case faxHorizontal:
			r1, err := d.run(black)
			if err != nil {
				return start, err
			}
			r2, err := d.run(!black)
			if err != nil {
				return start, err
			}
			a1 := min(start+r1, cols)
			a2 := min(a1+r2, cols)
			d.fill(start, a1, black)
			d.fill(a1, a2, !black)
			a0 = a2
		case faxVertical:
			a1 := min(b1+m.delta, cols)
			if a1 < start {
				return start, errFaxCode
			}
			d.fill(start, a1, black)
			a0 = a1
			black = !black
		}
	}
	return a0, nil
}

// run reads a run length: make-up codes followed by one terminating code.
func (d *faxRowDecoder) run(black bool) (int, error) {
	codes := faxWhiteRuns
	if black {
		codes = faxBlackRuns
	}
	total := 0
	for {
		n, err := faxMatch(&d.bits, codes, faxMaxCodeBits)
		if err != nil {
			return total, err
		}
		total += n
		if n < 64 {
			return total, nil
		}
	}
}

// changes reports whether the reference row changes color at x. The pixel
// left of the row is white.
func (d *faxRowDecoder) changes(x int) bool {
	prev := false
	if x > 0 {
		prev = d.ref[x-1]
	}
	return d.ref[x] != prev
}

// b1 is the first changing element on the reference row right of a0 whose
// color is opposite to the current one.
func (d *faxRowDecoder) b1(a0 int, black bool) int {
	for x := a0 + 1; x < len(d.ref); x++ {
		if d.ref[x] != black && d.changes(x) {
			return x
		}
	}
	return len(d.ref)
}

func (d *faxRowDecoder) nextChange(x int) int {
	for x++; x < len(d.ref); x++ {
		if d.changes(x) {
			return x
		}
	}
	return len(d.ref)
}

func (d *faxRowDecoder) fill(from, to int, black bool) {
	for x := from; x < to; x++ {
		d.cur[x] = black
	}
}

func (d *faxRowDecoder) skipToEOL() {
	for d.bits.remaining() >= faxEOLBits && d.bits.peek(faxEOLBits) != faxEOL {
		d.bits.skip(1)
	}
}

// emit packs cur into out and makes it the reference row.
func (d *faxRowDecoder) emit(out *bytes.Buffer) {
	clear(d.row)
	for x, black := range d.cur {
		if black {
			d.row[x>>3] |= 0x80 >> (x & 7)
		}
	}
	if !d.p.BlackIs1 {
		for i := range d.row {
			d.row[i] ^= 0xFF
		}
	}
	out.Write(d.row)
	d.ref, d.cur = d.cur, d.ref
	clear(d.cur)
}
