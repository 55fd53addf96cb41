package filters

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/image/ccitt"

	"github.com/tsawler/pdfgraph/alloc"
)

// FaxFilter implements CCITTFaxDecode. Output rows are packed one bit per
// pixel and padded to a whole byte.
type FaxFilter struct {
	alloc  *alloc.Allocator
	params FaxParams
}

// NewFaxFilter creates a CCITTFaxDecode filter bound to a.
func NewFaxFilter(a *alloc.Allocator, params FaxParams) *FaxFilter {
	return &FaxFilter{alloc: alloc.Or(a), params: params}
}

// Encode is not supported.
func (f *FaxFilter) Encode(data []byte, out *bytes.Buffer) error {
	return ErrEncodeUnsupported
}

// Decode decodes Group 3 or Group 4 data.
//
// K selects the coding: K < 0 is pure Group 4, K = 0 is Group 3
// one-dimensional and K > 0 is mixed one- and two-dimensional Group 3.
// Group 4 goes through golang.org/x/image/ccitt, as does plain
// one-dimensional Group 3 with EndOfLine set. Every other Group 3 variant
// (no EOL codes, K > 0, byte-aligned rows, tolerated damaged rows) uses
// faxRowDecoder, which also accepts fill bits ahead of EOL codes. BlackIs1
// maps to ccitt.Options.Invert. Rows = 0 decodes up to the end-of-block code
// or the end of the data.
func (f *FaxFilter) Decode(data []byte, out *bytes.Buffer) error {
	p := f.params
	if p.K >= 0 && !faxPlainGroup3(p) {
		row := f.alloc.Bytes((p.Columns + 7) / 8)
		defer f.alloc.Free(row)
		return newFaxRowDecoder(p, data, row).decode(out)
	}

	sf := ccitt.Group3
	if p.K < 0 {
		sf = ccitt.Group4
	}

	rows := p.Rows
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{Align: p.EncodedByteAlign, Invert: p.BlackIs1}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, p.Columns, rows, opts)

	scratch := f.alloc.Bytes(flateScratchSize)
	defer f.alloc.Free(scratch)
	for {
		n, err := r.Read(scratch)
		out.Write(scratch[:n])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return corruptf("ccittfax: %v", err)
		}
	}
}

// faxPlainGroup3 reports whether Group 3 data has the shape x/image/ccitt
// reads: one-dimensional rows, each after an EOL code with no fill.
func faxPlainGroup3(p FaxParams) bool {
	return p.K == 0 && p.EndOfLine && !p.EncodedByteAlign && p.DamagedRowsBeforeError == 0
}

// CCITTFaxDecode decodes CCITT Group 3/4 fax compressed data.
// This is commonly used for bi-level (black and white) images in PDFs,
// particularly for scanned documents.
//
// Parameters from the PDF decode parameters dictionary:
//   - K: Group selector (-1=Group4, 0=Group3 1D, >0=Group3 mixed 1D/2D)
//   - Columns: Image width in pixels (default 1728)
//   - Rows: Image height in pixels (default 0, uses AutoDetectHeight)
//   - BlackIs1: Bit interpretation (default false, white is 1)
//   - EncodedByteAlign: Byte-aligned rows (default false)
//   - EndOfLine: Rows are preceded by EOL codes (default false)
//   - EndOfBlock: Data ends with an end-of-block code (default true)
//   - DamagedRowsBeforeError: Damaged rows tolerated when EndOfLine is set
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	fp, err := FaxParamsFrom(params)
	if err != nil {
		return nil, err
	}
	return run(NewFaxFilter(nil, fp).Decode, data)
}
