package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
)

const flateScratchSize = 4096

// FlateFilter implements FlateDecode on top of compress/zlib.
type FlateFilter struct {
	alloc *alloc.Allocator
	level int
}

// NewFlateFilter creates a FlateDecode filter bound to a.
func NewFlateFilter(a *alloc.Allocator) *FlateFilter {
	return &FlateFilter{alloc: alloc.Or(a), level: zlib.DefaultCompression}
}

// Encode compresses data into a zlib stream.
func (f *FlateFilter) Encode(data []byte, out *bytes.Buffer) error {
	w, err := zlib.NewWriterLevel(out, f.level)
	if err != nil {
		return fmt.Errorf("flate: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("flate: %w", err)
	}
	return w.Close()
}

// Decode inflates a zlib stream through a fixed scratch buffer until the
// stream ends. Data without a valid zlib header is inflated as raw deflate.
// Output recovered before an error is kept.
func (f *FlateFilter) Decode(data []byte, out *bytes.Buffer) error {
	var r io.ReadCloser
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		logger.Debug("flate: no zlib header, trying raw deflate", zap.Error(err))
		r = flate.NewReader(bytes.NewReader(data))
	} else {
		r = zr
	}
	defer r.Close()

	scratch := f.alloc.Bytes(flateScratchSize)
	defer f.alloc.Free(scratch)

	for {
		n, err := r.Read(scratch)
		out.Write(scratch[:n])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return corruptf("flate: %v", err)
		}
	}
}

// FlateDecode decompresses Flate (zlib/deflate) compressed data.
// This is the most common compression filter in PDFs. It optionally applies
// a predictor algorithm for image data decompression.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	decompressed, err := run(NewFlateFilter(nil).Decode, data)
	if err != nil {
		return decompressed, fmt.Errorf("zlib decompression failed: %w", err)
	}
	return ApplyPredictor(decompressed, params)
}

// FlateEncode compresses data with zlib.
func FlateEncode(data []byte) ([]byte, error) {
	return run(NewFlateFilter(nil).Encode, data)
}
