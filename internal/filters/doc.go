// Package filters provides the PDF stream filters.
//
// Every filter implements Filter: Encode and Decode append their output to a
// caller-supplied bytes.Buffer and keep no state between calls. Filters are
// bound to an alloc.Allocator at construction; scratch buffers are taken from
// it and returned before each call ends.
//
// # Supported Filters
//
//   - ASCIIHexDecode and ASCII85Decode (encode and decode)
//   - RunLengthDecode, PackBits records (encode and decode)
//   - LZWDecode with 9 to 12 bit codes and EarlyChange (encode and decode)
//   - FlateDecode over compress/zlib (encode and decode)
//   - TIFF Predictor 2 and PNG predictors 10-15 (encode and decode)
//   - CCITTFaxDecode, Group 3 and Group 4, via golang.org/x/image/ccitt
//   - DCTDecode via image/jpeg; JPXDecode and JBIG2Decode through an
//     externally supplied decoder
//
// The convenience functions use the default allocator:
//
//	decoded, err := filters.FlateDecode(data, params)
//	decoded, err := filters.ASCIIHexDecode(data)
//	decoded, err := filters.LZWDecode(data)
//
// # Errors
//
// Malformed input yields an error wrapping ErrCorrupt. The output written
// before the problem was found is kept, so callers may choose to use it.
//
// # Decode Parameters
//
// Filters accept a Params map for additional parameters:
//
//	params := filters.Params{
//	    "Predictor": 12,
//	    "Columns":   100,
//	    "Colors":    3,
//	}
//	decoded, err := filters.FlateDecode(data, params)
//
// Parameters are read into PredictorParams or FaxParams, which apply the PDF
// defaults and reject out-of-range values with ErrInvalidParams.
package filters
