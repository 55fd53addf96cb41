package filters

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidParams reports decode parameters outside their legal range.
var ErrInvalidParams = errors.New("invalid decode parameters")

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, and BitsPerComponent.
type Params map[string]interface{}

var validate = validator.New()

// PredictorParams are the DecodeParms entries that drive the predictor pass
// following LZWDecode or FlateDecode.
type PredictorParams struct {
	Predictor        int `validate:"oneof=1 2 10 11 12 13 14 15"`
	Colors           int `validate:"min=1,max=32"`
	BitsPerComponent int `validate:"oneof=1 2 4 8 16"`
	Columns          int `validate:"min=1,max=16777216"`
}

// PredictorParamsFrom reads predictor parameters, applying the PDF defaults
// (Predictor 1, Colors 1, BitsPerComponent 8, Columns 1).
func PredictorParamsFrom(params Params) (PredictorParams, error) {
	p := PredictorParams{
		Predictor:        getIntParam(params, "Predictor", 1),
		Colors:           getIntParam(params, "Colors", 1),
		BitsPerComponent: getIntParam(params, "BitsPerComponent", 8),
		Columns:          getIntParam(params, "Columns", 1),
	}
	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return p, nil
}

// Stride is the number of bytes in one scanline.
func (p PredictorParams) Stride() int {
	return (p.BitsPerComponent*p.Colors*p.Columns + 7) / 8
}

// BytesPerPixel is the PNG filter distance, never less than one byte.
func (p PredictorParams) BytesPerPixel() int {
	return (p.BitsPerComponent*p.Colors + 7) / 8
}

// FaxParams are the CCITTFaxDecode parameters.
type FaxParams struct {
	K                      int
	Columns                int `validate:"min=1,max=1048576"`
	Rows                   int `validate:"min=0"`
	EndOfLine              bool
	EncodedByteAlign       bool
	EndOfBlock             bool
	BlackIs1               bool
	DamagedRowsBeforeError int `validate:"min=0"`
}

// FaxParamsFrom reads fax parameters with their PDF defaults.
func FaxParamsFrom(params Params) (FaxParams, error) {
	p := FaxParams{
		K:                      getIntParam(params, "K", 0),
		Columns:                getIntParam(params, "Columns", 1728),
		Rows:                   getIntParam(params, "Rows", 0),
		EndOfLine:              getBoolParam(params, "EndOfLine", false),
		EncodedByteAlign:       getBoolParam(params, "EncodedByteAlign", false),
		EndOfBlock:             getBoolParam(params, "EndOfBlock", true),
		BlackIs1:               getBoolParam(params, "BlackIs1", false),
		DamagedRowsBeforeError: getIntParam(params, "DamagedRowsBeforeError", 0),
	}
	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return p, nil
}

// getIntParam extracts an integer parameter from Params, returning defaultValue
// if the parameter is missing or cannot be converted to an integer.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}

	obj, ok := params[key]
	if !ok {
		return defaultValue
	}

	switch v := obj.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

// getBoolParam extracts a boolean parameter from Params, returning defaultValue
// if the parameter is missing or cannot be converted to a boolean.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}

	obj, ok := params[key]
	if !ok {
		return defaultValue
	}

	switch v := obj.(type) {
	case bool:
		return v
	default:
		return defaultValue
	}
}

// getBytesParam extracts a byte-slice parameter such as decoded JBIG2 globals.
func getBytesParam(params Params, key string) []byte {
	if params == nil {
		return nil
	}
	if b, ok := params[key].([]byte); ok {
		return b
	}
	return nil
}
