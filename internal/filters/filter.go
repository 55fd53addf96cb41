package filters

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
)

var (
	// ErrCorrupt reports malformed input. Decoders that return it have
	// still written whatever output they could recover.
	ErrCorrupt = errors.New("corrupt filter data")

	// ErrUnsupportedFilter reports a filter name the registry does not know.
	ErrUnsupportedFilter = errors.New("unsupported filter")

	// ErrNoDecoder reports an image filter with no external decoder configured.
	ErrNoDecoder = errors.New("no external decoder configured")

	// ErrEncodeUnsupported reports a decode-only filter asked to encode.
	ErrEncodeUnsupported = errors.New("filter does not support encoding")
)

// Filter is one named stream transform. Encode and Decode append their
// output to out. Any working state lives only for the duration of one call.
type Filter interface {
	Encode(data []byte, out *bytes.Buffer) error
	Decode(data []byte, out *bytes.Buffer) error
}

// Standard filter names.
const (
	ASCIIHex  = "ASCIIHexDecode"
	ASCII85   = "ASCII85Decode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	RunLength = "RunLengthDecode"
	CCITTFax  = "CCITTFaxDecode"
	JBIG2     = "JBIG2Decode"
	DCT       = "DCTDecode"
	JPX       = "JPXDecode"
	Crypt     = "Crypt"
)

var abbreviations = map[string]string{
	"AHx": ASCIIHex,
	"A85": ASCII85,
	"LZW": LZW,
	"Fl":  Flate,
	"RL":  RunLength,
	"CCF": CCITTFax,
	"DCT": DCT,
}

// Canonical maps an abbreviated filter name (as allowed in inline images)
// to its full name. Other names are returned unchanged.
func Canonical(name string) string {
	if full, ok := abbreviations[name]; ok {
		return full
	}
	return name
}

// UsesPredictor reports whether a filter's output may be post-processed by
// a PNG or TIFF predictor.
func UsesPredictor(name string) bool {
	name = Canonical(name)
	return name == LZW || name == Flate
}

var logger = zap.NewNop()

// SetLogger sets the logger used for codec-level warnings. A nil logger
// restores the no-op logger. Call it before decoding starts.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Factory builds a filter bound to an allocator.
type Factory func(a *alloc.Allocator, params Params) (Filter, error)

// Registry maps canonical filter names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding every built-in filter. The JPX
// and JBIG2 entries have no external decoder and fail with ErrNoDecoder until
// replaced through Register.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ASCIIHex, func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewHexFilter(a), nil
	})
	r.Register(ASCII85, func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewASCII85Filter(a), nil
	})
	r.Register(RunLength, func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewRLEFilter(a), nil
	})
	r.Register(LZW, func(a *alloc.Allocator, p Params) (Filter, error) {
		return NewLZWFilter(a, getIntParam(p, "EarlyChange", 1)), nil
	})
	r.Register(Flate, func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewFlateFilter(a), nil
	})
	r.Register(CCITTFax, func(a *alloc.Allocator, p Params) (Filter, error) {
		fp, err := FaxParamsFrom(p)
		if err != nil {
			return nil, err
		}
		return NewFaxFilter(a, fp), nil
	})
	r.Register(DCT, func(a *alloc.Allocator, _ Params) (Filter, error) {
		return NewDCTFilter(a), nil
	})
	r.Register(JPX, JPXFactory(nil))
	r.Register(JBIG2, JBIG2Factory(nil))
	return r
}

// Register adds or replaces the factory for a filter name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[Canonical(name)] = f
}

// Names returns the registered filter names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named filter.
func (r *Registry) New(name string, a *alloc.Allocator, params Params) (Filter, error) {
	f, ok := r.factories[Canonical(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
	}
	return f(alloc.Or(a), params)
}

// corruptf builds an error wrapping ErrCorrupt.
func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

// run applies a filter method into a fresh buffer and returns its bytes.
// Partial output is returned together with the error.
func run(fn func([]byte, *bytes.Buffer) error, data []byte) ([]byte, error) {
	var out bytes.Buffer
	err := fn(data, &out)
	return out.Bytes(), err
}
