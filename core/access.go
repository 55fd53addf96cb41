package core

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/internal/filters"
)

var (
	// ErrNoFilterSupport reports a filter that may not appear in a stream's
	// filter chain, such as Crypt.
	ErrNoFilterSupport = errors.New("core: filter not supported in a stream chain")

	// ErrLimit reports a stage whose output exceeds the configured maximum.
	ErrLimit = errors.New("core: decoded size limit exceeded")
)

// DecodeMode selects how much of a stream's filter chain Attach runs.
type DecodeMode int

const (
	// DecodeAll runs every filter.
	DecodeAll DecodeMode = iota
	// DecodeNotLastFilter runs every filter except the last, leaving the
	// data for one more pass by the caller.
	DecodeNotLastFilter
)

// maxGlobalsDepth bounds nested JBIG2Globals decoding.
const maxGlobalsDepth = 4

// stage is one resolved entry of a stream's filter chain.
type stage struct {
	name   string
	params filters.Params
}

// Access decodes a stream's data and holds the result until Detach. An
// Access is not safe for concurrent use.
type Access struct {
	alloc  *alloc.Allocator
	cfg    config
	stream Stream
	data   []byte
	depth  int
}

// NewAccess creates an Access whose decoded buffers come from a.
func NewAccess(a *alloc.Allocator, opts ...Option) (*Access, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Access{alloc: alloc.Or(a), cfg: cfg}, nil
}

// Attach decodes s through the filters named in its dictionary. Any
// previously decoded data is detached first. On failure no data is held.
func (acc *Access) Attach(s Stream, mode DecodeMode) error {
	acc.Detach()
	if s.IsEmpty() {
		return errors.New("core: attach to an empty stream")
	}

	raw, err := s.RawBytes()
	if err != nil {
		return fmt.Errorf("core: read stream data: %w", err)
	}

	chain, err := acc.chain(s.Dict())
	if err != nil {
		return err
	}
	if mode == DecodeNotLastFilter && len(chain) > 0 {
		chain = chain[:len(chain)-1]
	}
	for _, st := range chain {
		if st.name == filters.Crypt {
			return fmt.Errorf("%w: %s", ErrNoFilterSupport, st.name)
		}
	}

	data := raw
	for i, st := range chain {
		if data, err = acc.run(i, st, data); err != nil {
			return err
		}
	}

	acc.data = acc.alloc.Copy(data)
	acc.stream = s.Retain().AsStream()
	return nil
}

// Detach frees the decoded data and drops the attached stream.
func (acc *Access) Detach() {
	if acc.data != nil {
		acc.alloc.Free(acc.data)
		acc.data = nil
	}
	if !acc.stream.IsEmpty() {
		acc.stream.Release()
		acc.stream = Stream{}
	}
}

// Data returns the decoded bytes. They stay valid until the next Attach or
// Detach and must not be modified.
func (acc *Access) Data() []byte {
	return acc.data
}

// Size returns the number of decoded bytes.
func (acc *Access) Size() int {
	return len(acc.data)
}

// Stream returns a borrowed handle to the attached stream.
func (acc *Access) Stream() Stream {
	return acc.stream
}

// chain reads Filter and DecodeParms. A single DecodeParms dictionary
// belongs to the first filter.
func (acc *Access) chain(d Dict) ([]stage, error) {
	depth := acc.cfg.MaxResolveDepth
	f := resolveValue(d.Lookup("Filter"), ObjInvalid, depth)
	if f.IsEmpty() || f.Type() == ObjNull {
		return nil, nil
	}

	var names []string
	switch f.Type() {
	case ObjName:
		names = []string{f.AsName().Value()}
	case ObjArray:
		arr := f.AsArray()
		for i := 0; i < arr.Len(); i++ {
			n := resolveValue(arr.At(i), ObjName, depth).AsName()
			if n.IsEmpty() {
				return nil, fmt.Errorf("%w: filter %d is a %s", filters.ErrUnsupportedFilter, i, arr.At(i).Type())
			}
			names = append(names, n.Value())
		}
	default:
		return nil, fmt.Errorf("%w: Filter is a %s", filters.ErrUnsupportedFilter, f.Type())
	}

	parms := make([]Dict, len(names))
	p := resolveValue(d.Lookup("DecodeParms"), ObjInvalid, depth)
	switch p.Type() {
	case ObjDict:
		if len(parms) > 0 {
			parms[0] = p.AsDict()
		}
	case ObjArray:
		arr := p.AsArray()
		for i := 0; i < arr.Len() && i < len(parms); i++ {
			parms[i] = resolveValue(arr.At(i), ObjDict, depth).AsDict()
		}
	}

	chain := make([]stage, len(names))
	for i, name := range names {
		params, err := acc.params(parms[i])
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
		chain[i] = stage{name: filters.Canonical(name), params: params}
	}
	return chain, nil
}

// params converts a DecodeParms dictionary into filter parameters.
func (acc *Access) params(d Dict) (filters.Params, error) {
	if d.IsEmpty() {
		return nil, nil
	}
	out := make(filters.Params, d.Count())
	depth := acc.cfg.MaxResolveDepth
	for it := d.Iter(); it.Next(); {
		v := resolveValue(it.Value(), ObjInvalid, depth)
		switch v.Type() {
		case ObjNumber:
			n := v.AsNumber()
			if n.IsInteger() {
				out[it.Key()] = int(n.Integer())
			} else {
				out[it.Key()] = n.Float()
			}
		case ObjBool:
			out[it.Key()] = v.AsBool().Value()
		case ObjName:
			out[it.Key()] = v.AsName().Value()
		case ObjString:
			out[it.Key()] = v.AsString().Bytes()
		case ObjStream:
			if it.Key() != "JBIG2Globals" {
				continue
			}
			globals, err := acc.globals(v.AsStream())
			if err != nil {
				return nil, fmt.Errorf("JBIG2Globals: %w", err)
			}
			out[it.Key()] = globals
		}
	}
	return out, nil
}

// globals decodes a JBIG2Globals stream with the same options.
func (acc *Access) globals(s Stream) ([]byte, error) {
	if acc.depth >= maxGlobalsDepth {
		return nil, errors.New("core: JBIG2Globals nested too deeply")
	}
	nested := &Access{alloc: acc.alloc, cfg: acc.cfg, depth: acc.depth + 1}
	if err := nested.Attach(s, DecodeAll); err != nil {
		return nil, err
	}
	defer nested.Detach()
	return append([]byte(nil), nested.Data()...), nil
}

// run executes one stage and, after LZW or Flate, its predictor.
func (acc *Access) run(i int, st stage, data []byte) ([]byte, error) {
	log := acc.cfg.Logger.With(zap.Int("stage", i), zap.String("filter", st.name))

	f, err := acc.cfg.Registry.New(st.name, acc.alloc, st.params)
	if err != nil {
		return nil, fmt.Errorf("filter %d (%s): %w", i, st.name, err)
	}
	var out bytes.Buffer
	if err := f.Decode(data, &out); err != nil {
		if err := acc.tolerate(log, err); err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, st.name, err)
		}
	}

	if filters.UsesPredictor(st.name) {
		pp, err := filters.PredictorParamsFrom(st.params)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, st.name, err)
		}
		if pp.Predictor > 1 {
			var predicted bytes.Buffer
			if err := filters.NewPredictor(acc.alloc, pp).Decode(out.Bytes(), &predicted); err != nil {
				if err := acc.tolerate(log, err); err != nil {
					return nil, fmt.Errorf("filter %d (%s) predictor %d: %w", i, st.name, pp.Predictor, err)
				}
			}
			out = predicted
		}
	}

	if limit := acc.cfg.MaxDecodedSize; limit > 0 && int64(out.Len()) > limit {
		return nil, fmt.Errorf("filter %d (%s): %w: %d > %d", i, st.name, ErrLimit, out.Len(), limit)
	}
	log.Debug("decoded stage", zap.Int("in", len(data)), zap.Int("out", out.Len()))
	return out.Bytes(), nil
}

// tolerate decides whether a decode error ends the decode. Corrupt data is
// tolerated unless the Access is strict.
func (acc *Access) tolerate(log *zap.Logger, err error) error {
	if acc.cfg.Strict || !errors.Is(err, filters.ErrCorrupt) {
		return err
	}
	log.Warn("keeping partial output of corrupt data", zap.Error(err))
	return nil
}
