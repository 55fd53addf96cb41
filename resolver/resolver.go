package resolver

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/core"
)

var (
	// ErrNotFound reports a reference whose target the source does not hold.
	ErrNotFound = errors.New("resolver: object not found")

	// ErrCircular reports a reference reached again while it is being expanded.
	ErrCircular = errors.New("resolver: circular reference")

	// ErrMaxDepth reports an object tree nested deeper than the configured limit.
	ErrMaxDepth = errors.New("resolver: maximum recursion depth exceeded")
)

type objectKey struct {
	num, gen uint32
}

// ObjectResolver resolves indirect references against an object source.
// Deep resolution builds a new graph in which every reference has been
// replaced by a copy of its target.
//
// Every handle an ObjectResolver returns is owned by the caller and must be
// released. An ObjectResolver is not safe for concurrent use.
type ObjectResolver struct {
	src          core.ObjectSource
	logger       *zap.Logger
	visited      map[objectKey]bool // Cycle detection
	maxDepth     int                // Maximum recursion depth
	currentDepth int                // Current recursion depth
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// WithLogger sets the logger used to report failed references.
func WithLogger(l *zap.Logger) Option {
	return func(r *ObjectResolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewResolver creates a new object resolver
func NewResolver(src core.ObjectSource, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		src:      src,
		logger:   zap.NewNop(),
		visited:  make(map[objectKey]bool),
		maxDepth: 100,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve follows obj one hop when it is a reference. Anything else is
// returned as a new handle to the same object.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	return r.resolve(obj, false)
}

// ResolveDeep returns a copy of obj in which every reference, at any depth,
// has been replaced by a copy of its fully resolved target. The copy shares
// nothing with the source graph and reports IsModified false.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	top := r.currentDepth == 0
	resolved, err := r.resolve(obj, true)
	if err != nil || !top {
		return resolved, err
	}
	// Building the copy went through setters; a clone starts unmodified.
	c := resolved.Clone()
	resolved.Release()
	return c, nil
}

func (r *ObjectResolver) resolve(obj core.Object, deep bool) (core.Object, error) {
	// A fresh visited set per top-level call; within one call a reference
	// is only marked while its own subtree is expanded.
	if r.currentDepth == 0 {
		r.visited = make(map[objectKey]bool)
	}

	if r.currentDepth >= r.maxDepth {
		return core.Object{}, fmt.Errorf("%w (%d)", ErrMaxDepth, r.maxDepth)
	}

	switch obj.Type() {
	case core.ObjInvalid:
		return core.Object{}, errors.New("resolver: empty object handle")

	case core.ObjReference:
		ref := obj.AsReference()
		key := objectKey{ref.Number(), ref.Generation()}
		if r.visited[key] {
			return core.Object{}, fmt.Errorf("%w: %d %d R", ErrCircular, key.num, key.gen)
		}

		r.visited[key] = true
		defer delete(r.visited, key)

		target, ok := r.lookup(ref)
		if !ok {
			r.logger.Debug("unresolved reference", zap.Uint32("num", key.num), zap.Uint32("gen", key.gen))
			return core.Object{}, fmt.Errorf("%w: %d %d R", ErrNotFound, key.num, key.gen)
		}
		if !deep {
			return target.Retain(), nil
		}

		r.currentDepth++
		resolved, err := r.resolve(target, deep)
		r.currentDepth--
		if err != nil {
			return core.Object{}, err
		}
		return resolved, nil

	case core.ObjDict:
		if !deep {
			return obj.Retain(), nil
		}
		d, err := r.resolveDict(obj.AsDict())
		return d.Object, err

	case core.ObjArray:
		if !deep {
			return obj.Retain(), nil
		}

		src := obj.AsArray()
		resolved := core.NewArray(obj.Allocator())
		for i := 0; i < src.Len(); i++ {
			r.currentDepth++
			elem, err := r.resolve(src.At(i), deep)
			r.currentDepth--
			if err != nil {
				resolved.Release()
				return core.Object{}, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			resolved.Append(elem)
		}
		return resolved.Object, nil

	case core.ObjStream:
		if !deep {
			return obj.Retain(), nil
		}

		r.currentDepth++
		dict, err := r.resolveDict(obj.AsStream().Dict())
		r.currentDepth--
		if err != nil {
			return core.Object{}, fmt.Errorf("failed to resolve stream dict: %w", err)
		}

		// The copy carries the stream data; its dictionary is replaced by
		// the resolved one.
		resolved := obj.AsStream().Clone()
		resolved.SetDictionary(dict)
		return resolved.Object, nil

	default:
		if deep {
			return obj.Clone(), nil
		}
		return obj.Retain(), nil
	}
}

func (r *ObjectResolver) resolveDict(src core.Dict) (core.Dict, error) {
	resolved := core.NewDict(src.Allocator())
	for it := src.Iter(); it.Next(); {
		r.currentDepth++
		value, err := r.resolve(it.Value(), true)
		r.currentDepth--
		if err != nil {
			resolved.Release()
			return core.Dict{}, fmt.Errorf("failed to resolve dict key %s: %w", it.Key(), err)
		}
		resolved.SetObject(it.Key(), value)
	}
	return resolved, nil
}

// lookup finds a reference target in the resolver's source, falling back to
// the source the reference itself carries.
func (r *ObjectResolver) lookup(ref core.Reference) (core.Object, bool) {
	if r.src != nil {
		if obj, ok := r.src.Object(ref.Number(), ref.Generation()); ok {
			return obj, true
		}
	}
	if src := ref.Source(); src != nil {
		return src.Object(ref.Number(), ref.Generation())
	}
	return core.Object{}, false
}

// Reset clears the visited map and depth counter
// Call this between independent resolution operations
func (r *ObjectResolver) Reset() {
	r.visited = make(map[objectKey]bool)
	r.currentDepth = 0
}

// ResolveDict is a convenience method for resolving dictionaries
// It resolves the dictionary and all its values (deep resolution)
func (r *ObjectResolver) ResolveDict(dict core.Dict) (core.Dict, error) {
	defer r.Reset()
	resolved, err := r.ResolveDeep(dict.Object)
	if err != nil {
		return core.Dict{}, err
	}
	return resolved.AsDict(), nil
}

// ResolveArray is a convenience method for resolving arrays
// It resolves all elements in the array (deep resolution)
func (r *ObjectResolver) ResolveArray(arr core.Array) (core.Array, error) {
	defer r.Reset()
	resolved, err := r.ResolveDeep(arr.Object)
	if err != nil {
		return core.Array{}, err
	}
	return resolved.AsArray(), nil
}

// ResolveReference resolves a single indirect reference
// This is a shallow resolution - it returns the referenced object but doesn't recurse
func (r *ObjectResolver) ResolveReference(ref core.Reference) (core.Object, error) {
	defer r.Reset()
	return r.Resolve(ref.Object)
}

// ResolveReferenceDeep resolves a reference and all nested references
func (r *ObjectResolver) ResolveReferenceDeep(ref core.Reference) (core.Object, error) {
	defer r.Reset()
	return r.ResolveDeep(ref.Object)
}

// GetObject returns a new handle to object num gen.
func (r *ObjectResolver) GetObject(num, gen uint32) (core.Object, error) {
	if r.src == nil {
		return core.Object{}, fmt.Errorf("%w: %d %d R", ErrNotFound, num, gen)
	}
	obj, ok := r.src.Object(num, gen)
	if !ok {
		return core.Object{}, fmt.Errorf("%w: %d %d R", ErrNotFound, num, gen)
	}
	return obj.Retain(), nil
}

// GetObjectResolved loads and resolves an object by number (shallow)
func (r *ObjectResolver) GetObjectResolved(num, gen uint32) (core.Object, error) {
	obj, err := r.GetObject(num, gen)
	if err != nil {
		return core.Object{}, err
	}
	defer obj.Release()
	defer r.Reset()
	return r.Resolve(obj)
}

// GetObjectResolvedDeep loads and fully resolves an object by number (deep)
func (r *ObjectResolver) GetObjectResolvedDeep(num, gen uint32) (core.Object, error) {
	obj, err := r.GetObject(num, gen)
	if err != nil {
		return core.Object{}, err
	}
	defer obj.Release()
	defer r.Reset()
	return r.ResolveDeep(obj)
}
