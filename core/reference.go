package core

import (
	"github.com/tsawler/pdfgraph/alloc"
)

// DefaultMaxResolveDepth bounds the number of hops a resolution may take.
const DefaultMaxResolveDepth = 32

// ObjectSource looks up indirect objects, typically a document or a Store.
// The returned handle is borrowed.
type ObjectSource interface {
	Object(num, gen uint32) (Object, bool)
}

// Reference represents an indirect reference "num gen R". It holds a
// non-owning link to the source it resolves through and is only
// dereferenced on demand.
type Reference struct{ Object }

// NewReference creates a reference bound to a. src may be nil, in which
// case the reference never resolves.
func NewReference(a *alloc.Allocator, num, gen uint32, src ObjectSource) Reference {
	o := newObject(a, ObjReference)
	o.ref = refBody{num: num, gen: gen, src: src}
	return Reference{Object{o}}
}

// Number returns the object number.
func (r Reference) Number() uint32 {
	if r.o == nil {
		return 0
	}
	return r.o.ref.num
}

// Generation returns the generation number.
func (r Reference) Generation() uint32 {
	if r.o == nil {
		return 0
	}
	return r.o.ref.gen
}

// Source returns the source the reference resolves through.
func (r Reference) Source() ObjectSource {
	if r.o == nil {
		return nil
	}
	return r.o.ref.src
}

// SetNumber changes the object number and marks the reference modified.
func (r Reference) SetNumber(num uint32) {
	r.o.ref.num = num
	r.o.modified = true
}

// SetGeneration changes the generation number and marks the reference modified.
func (r Reference) SetGeneration(gen uint32) {
	r.o.ref.gen = gen
	r.o.modified = true
}

// SetSource changes the source the reference resolves through.
func (r Reference) SetSource(src ObjectSource) {
	r.o.ref.src = src
}

// Resolve returns a borrowed handle to the target as type want. A target
// that is itself a Reference is followed; a target Array yields its first
// element that resolves to want. ObjInvalid accepts any type. A dangling
// link, a type mismatch or a reference cycle yields an empty handle.
func (r Reference) Resolve(want ObjectType) Object {
	return r.ResolveDepth(want, DefaultMaxResolveDepth)
}

// ResolveDepth is Resolve with an explicit hop limit.
func (r Reference) ResolveDepth(want ObjectType, maxHops int) Object {
	if r.o == nil {
		return Object{}
	}
	res := resolver{maxHops: maxHops}
	return res.follow(r.Object, want, 0)
}

type refKey struct {
	num, gen uint32
}

type resolver struct {
	visited map[refKey]bool
	maxHops int
}

// follow resolves obj, which has been reached after depth hops.
func (res *resolver) follow(obj Object, want ObjectType, depth int) Object {
	if obj.IsEmpty() || depth > res.maxHops {
		return Object{}
	}

	if obj.o.typ == ObjReference && want != ObjReference {
		ref := obj.o.ref
		key := refKey{ref.num, ref.gen}
		if res.visited[key] || ref.src == nil {
			return Object{}
		}
		if res.visited == nil {
			res.visited = make(map[refKey]bool)
		}
		res.visited[key] = true
		target, ok := ref.src.Object(ref.num, ref.gen)
		if !ok {
			return Object{}
		}
		return res.follow(target, want, depth+1)
	}

	if want == ObjInvalid || obj.o.typ == want {
		return obj
	}
	if obj.o.typ == ObjArray && depth > 0 {
		for _, c := range obj.o.items {
			if found := res.follow(Object{c}, want, depth+1); !found.IsEmpty() {
				return found
			}
		}
	}
	return Object{}
}

// resolveValue returns a container value as type want, following it when it
// is a Reference.
func resolveValue(obj Object, want ObjectType, maxHops int) Object {
	if obj.IsEmpty() {
		return Object{}
	}
	res := resolver{maxHops: maxHops}
	return res.follow(obj, want, 0)
}
