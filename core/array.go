package core

import (
	"github.com/tsawler/pdfgraph/alloc"
)

// Array represents a PDF array
type Array struct{ Object }

// NewArray creates an empty array bound to a.
func NewArray(a *alloc.Allocator) Array {
	return Array{Object{newObject(a, ObjArray)}}
}

// Clone returns an owned deep copy.
func (arr Array) Clone() Array {
	return arr.Object.Clone().AsArray()
}

// Len returns the length of the array
func (arr Array) Len() int {
	if arr.o == nil {
		return 0
	}
	return len(arr.o.items)
}

// At returns a borrowed handle to the element at index i, or an empty
// handle when i is out of range.
func (arr Array) At(i int) Object {
	if i < 0 || i >= arr.Len() {
		return Object{}
	}
	return Object{arr.o.items[i]}
}

// Element returns element i as type want, following References. ObjInvalid
// accepts any type. It returns an empty handle when nothing matches.
func (arr Array) Element(i int, want ObjectType) Object {
	return resolveValue(arr.At(i), want, DefaultMaxResolveDepth)
}

// Range calls fn for each element in order until fn returns false.
func (arr Array) Range(fn func(i int, obj Object) bool) {
	for i := 0; i < arr.Len(); i++ {
		if !fn(i, Object{arr.o.items[i]}) {
			return
		}
	}
}

// Append adds obj at the end. The array takes over the caller's handle.
func (arr Array) Append(obj Object) {
	c := arr.o.adopt(obj)
	arr.o.items = append(arr.o.items, c)
	arr.o.modified = true
}

// Insert places obj at index i, shifting later elements. The array takes
// over the caller's handle; when i is out of range the handle is released
// and false is returned.
func (arr Array) Insert(i int, obj Object) bool {
	if i < 0 || i > arr.Len() {
		obj.Release()
		return false
	}
	c := arr.o.adopt(obj)
	arr.o.items = append(arr.o.items, nil)
	copy(arr.o.items[i+1:], arr.o.items[i:])
	arr.o.items[i] = c
	arr.o.modified = true
	return true
}

// Replace stores obj at index i and releases the previous element. The
// array takes over the caller's handle; when i is out of range the handle
// is released and false is returned.
func (arr Array) Replace(i int, obj Object) bool {
	if i < 0 || i >= arr.Len() {
		obj.Release()
		return false
	}
	c := arr.o.adopt(obj)
	old := arr.o.items[i]
	arr.o.items[i] = c
	old.release()
	arr.o.modified = true
	return true
}

// Remove deletes the element at index i.
func (arr Array) Remove(i int) bool {
	if i < 0 || i >= arr.Len() {
		return false
	}
	items := arr.o.items
	old := items[i]
	copy(items[i:], items[i+1:])
	items[len(items)-1] = nil
	arr.o.items = items[:len(items)-1]
	old.release()
	arr.o.modified = true
	return true
}

// Clear removes every element.
func (arr Array) Clear() {
	for _, c := range arr.o.items {
		c.release()
	}
	arr.o.items = nil
	arr.o.modified = true
}

// FindByType returns the index of the first element of type t, or -1.
func (arr Array) FindByType(t ObjectType) int {
	for i := 0; i < arr.Len(); i++ {
		if arr.o.items[i].typ == t {
			return i
		}
	}
	return -1
}

// numbers reads the array as exactly n numbers, following References.
func (arr Array) numbers(n int) ([]float64, bool) {
	if arr.Len() != n {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		num := arr.Element(i, ObjNumber).AsNumber()
		if num.IsEmpty() {
			return nil, false
		}
		out[i] = num.Float()
	}
	return out, true
}

// Rect reads a rectangle [llx lly urx ury], normalized so that the lower
// left corner comes first.
func (arr Array) Rect() ([4]float64, bool) {
	v, ok := arr.numbers(4)
	if !ok {
		return [4]float64{}, false
	}
	if v[0] > v[2] {
		v[0], v[2] = v[2], v[0]
	}
	if v[1] > v[3] {
		v[1], v[3] = v[3], v[1]
	}
	return [4]float64{v[0], v[1], v[2], v[3]}, true
}

// Matrix reads a transformation matrix [a b c d e f].
func (arr Array) Matrix() ([6]float64, bool) {
	v, ok := arr.numbers(6)
	if !ok {
		return [6]float64{}, false
	}
	var m [6]float64
	copy(m[:], v)
	return m, true
}

// AppendNull appends a new null and returns a borrowed handle to it.
func (arr Array) AppendNull() Null {
	v := NewNull(arr.o.alloc)
	arr.Append(v.Object)
	return v
}

// AppendBool appends a new boolean and returns a borrowed handle to it.
func (arr Array) AppendBool(b bool) Bool {
	v := NewBool(arr.o.alloc, b)
	arr.Append(v.Object)
	return v
}

// AppendInteger appends a new integer and returns a borrowed handle to it.
func (arr Array) AppendInteger(i int64) Number {
	v := NewInteger(arr.o.alloc, i)
	arr.Append(v.Object)
	return v
}

// AppendReal appends a new real and returns a borrowed handle to it.
func (arr Array) AppendReal(f float64) Number {
	v := NewReal(arr.o.alloc, f)
	arr.Append(v.Object)
	return v
}

// AppendString appends a new string and returns a borrowed handle to it.
func (arr Array) AppendString(data []byte) String {
	v := NewString(arr.o.alloc, data)
	arr.Append(v.Object)
	return v
}

// AppendName appends a new name and returns a borrowed handle to it.
func (arr Array) AppendName(name string) Name {
	v := NewName(arr.o.alloc, name)
	arr.Append(v.Object)
	return v
}

// AppendArray appends a new empty array and returns a borrowed handle to it.
func (arr Array) AppendArray() Array {
	v := NewArray(arr.o.alloc)
	arr.Append(v.Object)
	return v
}

// AppendDict appends a new empty dictionary and returns a borrowed handle to it.
func (arr Array) AppendDict() Dict {
	v := NewDict(arr.o.alloc)
	arr.Append(v.Object)
	return v
}

// AppendReference appends a new reference and returns a borrowed handle to it.
func (arr Array) AppendReference(num, gen uint32, src ObjectSource) Reference {
	v := NewReference(arr.o.alloc, num, gen, src)
	arr.Append(v.Object)
	return v
}

// ReplaceNull stores a new null at index i. It returns an empty handle when
// i is out of range.
func (arr Array) ReplaceNull(i int) Null {
	if !arr.Replace(i, NewNull(arr.o.alloc).Object) {
		return Null{}
	}
	return arr.At(i).AsNull()
}

// ReplaceBool stores a new boolean at index i.
func (arr Array) ReplaceBool(i int, b bool) Bool {
	if !arr.Replace(i, NewBool(arr.o.alloc, b).Object) {
		return Bool{}
	}
	return arr.At(i).AsBool()
}

// ReplaceInteger stores a new integer at index i.
func (arr Array) ReplaceInteger(i int, v int64) Number {
	if !arr.Replace(i, NewInteger(arr.o.alloc, v).Object) {
		return Number{}
	}
	return arr.At(i).AsNumber()
}

// ReplaceReal stores a new real at index i.
func (arr Array) ReplaceReal(i int, v float64) Number {
	if !arr.Replace(i, NewReal(arr.o.alloc, v).Object) {
		return Number{}
	}
	return arr.At(i).AsNumber()
}

// ReplaceString stores a new string at index i.
func (arr Array) ReplaceString(i int, data []byte) String {
	if !arr.Replace(i, NewString(arr.o.alloc, data).Object) {
		return String{}
	}
	return arr.At(i).AsString()
}

// ReplaceName stores a new name at index i.
func (arr Array) ReplaceName(i int, name string) Name {
	if !arr.Replace(i, NewName(arr.o.alloc, name).Object) {
		return Name{}
	}
	return arr.At(i).AsName()
}

// ReplaceArray stores a new empty array at index i.
func (arr Array) ReplaceArray(i int) Array {
	if !arr.Replace(i, NewArray(arr.o.alloc).Object) {
		return Array{}
	}
	return arr.At(i).AsArray()
}

// ReplaceDict stores a new empty dictionary at index i.
func (arr Array) ReplaceDict(i int) Dict {
	if !arr.Replace(i, NewDict(arr.o.alloc).Object) {
		return Dict{}
	}
	return arr.At(i).AsDict()
}

// ReplaceReference stores a new reference at index i.
func (arr Array) ReplaceReference(i int, num, gen uint32, src ObjectSource) Reference {
	if !arr.Replace(i, NewReference(arr.o.alloc, num, gen, src).Object) {
		return Reference{}
	}
	return arr.At(i).AsReference()
}
