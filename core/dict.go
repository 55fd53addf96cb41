package core

import (
	"sort"

	"github.com/tsawler/pdfgraph/alloc"
)

// Dict represents a PDF dictionary. Keys are the exact bytes of the PDF
// name, without the slash.
type Dict struct{ Object }

// NewDict creates an empty dictionary bound to a.
func NewDict(a *alloc.Allocator) Dict {
	return Dict{Object{newObject(a, ObjDict)}}
}

// Clone returns an owned deep copy.
func (d Dict) Clone() Dict {
	return d.Object.Clone().AsDict()
}

// Count returns the number of entries.
func (d Dict) Count() int {
	if d.o == nil {
		return 0
	}
	return len(d.o.keys)
}

// Has checks if a key exists in the dictionary
func (d Dict) Has(key string) bool {
	if d.o == nil {
		return false
	}
	_, ok := d.o.keys[key]
	return ok
}

// Lookup returns a borrowed handle to the value stored under key, without
// following References.
func (d Dict) Lookup(key string) Object {
	if d.o == nil {
		return Object{}
	}
	if c, ok := d.o.keys[key]; ok {
		return Object{c}
	}
	return Object{}
}

// Get returns the value under key as type want, following References.
// ObjInvalid accepts any type. It returns an empty handle when the key is
// missing, a reference dangles or the type does not match.
func (d Dict) Get(key string, want ObjectType) Object {
	return resolveValue(d.Lookup(key), want, DefaultMaxResolveDepth)
}

// GetName retrieves a name value
func (d Dict) GetName(key string) (string, bool) {
	n := d.Get(key, ObjName).AsName()
	return n.Value(), !n.IsEmpty()
}

// GetInt retrieves an integer value
func (d Dict) GetInt(key string) (int64, bool) {
	n := d.Get(key, ObjNumber).AsNumber()
	return n.Integer(), !n.IsEmpty()
}

// GetReal retrieves a number as a float
func (d Dict) GetReal(key string) (float64, bool) {
	n := d.Get(key, ObjNumber).AsNumber()
	return n.Float(), !n.IsEmpty()
}

// GetBool retrieves a boolean value
func (d Dict) GetBool(key string) (bool, bool) {
	b := d.Get(key, ObjBool).AsBool()
	return b.Value(), !b.IsEmpty()
}

// GetDict retrieves a dictionary value
func (d Dict) GetDict(key string) Dict {
	return d.Get(key, ObjDict).AsDict()
}

// GetArray retrieves an array value
func (d Dict) GetArray(key string) Array {
	return d.Get(key, ObjArray).AsArray()
}

// GetString retrieves a string value
func (d Dict) GetString(key string) String {
	return d.Get(key, ObjString).AsString()
}

// GetStream retrieves a stream value
func (d Dict) GetStream(key string) Stream {
	return d.Get(key, ObjStream).AsStream()
}

// CheckName reports whether key holds the name want. A missing key passes
// unless required is set.
func (d Dict) CheckName(key, want string, required bool) bool {
	if !d.Has(key) {
		return !required
	}
	name, ok := d.GetName(key)
	return ok && name == want
}

// SetObject stores obj under key, releasing any previous value. The
// dictionary takes over the caller's handle. An empty handle removes the key.
func (d Dict) SetObject(key string, obj Object) {
	if obj.IsEmpty() {
		d.Remove(key)
		return
	}
	c := d.o.adopt(obj)
	if old, ok := d.o.keys[key]; ok {
		old.release()
	}
	d.o.keys[key] = c
	d.o.modified = true
}

// Remove deletes key. It reports whether the key was present.
func (d Dict) Remove(key string) bool {
	if d.o == nil {
		return false
	}
	old, ok := d.o.keys[key]
	if !ok {
		return false
	}
	delete(d.o.keys, key)
	old.release()
	d.o.modified = true
	return true
}

// Clear removes every entry.
func (d Dict) Clear() {
	for k, c := range d.o.keys {
		delete(d.o.keys, k)
		c.release()
	}
	d.o.modified = true
}

// Keys returns all keys in sorted order.
func (d Dict) Keys() []string {
	if d.o == nil {
		return nil
	}
	keys := make([]string, 0, len(d.o.keys))
	for k := range d.o.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Range calls fn for each entry in key order until fn returns false. Entries
// removed by fn before they are reached are skipped.
func (d Dict) Range(fn func(key string, value Object) bool) {
	it := d.Iter()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return
		}
	}
}

// Iter returns an iterator over the entries in key order. Each call returns
// an independent iterator. Keys removed after the iterator was created are
// skipped, so the current entry may be removed during iteration; keys
// added afterwards are not visited.
func (d Dict) Iter() *DictIter {
	return &DictIter{d: d, keys: d.Keys()}
}

// DictIter walks a dictionary. Call Next before the first Key or Value.
type DictIter struct {
	d     Dict
	keys  []string
	next  int
	key   string
	value Object
}

// Next advances to the next entry still present.
func (it *DictIter) Next() bool {
	for it.next < len(it.keys) {
		k := it.keys[it.next]
		it.next++
		if c, ok := it.d.o.keys[k]; ok {
			it.key, it.value = k, Object{c}
			return true
		}
	}
	it.key, it.value = "", Object{}
	return false
}

// Key returns the current key.
func (it *DictIter) Key() string { return it.key }

// Value returns a borrowed handle to the current value.
func (it *DictIter) Value() Object { return it.value }

// SetNull stores a new null under key and returns a borrowed handle to it.
func (d Dict) SetNull(key string) Null {
	v := NewNull(d.o.alloc)
	d.SetObject(key, v.Object)
	return v
}

// SetBool stores a new boolean under key and returns a borrowed handle to it.
func (d Dict) SetBool(key string, b bool) Bool {
	v := NewBool(d.o.alloc, b)
	d.SetObject(key, v.Object)
	return v
}

// SetInteger stores a new integer under key and returns a borrowed handle to it.
func (d Dict) SetInteger(key string, i int64) Number {
	v := NewInteger(d.o.alloc, i)
	d.SetObject(key, v.Object)
	return v
}

// SetReal stores a new real under key and returns a borrowed handle to it.
func (d Dict) SetReal(key string, f float64) Number {
	v := NewReal(d.o.alloc, f)
	d.SetObject(key, v.Object)
	return v
}

// SetString stores a new string under key and returns a borrowed handle to it.
func (d Dict) SetString(key string, data []byte) String {
	v := NewString(d.o.alloc, data)
	d.SetObject(key, v.Object)
	return v
}

// SetName stores a new name under key and returns a borrowed handle to it.
func (d Dict) SetName(key, name string) Name {
	v := NewName(d.o.alloc, name)
	d.SetObject(key, v.Object)
	return v
}

// SetArray stores a new empty array under key and returns a borrowed handle to it.
func (d Dict) SetArray(key string) Array {
	v := NewArray(d.o.alloc)
	d.SetObject(key, v.Object)
	return v
}

// SetDict stores a new empty dictionary under key and returns a borrowed handle to it.
func (d Dict) SetDict(key string) Dict {
	v := NewDict(d.o.alloc)
	d.SetObject(key, v.Object)
	return v
}

// SetReference stores a new reference under key and returns a borrowed handle to it.
func (d Dict) SetReference(key string, num, gen uint32, src ObjectSource) Reference {
	v := NewReference(d.o.alloc, num, gen, src)
	d.SetObject(key, v.Object)
	return v
}
