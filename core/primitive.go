package core

import (
	"github.com/tsawler/pdfgraph/alloc"
)

// Null represents the PDF null object
type Null struct{ Object }

// NewNull creates a null object bound to a.
func NewNull(a *alloc.Allocator) Null {
	return Null{Object{newObject(a, ObjNull)}}
}

// Bool represents a PDF boolean
type Bool struct{ Object }

// NewBool creates a boolean bound to a.
func NewBool(a *alloc.Allocator, v bool) Bool {
	o := newObject(a, ObjBool)
	o.b = v
	return Bool{Object{o}}
}

// Value returns the boolean, false for an empty handle.
func (b Bool) Value() bool {
	return b.o != nil && b.o.b
}

// Set changes the value and marks the object modified.
func (b Bool) Set(v bool) {
	b.o.b = v
	b.o.modified = true
}

// Number represents a PDF integer or real. It records which of the two
// representations is authoritative.
type Number struct{ Object }

// NewInteger creates an integer number bound to a.
func NewInteger(a *alloc.Allocator, v int64) Number {
	o := newObject(a, ObjNumber)
	o.num = number{i: v, isInt: true}
	return Number{Object{o}}
}

// NewReal creates a real number bound to a.
func NewReal(a *alloc.Allocator, v float64) Number {
	o := newObject(a, ObjNumber)
	o.num = number{f: v}
	return Number{Object{o}}
}

// IsInteger reports whether the integer representation is authoritative.
func (n Number) IsInteger() bool {
	return n.o != nil && n.o.num.isInt
}

// Integer returns the value as an integer, truncating a real toward zero.
func (n Number) Integer() int64 {
	if n.o == nil {
		return 0
	}
	if n.o.num.isInt {
		return n.o.num.i
	}
	return int64(n.o.num.f)
}

// Float returns the value as a float.
func (n Number) Float() float64 {
	if n.o == nil {
		return 0
	}
	if n.o.num.isInt {
		return float64(n.o.num.i)
	}
	return n.o.num.f
}

// SetInteger stores an integer and marks the object modified.
func (n Number) SetInteger(v int64) {
	n.o.num = number{i: v, isInt: true}
	n.o.modified = true
}

// SetReal stores a real and marks the object modified.
func (n Number) SetReal(v float64) {
	n.o.num = number{f: v}
	n.o.modified = true
}

// String represents a PDF string. The bytes are kept exactly as given.
type String struct{ Object }

// NewString creates a literal string holding a copy of data.
func NewString(a *alloc.Allocator, data []byte) String {
	o := newObject(a, ObjString)
	o.data = o.alloc.Copy(data)
	return String{Object{o}}
}

// NewHexString creates a string that formats as hexadecimal.
func NewHexString(a *alloc.Allocator, data []byte) String {
	s := NewString(a, data)
	s.o.hex = true
	return s
}

// Bytes returns the string bytes. The slice is owned by the object and must
// not be modified.
func (s String) Bytes() []byte {
	if s.o == nil {
		return nil
	}
	return s.o.data
}

// Len returns the number of bytes.
func (s String) Len() int {
	return len(s.Bytes())
}

// IsHex reports whether the string formats as hexadecimal.
func (s String) IsHex() bool {
	return s.o != nil && s.o.hex
}

// SetBytes replaces the contents and marks the object modified.
func (s String) SetBytes(data []byte) {
	s.o.alloc.Free(s.o.data)
	s.o.data = s.o.alloc.Copy(data)
	s.o.modified = true
}

// SetHex selects hexadecimal formatting and marks the object modified.
func (s String) SetHex(hex bool) {
	s.o.hex = hex
	s.o.modified = true
}

// Clone returns an owned deep copy.
func (s String) Clone() String {
	return s.Object.Clone().AsString()
}

// Name represents a PDF name. The bytes are the name without its slash,
// with any #xx escapes already decoded.
type Name struct{ Object }

// NewName creates a name bound to a.
func NewName(a *alloc.Allocator, name string) Name {
	o := newObject(a, ObjName)
	o.data = o.alloc.Copy([]byte(name))
	return Name{Object{o}}
}

// Value returns the name as a string, "" for an empty handle.
func (n Name) Value() string {
	if n.o == nil {
		return ""
	}
	return string(n.o.data)
}

// Is reports whether the name equals name.
func (n Name) Is(name string) bool {
	return n.o != nil && string(n.o.data) == name
}

// Set replaces the name and marks the object modified.
func (n Name) Set(name string) {
	n.o.alloc.Free(n.o.data)
	n.o.data = n.o.alloc.Copy([]byte(name))
	n.o.modified = true
}
