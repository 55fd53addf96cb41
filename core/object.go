package core

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/atomic"

	"github.com/tsawler/pdfgraph/alloc"
)

// ObjectType represents the type of PDF object
type ObjectType int

const (
	// ObjInvalid is the type of an empty handle. Passed as a wanted type to
	// a lookup it matches any object.
	ObjInvalid ObjectType = iota
	ObjNull
	ObjBool
	ObjNumber
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjReference
)

// String returns the string representation of the object type
func (t ObjectType) String() string {
	switch t {
	case ObjInvalid:
		return "Invalid"
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjNumber:
		return "Number"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjStream:
		return "Stream"
	case ObjReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

var (
	// ErrAllocatorMismatch is the panic value (wrapped) raised when an object
	// is inserted into a container bound to a different allocator.
	ErrAllocatorMismatch = errors.New("core: object graph mixes allocators")

	// ErrCycle is the panic value (wrapped) raised when a container would
	// end up containing itself.
	ErrCycle = errors.New("core: container would contain itself")
)

type number struct {
	i     int64
	f     float64
	isInt bool
}

type refBody struct {
	num, gen uint32
	src      ObjectSource
}

// object is the shared body behind every handle. typ never changes after
// construction; only the payload fields for typ are used.
type object struct {
	typ      ObjectType
	refs     atomic.Int32
	modified bool
	alloc    *alloc.Allocator

	b      bool
	num    number
	data   []byte // String and Name bytes, allocator owned
	hex    bool
	items  []*object
	keys   map[string]*object
	stream *streamBody
	ref    refBody
}

func newObject(a *alloc.Allocator, typ ObjectType) *object {
	a = alloc.Or(a)
	a.AllocObject()
	o := &object{typ: typ, alloc: a}
	o.refs.Store(1)
	if typ == ObjDict {
		o.keys = make(map[string]*object)
	}
	return o
}

// Object is a reference-counted handle to a PDF object. The zero value is
// the empty handle.
//
// Handles returned by factories and by Retain are owned: the holder must
// call Release exactly once. Handles returned by container accessors are
// borrowed and stay valid while the container holds the object; call
// Retain to keep one longer.
type Object struct {
	o *object
}

// IsEmpty reports whether the handle refers to no object.
func (obj Object) IsEmpty() bool { return obj.o == nil }

// Type returns the variant tag, or ObjInvalid for the empty handle.
func (obj Object) Type() ObjectType {
	if obj.o == nil {
		return ObjInvalid
	}
	return obj.o.typ
}

// Allocator returns the allocator the object is bound to.
func (obj Object) Allocator() *alloc.Allocator {
	if obj.o == nil {
		return nil
	}
	return obj.o.alloc
}

// RefCount returns the number of live handles to the object.
func (obj Object) RefCount() int {
	if obj.o == nil {
		return 0
	}
	return int(obj.o.refs.Load())
}

// Retain returns a new owned handle to the same object.
func (obj Object) Retain() Object {
	if obj.o != nil {
		obj.o.refs.Inc()
	}
	return obj
}

// Release drops one handle. The object and everything it owns are released
// when the last handle is dropped.
func (obj Object) Release() {
	if obj.o != nil {
		obj.o.release()
	}
}

func (o *object) release() {
	n := o.refs.Dec()
	if n > 0 {
		return
	}
	if n < 0 {
		panic(fmt.Sprintf("core: %s released more times than it was retained", o.typ))
	}
	o.destroy()
}

// destroy frees what the variant owns and returns the object to its allocator.
func (o *object) destroy() {
	switch o.typ {
	case ObjString, ObjName:
		o.alloc.Free(o.data)
		o.data = nil
	case ObjArray:
		for _, c := range o.items {
			c.release()
		}
		o.items = nil
	case ObjDict:
		for _, c := range o.keys {
			c.release()
		}
		o.keys = nil
	case ObjStream:
		o.stream.dict.release()
		o.alloc.Free(o.stream.data)
		o.stream.data = nil
		o.stream.view = nil
	}
	o.alloc.FreeObject()
}

// Clone returns an owned, unmodified deep copy. Containers, strings and
// streams are copied recursively; a view-backed stream becomes an owned
// one. A Reference is copied by its object and generation numbers and is
// never dereferenced.
func (obj Object) Clone() Object {
	if obj.o == nil {
		return Object{}
	}
	return Object{obj.o.clone()}
}

func (o *object) clone() *object {
	c := newObject(o.alloc, o.typ)
	switch o.typ {
	case ObjBool:
		c.b = o.b
	case ObjNumber:
		c.num = o.num
	case ObjString, ObjName:
		c.data = o.alloc.Copy(o.data)
		c.hex = o.hex
	case ObjArray:
		c.items = make([]*object, len(o.items))
		for i, item := range o.items {
			c.items[i] = item.clone()
		}
	case ObjDict:
		for k, v := range o.keys {
			c.keys[k] = v.clone()
		}
	case ObjStream:
		c.stream = o.stream.clone(o.alloc)
	case ObjReference:
		c.ref = o.ref
	}
	return c
}

// IsModified reports whether the object, or for containers anything they
// hold, has been changed through a setter. Once true it stays true.
func (obj Object) IsModified() bool {
	return obj.o != nil && obj.o.isModified()
}

func (o *object) isModified() bool {
	if o.modified {
		return true
	}
	switch o.typ {
	case ObjArray:
		for _, c := range o.items {
			if c.isModified() {
				o.modified = true
				return true
			}
		}
	case ObjDict:
		for _, c := range o.keys {
			if c.isModified() {
				o.modified = true
				return true
			}
		}
	case ObjStream:
		if o.stream.dict.isModified() {
			o.modified = true
			return true
		}
	}
	return false
}

// adopt checks that child may be stored in the container o and returns its
// body. An empty handle becomes a new null object.
func (o *object) adopt(child Object) *object {
	c := child.o
	if c == nil {
		return newObject(o.alloc, ObjNull)
	}
	if c.alloc != o.alloc {
		panic(fmt.Errorf("%w: %s object inserted into %s %s",
			ErrAllocatorMismatch, c.alloc.Name(), o.alloc.Name(), o.typ))
	}
	if c == o || c.reaches(o) {
		panic(fmt.Errorf("%w: %s", ErrCycle, o.typ))
	}
	return c
}

// reaches reports whether target is held, directly or not, by o.
func (o *object) reaches(target *object) bool {
	switch o.typ {
	case ObjArray:
		for _, c := range o.items {
			if c == target || c.reaches(target) {
				return true
			}
		}
	case ObjDict:
		for _, c := range o.keys {
			if c == target || c.reaches(target) {
				return true
			}
		}
	case ObjStream:
		d := o.stream.dict
		return d == target || d.reaches(target)
	}
	return false
}

// AsNull returns the object as a Null, or an empty handle on mismatch.
func (obj Object) AsNull() Null {
	if obj.Type() != ObjNull {
		return Null{}
	}
	return Null{obj}
}

// AsBool returns the object as a Bool, or an empty handle on mismatch.
func (obj Object) AsBool() Bool {
	if obj.Type() != ObjBool {
		return Bool{}
	}
	return Bool{obj}
}

// AsNumber returns the object as a Number, or an empty handle on mismatch.
func (obj Object) AsNumber() Number {
	if obj.Type() != ObjNumber {
		return Number{}
	}
	return Number{obj}
}

// AsString returns the object as a String, or an empty handle on mismatch.
func (obj Object) AsString() String {
	if obj.Type() != ObjString {
		return String{}
	}
	return String{obj}
}

// AsName returns the object as a Name, or an empty handle on mismatch.
func (obj Object) AsName() Name {
	if obj.Type() != ObjName {
		return Name{}
	}
	return Name{obj}
}

// AsArray returns the object as an Array, or an empty handle on mismatch.
func (obj Object) AsArray() Array {
	if obj.Type() != ObjArray {
		return Array{}
	}
	return Array{obj}
}

// AsDict returns the object as a Dict, or an empty handle on mismatch.
func (obj Object) AsDict() Dict {
	if obj.Type() != ObjDict {
		return Dict{}
	}
	return Dict{obj}
}

// AsStream returns the object as a Stream, or an empty handle on mismatch.
func (obj Object) AsStream() Stream {
	if obj.Type() != ObjStream {
		return Stream{}
	}
	return Stream{obj}
}

// AsReference returns the object as a Reference, or an empty handle on mismatch.
func (obj Object) AsReference() Reference {
	if obj.Type() != ObjReference {
		return Reference{}
	}
	return Reference{obj}
}

// String formats the object in PDF syntax. Stream data is summarized.
func (obj Object) String() string {
	if obj.o == nil {
		return "<empty>"
	}
	var sb strings.Builder
	obj.o.format(&sb)
	return sb.String()
}

func (o *object) format(sb *strings.Builder) {
	switch o.typ {
	case ObjNull:
		sb.WriteString("null")
	case ObjBool:
		sb.WriteString(strconv.FormatBool(o.b))
	case ObjNumber:
		if o.num.isInt {
			sb.WriteString(strconv.FormatInt(o.num.i, 10))
		} else {
			sb.WriteString(strconv.FormatFloat(o.num.f, 'f', -1, 64))
		}
	case ObjString:
		formatString(sb, o.data, o.hex)
	case ObjName:
		formatName(sb, o.data)
	case ObjArray:
		sb.WriteByte('[')
		for i, c := range o.items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			c.format(sb)
		}
		sb.WriteByte(']')
	case ObjDict:
		keys := make([]string, 0, len(o.keys))
		for k := range o.keys {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("<<")
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(' ')
			}
			formatName(sb, []byte(k))
			sb.WriteByte(' ')
			o.keys[k].format(sb)
		}
		sb.WriteString(">>")
	case ObjStream:
		o.stream.dict.format(sb)
		fmt.Fprintf(sb, " stream (%d bytes)", o.stream.rawSize())
	case ObjReference:
		fmt.Fprintf(sb, "%d %d R", o.ref.num, o.ref.gen)
	}
}

func formatString(sb *strings.Builder, data []byte, hex bool) {
	if hex {
		sb.WriteByte('<')
		for _, b := range data {
			fmt.Fprintf(sb, "%02X", b)
		}
		sb.WriteByte('>')
		return
	}
	sb.WriteByte('(')
	for _, b := range data {
		switch b {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(b)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if b < 0x20 || b > 0x7E {
				fmt.Fprintf(sb, "\\%03o", b)
			} else {
				sb.WriteByte(b)
			}
		}
	}
	sb.WriteByte(')')
}

func formatName(sb *strings.Builder, name []byte) {
	sb.WriteByte('/')
	for _, b := range name {
		if b < '!' || b > '~' || strings.IndexByte("#()<>[]{}/%", b) >= 0 {
			fmt.Fprintf(sb, "#%02X", b)
		} else {
			sb.WriteByte(b)
		}
	}
}

// readView reads n bytes at off from r. Bytes read before an error are
// returned with it.
func readView(r io.ReaderAt, off, n int64) ([]byte, error) {
	buf := make([]byte, n)
	got, err := r.ReadAt(buf, off)
	if err != nil && !(errors.Is(err, io.EOF) && int64(got) == n) {
		return buf[:got], fmt.Errorf("core: read stream data at %d: %w", off, err)
	}
	return buf, nil
}
