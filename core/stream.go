package core

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tsawler/pdfgraph/alloc"
	"github.com/tsawler/pdfgraph/internal/filters"
)

// Crypter encrypts and decrypts stream data with the per-object key derived
// from an object and generation number. Key derivation and ciphers live
// behind this contract.
type Crypter interface {
	// Authenticated reports whether a password has been accepted. Data
	// passes through unchanged until it has.
	Authenticated() bool
	Encrypt(data []byte, objNum, genNum uint32) []byte
	Decrypt(data []byte, objNum, genNum uint32) []byte
}

type streamBody struct {
	dict *object

	data    []byte // owned raw bytes, allocator owned
	view    io.ReaderAt
	viewOff int64
	viewLen int64

	objNum, genNum uint32
	crypt          Crypter
}

func (s *streamBody) rawSize() int64 {
	if s.view != nil {
		return s.viewLen
	}
	return int64(len(s.data))
}

// clone copies the dictionary and the raw bytes, reading a view into an
// owned buffer. A view that cannot be read in full keeps what was read.
func (s *streamBody) clone(a *alloc.Allocator) *streamBody {
	c := &streamBody{
		dict:   s.dict.clone(),
		objNum: s.objNum,
		genNum: s.genNum,
		crypt:  s.crypt,
	}
	if s.view != nil {
		raw, _ := readView(s.view, s.viewOff, s.viewLen)
		c.data = a.Copy(raw)
		if int64(len(raw)) != s.viewLen {
			syncLength(c.dict, int64(len(raw)), false)
		}
		return c
	}
	c.data = a.Copy(s.data)
	return c
}

// syncLength stores n as the dictionary's Length entry.
func syncLength(d *object, n int64, mark bool) {
	if old, ok := d.keys["Length"]; ok && old.typ == ObjNumber {
		old.num = number{i: n, isInt: true}
		if mark {
			old.modified = true
		}
		return
	}
	l := newObject(d.alloc, ObjNumber)
	l.num = number{i: n, isInt: true}
	if old, ok := d.keys["Length"]; ok {
		old.release()
	}
	d.keys["Length"] = l
	if mark {
		d.modified = true
	}
}

// Stream represents a PDF stream: a dictionary plus raw bytes that are
// either owned or read on demand from an io.ReaderAt. The dictionary's
// Length entry always matches the raw size.
type Stream struct{ Object }

func newStream(a *alloc.Allocator) (Stream, *streamBody) {
	o := newObject(a, ObjStream)
	body := &streamBody{dict: newObject(o.alloc, ObjDict)}
	o.stream = body
	return Stream{Object{o}}, body
}

// NewStream creates a stream with an empty dictionary and no data.
func NewStream(a *alloc.Allocator) Stream {
	s, body := newStream(a)
	syncLength(body.dict, 0, false)
	return s
}

// NewStreamBytes creates a stream owning a copy of raw.
func NewStreamBytes(a *alloc.Allocator, raw []byte) Stream {
	s, body := newStream(a)
	body.data = s.o.alloc.Copy(raw)
	syncLength(body.dict, int64(len(raw)), false)
	return s
}

// NewStreamView creates a stream whose n raw bytes are read from r at off
// whenever they are needed.
func NewStreamView(a *alloc.Allocator, r io.ReaderAt, off, n int64) Stream {
	s, body := newStream(a)
	body.view = r
	body.viewOff = off
	body.viewLen = n
	syncLength(body.dict, n, false)
	return s
}

// Clone returns an owned deep copy. A view-backed stream is materialized.
func (s Stream) Clone() Stream {
	return s.Object.Clone().AsStream()
}

// Dict returns a borrowed handle to the stream dictionary.
func (s Stream) Dict() Dict {
	if s.o == nil {
		return Dict{}
	}
	return Dict{Object{s.o.stream.dict}}
}

// SetDictionary replaces the stream dictionary, taking over the caller's
// handle. Length is rewritten to match the raw data.
func (s Stream) SetDictionary(d Dict) {
	c := s.o.adopt(d.Object)
	if c.typ != ObjDict {
		c.release()
		panic(fmt.Sprintf("core: stream dictionary must be a Dict, got %s", c.typ))
	}
	old := s.o.stream.dict
	s.o.stream.dict = c
	old.release()
	syncLength(c, s.o.stream.rawSize(), true)
	s.o.modified = true
}

// ObjectID returns the object and generation numbers used for decryption.
func (s Stream) ObjectID() (num, gen uint32) {
	if s.o == nil {
		return 0, 0
	}
	return s.o.stream.objNum, s.o.stream.genNum
}

// SetObjectID links the stream to its indirect object numbers.
func (s Stream) SetObjectID(num, gen uint32) {
	s.o.stream.objNum = num
	s.o.stream.genNum = gen
}

// SetCrypter attaches the security handler used by RawBytes and SetRawData.
func (s Stream) SetCrypter(c Crypter) {
	s.o.stream.crypt = c
}

// IsView reports whether the raw bytes are read from an external source.
func (s Stream) IsView() bool {
	return s.o != nil && s.o.stream.view != nil
}

// RawSize returns the size of the stored raw data, as written in the file.
func (s Stream) RawSize() int64 {
	if s.o == nil {
		return 0
	}
	return s.o.stream.rawSize()
}

func (s Stream) decrypting() bool {
	c := s.o.stream.crypt
	return c != nil && c.Authenticated()
}

// RawBytes returns the raw (still filtered) data, decrypted when an
// authenticated Crypter is attached. The result must not be modified.
func (s Stream) RawBytes() ([]byte, error) {
	if s.o == nil {
		return nil, nil
	}
	body := s.o.stream
	raw := body.data
	if body.view != nil {
		var err error
		if raw, err = readView(body.view, body.viewOff, body.viewLen); err != nil {
			return nil, err
		}
	}
	if s.decrypting() {
		raw = body.crypt.Decrypt(raw, body.objNum, body.genNum)
	}
	return raw, nil
}

// RawData copies raw bytes starting at offset into buf, with io.ReaderAt
// semantics: fewer than len(buf) bytes come with io.EOF.
func (s Stream) RawData(offset int64, buf []byte) (int, error) {
	raw, err := s.RawBytes()
	if err != nil {
		return 0, err
	}
	if offset < 0 {
		return 0, fmt.Errorf("core: negative stream offset %d", offset)
	}
	if offset >= int64(len(raw)) {
		return 0, io.EOF
	}
	n := copy(buf, raw[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

// SetRawData replaces the stream data. With a non-empty filter name the
// data is first encoded with that filter (ASCIIHexDecode, ASCII85Decode,
// FlateDecode, LZWDecode or RunLengthDecode), and Filter names it;
// otherwise Filter is removed. DecodeParms is always removed. The result
// is encrypted when an authenticated Crypter is attached, and Length is
// updated.
func (s Stream) SetRawData(data []byte, filter string) error {
	encoded := data
	if filter != "" {
		filter = filters.Canonical(filter)
		f, err := filters.DefaultRegistry().New(filter, s.o.alloc, nil)
		if err != nil {
			return fmt.Errorf("core: set stream data: %w", err)
		}
		var out bytes.Buffer
		if err := f.Encode(data, &out); err != nil {
			return fmt.Errorf("core: set stream data with %s: %w", filter, err)
		}
		if filter == filters.ASCII85 {
			out.WriteString("~>")
		}
		encoded = out.Bytes()
	}

	body := s.o.stream
	if s.decrypting() {
		encoded = body.crypt.Encrypt(encoded, body.objNum, body.genNum)
	}

	s.o.alloc.Free(body.data)
	body.data = s.o.alloc.Copy(encoded)
	body.view = nil

	d := s.Dict()
	if filter != "" {
		d.SetName("Filter", filter)
	} else {
		d.Remove("Filter")
	}
	d.Remove("DecodeParms")
	syncLength(body.dict, int64(len(encoded)), true)
	s.o.modified = true
	return nil
}

// Decode returns a copy of the stream data decoded through every filter
// named in its dictionary, using the stream's allocator.
func (s Stream) Decode(opts ...Option) ([]byte, error) {
	return decodeOne(s, opts)
}
