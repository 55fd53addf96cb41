// Package alloc provides the allocator that an object graph and its filters
// are bound to.
//
// Go's garbage collector owns the memory itself; an Allocator records object
// lifetimes and byte buffers so that release behaviour is observable and so
// that a byte budget can be enforced for a whole graph. All objects of one
// graph must share one Allocator.
package alloc

import (
	"errors"
	"fmt"

	"go.uber.org/atomic"
)

// ErrExhausted is the panic value (wrapped) raised when an allocation would
// exceed the allocator's byte limit.
var ErrExhausted = errors.New("alloc: allocator exhausted")

// Stats is a snapshot of an allocator's live accounting.
type Stats struct {
	Objects int64 // live objects
	Bytes   int64 // live buffer bytes
}

// Allocator accounts for objects and byte buffers of one object graph.
// It is safe for concurrent use.
type Allocator struct {
	name    string
	limit   int64
	objects atomic.Int64
	bytes   atomic.Int64
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLimit caps the live buffer bytes. Zero means unlimited.
func WithLimit(n int64) Option {
	return func(a *Allocator) {
		a.limit = n
	}
}

// WithName labels the allocator in panic messages.
func WithName(name string) Option {
	return func(a *Allocator) {
		a.name = name
	}
}

// New creates an allocator.
func New(opts ...Option) *Allocator {
	a := &Allocator{name: "allocator"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultAllocator = New(WithName("default"))

// Default returns the process-wide allocator. Only the outermost layer of a
// program should reach for it; everything below takes an explicit Allocator.
func Default() *Allocator {
	return defaultAllocator
}

// Or returns a when it is non-nil and the default allocator otherwise.
func Or(a *Allocator) *Allocator {
	if a == nil {
		return defaultAllocator
	}
	return a
}

// Name returns the allocator label.
func (a *Allocator) Name() string {
	return a.name
}

// Bytes returns a zeroed buffer of n bytes accounted against a.
// It panics with an error wrapping ErrExhausted when the limit is exceeded.
func (a *Allocator) Bytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	total := a.bytes.Add(int64(n))
	if a.limit > 0 && total > a.limit {
		a.bytes.Sub(int64(n))
		panic(fmt.Errorf("%w: %s: %d bytes requested, %d of %d in use",
			ErrExhausted, a.name, n, total-int64(n), a.limit))
	}
	return make([]byte, n)
}

// Copy returns an accounted copy of data.
func (a *Allocator) Copy(data []byte) []byte {
	buf := a.Bytes(len(data))
	copy(buf, data)
	return buf
}

// Free returns a buffer obtained from Bytes or Copy. The slice must keep the
// capacity it was allocated with.
func (a *Allocator) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	a.bytes.Sub(int64(cap(buf)))
}

// AllocObject records a new live object.
func (a *Allocator) AllocObject() {
	a.objects.Inc()
}

// FreeObject records the release of an object.
func (a *Allocator) FreeObject() {
	a.objects.Dec()
}

// Stats returns the current accounting snapshot.
func (a *Allocator) Stats() Stats {
	return Stats{
		Objects: a.objects.Load(),
		Bytes:   a.bytes.Load(),
	}
}
