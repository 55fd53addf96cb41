package core

import (
	"sort"
	"sync"

	"github.com/tsawler/pdfgraph/alloc"
)

// Store is an in-memory table of indirect objects keyed by object and
// generation number. It is the ObjectSource References created through it
// resolve against. Lookups may run concurrently with each other; changes
// must not run concurrently with lookups.
type Store struct {
	alloc   *alloc.Allocator
	mu      sync.RWMutex
	objects map[refKey]*object
	next    uint32
}

// NewStore creates an empty store bound to a.
func NewStore(a *alloc.Allocator) *Store {
	return &Store{
		alloc:   alloc.Or(a),
		objects: make(map[refKey]*object),
		next:    1,
	}
}

// Allocator returns the allocator every stored object must share.
func (s *Store) Allocator() *alloc.Allocator {
	return s.alloc
}

// Object implements ObjectSource. The handle is borrowed.
func (s *Store) Object(num, gen uint32) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[refKey{num, gen}]
	if !ok {
		return Object{}, false
	}
	return Object{o}, true
}

// Put stores obj as num gen, taking over the caller's handle and releasing
// any object stored there before. Streams are linked to num gen for
// decryption.
func (s *Store) Put(num, gen uint32, obj Object) {
	if obj.IsEmpty() {
		s.Remove(num, gen)
		return
	}
	if obj.o.alloc != s.alloc {
		panic(ErrAllocatorMismatch)
	}
	if obj.o.typ == ObjStream {
		obj.o.stream.objNum, obj.o.stream.genNum = num, gen
	}

	s.mu.Lock()
	key := refKey{num, gen}
	old := s.objects[key]
	s.objects[key] = obj.o
	if num >= s.next {
		s.next = num + 1
	}
	s.mu.Unlock()

	if old != nil {
		old.release()
	}
}

// Add stores obj under the next free object number with generation 0 and
// returns an owned Reference to it.
func (s *Store) Add(obj Object) Reference {
	s.mu.Lock()
	num := s.next
	s.next++
	s.mu.Unlock()
	s.Put(num, 0, obj)
	return s.Reference(num, 0)
}

// Reference returns an owned Reference to num gen that resolves through s.
func (s *Store) Reference(num, gen uint32) Reference {
	return NewReference(s.alloc, num, gen, s)
}

// Remove deletes num gen. It reports whether an object was stored there.
func (s *Store) Remove(num, gen uint32) bool {
	s.mu.Lock()
	key := refKey{num, gen}
	old, ok := s.objects[key]
	delete(s.objects, key)
	s.mu.Unlock()
	if ok {
		old.release()
	}
	return ok
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Numbers returns the stored object numbers in ascending order.
func (s *Store) Numbers() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nums := make([]uint32, 0, len(s.objects))
	for k := range s.objects {
		nums = append(nums, k.num)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// Close releases every stored object.
func (s *Store) Close() {
	s.mu.Lock()
	objects := s.objects
	s.objects = make(map[refKey]*object)
	s.mu.Unlock()
	for _, o := range objects {
		o.release()
	}
}
