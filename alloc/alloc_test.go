package alloc

import (
	"errors"
	"testing"
)

func TestBytesAndFree(t *testing.T) {
	a := New()
	buf := a.Bytes(100)
	if len(buf) != 100 {
		t.Fatalf("len(buf) = %d, want 100", len(buf))
	}
	if got := a.Stats().Bytes; got != 100 {
		t.Errorf("Stats().Bytes = %d, want 100", got)
	}
	a.Free(buf[:10])
	if got := a.Stats().Bytes; got != 0 {
		t.Errorf("Stats().Bytes after Free = %d, want 0", got)
	}
}

func TestBytesZeroLength(t *testing.T) {
	a := New()
	if buf := a.Bytes(0); buf != nil {
		t.Errorf("Bytes(0) = %v, want nil", buf)
	}
	a.Free(nil)
	if got := a.Stats(); got != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", got)
	}
}

func TestCopy(t *testing.T) {
	a := New()
	src := []byte("hello")
	dst := a.Copy(src)
	src[0] = 'j'
	if string(dst) != "hello" {
		t.Errorf("Copy = %q, want %q", dst, "hello")
	}
}

func TestLimitExhausted(t *testing.T) {
	a := New(WithLimit(16), WithName("small"))
	a.Bytes(10)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic when limit is exceeded")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrExhausted) {
			t.Fatalf("panic value = %v, want ErrExhausted", r)
		}
		if got := a.Stats().Bytes; got != 10 {
			t.Errorf("failed allocation leaked accounting: %d bytes, want 10", got)
		}
	}()
	a.Bytes(7)
}

func TestObjectAccounting(t *testing.T) {
	a := New()
	a.AllocObject()
	a.AllocObject()
	a.FreeObject()
	if got := a.Stats().Objects; got != 1 {
		t.Errorf("Stats().Objects = %d, want 1", got)
	}
}

func TestOr(t *testing.T) {
	if Or(nil) != Default() {
		t.Error("Or(nil) should return the default allocator")
	}
	a := New()
	if Or(a) != a {
		t.Error("Or(a) should return a")
	}
}
