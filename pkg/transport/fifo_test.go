package transport

import "testing"

func TestFifoWrapAndDrop(t *testing.T) {
	f := NewFifo(5) // holds 4

	if n := f.Write([]byte("abc")); n != 3 {
		t.Fatalf("write: %d", n)
	}
	buf := make([]byte, 2)
	if n := f.Read(buf); n != 2 || string(buf) != "ab" {
		t.Fatalf("read: %d %q", n, buf[:n])
	}
	if n := f.Write([]byte("defgh")); n != 3 {
		t.Fatalf("wrapped write: %d", n)
	}
	if f.Available() != 4 {
		t.Fatalf("available: %d", f.Available())
	}
	if f.Dropped() != 2 {
		t.Fatalf("dropped: %d", f.Dropped())
	}
	out := make([]byte, 8)
	n := f.Read(out)
	if string(out[:n]) != "cdef" {
		t.Fatalf("drain: %q", out[:n])
	}
	if f.Read(out) != 0 {
		t.Fatalf("expected empty fifo")
	}
}

func TestOffline(t *testing.T) {
	var o Offline
	if o.Connected() {
		t.Fatalf("offline transport reports connected")
	}
	if _, err := o.Write([]byte("x")); err != ErrNotConnected {
		t.Fatalf("write err: %v", err)
	}
}
