package transport

import "sync"

// Fifo is a bounded byte queue between a receive goroutine and the main
// loop. Bytes that do not fit are dropped.
type Fifo struct {
	mu      sync.Mutex
	buf     []byte
	read    int
	write   int
	size    int
	dropped uint64
}

// NewFifo creates a Fifo holding up to capacity-1 bytes.
func NewFifo(capacity int) *Fifo {
	if capacity < 2 {
		capacity = 2
	}
	return &Fifo{buf: make([]byte, capacity), size: capacity}
}

// Write appends data and returns how many bytes were stored.
func (f *Fifo) Write(data []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	written := 0
	for _, b := range data {
		next := (f.write + 1) % f.size
		if next == f.read {
			f.dropped += uint64(len(data) - written)
			break
		}
		f.buf[f.write] = b
		f.write = next
		written++
	}
	return written
}

// Read moves up to len(data) bytes out of the queue.
func (f *Fifo) Read(data []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for n < len(data) && f.read != f.write {
		data[n] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
		n++
	}
	return n
}

// Available returns the number of queued bytes.
func (f *Fifo) Available() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}

// Dropped returns the number of bytes discarded because the queue was full.
func (f *Fifo) Dropped() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}
