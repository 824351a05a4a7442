package sampler

import (
	"sync/atomic"
	"time"

	"github.com/ericogr/adc-sampler/pkg/adc"
)

// Frame is the register snapshot of one completed sequence.
type Frame struct {
	ADC      int
	Seq      uint64
	Regs     [adc.NumChannels]adc.RawSample
	Captured time.Time

	// Crossed holds the threshold-crossing flags pending at completion.
	Crossed uint32
}

// Mailbox is a single-slot hand-off between completion context and the
// main loop. A frame published before the previous one was taken replaces
// it and is counted as an overwrite.
type Mailbox struct {
	slot       atomic.Pointer[Frame]
	overwrites atomic.Uint64
}

// Publish stores f. It reports whether an unconsumed frame was replaced.
func (m *Mailbox) Publish(f *Frame) bool {
	if old := m.slot.Swap(f); old != nil {
		m.overwrites.Add(1)
		return true
	}
	return false
}

// Take removes and returns the pending frame, or nil.
func (m *Mailbox) Take() *Frame { return m.slot.Swap(nil) }

// Pending reports whether a frame is waiting.
func (m *Mailbox) Pending() bool { return m.slot.Load() != nil }

// Overwrites returns the number of frames replaced before being consumed.
func (m *Mailbox) Overwrites() uint64 { return m.overwrites.Load() }
