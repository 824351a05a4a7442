package sampler

import (
	"sync/atomic"
	"time"

	"github.com/ericogr/adc-sampler/pkg/adc"
)

// Notifier is the sequence-complete handler. It is the only writer of the
// mailbox.
type Notifier struct {
	conv adc.Converter
	box  *Mailbox
	wake chan struct{}

	seq         atomic.Uint64
	completions atomic.Uint64
	now         func() time.Time
}

// NewNotifier registers itself as conv's completion handler.
func NewNotifier(conv adc.Converter, box *Mailbox) *Notifier {
	n := &Notifier{conv: conv, box: box, wake: make(chan struct{}, 1), now: time.Now}
	conv.SetIRQHandler(n.HandleIRQ)
	return n
}

// HandleIRQ captures the data registers when sequence A has completed and
// wakes the main loop. The handled flags are always acknowledged.
func (n *Notifier) HandleIRQ() {
	pending := n.conv.Flags()
	ack := adc.FlagSeqAInt | pending&adc.FlagThCmpMask

	if pending&adc.FlagSeqAInt != 0 {
		f := &Frame{
			ADC:      n.conv.Index(),
			Seq:      n.seq.Add(1),
			Crossed:  pending & adc.FlagThCmpMask,
			Captured: n.now(),
		}
		for ch := range f.Regs {
			f.Regs[ch] = n.conv.DataReg(ch)
		}
		n.box.Publish(f)
		n.completions.Add(1)
		select {
		case n.wake <- struct{}{}:
		default:
		}
	}

	n.conv.ClearFlags(ack)
}

// Wake fires after each completion. It is the main loop's only wait point
// besides cancellation and report cadence.
func (n *Notifier) Wake() <-chan struct{} { return n.wake }

// Completions returns the number of sequences captured.
func (n *Notifier) Completions() uint64 { return n.completions.Load() }
