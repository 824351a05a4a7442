package sampler

import (
	"sync/atomic"

	"github.com/ericogr/adc-sampler/pkg/adc"
)

// Sample is one valid channel reading taken from a frame.
type Sample struct {
	ADC     int
	Channel int
	Raw     adc.RawSample
	Result  uint16
	Scaled  uint8
	Overrun bool
	Range   uint8
	Cross   uint8

	// Crossed is set when the channel's threshold-crossing flag was
	// pending at completion.
	Crossed bool
}

// Extract returns the valid samples of f in channel order. Overrun samples
// are kept.
func Extract(f *Frame) []Sample {
	if f == nil {
		return nil
	}
	var out []Sample
	for ch, r := range f.Regs {
		if !r.Valid() {
			continue
		}
		res := r.Result()
		out = append(out, Sample{
			ADC:     f.ADC,
			Channel: ch,
			Raw:     r,
			Result:  res,
			Scaled:  adc.Scale(res),
			Overrun: r.Overrun(),
			Range:   r.ThresholdRange(),
			Cross:   r.ThresholdCross(),
			Crossed: f.Crossed&adc.FlagThCmp(ch) != 0,
		})
	}
	return out
}

// Extractor consumes completed frames from the main loop.
type Extractor struct {
	box      *Mailbox
	consumed atomic.Uint64
}

func NewExtractor(box *Mailbox) *Extractor {
	return &Extractor{box: box}
}

// Poll takes the pending frame, if any, and returns its valid samples.
// Without a new completion it returns ok == false and does nothing.
func (e *Extractor) Poll() (f *Frame, samples []Sample, ok bool) {
	f = e.box.Take()
	if f == nil {
		return nil, nil, false
	}
	e.consumed.Add(1)
	return f, Extract(f), true
}

// Consumed returns the number of frames taken.
func (e *Extractor) Consumed() uint64 { return e.consumed.Load() }
