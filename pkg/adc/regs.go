package adc

import "sync"

// regBank holds the data registers and interrupt flags shared by the
// converter implementations.
type regBank struct {
	mu       sync.Mutex
	regs     [NumChannels]RawSample
	prev     [NumChannels]uint16
	havePrev [NumChannels]bool
	flags    uint32
	irq      func()
	thr      Thresholds

	// comparator channels get range/cross fields and crossing flags
	cmp map[int]bool
}

// store latches a new result for ch. A still-valid previous result marks
// the register as overrun.
func (b *regBank) store(ch int, code uint16) {
	if ch < 0 || ch >= NumChannels {
		return
	}
	overrun := b.regs[ch].Valid()
	var rng, cross uint8
	if b.cmp[ch] {
		rng, cross = b.thr.classify(b.prev[ch], code, b.havePrev[ch])
		if cross != CrossNone {
			b.flags |= FlagThCmp(ch)
		}
	}
	b.prev[ch] = code
	b.havePrev[ch] = true
	b.regs[ch] = NewRawSample(code, true, overrun, rng, cross)
}

// complete raises the sequence A flag and returns the handler to invoke
// outside the lock.
func (b *regBank) complete() func() {
	b.flags |= FlagSeqAInt
	return b.irq
}

func (b *regBank) Flags() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flags
}

func (b *regBank) ClearFlags(mask uint32) {
	b.mu.Lock()
	b.flags &^= mask
	b.mu.Unlock()
}

func (b *regBank) DataReg(ch int) RawSample {
	if ch < 0 || ch >= NumChannels {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	v := b.regs[ch]
	b.regs[ch] = v &^ (DataValidBit | OverrunBit)
	return v
}

func (b *regBank) SetIRQHandler(h func()) {
	b.mu.Lock()
	b.irq = h
	b.mu.Unlock()
}
