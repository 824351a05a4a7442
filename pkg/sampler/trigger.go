package sampler

import "sync/atomic"

// Starter issues a conversion sequence start.
type Starter interface {
	StartSequence() error
}

// Trigger divides the tick rate down to the sample rate. Tick is safe to
// call from a timer goroutine and never blocks as long as the Starter does
// not.
type Trigger struct {
	conv    Starter
	divisor uint32

	count       uint32
	starts      atomic.Uint64
	startErrors atomic.Uint64
}

// NewTrigger returns a trigger that starts a sequence every divisor ticks.
// Divisors below 1 are treated as 1.
func NewTrigger(conv Starter, divisor int) *Trigger {
	if divisor < 1 {
		divisor = 1
	}
	return &Trigger{conv: conv, divisor: uint32(divisor)}
}

// Tick advances the counter and starts a sequence when it reaches the divisor.
// Tick must be called from a single goroutine.
func (t *Trigger) Tick() {
	t.count++
	if t.count < t.divisor {
		return
	}
	t.count = 0
	t.starts.Add(1)
	if err := t.conv.StartSequence(); err != nil {
		t.startErrors.Add(1)
	}
}

// Starts returns the number of start commands issued.
func (t *Trigger) Starts() uint64 { return t.starts.Load() }

// StartErrors returns how many start commands the converter rejected.
func (t *Trigger) StartErrors() uint64 { return t.startErrors.Load() }
