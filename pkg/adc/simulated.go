package adc

import (
	"math/rand"
	"sync"
)

// Source yields the next 12-bit code for a channel.
type Source func(ch int) uint16

// SimConfig configures a Simulated converter.
type SimConfig struct {
	Index int

	// Channels converted by sequence A.
	Channels []int

	// Comparator channels; defaults to every sequence channel.
	Comparator []int
	Thresholds Thresholds

	// Source defaults to uniformly random codes.
	Source Source
}

// Simulated is an in-process converter. StartSequence converts
// synchronously and then runs the completion handler, the way a sequence
// interrupt would follow a manual start.
type Simulated struct {
	regBank
	index    int
	channels []int
	source   Source

	closeMu sync.Mutex
	closed  bool
}

func NewSimulated(cfg SimConfig) *Simulated {
	s := &Simulated{index: cfg.Index, channels: append([]int(nil), cfg.Channels...), source: cfg.Source}
	if s.source == nil {
		s.source = RandomSource()
	}
	s.thr = cfg.Thresholds
	cmp := cfg.Comparator
	if cmp == nil {
		cmp = cfg.Channels
	}
	s.cmp = make(map[int]bool, len(cmp))
	for _, ch := range cmp {
		s.cmp[ch] = true
	}
	return s
}

// RandomSource returns codes spread over the full 12-bit range.
func RandomSource() Source {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(rand.Int63()))
	return func(int) uint16 {
		mu.Lock()
		defer mu.Unlock()
		return uint16(rng.Intn(MaxCode + 1))
	}
}

// ConstSource returns the same code for every channel.
func ConstSource(code uint16) Source {
	return func(int) uint16 { return code }
}

func (s *Simulated) Index() int { return s.index }

func (s *Simulated) StartSequence() error {
	s.closeMu.Lock()
	closed := s.closed
	s.closeMu.Unlock()
	if closed {
		return ErrClosed
	}

	s.mu.Lock()
	for _, ch := range s.channels {
		code := s.source(ch)
		if code > MaxCode {
			code = MaxCode
		}
		s.store(ch, code)
	}
	irq := s.complete()
	s.mu.Unlock()

	if irq != nil {
		irq()
	}
	return nil
}

func (s *Simulated) Close() error {
	s.closeMu.Lock()
	s.closed = true
	s.closeMu.Unlock()
	return nil
}
