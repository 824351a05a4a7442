package adc

import "testing"

func TestSimulatedSequence(t *testing.T) {
	code := uint16(0x100)
	s := NewSimulated(SimConfig{
		Index:      1,
		Channels:   []int{1, 3},
		Thresholds: ThresholdsFromFractions(0.25, 0.75),
		Source:     func(int) uint16 { return code },
	})
	fired := 0
	s.SetIRQHandler(func() { fired++ })

	if err := s.StartSequence(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if fired != 1 {
		t.Fatalf("irq fired %d times", fired)
	}
	if s.Flags()&FlagSeqAInt == 0 {
		t.Fatalf("sequence flag not raised")
	}

	r := s.DataReg(1)
	if !r.Valid() || r.Result() != 0x100 || r.ThresholdRange() != RangeBelow {
		t.Fatalf("ch1: %#x", uint32(r))
	}
	if s.DataReg(1).Valid() {
		t.Fatalf("reading should consume the valid bit")
	}
	if s.DataReg(0).Valid() {
		t.Fatalf("channel 0 is not in the sequence")
	}

	// channel 3 left unread: next conversion overruns it and crosses up.
	code = 0x800
	s.ClearFlags(FlagSeqAInt | FlagThCmpMask)
	if err := s.StartSequence(); err != nil {
		t.Fatalf("start: %v", err)
	}
	r = s.DataReg(3)
	if !r.Overrun() {
		t.Fatalf("ch3 should be overrun: %#x", uint32(r))
	}
	if r.ThresholdCross() != CrossUp || r.ThresholdRange() != RangeInside {
		t.Fatalf("ch3 threshold fields: range=%d cross=%d", r.ThresholdRange(), r.ThresholdCross())
	}
	if s.Flags()&FlagThCmp(3) == 0 {
		t.Fatalf("crossing flag not raised")
	}
	if r = s.DataReg(1); r.Overrun() {
		t.Fatalf("ch1 was read, should not overrun")
	}
}

func TestSimulatedClosed(t *testing.T) {
	s := NewSimulated(SimConfig{Channels: []int{0}})
	_ = s.Close()
	if err := s.StartSequence(); err != ErrClosed {
		t.Fatalf("got %v; want ErrClosed", err)
	}
}

func TestSimulatedComparatorChannels(t *testing.T) {
	s := NewSimulated(SimConfig{
		Channels:   []int{0, 1},
		Comparator: []int{1},
		Thresholds: ThresholdsFromFractions(0.25, 0.75),
		Source:     ConstSource(0x010),
	})
	for i := 0; i < 2; i++ {
		if err := s.StartSequence(); err != nil {
			t.Fatalf("start: %v", err)
		}
	}

	if r := s.DataReg(0); !r.Valid() || r.ThresholdRange() != RangeInside || r.ThresholdCross() != CrossNone {
		t.Fatalf("ch0 is not a comparator channel: %#x", uint32(r))
	}
	if r := s.DataReg(1); r.ThresholdRange() != RangeBelow {
		t.Fatalf("ch1 threshold range: %#x", uint32(r))
	}

	// an empty comparator list disables threshold fields entirely
	none := NewSimulated(SimConfig{Channels: []int{1}, Comparator: []int{}, Source: ConstSource(0x010), Thresholds: ThresholdsFromFractions(0.25, 0.75)})
	_ = none.StartSequence()
	if r := none.DataReg(1); r.ThresholdRange() != RangeInside {
		t.Fatalf("comparator disabled but range set: %#x", uint32(r))
	}
}
