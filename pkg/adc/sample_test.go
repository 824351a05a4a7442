package adc

import "testing"

func TestRawSampleFields(t *testing.T) {
	r := NewRawSample(0xABC, true, true, RangeAbove, CrossUp)
	if !r.Valid() || !r.Overrun() {
		t.Fatalf("flags: valid=%v overrun=%v", r.Valid(), r.Overrun())
	}
	if r.Result() != 0xABC {
		t.Fatalf("result: got %#x want 0xabc", r.Result())
	}
	if r.ThresholdRange() != RangeAbove || r.ThresholdCross() != CrossUp {
		t.Fatalf("threshold: range=%d cross=%d", r.ThresholdRange(), r.ThresholdCross())
	}
	if uint32(r)&0xF != 0 {
		t.Fatalf("low nibble should be clear: %#x", uint32(r))
	}

	r = NewRawSample(0x123, false, false, 0, 0)
	if r.Valid() || r.Overrun() {
		t.Fatalf("expected invalid sample, got %#x", uint32(r))
	}
	if r.Result() != 0x123 {
		t.Fatalf("result: got %#x", r.Result())
	}
}

func TestScale(t *testing.T) {
	for r := uint16(0); r <= MaxCode; r++ {
		if got, want := Scale(r), uint8((r>>8)&0xFF); got != want {
			t.Fatalf("Scale(%#x) = %#x; want %#x", r, got, want)
		}
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		code uint16
		want int8
	}{
		{0xFFF, -113},
		{0x000, -128},
		{0x800, -120},
	}
	for _, tt := range tests {
		got := Delta(Scale(tt.code))
		if got != tt.want {
			t.Fatalf("Delta(Scale(%#x)) = %d; want %d", tt.code, got, tt.want)
		}
	}
	if b := uint8(Delta(Scale(0xFFF))); b != 0x8F {
		t.Fatalf("0xFFF byte = %#x; want 0x8f", b)
	}
	if b := uint8(Delta(Scale(0))); b != 0x80 {
		t.Fatalf("0x000 byte = %#x; want 0x80", b)
	}
}

func TestThresholdsFromFractions(t *testing.T) {
	th := ThresholdsFromFractions(0.25, 0.75)
	if th.Low != (1*0xFFF)/4 || th.High != (3*0xFFF)/4 {
		t.Fatalf("thresholds: %+v", th)
	}
}
