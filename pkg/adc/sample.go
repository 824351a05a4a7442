package adc

// NumChannels is the number of inputs per converter.
const NumChannels = 12

// MaxCode is the full-scale 12-bit conversion result.
const MaxCode = 0xFFF

// Data register layout.
const (
	resultShift   = 4
	resultMask    = 0xFFF
	thrRangeShift = 16
	thrRangeMask  = 0x3
	thrCrossShift = 18
	thrCrossMask  = 0x3
	OverrunBit    = 1 << 30
	DataValidBit  = 1 << 31
)

// Threshold range values.
const (
	RangeInside = 0
	RangeBelow  = 1
	RangeAbove  = 2
)

// Threshold crossing values.
const (
	CrossNone = 0
	CrossDown = 2
	CrossUp   = 3
)

// RawSample is a per-channel data register value.
type RawSample uint32

// NewRawSample packs a 12-bit result and status fields into a data register value.
func NewRawSample(result uint16, valid, overrun bool, thrRange, thrCross uint8) RawSample {
	v := uint32(result&resultMask) << resultShift
	v |= uint32(thrRange&thrRangeMask) << thrRangeShift
	v |= uint32(thrCross&thrCrossMask) << thrCrossShift
	if overrun {
		v |= OverrunBit
	}
	if valid {
		v |= DataValidBit
	}
	return RawSample(v)
}

func (r RawSample) Valid() bool           { return uint32(r)&DataValidBit != 0 }
func (r RawSample) Overrun() bool         { return uint32(r)&OverrunBit != 0 }
func (r RawSample) Result() uint16        { return uint16((uint32(r) >> resultShift) & resultMask) }
func (r RawSample) ThresholdRange() uint8 { return uint8((uint32(r) >> thrRangeShift) & thrRangeMask) }
func (r RawSample) ThresholdCross() uint8 { return uint8((uint32(r) >> thrCrossShift) & thrCrossMask) }

// Scale maps a 12-bit result to the 8-bit reporting range by dropping the
// low 8 bits.
func Scale(result uint16) uint8 {
	return uint8((result >> 8) & 0xFF)
}

// Delta re-centres a scaled value around zero for a relative-motion field.
// The subtraction wraps in 8 bits.
func Delta(scaled uint8) int8 {
	return int8(scaled - 128)
}
