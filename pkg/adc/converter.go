package adc

import "errors"

// Interrupt flag bits reported by Flags.
const (
	// FlagSeqAInt is raised when conversion sequence A completes.
	FlagSeqAInt uint32 = 1 << 28

	// FlagThCmpMask covers the per-channel threshold-crossing flags.
	FlagThCmpMask uint32 = 1<<NumChannels - 1
)

// FlagThCmp returns the threshold-crossing flag bit for a channel.
func FlagThCmp(ch int) uint32 { return 1 << uint(ch) }

var (
	// ErrBusy is returned by StartSequence while a previous sequence is still converting.
	ErrBusy = errors.New("adc: sequence in progress")

	// ErrClosed is returned once the converter has been closed.
	ErrClosed = errors.New("adc: converter closed")
)

// Converter is the ADC capability the sampling pipeline drives. Implementations
// must not block in StartSequence: it is called from tick context.
type Converter interface {
	// Index identifies the converter (ADC0, ADC1...).
	Index() int
	// StartSequence requests one conversion of every channel in sequence A.
	StartSequence() error
	// Flags returns the pending interrupt flags.
	Flags() uint32
	// ClearFlags acknowledges the given flag bits.
	ClearFlags(mask uint32)
	// DataReg reads the data register of a channel. Reading consumes the
	// valid bit, as the hardware does.
	DataReg(ch int) RawSample
	// SetIRQHandler installs the completion handler.
	SetIRQHandler(h func())
	Close() error
}

// Thresholds are comparator bounds as 12-bit codes.
type Thresholds struct {
	Low  uint16
	High uint16
}

// ThresholdsFromFractions converts fractions of full scale to codes,
// e.g. 0.25 and 0.75 give roughly 1/4 and 3/4 of MaxCode.
func ThresholdsFromFractions(low, high float64) Thresholds {
	return Thresholds{Low: uint16(low * MaxCode), High: uint16(high * MaxCode)}
}

// classify returns the range and crossing fields for a new result given the
// previous result on the same channel. Crossing is detected on the low
// threshold.
func (t Thresholds) classify(prev, cur uint16, havePrev bool) (thrRange, thrCross uint8) {
	switch {
	case cur < t.Low:
		thrRange = RangeBelow
	case cur > t.High:
		thrRange = RangeAbove
	default:
		thrRange = RangeInside
	}
	if !havePrev {
		return thrRange, CrossNone
	}
	switch {
	case prev < t.Low && cur >= t.Low:
		thrCross = CrossUp
	case prev >= t.Low && cur < t.Low:
		thrCross = CrossDown
	}
	return thrRange, thrCross
}
