package report

import (
	"github.com/ericogr/adc-sampler/pkg/adc"
	"github.com/ericogr/adc-sampler/pkg/sampler"
)

// HIDReportSize is the length of the input report in bytes.
const HIDReportSize = 1

// HIDReport is the relative-motion input report.
type HIDReport struct {
	X int8
}

// MarshalBinary encodes the report in its fixed wire size.
func (r HIDReport) MarshalBinary() ([]byte, error) {
	return r.Bytes(), nil
}

func (r HIDReport) Bytes() []byte {
	return []byte{byte(r.X)}
}

// Binary reports one channel as a signed delta around mid-scale.
type Binary struct {
	Channel int
}

func (b *Binary) Periodic() bool { return true }

func (b *Binary) Build(samples []sampler.Sample) []byte {
	for _, s := range samples {
		if s.Channel == b.Channel {
			return HIDReport{X: adc.Delta(s.Scaled)}.Bytes()
		}
	}
	return nil
}
