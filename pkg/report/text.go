package report

import (
	"fmt"
	"log"

	"github.com/ericogr/adc-sampler/pkg/sampler"
)

// ComparatorADC is the converter whose sequence A carries threshold events.
const ComparatorADC = 1

// Text writes one human readable line per valid sample.
type Text struct {
	Logger *log.Logger

	// Debug also logs full results and threshold fields.
	Debug bool
}

func (t *Text) Periodic() bool { return false }

func (t *Text) Build(samples []sampler.Sample) []byte {
	if len(samples) == 0 {
		return nil
	}
	var out []byte
	for _, s := range samples {
		out = append(out, FormatLine(s)...)
		if !t.Debug || t.Logger == nil {
			continue
		}
		t.Logger.Printf("ADC%d_%d: Sample value = 0x%x (Data sample %d)", s.ADC, s.Channel, s.Result, s.Channel)
		if s.ADC == ComparatorADC {
			t.Logger.Printf("ADC%d_%d: Threshold range = 0x%x", s.ADC, s.Channel, s.Range)
			t.Logger.Printf("ADC%d_%d: Threshold cross = 0x%x", s.ADC, s.Channel, s.Cross)
		}
		if s.Crossed {
			t.Logger.Printf("ADC%d_%d: Threshold crossing event", s.ADC, s.Channel)
		}
	}
	return out
}

// FormatLine renders the text report line for one sample.
func FormatLine(s sampler.Sample) string {
	return fmt.Sprintf("ADC%d_%d: Sample value = 0x%x (Data sample %d)\r\n", s.ADC, s.Channel, s.Scaled, s.Channel)
}
