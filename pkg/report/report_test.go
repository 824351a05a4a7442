package report

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/ericogr/adc-sampler/pkg/adc"
	"github.com/ericogr/adc-sampler/pkg/sampler"
)

func frameSamples(adcIndex int, regs map[int]adc.RawSample) []sampler.Sample {
	f := &sampler.Frame{ADC: adcIndex}
	for ch, r := range regs {
		f.Regs[ch] = r
	}
	return sampler.Extract(f)
}

func TestTextBuild(t *testing.T) {
	samples := frameSamples(1, map[int]adc.RawSample{
		1: adc.NewRawSample(0xABC, true, false, 0, 0),
		2: adc.NewRawSample(0xFFF, false, false, 0, 0),
		5: adc.NewRawSample(0x1FF, true, true, 0, 0),
	})
	got := string((&Text{}).Build(samples))
	want := "ADC1_1: Sample value = 0xa (Data sample 1)\r\n" +
		"ADC1_5: Sample value = 0x1 (Data sample 5)\r\n"
	if got != want {
		t.Fatalf("text mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestTextNoValidSamples(t *testing.T) {
	samples := frameSamples(1, map[int]adc.RawSample{3: adc.NewRawSample(0x800, false, true, 0, 0)})
	if out := (&Text{}).Build(samples); out != nil {
		t.Fatalf("expected no report, got %q", out)
	}
}

func TestTextDebugThresholdLog(t *testing.T) {
	var buf bytes.Buffer
	p := &Text{Logger: log.New(&buf, "", 0), Debug: true}
	p.Build(frameSamples(1, map[int]adc.RawSample{1: adc.NewRawSample(0x100, true, false, adc.RangeBelow, adc.CrossDown)}))
	logged := buf.String()
	for _, want := range []string{"Sample value = 0x100", "Threshold range = 0x1", "Threshold cross = 0x2"} {
		if !strings.Contains(logged, want) {
			t.Fatalf("log missing %q:\n%s", want, logged)
		}
	}

	buf.Reset()
	p.Build(frameSamples(0, map[int]adc.RawSample{1: adc.NewRawSample(0x100, true, false, 0, 0)}))
	if strings.Contains(buf.String(), "Threshold") {
		t.Fatalf("threshold info logged for ADC0:\n%s", buf.String())
	}
}

func TestTextDebugCrossingEvent(t *testing.T) {
	var buf bytes.Buffer
	p := &Text{Logger: log.New(&buf, "", 0), Debug: true}
	f := &sampler.Frame{ADC: 1, Crossed: adc.FlagThCmp(1)}
	f.Regs[1] = adc.NewRawSample(0x900, true, false, adc.RangeInside, adc.CrossUp)
	f.Regs[3] = adc.NewRawSample(0x900, true, false, 0, 0)
	p.Build(sampler.Extract(f))

	logged := buf.String()
	if !strings.Contains(logged, "ADC1_1: Threshold crossing event") {
		t.Fatalf("crossing event not logged:\n%s", logged)
	}
	if strings.Contains(logged, "ADC1_3: Threshold crossing event") {
		t.Fatalf("event logged for channel without a crossing:\n%s", logged)
	}

	buf.Reset()
	quiet := &Text{Logger: log.New(&buf, "", 0)}
	quiet.Build(sampler.Extract(f))
	if buf.Len() != 0 {
		t.Fatalf("non-debug build logged:\n%s", buf.String())
	}
}

func TestBinaryBuild(t *testing.T) {
	tests := []struct {
		name string
		code uint16
		want byte
	}{
		{"max", 0xFFF, 0x8F},
		{"zero", 0x000, 0x80},
		{"mid", 0x800, 0x88},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := frameSamples(1, map[int]adc.RawSample{0: adc.NewRawSample(tt.code, true, false, 0, 0)})
			got := (&Binary{Channel: 0}).Build(samples)
			if len(got) != HIDReportSize || got[0] != tt.want {
				t.Fatalf("got %x; want %02x", got, tt.want)
			}
		})
	}
}

func TestBinaryIgnoresOtherChannels(t *testing.T) {
	samples := frameSamples(1, map[int]adc.RawSample{
		0: adc.NewRawSample(0xFFF, false, false, 0, 0),
		1: adc.NewRawSample(0xFFF, true, false, 0, 0),
	})
	if got := (&Binary{Channel: 0}).Build(samples); got != nil {
		t.Fatalf("expected no report, got %x", got)
	}
}

func TestHIDReportMarshal(t *testing.T) {
	b, err := HIDReport{X: -113}.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{0x8F}) {
		t.Fatalf("got %x", b)
	}
}
