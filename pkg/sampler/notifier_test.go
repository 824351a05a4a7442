package sampler

import (
	"testing"

	"github.com/ericogr/adc-sampler/pkg/adc"
)

// fakeConverter exposes flags and registers directly so tests can play the
// hardware.
type fakeConverter struct {
	index   int
	flags   uint32
	regs    [adc.NumChannels]adc.RawSample
	cleared []uint32
	irq     func()
}

func (f *fakeConverter) Index() int                   { return f.index }
func (f *fakeConverter) StartSequence() error         { return nil }
func (f *fakeConverter) Flags() uint32                { return f.flags }
func (f *fakeConverter) DataReg(ch int) adc.RawSample { return f.regs[ch] }
func (f *fakeConverter) SetIRQHandler(h func())       { f.irq = h }
func (f *fakeConverter) Close() error                 { return nil }

func (f *fakeConverter) ClearFlags(mask uint32) {
	f.flags &^= mask
	f.cleared = append(f.cleared, mask)
}

func TestNotifierRegistersHandler(t *testing.T) {
	conv := &fakeConverter{}
	NewNotifier(conv, &Mailbox{})
	if conv.irq == nil {
		t.Fatalf("handler not installed")
	}
}

func TestNotifierSetsFlagOnlyOnSequenceComplete(t *testing.T) {
	conv := &fakeConverter{index: 1}
	box := &Mailbox{}
	n := NewNotifier(conv, box)

	// a spurious interrupt without the sequence bit leaves the mailbox empty
	conv.flags = adc.FlagThCmp(2)
	n.HandleIRQ()
	if box.Pending() {
		t.Fatalf("mailbox set without sequence completion")
	}
	if len(conv.cleared) != 1 || conv.cleared[0]&adc.FlagSeqAInt == 0 {
		t.Fatalf("flags not acknowledged: %v", conv.cleared)
	}

	conv.regs[1] = adc.NewRawSample(0x456, true, false, 0, 0)
	conv.flags = adc.FlagSeqAInt | adc.FlagThCmp(1)
	n.HandleIRQ()
	if !box.Pending() {
		t.Fatalf("mailbox not set after completion")
	}
	if conv.flags != 0 {
		t.Fatalf("flags left pending: %#x", conv.flags)
	}
	select {
	case <-n.Wake():
	default:
		t.Fatalf("wake not signalled")
	}

	f := box.Take()
	if f.ADC != 1 || f.Seq != 1 || f.Regs[1].Result() != 0x456 || f.Crossed != adc.FlagThCmp(1) {
		t.Fatalf("frame: %+v", f)
	}
	if n.Completions() != 1 {
		t.Fatalf("completions: %d", n.Completions())
	}
}

func TestMailboxOverwrite(t *testing.T) {
	box := &Mailbox{}
	if box.Publish(&Frame{Seq: 1}) {
		t.Fatalf("first publish reported overwrite")
	}
	if !box.Publish(&Frame{Seq: 2}) {
		t.Fatalf("second publish should overwrite")
	}
	if f := box.Take(); f == nil || f.Seq != 2 {
		t.Fatalf("expected newest frame, got %+v", f)
	}
	if box.Take() != nil {
		t.Fatalf("mailbox should be empty")
	}
	if box.Overwrites() != 1 {
		t.Fatalf("overwrites: %d", box.Overwrites())
	}
}
