// Package hid sends fixed-size input reports through a HID gadget device
// node such as /dev/hidg0.
package hid

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/ericogr/adc-sampler/pkg/transport"
)

const DefaultDevice = "/dev/hidg0"

// HID writes whole reports; every Write must carry exactly one report.
type HID struct {
	w          io.WriteCloser
	reportSize int
	connected  atomic.Bool
}

// Open opens the gadget node for writing.
func Open(device string, reportSize int) (*HID, error) {
	if device == "" {
		device = DefaultDevice
	}
	f, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open hid device %s: %w", device, err)
	}
	return New(f, reportSize), nil
}

// New wraps an open report endpoint.
func New(w io.WriteCloser, reportSize int) *HID {
	h := &HID{w: w, reportSize: reportSize}
	h.connected.Store(true)
	return h
}

func (h *HID) Connected() bool { return h.connected.Load() }

func (h *HID) Write(p []byte) (int, error) {
	if !h.Connected() {
		return 0, transport.ErrNotConnected
	}
	if len(p) != h.reportSize {
		return 0, fmt.Errorf("hid: report is %d bytes, want %d", len(p), h.reportSize)
	}
	n, err := h.w.Write(p)
	if err != nil {
		// the host stopped polling or the gadget was unbound
		h.connected.Store(false)
		return n, fmt.Errorf("hid write: %w", err)
	}
	return n, nil
}

// Read never returns data: output reports are not used.
func (h *HID) Read([]byte) (int, error) { return 0, nil }

func (h *HID) Close() error {
	h.connected.Store(false)
	return h.w.Close()
}
