// Package transport defines the host-side sink the pipeline reports to.
package transport

import "errors"

// ErrNotConnected is returned by Write when no consumer is attached.
var ErrNotConnected = errors.New("transport: not connected")

// Transport is a host connection: a virtual serial port, a broker topic
// pair or a HID report endpoint.
type Transport interface {
	// Connected reports whether a consumer is attached.
	Connected() bool
	Write(p []byte) (int, error)
	// Read returns bytes received from the host without blocking. It
	// returns 0, nil when nothing is pending.
	Read(p []byte) (int, error)
	Close() error
}

// Offline is a transport that never connects. It stands in when bring-up
// fails so sampling keeps running.
type Offline struct{}

func (Offline) Connected() bool           { return false }
func (Offline) Write([]byte) (int, error) { return 0, ErrNotConnected }
func (Offline) Read([]byte) (int, error)  { return 0, nil }
func (Offline) Close() error              { return nil }
