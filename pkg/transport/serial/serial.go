// Package serial is a byte-stream transport over a serial device, the host
// side view of a CDC virtual COM port.
package serial

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ericogr/adc-sampler/pkg/transport"
	"github.com/tarm/serial"
)

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyGS0", "/dev/ttyACM0")
	Device string

	// Baud rate; ignored by USB CDC
	Baud int

	// ReadTimeout bounds each blocking read of the receive goroutine.
	ReadTimeout time.Duration

	// RxBuffer is the receive queue size in bytes.
	RxBuffer int
}

// DefaultConfig returns a configuration for device.
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
		RxBuffer:    1024,
	}
}

// Serial adapts a blocking port to the non-blocking Transport interface.
type Serial struct {
	port   io.ReadWriteCloser
	rx     *transport.Fifo
	logger *log.Logger

	connected atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Open opens the device and starts receiving.
func Open(cfg Config, logger *log.Logger) (*Serial, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial: device not set")
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return New(port, cfg.RxBuffer, logger), nil
}

// New wraps an already open port.
func New(port io.ReadWriteCloser, rxBuffer int, logger *log.Logger) *Serial {
	if logger == nil {
		logger = log.Default()
	}
	if rxBuffer <= 0 {
		rxBuffer = 1024
	}
	s := &Serial{port: port, rx: transport.NewFifo(rxBuffer + 1), logger: logger, done: make(chan struct{})}
	s.connected.Store(true)
	s.wg.Add(1)
	go s.readLoop()
	return s
}

func (s *Serial) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, 256)
	for {
		n, err := s.port.Read(buf)
		if n > 0 {
			s.rx.Write(buf[:n])
		}
		select {
		case <-s.done:
			return
		default:
		}
		if err == nil || errors.Is(err, io.EOF) {
			// tarm/serial reports a read timeout as io.EOF
			if n == 0 {
				time.Sleep(time.Millisecond)
			}
			continue
		}
		s.logger.Printf("serial: read: %v", err)
		s.connected.Store(false)
		return
	}
}

func (s *Serial) Connected() bool { return s.connected.Load() }

func (s *Serial) Write(p []byte) (int, error) {
	if !s.Connected() {
		return 0, transport.ErrNotConnected
	}
	n, err := s.port.Write(p)
	if err != nil {
		s.connected.Store(false)
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

func (s *Serial) Read(p []byte) (int, error) { return s.rx.Read(p), nil }

func (s *Serial) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.connected.Store(false)
		err = s.port.Close()
		s.wg.Wait()
	})
	return err
}
