package adc

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01
)

// ADS1115Config configures an ADS1115 converter.
type ADS1115Config struct {
	Index      int
	Address    uint16
	Channels   []int
	SampleRate int
	Comparator []int
	Thresholds Thresholds
	Logger     *log.Logger
}

// ADS1115 drives a TI ADS1115 over I2C as a sequence converter. Single-ended
// inputs AIN0..AIN3 map to channels 0..3. Sequences run on a worker
// goroutine, so StartSequence only queues a request.
type ADS1115 struct {
	regBank
	dev        drivers.I2C
	addr       uint16
	index      int
	channels   []int
	sampleRate int
	logger     *log.Logger

	reqs      chan struct{}
	busy      atomic.Bool
	txErrors  atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewADS1115 validates the channel list and starts the conversion worker.
func NewADS1115(bus drivers.I2C, cfg ADS1115Config) (*ADS1115, error) {
	for _, ch := range cfg.Channels {
		if ch < 0 || ch > 3 {
			return nil, fmt.Errorf("ads1115: invalid channel %d", ch)
		}
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 128
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	a := &ADS1115{
		dev:        bus,
		addr:       cfg.Address,
		index:      cfg.Index,
		channels:   append([]int(nil), cfg.Channels...),
		sampleRate: cfg.SampleRate,
		logger:     cfg.Logger,
		reqs:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	a.thr = cfg.Thresholds
	cmp := cfg.Comparator
	if cmp == nil {
		cmp = cfg.Channels
	}
	a.cmp = make(map[int]bool, len(cmp))
	for _, ch := range cmp {
		a.cmp[ch] = true
	}
	a.wg.Add(1)
	go a.worker()
	return a, nil
}

func (a *ADS1115) Index() int { return a.index }

// StartSequence queues one sequence. It returns ErrBusy if a sequence is
// already queued or converting.
func (a *ADS1115) StartSequence() error {
	select {
	case <-a.done:
		return ErrClosed
	default:
	}
	if !a.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	a.reqs <- struct{}{}
	return nil
}

// TxErrors reports the number of failed bus transactions.
func (a *ADS1115) TxErrors() uint64 { return a.txErrors.Load() }

func (a *ADS1115) Close() error {
	a.closeOnce.Do(func() { close(a.done) })
	a.wg.Wait()
	return nil
}

func (a *ADS1115) worker() {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-a.reqs:
			a.runSequence()
			a.busy.Store(false)
		}
	}
}

func (a *ADS1115) runSequence() {
	codes := make(map[int]uint16, len(a.channels))
	for _, ch := range a.channels {
		code, err := a.convert(ch)
		if err != nil {
			a.txErrors.Add(1)
			a.logger.Printf("ads1115: channel %d: %v", ch, err)
			continue
		}
		codes[ch] = code
	}

	a.mu.Lock()
	for ch, code := range codes {
		a.store(ch, code)
	}
	irq := a.complete()
	a.mu.Unlock()

	if irq != nil {
		irq()
	}
}

// convert runs a single-shot conversion and returns the result as a 12-bit
// code. Negative readings clamp to zero.
func (a *ADS1115) convert(ch int) (uint16, error) {
	msb, lsb, err := a.configForChannel(ch, a.sampleRate)
	if err != nil {
		return 0, err
	}
	if err := a.dev.Tx(a.addr, []byte{pointerConfig, msb, lsb}, nil); err != nil {
		return 0, fmt.Errorf("write config: %w", err)
	}
	delayMs := int(1000.0/float64(a.sampleRate)) + 2
	time.Sleep(time.Duration(delayMs) * time.Millisecond)
	readBuf := make([]byte, 2)
	if err := a.dev.Tx(a.addr, []byte{pointerConv}, readBuf); err != nil {
		return 0, fmt.Errorf("read conv: %w", err)
	}
	return codeFromRaw(int16(readBuf[0])<<8 | int16(readBuf[1])), nil
}

// codeFromRaw maps the positive half of the signed 16-bit result onto 12 bits.
func codeFromRaw(raw int16) uint16 {
	if raw <= 0 {
		return 0
	}
	return uint16(raw) >> 3
}

func (a *ADS1115) configForChannel(channel, sampleRate int) (byte, byte, error) {
	var mux byte
	switch channel {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	// PGA ±4.096V
	pga := byte(0x1)
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 128:
		dr = 0x4
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var config uint16 = 0x8000 // OS: start single conversion
	config |= uint16(mux) << 12
	config |= uint16(pga) << 9
	config |= 1 << 8 // single-shot
	config |= uint16(dr) << 5
	config |= 0x3 // comparator disabled
	return byte(config >> 8), byte(config & 0xFF), nil
}
