// Package pipeline is the main loop: it services the host connection and
// turns completed conversion frames into reports.
package pipeline

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/ericogr/adc-sampler/pkg/report"
	"github.com/ericogr/adc-sampler/pkg/sampler"
	"github.com/ericogr/adc-sampler/pkg/transport"
)

const (
	DefaultGreeting       = "Hello World!!\r\n"
	DefaultRxBufferSize   = 256
	DefaultReportInterval = 10 * time.Millisecond
	DefaultHostPoll       = 10 * time.Millisecond
)

// Config tunes the loop.
type Config struct {
	// Greeting is sent once, the first time the host is seen connected.
	Greeting string

	// RxBufferSize caps the bytes echoed per poll.
	RxBufferSize int

	// ReportInterval is the send cadence for periodic policies.
	ReportInterval time.Duration

	// HostPoll is how often host input is checked between frames.
	HostPoll time.Duration
}

// Stats are loop counters.
type Stats struct {
	Frames     uint64 // frames consumed
	Reports    uint64 // payloads built
	Sent       uint64
	Dropped    uint64 // payloads skipped because the host was absent
	SendErrors uint64
	Echoed     uint64 // bytes echoed back to the host
}

// Pipeline owns the consumer side of the sample hand-off.
type Pipeline struct {
	cfg       Config
	notifier  *sampler.Notifier
	extractor *sampler.Extractor
	policy    report.Policy
	tr        transport.Transport
	logger    *log.Logger

	prompted bool
	rxBuf    []byte
	latest   []byte

	frames, reports, sent, dropped, sendErrors, echoed atomic.Uint64
}

func New(cfg Config, n *sampler.Notifier, e *sampler.Extractor, policy report.Policy, tr transport.Transport, logger *log.Logger) *Pipeline {
	if cfg.RxBufferSize <= 0 {
		cfg.RxBufferSize = DefaultRxBufferSize
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = DefaultReportInterval
	}
	if cfg.HostPoll <= 0 {
		cfg.HostPoll = DefaultHostPoll
	}
	if tr == nil {
		tr = transport.Offline{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		notifier:  n,
		extractor: e,
		policy:    policy,
		tr:        tr,
		logger:    logger,
		rxBuf:     make([]byte, cfg.RxBufferSize),
	}
}

// Run loops until ctx is done. Between iterations it blocks on the
// completion wake-up, the report cadence or the host poll interval.
func (p *Pipeline) Run(ctx context.Context) error {
	hostPoll := time.NewTicker(p.cfg.HostPoll)
	defer hostPoll.Stop()

	var reportC <-chan time.Time
	if p.policy.Periodic() {
		rt := time.NewTicker(p.cfg.ReportInterval)
		defer rt.Stop()
		reportC = rt.C
	}

	for {
		p.ServiceHost()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.notifier.Wake():
			p.HandleFrame()
		case <-reportC:
			p.SendPeriodic()
		case <-hostPoll.C:
		}
	}
}

// ServiceHost greets the host once and echoes whatever it sent. Periodic
// report transports carry no byte stream and are skipped.
func (p *Pipeline) ServiceHost() {
	if p.policy.Periodic() {
		return
	}
	if !p.tr.Connected() {
		return
	}
	if !p.prompted {
		if p.cfg.Greeting != "" {
			p.write([]byte(p.cfg.Greeting))
		}
		p.prompted = true
	}
	n, err := p.tr.Read(p.rxBuf)
	if err != nil {
		p.logger.Printf("host read: %v", err)
		return
	}
	if n > 0 {
		if p.write(p.rxBuf[:n]) {
			p.echoed.Add(uint64(n))
		}
	}
}

// HandleFrame consumes a pending frame, if any, and reports it. The frame
// is consumed whether or not the host is connected.
func (p *Pipeline) HandleFrame() {
	_, samples, ok := p.extractor.Poll()
	if !ok {
		return
	}
	p.frames.Add(1)
	payload := p.policy.Build(samples)
	if payload == nil {
		return
	}
	p.reports.Add(1)
	if p.policy.Periodic() {
		p.latest = payload
		return
	}
	p.send(payload)
}

// SendPeriodic sends the latest periodic report.
func (p *Pipeline) SendPeriodic() {
	if p.latest == nil {
		return
	}
	p.send(p.latest)
}

func (p *Pipeline) send(b []byte) {
	if !p.tr.Connected() {
		p.dropped.Add(1)
		return
	}
	if p.write(b) {
		p.sent.Add(1)
	}
}

func (p *Pipeline) write(b []byte) bool {
	if _, err := p.tr.Write(b); err != nil {
		p.sendErrors.Add(1)
		p.logger.Printf("host write: %v", err)
		return false
	}
	return true
}

// Stats returns a snapshot of the loop counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Frames:     p.frames.Load(),
		Reports:    p.reports.Load(),
		Sent:       p.sent.Load(),
		Dropped:    p.dropped.Load(),
		SendErrors: p.sendErrors.Load(),
		Echoed:     p.echoed.Load(),
	}
}
