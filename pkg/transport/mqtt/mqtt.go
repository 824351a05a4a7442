// Package mqtt carries the host byte stream over an MQTT broker: reports
// are published to a TX topic and bytes published to an RX topic are
// read back as host input.
package mqtt

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ericogr/adc-sampler/pkg/transport"
)

const (
	DefaultServer   = "tcp://localhost:1883"
	DefaultClientID = "adc-sampler"
	DefaultTxTopic  = "adc-sampler/tx"
	DefaultRxTopic  = "adc-sampler/rx"

	statusOnline  = "online"
	statusOffline = "offline"
	publishWait   = 2 * time.Second
)

// Config selects the broker and topics.
type Config struct {
	Server   string
	Username string
	Password string
	ClientID string
	TxTopic  string
	RxTopic  string

	// StatusTopic, when set, carries a retained online/offline marker.
	StatusTopic string
	RxBuffer    int
}

// client is the subset of mqtt.Client the transport uses.
type client interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT implements transport.Transport on a paho client.
type MQTT struct {
	client      client
	txTopic     string
	rxTopic     string
	statusTopic string
	rx          *transport.Fifo
	logger      *log.Logger
}

// Dial connects to the broker and subscribes to the RX topic.
func Dial(cfg Config, logger *log.Logger) (*MQTT, error) {
	cfg = withDefaults(cfg)
	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	if cfg.StatusTopic != "" {
		opts.SetWill(cfg.StatusTopic, statusOffline, 0, true)
	}
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return newTransport(c, cfg, logger)
}

func withDefaults(cfg Config) Config {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.TxTopic == "" {
		cfg.TxTopic = DefaultTxTopic
	}
	if cfg.RxTopic == "" {
		cfg.RxTopic = DefaultRxTopic
	}
	if cfg.RxBuffer <= 0 {
		cfg.RxBuffer = 1024
	}
	return cfg
}

func newTransport(c client, cfg Config, logger *log.Logger) (*MQTT, error) {
	if logger == nil {
		logger = log.Default()
	}
	m := &MQTT{
		client:      c,
		txTopic:     cfg.TxTopic,
		rxTopic:     cfg.RxTopic,
		statusTopic: cfg.StatusTopic,
		rx:          transport.NewFifo(cfg.RxBuffer + 1),
		logger:      logger,
	}
	token := c.Subscribe(m.rxTopic, 0, m.onMessage)
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", m.rxTopic, token.Error())
	}
	if m.statusTopic != "" {
		if err := m.publish(m.statusTopic, []byte(statusOnline), true); err != nil {
			logger.Printf("mqtt status publish error: %v", err)
		}
	}
	return m, nil
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	p := msg.Payload()
	if n := m.rx.Write(p); n < len(p) {
		m.logger.Printf("mqtt: rx queue full, dropped %d bytes", len(p)-n)
	}
}

func (m *MQTT) Connected() bool { return m.client != nil && m.client.IsConnectionOpen() }

func (m *MQTT) Write(p []byte) (int, error) {
	if !m.Connected() {
		return 0, transport.ErrNotConnected
	}
	if err := m.publish(m.txTopic, p, false); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (m *MQTT) Read(p []byte) (int, error) { return m.rx.Read(p), nil }

func (m *MQTT) publish(topic string, payload []byte, retained bool) error {
	// copy: the caller may reuse p once Write returns
	buf := append([]byte(nil), payload...)
	token := m.client.Publish(topic, 0, retained, buf)
	if !token.WaitTimeout(publishWait) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	return token.Error()
}

func (m *MQTT) Close() error {
	if m.client == nil {
		return nil
	}
	if m.statusTopic != "" && m.Connected() {
		if err := m.publish(m.statusTopic, []byte(statusOffline), true); err != nil {
			m.logger.Printf("mqtt status publish error: %v", err)
		}
	}
	m.client.Disconnect(250)
	return nil
}
