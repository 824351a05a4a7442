package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Sensor types.
const (
	SensorSimulation = "simulation"
	SensorADS1115    = "ads1115"
)

// Transport types.
const (
	TransportConsole = "console"
	TransportSerial  = "serial"
	TransportMQTT    = "mqtt"
	TransportHID     = "hid"
)

// Report policies.
const (
	PolicyText   = "text"
	PolicyBinary = "binary"
)

const maxChannel = 11

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`

	// SampleRate is the ADS1115 data rate in SPS.
	SampleRate int `json:"sample_rate" yaml:"sample_rate"`
}

type ThresholdConfig struct {
	// Low and High are fractions of full scale.
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

type SerialConfig struct {
	Device        string `json:"device" yaml:"device"`
	Baud          int    `json:"baud" yaml:"baud"`
	ReadTimeoutMs int    `json:"read_timeout_ms" yaml:"read_timeout_ms"`
}

type MQTTConfig struct {
	Server      string `json:"server" yaml:"server"`
	Username    string `json:"username" yaml:"username"`
	Password    string `json:"password" yaml:"password"`
	ClientID    string `json:"client_id" yaml:"client_id"`
	TxTopic     string `json:"tx_topic" yaml:"tx_topic"`
	RxTopic     string `json:"rx_topic" yaml:"rx_topic"`
	StatusTopic string `json:"status_topic" yaml:"status_topic"`
}

type HIDConfig struct {
	Device string `json:"device" yaml:"device"`
}

type TransportConfig struct {
	Type   string        `json:"type" yaml:"type"`
	Serial *SerialConfig `json:"serial,omitempty" yaml:"serial,omitempty"`
	MQTT   *MQTTConfig   `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
	HID    *HIDConfig    `json:"hid,omitempty" yaml:"hid,omitempty"`
}

type Config struct {
	TickRateHz    int             `json:"tick_rate_hz" yaml:"tick_rate_hz"`
	SampleDivisor int             `json:"sample_divisor" yaml:"sample_divisor"`
	ADCIndex      int             `json:"adc_index" yaml:"adc_index"`
	SensorType    string          `json:"sensor_type" yaml:"sensor_type"`
	I2C           I2CConfig       `json:"i2c" yaml:"i2c"`
	Channels      []int           `json:"channels" yaml:"channels"`
	Threshold     ThresholdConfig `json:"threshold" yaml:"threshold"`
	Policy        string          `json:"policy" yaml:"policy"`

	// ComparatorChannels get threshold range/cross fields and crossing events.
	ComparatorChannels []int `json:"comparator_channels" yaml:"comparator_channels"`

	// ReportChannel is the channel carried by binary reports.
	ReportChannel    int             `json:"report_channel" yaml:"report_channel"`
	ReportIntervalMs int             `json:"report_interval_ms" yaml:"report_interval_ms"`
	RxBufferSize     int             `json:"rx_buffer_size" yaml:"rx_buffer_size"`
	Greeting         string          `json:"greeting" yaml:"greeting"`
	Transport        TransportConfig `json:"transport" yaml:"transport"`
	Debug            bool            `json:"debug" yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		TickRateHz:         100,
		SampleDivisor:      2,
		ADCIndex:           1,
		SensorType:         SensorSimulation,
		I2C:                I2CConfig{Bus: "1", Address: 0x48, SampleRate: 860},
		Channels:           []int{1},
		Threshold:          ThresholdConfig{Low: 0.25, High: 0.75},
		ComparatorChannels: []int{1},
		Policy:             PolicyText,
		ReportChannel:      0,
		ReportIntervalMs:   10,
		RxBufferSize:       256,
		Greeting:           "Hello World!!\r\n",
		Transport:          TransportConfig{Type: TransportConsole},
	}
}

// SampleRateHz is the effective conversion rate.
func (c Config) SampleRateHz() float64 {
	if c.SampleDivisor <= 0 {
		return 0
	}
	return float64(c.TickRateHz) / float64(c.SampleDivisor)
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.TickRateHz <= 0 {
		return errors.New("tick-rate must be > 0")
	}
	if c.SampleDivisor <= 0 {
		return errors.New("sample-divisor must be > 0")
	}
	if c.Threshold.Low < 0 || c.Threshold.High > 1 || c.Threshold.Low > c.Threshold.High {
		return fmt.Errorf("invalid thresholds low=%v high=%v", c.Threshold.Low, c.Threshold.High)
	}
	for _, ch := range c.Channels {
		if ch < 0 || ch > maxChannel {
			return fmt.Errorf("invalid channel %d", ch)
		}
	}
	if c.ReportChannel < 0 || c.ReportChannel > maxChannel {
		return fmt.Errorf("invalid report channel %d", c.ReportChannel)
	}
	for _, ch := range c.ComparatorChannels {
		if ch < 0 || ch > maxChannel {
			return fmt.Errorf("invalid comparator channel %d", ch)
		}
	}
	switch c.SensorType {
	case SensorSimulation, SensorADS1115:
	default:
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	switch c.Policy {
	case PolicyText:
	case PolicyBinary:
		if !slices.Contains(c.Channels, c.ReportChannel) {
			return fmt.Errorf("report channel %d is not sampled (channels %v)", c.ReportChannel, c.Channels)
		}
	default:
		return fmt.Errorf("unknown policy %q", c.Policy)
	}
	switch c.Transport.Type {
	case TransportConsole, TransportSerial, TransportMQTT, TransportHID:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport.Type)
	}
	return nil
}

// RegisterFlags defines the command line flags read by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to JSON or YAML config file")
	fs.Int("tick-rate", 0, "Timer tick rate in Hz")
	fs.Int("sample-divisor", 0, "Ticks per conversion sequence")
	fs.Int("adc-index", 0, "Converter index shown in reports")
	fs.String("sensor-type", "", "sensor type: simulation|ads1115")
	fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	fs.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	fs.String("channels", "", "Comma-separated channels e.g. 0,1")
	fs.Float64("threshold-low", 0, "Low threshold as a fraction of full scale")
	fs.Float64("threshold-high", 0, "High threshold as a fraction of full scale")
	fs.String("comparator-channels", "", "Comma-separated channels using the threshold comparator")
	fs.String("policy", "", "Report policy: text|binary")
	fs.Int("report-channel", 0, "Channel carried by binary reports")
	fs.Int("report-interval-ms", 0, "Binary report cadence in ms")
	fs.String("transport", "", "Host transport: console|serial|mqtt|hid")
	fs.String("serial-device", "", "Serial device path")
	fs.Int("serial-baud", 0, "Serial baud rate")
	fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	fs.String("mqtt-user", "", "MQTT username")
	fs.String("mqtt-pass", "", "MQTT password")
	fs.String("mqtt-client-id", "", "MQTT client id")
	fs.String("mqtt-tx-topic", "", "MQTT topic reports are published to")
	fs.String("mqtt-rx-topic", "", "MQTT topic host input is read from")
	fs.String("hid-device", "", "HID gadget device path")
	fs.Bool("debug", false, "Log full results and threshold events")
}

// Load builds the configuration from defaults, the optional config file and
// then any flags set on fs. Flags override values present in the file.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	path, _ := fs.GetString("config")
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyFlags(fs, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) error {
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	if changed("tick-rate") {
		cfg.TickRateHz, _ = fs.GetInt("tick-rate")
	}
	if changed("sample-divisor") {
		cfg.SampleDivisor, _ = fs.GetInt("sample-divisor")
	}
	if changed("adc-index") {
		cfg.ADCIndex, _ = fs.GetInt("adc-index")
	}
	if changed("sensor-type") {
		cfg.SensorType, _ = fs.GetString("sensor-type")
	}
	if changed("i2c-bus") {
		cfg.I2C.Bus, _ = fs.GetString("i2c-bus")
	}
	if changed("i2c-address") {
		s, _ := fs.GetString("i2c-address")
		v, err := parseIntOrHex(s)
		if err != nil {
			return fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if changed("channels") {
		s, _ := fs.GetString("channels")
		chs, err := parseChannels(s)
		if err != nil {
			return err
		}
		cfg.Channels = chs
	}
	if changed("threshold-low") {
		cfg.Threshold.Low, _ = fs.GetFloat64("threshold-low")
	}
	if changed("threshold-high") {
		cfg.Threshold.High, _ = fs.GetFloat64("threshold-high")
	}
	if changed("comparator-channels") {
		s, _ := fs.GetString("comparator-channels")
		chs, err := parseChannels(s)
		if err != nil {
			return err
		}
		cfg.ComparatorChannels = chs
	}
	if changed("policy") {
		cfg.Policy, _ = fs.GetString("policy")
	}
	if changed("report-channel") {
		cfg.ReportChannel, _ = fs.GetInt("report-channel")
	}
	if changed("report-interval-ms") {
		cfg.ReportIntervalMs, _ = fs.GetInt("report-interval-ms")
	}
	if changed("transport") {
		cfg.Transport.Type, _ = fs.GetString("transport")
	}
	if changed("serial-device") || changed("serial-baud") {
		if cfg.Transport.Serial == nil {
			cfg.Transport.Serial = &SerialConfig{}
		}
		if changed("serial-device") {
			cfg.Transport.Serial.Device, _ = fs.GetString("serial-device")
		}
		if changed("serial-baud") {
			cfg.Transport.Serial.Baud, _ = fs.GetInt("serial-baud")
		}
	}
	mqttFlags := map[string]*string{}
	if cfg.Transport.MQTT == nil {
		cfg.Transport.MQTT = &MQTTConfig{}
	}
	m := cfg.Transport.MQTT
	mqttFlags["mqtt-server"] = &m.Server
	mqttFlags["mqtt-user"] = &m.Username
	mqttFlags["mqtt-pass"] = &m.Password
	mqttFlags["mqtt-client-id"] = &m.ClientID
	mqttFlags["mqtt-tx-topic"] = &m.TxTopic
	mqttFlags["mqtt-rx-topic"] = &m.RxTopic
	for name, dst := range mqttFlags {
		if changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if changed("hid-device") {
		if cfg.Transport.HID == nil {
			cfg.Transport.HID = &HIDConfig{}
		}
		cfg.Transport.HID.Device, _ = fs.GetString("hid-device")
	}
	if changed("debug") {
		cfg.Debug, _ = fs.GetBool("debug")
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseChannels(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}
