package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ericogr/adc-sampler/pkg/adc"
	"github.com/ericogr/adc-sampler/pkg/config"
	"github.com/ericogr/adc-sampler/pkg/pipeline"
	"github.com/ericogr/adc-sampler/pkg/report"
	"github.com/ericogr/adc-sampler/pkg/sampler"
	"github.com/ericogr/adc-sampler/pkg/transport"
	"github.com/ericogr/adc-sampler/pkg/transport/console"
	"github.com/ericogr/adc-sampler/pkg/transport/hid"
	"github.com/ericogr/adc-sampler/pkg/transport/mqtt"
	"github.com/ericogr/adc-sampler/pkg/transport/serial"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "adc-sampler",
		Short:        "Periodic ADC sampling with text or HID style host reports",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, log.Default())
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	logger.Printf("starting: adc=%d sensor=%s tick=%dHz divisor=%d (%.2f sequences/s) policy=%s transport=%s",
		cfg.ADCIndex, cfg.SensorType, cfg.TickRateHz, cfg.SampleDivisor, cfg.SampleRateHz(), cfg.Policy, cfg.Transport.Type)

	conv, closers, err := buildConverter(cfg, logger)
	if err != nil {
		return err
	}

	tr := initTransport(cfg, logger)
	closers = append(closers, tr)

	box := &sampler.Mailbox{}
	notifier := sampler.NewNotifier(conv, box)
	extractor := sampler.NewExtractor(box)
	trigger := sampler.NewTrigger(conv, cfg.SampleDivisor)

	p := pipeline.New(pipelineConfig(cfg), notifier, extractor, buildPolicy(cfg, logger), tr, logger)

	go sampler.RunTicker(ctx, cfg.TickRateHz, trigger.Tick)
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Printf("pipeline stopped: %v", err)
	}

	st := p.Stats()
	logger.Printf("stopped: starts=%d start_errors=%d completions=%d overwrites=%d frames=%d reports=%d sent=%d dropped=%d send_errors=%d echoed=%d",
		trigger.Starts(), trigger.StartErrors(), notifier.Completions(), box.Overwrites(),
		st.Frames, st.Reports, st.Sent, st.Dropped, st.SendErrors, st.Echoed)

	return closeAll(closers)
}

// buildConverter returns the configured converter together with everything
// that must be closed on shutdown, converter first.
func buildConverter(cfg config.Config, logger *log.Logger) (adc.Converter, []io.Closer, error) {
	thr := adc.ThresholdsFromFractions(cfg.Threshold.Low, cfg.Threshold.High)
	switch cfg.SensorType {
	case config.SensorSimulation:
		sim := adc.NewSimulated(adc.SimConfig{
			Index:      cfg.ADCIndex,
			Channels:   cfg.Channels,
			Comparator: cfg.ComparatorChannels,
			Thresholds: thr,
		})
		return sim, []io.Closer{sim}, nil
	case config.SensorADS1115:
		bus, busCloser, err := adc.OpenI2C(cfg.I2C.Bus)
		if err != nil {
			return nil, nil, fmt.Errorf("i2c bus %s: %w", cfg.I2C.Bus, err)
		}
		ads, err := adc.NewADS1115(bus, adc.ADS1115Config{
			Index:      cfg.ADCIndex,
			Address:    uint16(cfg.I2C.Address),
			Channels:   cfg.Channels,
			SampleRate: cfg.I2C.SampleRate,
			Comparator: cfg.ComparatorChannels,
			Thresholds: thr,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, multierr.Append(err, busCloser.Close())
		}
		return ads, []io.Closer{ads, busCloser}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
	}
}

// initTransport brings up the host link. A failed bring-up is logged and
// replaced by an offline transport so sampling keeps running.
func initTransport(cfg config.Config, logger *log.Logger) transport.Transport {
	tr, err := openTransport(cfg, logger)
	if err != nil {
		logger.Printf("transport %s unavailable, running offline: %v", cfg.Transport.Type, err)
		return transport.Offline{}
	}
	return tr
}

func openTransport(cfg config.Config, logger *log.Logger) (transport.Transport, error) {
	switch cfg.Transport.Type {
	case config.TransportConsole, "":
		return console.NewConsole(), nil
	case config.TransportSerial:
		sc := serial.DefaultConfig("")
		if s := cfg.Transport.Serial; s != nil {
			sc.Device = s.Device
			if s.Baud > 0 {
				sc.Baud = s.Baud
			}
			if s.ReadTimeoutMs > 0 {
				sc.ReadTimeout = time.Duration(s.ReadTimeoutMs) * time.Millisecond
			}
		}
		if sc.Device == "" {
			return nil, errors.New("serial device not set")
		}
		return serial.Open(sc, logger)
	case config.TransportMQTT:
		mc := mqtt.Config{RxBuffer: cfg.RxBufferSize}
		if m := cfg.Transport.MQTT; m != nil {
			mc.Server = m.Server
			mc.Username = m.Username
			mc.Password = m.Password
			mc.ClientID = m.ClientID
			mc.TxTopic = m.TxTopic
			mc.RxTopic = m.RxTopic
			mc.StatusTopic = m.StatusTopic
		}
		return mqtt.Dial(mc, logger)
	case config.TransportHID:
		device := hid.DefaultDevice
		if h := cfg.Transport.HID; h != nil && h.Device != "" {
			device = h.Device
		}
		return hid.Open(device, report.HIDReportSize)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport.Type)
	}
}

func buildPolicy(cfg config.Config, logger *log.Logger) report.Policy {
	if cfg.Policy == config.PolicyBinary {
		return &report.Binary{Channel: cfg.ReportChannel}
	}
	return &report.Text{Logger: logger, Debug: cfg.Debug}
}

func pipelineConfig(cfg config.Config) pipeline.Config {
	return pipeline.Config{
		Greeting:       cfg.Greeting,
		RxBufferSize:   cfg.RxBufferSize,
		ReportInterval: time.Duration(cfg.ReportIntervalMs) * time.Millisecond,
	}
}

func closeAll(closers []io.Closer) error {
	var err error
	for _, c := range closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
