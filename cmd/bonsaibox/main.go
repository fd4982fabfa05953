// Command bonsaibox keeps a bonsai enclosure inside its climate band: it
// reads an SHT20 temperature/humidity sensor over I2C and drives the fan,
// humidifier, and grow lights through a relay board, publishing telemetry
// and events to MQTT and serving an HTTP status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jgrew/bonsaibox/internal/actuator"
	"github.com/jgrew/bonsaibox/internal/config"
	"github.com/jgrew/bonsaibox/internal/loop"
	"github.com/jgrew/bonsaibox/internal/mqtt"
	"github.com/jgrew/bonsaibox/internal/relay"
	"github.com/jgrew/bonsaibox/internal/sensor"
	"github.com/jgrew/bonsaibox/internal/sht20"
	"github.com/jgrew/bonsaibox/internal/status"
	"github.com/jgrew/bonsaibox/internal/web"
)

func main() {
	configPath := flag.String("config", "", "JSON config file (defaults plus environment when empty)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" to disable)`)
	printReading := flag.Bool("print-reading", false, "Read the sensor once, print the values, and exit")
	flag.Parse()

	// .env is optional; a missing file is the normal case.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration", "error", err)
		os.Exit(1)
	}
	if *broker != "" {
		cfg.MQTTBroker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := run(cfg, *printReading, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, printReading bool, log *slog.Logger) error {
	dev, err := sht20.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("open sht20: %w", err)
	}
	reader := sensor.NewReader(dev, cfg.SensorTimeout())
	defer reader.Close()

	if printReading {
		r, err := reader.Read(context.Background())
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("%.2f °C, %.2f %%RH\n", r.TemperatureC, r.HumidityPct)
		return nil
	}

	// Request the relay pins driven to their off level, so a restart never
	// inherits whatever the previous process left running.
	offHigh := cfg.ActiveLowRelays
	pins, err := relay.NewRealPins(cfg.GPIOChip, cfg.PinMap().Pins(), offHigh)
	if err != nil {
		return fmt.Errorf("init relays: %w", err)
	}
	driver, err := actuator.NewDriver(pins, cfg.PinMap(), cfg.ActiveLowRelays)
	if err != nil {
		pins.Close()
		return fmt.Errorf("init actuator driver: %w", err)
	}
	defer driver.Close()

	publisher := mqtt.NewRealPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PeriodMs:         cfg.Period().Milliseconds(),
		DwellMs:          cfg.Dwell().Milliseconds(),
		SensorTimeoutMs:  int64(cfg.SensorTimeoutMs),
		Hysteresis:       cfg.Hysteresis,
		FailureThreshold: cfg.FailureThreshold,
		Broker:           cfg.MQTTBroker,
		HTTPAddr:         cfg.HTTPAddr,
	})

	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	err = publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	})
	if err != nil {
		log.Warn("publish startup event", "error", err)
	}

	if cfg.HTTPAddr != "" && cfg.HTTPAddr != "off" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http server", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Info("http status server listening", "addr", cfg.HTTPAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sigName := make(chan string, 1)
	go func() {
		s := <-sigCh
		name := "SIGINT"
		if s == syscall.SIGTERM {
			name = "SIGTERM"
		}
		log.Info("shutting down", "signal", name)
		sigName <- name
		cancel()
	}()

	log.Info("started",
		"period", cfg.Period(), "dwell", cfg.Dwell(), "broker", cfg.MQTTBroker,
		"temp_band", fmt.Sprintf("%g-%g", cfg.TempLowC, cfg.TempHighC),
		"humidity_band", fmt.Sprintf("%g-%g", cfg.HumidityLowPct, cfg.HumidityHighPct))

	ctl := loop.New(loop.Config{
		Period:           cfg.Period(),
		Dwell:            cfg.Dwell(),
		FailureThreshold: cfg.FailureThreshold,
		Hysteresis:       cfg.Hysteresis,
		Setpoints:        cfg.Setpoints(),
		HeartbeatEvery:   cfg.HeartbeatCycles,
	}, reader, driver, publisher, publisher, tracker, log)
	ctl.Run(ctx)

	reason := "UNKNOWN"
	select {
	case reason = <-sigName:
	default:
	}
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap = tracker.Snapshot()
	err = publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
	})
	if err != nil {
		log.Warn("publish shutdown event", "error", err)
	}
	return nil
}
