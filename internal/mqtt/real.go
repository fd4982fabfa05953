package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sony/gobreaker"

	"github.com/jgrew/bonsaibox/internal/metrics"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	queueCapacity  = 256
)

var errNotConnected = errors.New("not connected to broker")

// RealPublisher publishes to an actual MQTT broker.
//
// Publish failures never propagate beyond an error return: the message is
// parked in a bounded offline queue and replayed on reconnect. A circuit
// breaker stops publish attempts (and their timeouts) while the broker is
// known dead, so a broker outage costs the control loop nothing.
type RealPublisher struct {
	client  paho.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.Mutex
	queue *offlineQueue

	done chan struct{}
}

// NewRealPublisher creates a publisher for the given broker. An unreachable
// broker is not an error: the publisher starts with the offline queue and
// keeps retrying the connection in the background.
func NewRealPublisher(broker, clientID string) *RealPublisher {
	p := &RealPublisher{
		queue: newOfflineQueue(queueCapacity),
		done:  make(chan struct{}),
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "mqtt-publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(paho.Client) {
			go p.drainQueued()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			slog.Warn("mqtt connection lost", "error", err)
		})
	p.client = paho.NewClient(opts)

	if err := p.connect(30 * time.Second); err != nil {
		slog.Warn("mqtt broker unreachable, starting with offline queue", "broker", broker, "error", err)
		go p.retryConnect()
	}
	return p
}

// connect attempts the initial connection with exponential backoff for at
// most maxElapsed.
func (p *RealPublisher) connect(maxElapsed time.Duration) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	return backoff.Retry(func() error {
		token := p.client.Connect()
		if !token.WaitTimeout(connectTimeout) {
			return errors.New("connection timeout")
		}
		return token.Error()
	}, bo)
}

// retryConnect keeps attempting the initial connection until it succeeds
// or the publisher is closed. Once connected, paho's auto-reconnect takes
// over.
func (p *RealPublisher) retryConnect() {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // retry forever
	bo.MaxInterval = time.Minute
	for {
		select {
		case <-p.done:
			return
		case <-time.After(bo.NextBackOff()):
		}
		token := p.client.Connect()
		if token.WaitTimeout(connectTimeout) && token.Error() == nil {
			slog.Info("mqtt broker connected")
			return
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// PublishTelemetry sends the per-cycle snapshot at QoS 0.
func (p *RealPublisher) PublishTelemetry(t Telemetry) error {
	payload, err := FormatTelemetry(t)
	if err != nil {
		return fmt.Errorf("format telemetry: %w", err)
	}
	return p.publish(TopicTelemetry, 0, false, payload)
}

// PublishEvent sends an actuator state change at QoS 1.
func (p *RealPublisher) PublishEvent(e ActuatorEvent) error {
	payload, err := FormatEvent(e)
	if err != nil {
		return fmt.Errorf("format event: %w", err)
	}
	return p.publish(TopicEvents, 1, false, payload)
}

// PublishSystem sends a system lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(e SystemEvent) error {
	payload, err := FormatSystem(e)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, e.Retained, payload)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	_, err := p.breaker.Execute(func() (any, error) {
		if !p.client.IsConnected() {
			return nil, errNotConnected
		}
		token := p.client.Publish(topic, qos, retained, payload)
		if !token.WaitTimeout(publishTimeout) {
			return nil, errors.New("publish timeout")
		}
		return nil, token.Error()
	})
	if err != nil {
		p.mu.Lock()
		p.queue.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		waiting := p.queue.len()
		p.mu.Unlock()
		metrics.MQTTPublishesTotal.WithLabelValues("queued").Inc()
		return fmt.Errorf("publish %s: %w (%d queued)", topic, err, waiting)
	}
	metrics.MQTTPublishesTotal.WithLabelValues("ok").Inc()
	return nil
}

// drainQueued replays queued messages after a reconnect. If the broker
// drops again mid-drain, the remainder goes back on the queue.
func (p *RealPublisher) drainQueued() {
	p.mu.Lock()
	msgs := p.queue.drain()
	p.mu.Unlock()
	if len(msgs) == 0 {
		return
	}

	slog.Info("mqtt reconnected, draining offline queue", "messages", len(msgs))
	for i, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
			p.mu.Lock()
			for _, rest := range msgs[i:] {
				p.queue.push(rest)
			}
			p.mu.Unlock()
			slog.Warn("mqtt drain interrupted", "replayed", i, "requeued", len(msgs)-i)
			return
		}
		metrics.MQTTPublishesTotal.WithLabelValues("drained").Inc()
	}
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	close(p.done)
	p.client.Disconnect(1000) // milliseconds to flush in-flight messages
	return nil
}
