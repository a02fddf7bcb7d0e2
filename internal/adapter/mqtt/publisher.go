// Package mqtt publishes retrieval outcomes to an MQTT broker so dashboards
// can subscribe per station.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/sounding-service/internal/domain"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Publisher sends outcomes to {prefix}/{station}/{status}.
// It implements pipeline.BatchLoader.
type Publisher struct {
	client mqtt.Client
	prefix string
	logger *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublisher configures a reconnecting client for brokerURL
// (for example tcp://localhost:1883). Call Connect before publishing.
func NewPublisher(brokerURL, clientID, prefix string, logger *slog.Logger) *Publisher {
	p := &Publisher{
		prefix: prefix,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", brokerURL)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect waits for the initial connection, honouring ctx and Close.
func (p *Publisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errors.New("mqtt publisher stopped")
	default:
	}
	if p.client.IsConnected() {
		return nil
	}
	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errors.New("mqtt publisher stopped")
		default:
		}
	}
}

// LoadBatch publishes each outcome with QoS 1. Failures are collected and
// returned together after every outcome has been tried.
func (p *Publisher) LoadBatch(ctx context.Context, outcomes []domain.RetrievalOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	if !p.client.IsConnected() {
		return errors.New("mqtt client not connected")
	}

	var errs []error
	for _, out := range outcomes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.publish(out); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(out domain.RetrievalOutcome) error {
	topic := topicFor(p.prefix, out)
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debug("published outcome", "topic", topic, "request_id", out.RequestID)
	return nil
}

// Close disconnects from the broker. Safe to call more than once.
func (p *Publisher) Close() error {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.client.Disconnect(250)
	return nil
}

func topicFor(prefix string, out domain.RetrievalOutcome) string {
	return fmt.Sprintf("%s/%s/%s", prefix, out.Request.Station, out.Status)
}
