package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config holds broker connection settings.
type Config struct {
	BrokerURL string
	ClientID  string
	Logger    *zap.Logger
}

// Connect dials the broker and returns a client that reconnects on its own.
func Connect(cfg Config) (mqtt.Client, error) {
	if cfg.BrokerURL == "" {
		return nil, errors.New("MQTT broker URL is empty")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "ticket-metrics"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(2 * time.Second)

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	}
	opts.OnConnect = func(_ mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", cfg.BrokerURL), zap.String("client_id", cfg.ClientID))
	}

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connect mqtt %s: timed out", cfg.BrokerURL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.BrokerURL, err)
	}
	return c, nil
}

// Topic joins the configured prefix and an event name.
func Topic(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Publisher sends fire-and-forget messages (QoS 0) to the broker.
type Publisher struct {
	client  mqtt.Client
	timeout time.Duration
}

// NewPublisher wraps a connected client.
func NewPublisher(client mqtt.Client, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Publisher{client: client, timeout: timeout}
}

// Publish sends payload to topic and waits for the client to hand it off.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	tok := p.client.Publish(topic, 0, false, payload)
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish %s: timed out after %s", topic, p.timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker, letting in-flight work finish briefly.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
