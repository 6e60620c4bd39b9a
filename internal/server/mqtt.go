package server

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/runtime"
)

const defaultMQTTTimeout = 5 * time.Second

// MQTTConfig describes the broker frames are published to.
type MQTTConfig struct {
	URL      string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte
	Timeout  time.Duration
}

// publisher is the part of mqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes every frame as JSON to a broker topic, for devices and
// renderers that are not browsers.
type MQTTSink struct {
	client  publisher
	topic   string
	qos     byte
	timeout time.Duration
	logger  log.Log
}

// NewMQTTSink connects to the broker. The client reconnects on its own after
// the first successful connection.
func NewMQTTSink(cfg MQTTConfig, logger log.Log) (*MQTTSink, error) {
	if cfg.URL == "" || cfg.Topic == "" {
		return nil, fmt.Errorf("%w: mqtt url and topic are required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("component", "mqtt"), log.String("broker", cfg.URL))
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMQTTTimeout
	}

	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("Connected to broker")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("Broker connection lost", log.Error(err))
		})
	client := mqtt.NewClient(options)

	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("%w: %s: timed out", ErrBrokerConnect, cfg.URL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBrokerConnect, cfg.URL, err)
	}
	return newMQTTSink(client, cfg, logger), nil
}

func newMQTTSink(client publisher, cfg MQTTConfig, logger log.Log) *MQTTSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultMQTTTimeout
	}
	return &MQTTSink{
		client:  client,
		topic:   cfg.Topic,
		qos:     cfg.QoS,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *MQTTSink) Name() string { return "mqtt" }

// SendFrame publishes the frame and waits for the broker to accept it, bounded
// by the configured timeout and ctx.
func (s *MQTTSink) SendFrame(ctx context.Context, f runtime.Frame) error {
	wait := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < wait {
			wait = left
		}
	}

	token := s.client.Publish(s.topic, s.qos, false, f.Payload)
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("%w: frame %d", ErrPublishTimeout, f.Seq)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() {
	if c, ok := s.client.(mqtt.Client); ok {
		c.Disconnect(250)
	}
}
