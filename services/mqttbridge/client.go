//go:build !tinygo

package mqttbridge

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"chirpcode-go/x/logx"
)

const (
	connectTimeout = 10 * time.Second
	opTimeout      = 5 * time.Second
	keepAlive      = 30 * time.Second
	qos            = 1
)

var (
	ErrNotConnected = errors.New("mqtt: client not connected")
	ErrTimeout      = errors.New("mqtt: operation timed out")
)

// Config is the broker connection.
type Config struct {
	Broker   string // e.g. "tcp://localhost:1883"
	ClientID string
	Username string
	Password string
	Prefix   string
	TLS      bool
}

// Paho is a Client over paho.mqtt.golang. Subscriptions are restored on
// reconnect.
type Paho struct {
	client pahomqtt.Client
	cfg    Config
	log    logx.Logger

	mu   sync.Mutex
	subs map[string]Handler
}

// Dial connects to the broker. A retained "offline" will is set on
// <prefix>/status.
func Dial(cfg Config, log logx.Logger) (*Paho, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker address is required")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("chirpd-%d", time.Now().Unix())
	}
	p := &Paho{cfg: cfg, log: logx.Or(log), subs: map[string]Handler{}}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	opts.SetWill(StatusTopic(cfg.Prefix), `{"level":"offline"}`, qos, true)

	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		p.log.Infof("[MQTT] Connected to broker: %s", cfg.Broker)
		p.restore()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		p.log.Warnf("[MQTT] Connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		p.log.Infof("[MQTT] Attempting to reconnect...")
	})

	p.client = pahomqtt.NewClient(opts)
	tok := p.client.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, ErrTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return p, nil
}

func (p *Paho) Prefix() string { return p.cfg.Prefix }

func (p *Paho) Publish(topic string, retained bool, payload []byte) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	tok := p.client.Publish(topic, qos, retained, payload)
	if !tok.WaitTimeout(opTimeout) {
		return fmt.Errorf("publish %s: %w", topic, ErrTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *Paho) Subscribe(topic string, h Handler) error {
	p.mu.Lock()
	p.subs[topic] = h
	p.mu.Unlock()

	tok := p.client.Subscribe(topic, qos, wrap(h))
	if !tok.WaitTimeout(opTimeout) {
		return fmt.Errorf("subscribe %s: %w", topic, ErrTimeout)
	}
	if err := tok.Error(); err != nil {
		p.mu.Lock()
		delete(p.subs, topic)
		p.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

func (p *Paho) restore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for topic, h := range p.subs {
		p.client.Subscribe(topic, qos, wrap(h))
	}
}

// Close disconnects, allowing 250 ms for in-flight work.
func (p *Paho) Close() {
	p.client.Disconnect(250)
	p.log.Infof("[MQTT] Disconnected from broker")
}

func wrap(h Handler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, m pahomqtt.Message) {
		h(m.Topic(), m.Payload())
	}
}
