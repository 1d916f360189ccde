package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/nekkaida/Cardose-sub003/config"
	"github.com/nekkaida/Cardose-sub003/model"
)

// Event is the wire shape of a published shop-floor event.
type Event struct {
	Event   string `json:"event"`
	At      string `json:"at"`
	Payload any    `json:"payload,omitempty"`
}

// Publisher pushes domain events (order status changes, task
// completions, sync reports) to shop-floor displays over MQTT or
// Kafka. Publishing is fire and forget; a broker outage never affects
// the entity services.
type Publisher struct {
	mu      sync.RWMutex
	cfg     *config.EventsConfig
	backend string

	mqttConn mqtt.Client
	kafkaW   *kafkago.Writer
}

// NewPublisher creates a publisher for the configured backend. An
// empty backend yields a disabled publisher whose Publish is a no-op.
func NewPublisher(cfg *config.EventsConfig) *Publisher {
	return &Publisher{cfg: cfg, backend: cfg.Backend}
}

// Connect establishes the broker connection. Disabled publishers
// connect trivially.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.backend {
	case "":
		return nil
	case "mqtt":
		return p.connectMQTT()
	case "kafka":
		return p.connectKafka()
	default:
		return fmt.Errorf("unknown events backend: %s", p.backend)
	}
}

func (p *Publisher) connectMQTT() error {
	broker := fmt.Sprintf("tcp://%s:%d", p.cfg.MQTT.Broker, p.cfg.MQTT.Port)
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(p.cfg.MQTT.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.mqttConn = client
	return nil
}

func (p *Publisher) connectKafka() error {
	p.kafkaW = &kafkago.Writer{
		Addr:         kafkago.TCP(p.cfg.Kafka.Brokers...),
		Topic:        p.cfg.Topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return nil
}

// Publish encodes and sends an event. Errors are logged, never
// returned; this satisfies the loss-tolerant emitter contract.
func (p *Publisher) Publish(event string, payload any) {
	if p.backend == "" {
		return
	}
	data, err := json.Marshal(Event{Event: event, At: model.Now(), Payload: payload})
	if err != nil {
		log.Printf("events: encode %s: %v", event, err)
		return
	}
	if err := p.publish(data); err != nil {
		log.Printf("events: publish %s: %v", event, err)
	}
}

func (p *Publisher) publish(payload []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.backend {
	case "mqtt":
		if p.mqttConn == nil || !p.mqttConn.IsConnected() {
			return fmt.Errorf("mqtt not connected")
		}
		token := p.mqttConn.Publish(p.cfg.Topic, 1, false, payload)
		token.Wait()
		return token.Error()
	case "kafka":
		if p.kafkaW == nil {
			return fmt.Errorf("kafka writer not initialized")
		}
		return p.kafkaW.WriteMessages(context.Background(), kafkago.Message{Value: payload})
	default:
		return fmt.Errorf("unknown backend: %s", p.backend)
	}
}

// IsConnected reports whether the broker connection is up. Disabled
// publishers report false.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch p.backend {
	case "mqtt":
		return p.mqttConn != nil && p.mqttConn.IsConnected()
	case "kafka":
		return p.kafkaW != nil
	default:
		return false
	}
}

// Close shuts down the broker connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mqttConn != nil {
		p.mqttConn.Disconnect(1000)
		p.mqttConn = nil
	}
	if p.kafkaW != nil {
		p.kafkaW.Close()
		p.kafkaW = nil
	}
}
