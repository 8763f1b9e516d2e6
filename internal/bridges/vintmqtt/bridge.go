package vintmqtt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/infrastructure/mqtt"
	"github.com/domiot-io/drivers/internal/vint"
)

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
// Satisfied by *mqtt.Client.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// Unsubscribe removes a subscription.
	Unsubscribe(topic string) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// Bridge connects vintx6 hubs to an external controller over MQTT.
//
// Thread Safety: Start and Stop must not be called concurrently;
// message handlers run on paho goroutines and only touch the hubs,
// which are safe for concurrent use.
type Bridge struct {
	client MQTTClient
	hubs   []*vint.Hub
	qos    byte
	log    *logging.Logger
	topics mqtt.Topics

	stopOnce sync.Once
}

// New creates a bridge for the given hubs.
//
// Parameters:
//   - client: connected MQTT client
//   - hubs: every vintx6 hub instance, indexed by instance number
//   - qos: QoS level for subscriptions and publishes
//   - log: structured logger
func New(client MQTTClient, hubs []*vint.Hub, qos byte, log *logging.Logger) *Bridge {
	return &Bridge{
		client: client,
		hubs:   hubs,
		qos:    qos,
		log:    log.With("component", "vintmqtt"),
	}
}

// Start subscribes to the controller topics for every hub and wires
// output forwarding.
//
// Returns: an error if any subscription fails. Already-established
// subscriptions are left in place; call Stop to clean up.
func (b *Bridge) Start() error {
	for i, h := range b.hubs {
		hub := h

		inputTopic := b.topics.VintInputs(i)
		if err := b.client.Subscribe(inputTopic, b.qos, func(topic string, payload []byte) error {
			hub.FeedInputs(payload)
			return nil
		}); err != nil {
			return fmt.Errorf("subscribing to %s: %w", inputTopic, err)
		}

		connectedTopic := b.topics.VintConnected(i)
		if err := b.client.Subscribe(connectedTopic, b.qos, func(topic string, payload []byte) error {
			hub.SetConnected(parseConnected(payload))
			return nil
		}); err != nil {
			return fmt.Errorf("subscribing to %s: %w", connectedTopic, err)
		}

		outputTopic := b.topics.VintOutputs(i)
		hub.SetOutputSink(func(states string) {
			if err := b.client.Publish(outputTopic, []byte(states), b.qos, true); err != nil {
				b.log.Warn("publishing output states failed",
					"topic", outputTopic,
					"error", err)
			}
		})

		b.log.Info("hub bridged",
			"device", hub.Name(),
			"input_topic", inputTopic,
			"connected_topic", connectedTopic,
			"output_topic", outputTopic)
	}

	return nil
}

// Stop detaches the hubs from the broker. Hubs are marked
// disconnected so output writes gate again.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		for i, h := range b.hubs {
			h.SetOutputSink(nil)
			h.SetConnected(false)

			if b.client.IsConnected() {
				b.client.Unsubscribe(b.topics.VintInputs(i))    //nolint:errcheck // best effort on shutdown
				b.client.Unsubscribe(b.topics.VintConnected(i)) //nolint:errcheck // best effort on shutdown
			}
		}
		b.log.Info("bridge stopped")
	})
}

// parseConnected interprets a connection-flag payload.
// "1" and "true" (case-insensitive) mean connected.
func parseConnected(payload []byte) bool {
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "1", "true":
		return true
	}
	return false
}
