package notification

import (
	"context"
	"encoding/json"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/mqtt"
)

// MQTTProvider publishes the JSON event to a broker topic.
type MQTTProvider struct {
	client mqtt.Client
	topic  string
}

func NewMQTTProvider(client mqtt.Client, topic string) *MQTTProvider {
	return &MQTTProvider{client: client, topic: topic}
}

func (m *MQTTProvider) Name() string { return "mqtt" }

// Send connects lazily so a broker that was down at startup is retried.
func (m *MQTTProvider) Send(ctx context.Context, msg *Message) error {
	if !m.client.IsConnected() {
		if err := m.client.Connect(ctx); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(msg.Event)
	if err != nil {
		return errors.New(err).Component("notification").Category(errors.CategoryNotification).Build()
	}
	return m.client.Publish(ctx, m.topic, string(payload))
}

func (m *MQTTProvider) Close() error {
	m.client.Disconnect()
	return nil
}
