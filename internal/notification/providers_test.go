package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/errors"
)

type fakeMQTT struct {
	mu           sync.Mutex
	connected    bool
	connectErr   error
	connects     int
	disconnected bool
	topic        string
	payload      string
}

func (f *fakeMQTT) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeMQTT) Publish(_ context.Context, topic, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topic, f.payload = topic, payload
	return nil
}

func (f *fakeMQTT) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeMQTT) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnected = true
}

func TestMQTTProviderConnectsLazily(t *testing.T) {
	t.Parallel()

	client := &fakeMQTT{}
	p := NewMQTTProvider(client, "happycall/submissions")

	require.NoError(t, p.Send(context.Background(), NewMessage(event(7, entities.FinalStatusAbnormal))))
	require.NoError(t, p.Send(context.Background(), NewMessage(event(8, entities.FinalStatusNormal))))

	assert.Equal(t, 1, client.connects)
	assert.Equal(t, "happycall/submissions", client.topic)
	assert.JSONEq(t, `{
		"submission_id": 8,
		"customer_id": 8,
		"customer_name": "Kim, Minsu",
		"agent_username": "agent7",
		"final_status": "정상",
		"has_recording": true,
		"created_at": "2026-03-02T10:30:00Z"
	}`, client.payload)

	require.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}

func TestMQTTProviderConnectFailure(t *testing.T) {
	t.Parallel()

	client := &fakeMQTT{connectErr: errors.NewStd("refused")}
	p := NewMQTTProvider(client, "t")
	err := p.Send(context.Background(), NewMessage(event(1, entities.FinalStatusAbnormal)))
	require.Error(t, err)
	assert.Empty(t, client.payload)
}

func TestNewShoutrrrProviderValidation(t *testing.T) {
	t.Parallel()

	_, err := NewShoutrrrProvider(nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = NewShoutrrrProvider([]string{"nosuchservice://s3cr3t-token@host"}, 0)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cr3t-token")
}

func TestFromSettings(t *testing.T) {
	t.Parallel()

	s := &conf.NotificationSettings{
		OnlyAbnormal: true,
		Webhook:      conf.WebhookSettings{Enabled: true, URL: testWebhookURL},
	}
	d, err := FromSettings(context.Background(), s, nil, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"webhook"}, d.Sinks())
	assert.True(t, d.opts.OnlyAbnormal)
	closeDispatcher(t, d)

	s = &conf.NotificationSettings{Push: conf.PushSettings{Enabled: true}}
	_, err = FromSettings(context.Background(), s, nil, quietLogger())
	require.Error(t, err)
}
