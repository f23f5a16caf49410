package notification

import (
	"context"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/mqtt"
)

// FromSettings builds a dispatcher with every enabled sink. An MQTT broker that
// cannot be reached at startup is logged and retried on the first send.
func FromSettings(ctx context.Context, s *conf.NotificationSettings, recorder ResultRecorder, log logger.Logger) (*Dispatcher, error) {
	if log == nil {
		log = GetLogger()
	}

	var providers []Provider
	opts := DefaultOptions()
	opts.OnlyAbnormal = s.OnlyAbnormal

	if s.Push.Enabled {
		p, err := NewShoutrrrProvider(s.Push.URLs, opts.SendTimeout)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if s.Webhook.Enabled {
		providers = append(providers, NewWebhookProvider(s.Webhook.URL, s.Webhook.Timeout))
	}

	if s.MQTT.Enabled {
		client, err := mqtt.NewClient(mqtt.ConfigFromSettings(&s.MQTT), mqtt.GetLogger())
		if err != nil {
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			log.Warn("mqtt broker unavailable at startup",
				logger.String("broker", s.MQTT.Broker),
				logger.Error(err))
		}
		providers = append(providers, NewMQTTProvider(client, s.MQTT.Topic))
	}

	d := NewDispatcher(opts, recorder, log, providers...)
	log.Info("notification dispatcher ready",
		logger.Int("sinks", len(providers)),
		logger.Bool("only_abnormal", opts.OnlyAbnormal))
	return d, nil
}
