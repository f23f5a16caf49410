package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/privacy"
)

const webhookUserAgent = "happycall-notifier/1.0"

// webhookPayload is the JSON body POSTed to the webhook URL.
type webhookPayload struct {
	Title   string                    `json:"title"`
	Message string                    `json:"message"`
	Event   happycall.SubmissionEvent `json:"event"`
}

// WebhookProvider POSTs submission events as JSON.
type WebhookProvider struct {
	url    string
	client *http.Client
}

func NewWebhookProvider(url string, timeout time.Duration) *WebhookProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *WebhookProvider) Name() string { return "webhook" }

func (w *WebhookProvider) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(webhookPayload{Title: msg.Title, Message: msg.Body, Event: msg.Event})
	if err != nil {
		return errors.New(err).Component("notification").Category(errors.CategoryNotification).Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.New(err).Component("notification").Category(errors.CategoryNotification).Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.New(privacy.WrapError(err)).
			Component("notification").
			Category(errors.CategoryNetwork).
			Context("sink", "webhook").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("webhook returned status %d", resp.StatusCode).
			Component("notification").
			Category(errors.CategoryHTTP).
			Context("status_code", resp.StatusCode).
			Build()
	}
	return nil
}
