package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

// WebhookPublisher POSTs lifecycle events to the employee console host.
type WebhookPublisher struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhookPublisher(url, secret string) *WebhookPublisher {
	return &WebhookPublisher{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookPublisher) Publish(ctx context.Context, eventType string, n support.Notification) error {
	b, err := json.Marshal(NewEnvelope(eventType, n))
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", eventType)
	if w.secret != "" {
		req.Header.Set("X-Webhook-Secret", w.secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", eventType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error: %s body=%s", resp.Status, string(body))
	}
	return nil
}

// Multi publishes to every publisher and returns the first error.
type Multi []support.Publisher

func (m Multi) Publish(ctx context.Context, eventType string, n support.Notification) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, eventType, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
