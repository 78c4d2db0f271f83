package notifiers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"cosmoray/internal/prop"
)

// WebhookNotifier delivers candidate events as HTTP POSTs to a webhook URL.
type WebhookNotifier struct {
	id      string
	url     string
	client  *http.Client
	headers map[string]string
}

func NewWebhookNotifier(id, url string) *WebhookNotifier {
	return &WebhookNotifier{
		id:      id,
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		headers: make(map[string]string),
	}
}

// SetHeader adds a custom header to every webhook request.
func (n *WebhookNotifier) SetHeader(key, value string) {
	n.headers[key] = value
}

func (n *WebhookNotifier) ID() string {
	return n.id
}

func (n *WebhookNotifier) Type() string {
	return "webhook"
}

// Notify posts the event as JSON; any non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, event prop.Event) error {
	data, err := event.JSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range n.headers {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op for webhooks.
func (n *WebhookNotifier) Close() error {
	return nil
}
