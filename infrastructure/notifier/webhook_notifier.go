// Package notifier delivers payment lifecycle events to the owner's
// configured webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/interfaces"
)

// webhookNotifier implements the Notifier interface with JSON POSTs.
type webhookNotifier struct {
	webhookURL string
	logger     interfaces.Logger
	httpClient *http.Client
}

// NewWebhookNotifier creates a webhook notifier. An empty URL yields an
// unconfigured notifier whose callers skip delivery.
func NewWebhookNotifier(webhookURL string, logger interfaces.Logger) interfaces.Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		logger:     logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify delivers a payment event to the webhook.
func (n *webhookNotifier) Notify(ctx context.Context, event *dto.PaymentEvent) error {
	if !n.IsConfigured() {
		return fmt.Errorf("webhook URL not configured")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	n.logger.Debug("Sending payment event", "payload", string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Info("Payment event delivered",
		"kind", event.Kind, "payment_id", event.PaymentID.String())
	return nil
}

// IsConfigured checks if the notifier is properly configured.
func (n *webhookNotifier) IsConfigured() bool {
	return n.webhookURL != ""
}
