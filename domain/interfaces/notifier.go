// Package interfaces defines the contracts for domain services.
package interfaces

import (
	"context"

	"crosspay-engine/domain/dto"
)

// Notifier delivers payment lifecycle events to external services.
type Notifier interface {
	// Notify sends a payment event. Delivery failures must not fail the
	// payment; callers log and move on.
	Notify(ctx context.Context, event *dto.PaymentEvent) error

	// IsConfigured checks if the notifier is properly configured.
	IsConfigured() bool
}
