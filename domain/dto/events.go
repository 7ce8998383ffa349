// Package dto contains data transfer objects passed across layer
// boundaries: notification payloads and status query results.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies payment lifecycle notifications.
type EventKind string

// Event kind constants.
const (
	EventMilestone EventKind = "MILESTONE"
	EventCompleted EventKind = "COMPLETED"
	EventFailed    EventKind = "FAILED"
)

// PaymentEvent is the notification payload delivered to the owner's
// callback for confirmation milestones and terminal outcomes.
type PaymentEvent struct {
	Kind          EventKind `json:"kind"`
	OwnerID       string    `json:"owner_id"`
	PaymentID     uuid.UUID `json:"payment_id"`
	JobID         uuid.UUID `json:"job_id"`
	Chain         string    `json:"chain,omitempty"`
	TxHandle      string    `json:"tx_handle,omitempty"`
	Confirmations uint64    `json:"confirmations,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
