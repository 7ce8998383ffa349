package dto

import (
	"time"

	"crosspay-engine/domain/entities"
	"github.com/google/uuid"
)

// JobStatusResult is the full picture of one job: queue state, the payment
// intent it serves, and the on-chain legs executed so far.
type JobStatusResult struct {
	Job     entities.Job               `json:"job" yaml:"job"`
	Payment *entities.ScheduledPayment `json:"payment,omitempty" yaml:"payment,omitempty"`
	Legs    []entities.Leg             `json:"legs" yaml:"legs"`
}

// PaymentSummary is the flattened row shape used by listing output.
type PaymentSummary struct {
	ID           uuid.UUID  `json:"id" yaml:"id"`
	Recipient    string     `json:"recipient" yaml:"recipient"`
	TokenSymbol  string     `json:"token_symbol" yaml:"token_symbol"`
	Amount       string     `json:"amount" yaml:"amount"`
	SourceChain  string     `json:"source_chain,omitempty" yaml:"source_chain,omitempty"`
	TargetChain  string     `json:"target_chain,omitempty" yaml:"target_chain,omitempty"`
	Status       string     `json:"status" yaml:"status"`
	ScheduledFor time.Time  `json:"scheduled_for" yaml:"scheduled_for"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	LastError    string     `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// NewPaymentSummary flattens a payment for display.
func NewPaymentSummary(p *entities.ScheduledPayment) PaymentSummary {
	return PaymentSummary{
		ID:           p.ID,
		Recipient:    p.Recipient,
		TokenSymbol:  p.TokenSymbol,
		Amount:       p.Amount.String(),
		SourceChain:  p.SourceChain,
		TargetChain:  p.TargetChain,
		Status:       string(p.Status),
		ScheduledFor: p.ScheduledFor,
		CompletedAt:  p.CompletedAt,
		LastError:    p.LastError,
	}
}
