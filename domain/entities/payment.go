// Package entities contains the core domain entities for the crosspay engine.
// It defines structures for scheduled payments, jobs, execution legs, and
// related data types.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a scheduled payment.
type PaymentStatus string

// Payment status constants.
const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusClaimed    PaymentStatus = "claimed"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

// ScheduledPayment is a user's intent to pay, immediately or in the future.
// Rows in scheduled_payments are the system of record for every intent,
// including immediate submissions, which are born already claimed.
type ScheduledPayment struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID             string          `gorm:"type:varchar(128);not null;index:idx_scheduled_payments_owner"`
	Recipient           string          `gorm:"type:varchar(255);not null"`
	TokenSymbol         string          `gorm:"type:varchar(32);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(38,18);not null"`
	SourceChain         string          `gorm:"type:varchar(64)"`
	TargetChain         string          `gorm:"type:varchar(64)"`
	ScheduledFor        time.Time       `gorm:"not null;index:idx_scheduled_payments_claim,priority:2"`
	Status              PaymentStatus   `gorm:"type:varchar(16);not null;index:idx_scheduled_payments_claim,priority:1"`
	CheapestRoute       bool            `gorm:"not null;default:false"`
	AnyChainWithBalance bool            `gorm:"not null;default:false"`
	RetryCount          int             `gorm:"not null;default:0"`
	LastError           string          `gorm:"type:text"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
	CompletedAt         *time.Time
}

// TableName returns the database table name for scheduled payments.
func (ScheduledPayment) TableName() string {
	return "scheduled_payments"
}

// IsTerminal reports whether the payment can no longer change state.
func (p *ScheduledPayment) IsTerminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// CrossChain reports whether the intent names a target chain different from
// its source. An empty target chain always means same-chain.
func (p *ScheduledPayment) CrossChain() bool {
	return p.TargetChain != "" && p.TargetChain != p.SourceChain
}

// RouteRequest builds the job payload for this intent. The payload carries
// everything a worker needs so the payment row is not re-read mid-flight.
func (p *ScheduledPayment) RouteRequest() *RouteRequest {
	return &RouteRequest{
		PaymentID:           p.ID,
		OwnerID:             p.OwnerID,
		Recipient:           p.Recipient,
		TokenSymbol:         p.TokenSymbol,
		Amount:              p.Amount,
		SourceChain:         p.SourceChain,
		TargetChain:         p.TargetChain,
		CheapestRoute:       p.CheapestRoute,
		AnyChainWithBalance: p.AnyChainWithBalance,
	}
}
