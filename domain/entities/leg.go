// Package entities contains the core domain entities for the crosspay engine.
// It defines structures for scheduled payments, jobs, execution legs, and
// related data types.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LegKind discriminates rows in the shared legs table.
type LegKind string

// Leg kind constants.
const (
	LegKindBridge  LegKind = "bridge"
	LegKindPayment LegKind = "payment"
)

// LegStatus represents the lifecycle state of an execution leg.
type LegStatus string

// Leg status constants. Bridge legs terminate at bridged or failed;
// payment legs terminate at confirmed or failed.
const (
	LegStatusQuoted     LegStatus = "quoted"
	LegStatusSubmitted  LegStatus = "submitted"
	LegStatusConfirming LegStatus = "confirming"
	LegStatusBridged    LegStatus = "bridged"
	LegStatusConfirmed  LegStatus = "confirmed"
	LegStatusFailed     LegStatus = "failed"
)

// Leg is one on-chain movement belonging to a job: a bridge transfer or a
// payment on the target chain. Every leg row is persisted before the
// external call it describes, so crash recovery can read progress from the
// table and resume without repeating completed movements.
type Leg struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	JobID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_legs_job"`
	PaymentID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_legs_payment"`
	Kind             LegKind         `gorm:"type:varchar(16);not null"`
	FromChain        string          `gorm:"type:varchar(64);not null"`
	ToChain          string          `gorm:"type:varchar(64);not null"`
	TokenSymbol      string          `gorm:"type:varchar(32);not null"`
	Amount           decimal.Decimal `gorm:"type:decimal(38,18);not null"`
	RecipientAddress string          `gorm:"type:varchar(128)"`
	TxHandle         TxHandle        `gorm:"type:varchar(128);index:idx_legs_tx_handle"`
	Status           LegStatus       `gorm:"type:varchar(16);not null"`
	Confirmations    uint64          `gorm:"not null;default:0"`
	Provider         string          `gorm:"type:varchar(64)"`
	Fee              decimal.Decimal `gorm:"type:decimal(38,18)"`
	EstimatedSeconds int             `gorm:"not null;default:0"`
	LastError        string          `gorm:"type:text"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
	CompletedAt      *time.Time
}

// TableName returns the database table name for execution legs.
func (Leg) TableName() string {
	return "legs"
}

// IsTerminal reports whether the leg can no longer change state. Terminal
// success differs by kind: bridged for bridge legs, confirmed for payment
// legs. Failed is terminal for both.
func (l *Leg) IsTerminal() bool {
	if l.Status == LegStatusFailed {
		return true
	}
	switch l.Kind {
	case LegKindBridge:
		return l.Status == LegStatusBridged
	case LegKindPayment:
		return l.Status == LegStatusConfirmed
	default:
		return false
	}
}

// Succeeded reports whether the leg reached its terminal success state.
func (l *Leg) Succeeded() bool {
	return (l.Kind == LegKindBridge && l.Status == LegStatusBridged) ||
		(l.Kind == LegKindPayment && l.Status == LegStatusConfirmed)
}

// NewBridgeLeg builds a quoted bridge leg from a route. The row carries the
// quote details so resumed jobs can report what was promised.
func NewBridgeLeg(jobID, paymentID uuid.UUID, route *BridgeRoute) *Leg {
	return &Leg{
		ID:               uuid.New(),
		JobID:            jobID,
		PaymentID:        paymentID,
		Kind:             LegKindBridge,
		FromChain:        route.FromChain,
		ToChain:          route.ToChain,
		TokenSymbol:      route.TokenSymbol,
		Amount:           route.Amount,
		Status:           LegStatusQuoted,
		Provider:         route.Provider,
		Fee:              route.Fee,
		EstimatedSeconds: route.EstimatedSeconds,
	}
}

// NewPaymentLeg builds a payment leg for the target chain transfer.
func NewPaymentLeg(jobID, paymentID uuid.UUID, chain, token string, amount decimal.Decimal, recipient string) *Leg {
	return &Leg{
		ID:               uuid.New(),
		JobID:            jobID,
		PaymentID:        paymentID,
		Kind:             LegKindPayment,
		FromChain:        chain,
		ToChain:          chain,
		TokenSymbol:      token,
		Amount:           amount,
		RecipientAddress: recipient,
		Status:           LegStatusSubmitted,
	}
}
