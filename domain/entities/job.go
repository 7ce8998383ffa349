// Package entities contains the core domain entities for the crosspay engine.
// It defines structures for scheduled payments, jobs, execution legs, and
// related data types.
package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobState represents the queue lifecycle state of a job.
type JobState string

// Job state constants.
const (
	JobStateWaiting   JobState = "waiting"
	JobStateActive    JobState = "active"
	JobStateDelayed   JobState = "delayed"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// Job is one durable unit of payment work. A job row survives process
// crashes: an active job whose lease expires is handed back to the pool and
// re-executed, so handlers must be safe to run more than once.
type Job struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	PaymentID     uuid.UUID `gorm:"type:uuid;not null;index:idx_jobs_payment"`
	Payload       string    `gorm:"type:jsonb;not null"`
	Priority      int64     `gorm:"not null;default:0;index:idx_jobs_claim,priority:2"`
	State         JobState  `gorm:"type:varchar(16);not null;index:idx_jobs_claim,priority:1"`
	Attempts      int       `gorm:"not null;default:0"`
	MaxAttempts   int       `gorm:"not null;default:3"`
	NextAttemptAt *time.Time
	LockedBy      string `gorm:"type:varchar(128)"`
	LockedUntil   *time.Time
	LastError     string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;index:idx_jobs_claim,priority:3"`
	UpdatedAt     time.Time `gorm:"not null"`
	CompletedAt   *time.Time
}

// TableName returns the database table name for jobs.
func (Job) TableName() string {
	return "jobs"
}

// IsTerminal reports whether the job can no longer change state.
func (j *Job) IsTerminal() bool {
	return j.State == JobStateCompleted || j.State == JobStateFailed
}

// AttemptsExhausted reports whether the job has consumed its attempt budget.
func (j *Job) AttemptsExhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// Request deserializes the job payload.
func (j *Job) Request() (*RouteRequest, error) {
	var req RouteRequest
	if err := json.Unmarshal([]byte(j.Payload), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// RouteRequest is the serialized job payload describing a payment to route
// and execute. It carries everything a worker needs so a job is executable
// without re-reading the payment row.
type RouteRequest struct {
	PaymentID           uuid.UUID       `json:"payment_id"`
	OwnerID             string          `json:"owner_id"`
	Recipient           string          `json:"recipient"`
	TokenSymbol         string          `json:"token_symbol"`
	Amount              decimal.Decimal `json:"amount"`
	SourceChain         string          `json:"source_chain,omitempty"`
	TargetChain         string          `json:"target_chain,omitempty"`
	CheapestRoute       bool            `json:"cheapest_route,omitempty"`
	AnyChainWithBalance bool            `json:"any_chain_with_balance,omitempty"`
}

// NewJob builds a waiting job for a route request. Priority is the unix
// time the underlying intent was due, so earlier intents dispatch first.
func NewJob(req *RouteRequest, priority int64, maxAttempts int) (*Job, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:          uuid.New(),
		PaymentID:   req.PaymentID,
		Payload:     string(payload),
		Priority:    priority,
		State:       JobStateWaiting,
		MaxAttempts: maxAttempts,
	}, nil
}
