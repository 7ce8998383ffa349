// Package fakes provides in-memory implementations of the persistence
// interfaces for tests that exercise real component loops without a
// database. All fakes are safe for concurrent use.
package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
)

// PaymentStore is an in-memory ScheduledPaymentRepository.
type PaymentStore struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*entities.ScheduledPayment
}

// NewPaymentStore creates an empty payment store.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{payments: make(map[uuid.UUID]*entities.ScheduledPayment)}
}

// Create implements ScheduledPaymentRepository.
func (s *PaymentStore) Create(_ context.Context, payment *entities.ScheduledPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *payment
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.payments[p.ID] = &p
	return nil
}

// FindByID implements ScheduledPaymentRepository.
func (s *PaymentStore) FindByID(_ context.Context, id uuid.UUID) (*entities.ScheduledPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("payment %s not found", id))
	}
	cp := *p
	return &cp, nil
}

// FindByOwner implements ScheduledPaymentRepository.
func (s *PaymentStore) FindByOwner(
	_ context.Context,
	ownerID string,
	status entities.PaymentStatus,
	limit int,
) ([]entities.ScheduledPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.ScheduledPayment
	for _, p := range s.payments {
		if p.OwnerID != ownerID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}

	// Newest first.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ClaimDue implements ScheduledPaymentRepository. The whole scan runs under
// one lock, so concurrent claimers never win the same row.
func (s *PaymentStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]entities.ScheduledPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entities.ScheduledPayment
	for _, p := range s.payments {
		if p.Status == entities.PaymentStatusPending && !p.ScheduledFor.After(now) {
			due = append(due, p)
		}
	}

	// Earliest due first.
	for i := 0; i < len(due); i++ {
		for j := i + 1; j < len(due); j++ {
			if due[j].ScheduledFor.Before(due[i].ScheduledFor) {
				due[i], due[j] = due[j], due[i]
			}
		}
	}
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]entities.ScheduledPayment, 0, len(due))
	for _, p := range due {
		p.Status = entities.PaymentStatusClaimed
		p.UpdatedAt = now
		claimed = append(claimed, *p)
	}
	return claimed, nil
}

// UpdateStatus implements ScheduledPaymentRepository.
func (s *PaymentStore) UpdateStatus(
	_ context.Context,
	id uuid.UUID,
	status entities.PaymentStatus,
	lastError string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("payment %s not found", id))
	}

	now := time.Now().UTC()
	p.Status = status
	p.LastError = lastError
	p.UpdatedAt = now
	if status == entities.PaymentStatusCompleted {
		p.CompletedAt = &now
	}
	return nil
}

// RecordAttempt implements ScheduledPaymentRepository.
func (s *PaymentStore) RecordAttempt(_ context.Context, id uuid.UUID, retryCount int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("payment %s not found", id))
	}

	p.RetryCount = retryCount
	p.LastError = lastError
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// CancelPending implements ScheduledPaymentRepository.
func (s *PaymentStore) CancelPending(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok || p.Status != entities.PaymentStatusPending {
		return false, nil
	}

	p.Status = entities.PaymentStatusCancelled
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

// Snapshot returns a copy of a stored payment for assertions.
func (s *PaymentStore) Snapshot(id uuid.UUID) entities.ScheduledPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.payments[id]
}

// Len returns the number of stored payments.
func (s *PaymentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payments)
}

// JobStore is an in-memory JobRepository.
type JobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entities.Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[uuid.UUID]*entities.Job)}
}

// Create implements JobRepository.
func (s *JobStore) Create(_ context.Context, job *entities.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j := *job
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	s.jobs[j.ID] = &j
	return nil
}

// FindByID implements JobRepository.
func (s *JobStore) FindByID(_ context.Context, id uuid.UUID) (*entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("job %s not found", id))
	}
	cp := *j
	return &cp, nil
}

// FindByPayment implements JobRepository.
func (s *JobStore) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.Job
	for _, j := range s.jobs {
		if j.PaymentID == paymentID {
			out = append(out, *j)
		}
	}
	return out, nil
}

// claimBefore reports whether a should be claimed before b.
func claimBefore(a, b *entities.Job) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

// ClaimNext implements JobRepository.
func (s *JobStore) ClaimNext(_ context.Context, workerID string, lease time.Duration) (*entities.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *entities.Job
	for _, j := range s.jobs {
		if j.State != entities.JobStateWaiting {
			continue
		}
		if best == nil || claimBefore(j, best) {
			best = j
		}
	}
	if best == nil {
		return nil, nil
	}

	until := time.Now().UTC().Add(lease)
	best.State = entities.JobStateActive
	best.Attempts++
	best.LockedBy = workerID
	best.LockedUntil = &until

	cp := *best
	return &cp, nil
}

// MarkCompleted implements JobRepository.
func (s *JobStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	return s.finish(id, entities.JobStateCompleted, "")
}

// MarkFailed implements JobRepository.
func (s *JobStore) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	return s.finish(id, entities.JobStateFailed, lastError)
}

func (s *JobStore) finish(id uuid.UUID, to entities.JobState, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.State != entities.JobStateActive {
		return errors.NewDomainError(errors.ErrConflict, fmt.Sprintf("job %s is not active", id))
	}

	now := time.Now().UTC()
	j.State = to
	j.LastError = lastError
	j.LockedBy = ""
	j.LockedUntil = nil
	j.CompletedAt = &now
	return nil
}

// Delay implements JobRepository.
func (s *JobStore) Delay(_ context.Context, id uuid.UUID, nextAttempt time.Time, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.State != entities.JobStateActive {
		return errors.NewDomainError(errors.ErrConflict, fmt.Sprintf("job %s is not active", id))
	}

	j.State = entities.JobStateDelayed
	j.NextAttemptAt = &nextAttempt
	j.LastError = lastError
	j.LockedBy = ""
	j.LockedUntil = nil
	return nil
}

// PromoteDelayed implements JobRepository.
func (s *JobStore) PromoteDelayed(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, j := range s.jobs {
		if j.State == entities.JobStateDelayed && j.NextAttemptAt != nil && !j.NextAttemptAt.After(now) {
			j.State = entities.JobStateWaiting
			j.NextAttemptAt = nil
			n++
		}
	}
	return n, nil
}

// RequeueStale implements JobRepository.
func (s *JobStore) RequeueStale(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, j := range s.jobs {
		if j.State == entities.JobStateActive && j.LockedUntil != nil && j.LockedUntil.Before(now) {
			j.State = entities.JobStateWaiting
			j.LockedBy = ""
			j.LockedUntil = nil
			n++
		}
	}
	return n, nil
}

// CountByState implements JobRepository.
func (s *JobStore) CountByState(_ context.Context, state entities.JobState) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, j := range s.jobs {
		if j.State == state {
			n++
		}
	}
	return n, nil
}

// Snapshot returns a copy of a stored job for assertions.
func (s *JobStore) Snapshot(id uuid.UUID) entities.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

// All returns copies of every stored job.
func (s *JobStore) All() []entities.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

// LegStore is an in-memory LegRepository.
type LegStore struct {
	mu   sync.Mutex
	legs map[uuid.UUID]*entities.Leg
	seq  int
}

// NewLegStore creates an empty leg store.
func NewLegStore() *LegStore {
	return &LegStore{legs: make(map[uuid.UUID]*entities.Leg)}
}

// Create implements LegRepository.
func (s *LegStore) Create(_ context.Context, leg *entities.Leg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := *leg
	s.seq++
	if l.CreatedAt.IsZero() {
		// Distinct timestamps keep creation order observable.
		l.CreatedAt = time.Now().UTC().Add(time.Duration(s.seq) * time.Microsecond)
	}
	s.legs[l.ID] = &l
	return nil
}

// Update implements LegRepository.
func (s *LegStore) Update(_ context.Context, leg *entities.Leg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.legs[leg.ID]
	if !ok {
		return errors.NewDomainError(errors.ErrNotFound, fmt.Sprintf("leg %s not found", leg.ID))
	}

	created := stored.CreatedAt
	l := *leg
	l.CreatedAt = created
	s.legs[l.ID] = &l
	return nil
}

// FindByJob implements LegRepository.
func (s *LegStore) FindByJob(_ context.Context, jobID uuid.UUID) ([]entities.Leg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.Leg
	for _, l := range s.legs {
		if l.JobID == jobID {
			out = append(out, *l)
		}
	}
	sortLegs(out)
	return out, nil
}

// FindByPayment implements LegRepository.
func (s *LegStore) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]entities.Leg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entities.Leg
	for _, l := range s.legs {
		if l.PaymentID == paymentID {
			out = append(out, *l)
		}
	}
	sortLegs(out)
	return out, nil
}

func sortLegs(legs []entities.Leg) {
	for i := 0; i < len(legs); i++ {
		for j := i + 1; j < len(legs); j++ {
			if legs[j].CreatedAt.Before(legs[i].CreatedAt) {
				legs[i], legs[j] = legs[j], legs[i]
			}
		}
	}
}

// Snapshot returns a copy of a stored leg for assertions.
func (s *LegStore) Snapshot(id uuid.UUID) entities.Leg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.legs[id]
}

// unitOfWork binds the fake stores into a UnitOfWork. Commit and Rollback
// only record that they ran; every mutation is applied immediately.
type unitOfWork struct {
	factory *UnitOfWorkFactory
}

func (u *unitOfWork) Payments() interfaces.ScheduledPaymentRepository { return u.factory.PaymentStore }
func (u *unitOfWork) Jobs() interfaces.JobRepository                  { return u.factory.JobStore }
func (u *unitOfWork) Legs() interfaces.LegRepository                  { return u.factory.LegStore }

func (u *unitOfWork) Commit() error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.commits++
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.factory.mu.Lock()
	defer u.factory.mu.Unlock()
	u.factory.rollbacks++
	return nil
}

// UnitOfWorkFactory hands out units of work over shared fake stores.
type UnitOfWorkFactory struct {
	PaymentStore *PaymentStore
	JobStore     *JobStore
	LegStore     *LegStore

	mu        sync.Mutex
	beginErr  error
	commits   int
	rollbacks int
}

// NewUnitOfWorkFactory creates a factory over fresh stores.
func NewUnitOfWorkFactory() *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		PaymentStore: NewPaymentStore(),
		JobStore:     NewJobStore(),
		LegStore:     NewLegStore(),
	}
}

// Begin implements UnitOfWorkFactory.
func (f *UnitOfWorkFactory) Begin(context.Context) (interfaces.UnitOfWork, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &unitOfWork{factory: f}, nil
}

// FailBegin makes every subsequent Begin return err.
func (f *UnitOfWorkFactory) FailBegin(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beginErr = err
}

// Commits returns how many units of work were committed.
func (f *UnitOfWorkFactory) Commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits
}

// Rollbacks returns how many units of work were rolled back.
func (f *UnitOfWorkFactory) Rollbacks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rollbacks
}

// Notifier records every event it is asked to deliver.
type Notifier struct {
	mu       sync.Mutex
	failWith error
	events   []dto.PaymentEvent
}

// NewNotifier creates a configured notifier that accepts every event.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify implements Notifier.
func (n *Notifier) Notify(_ context.Context, event *dto.PaymentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.events = append(n.events, *event)
	return nil
}

// IsConfigured implements Notifier.
func (n *Notifier) IsConfigured() bool { return true }

// FailWith makes every subsequent Notify return err.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}

// Events returns a copy of everything notified so far.
func (n *Notifier) Events() []dto.PaymentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dto.PaymentEvent(nil), n.events...)
}

// EventsOfKind returns notified events of one kind.
func (n *Notifier) EventsOfKind(kind dto.EventKind) []dto.PaymentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []dto.PaymentEvent
	for _, e := range n.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
