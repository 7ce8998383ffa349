// Package tracker follows submitted transactions until they confirm, fail,
// or go stale. Watches poll the chain (or a bridge provider probe), fire
// milestone callbacks as confirmations accumulate, and always resolve to a
// terminal outcome within their deadline.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/errors"
	"crosspay-engine/domain/interfaces"
	"crosspay-engine/infrastructure/metrics"
)

// Default tracker tuning.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxWait      = 10 * time.Minute
)

// DefaultMilestones are the confirmation depths reported to watchers as a
// transaction settles.
var DefaultMilestones = []uint64{1, 3, 12}

// Config holds tracker tuning.
type Config struct {
	PollInterval time.Duration
	MaxWait      time.Duration

	// Milestones must be ascending. Depths above a watch's required
	// confirmations are not reported.
	Milestones []uint64
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxWait <= 0 {
		c.MaxWait = DefaultMaxWait
	}
	if len(c.Milestones) == 0 {
		c.Milestones = DefaultMilestones
	}
	return c
}

type watchKey struct {
	chain  string
	handle entities.TxHandle
}

// confirmationTracker implements the ConfirmationTracker interface.
type confirmationTracker struct {
	cfg     Config
	reader  interfaces.ChainReader
	metrics *metrics.Metrics
	logger  interfaces.Logger

	mu     sync.Mutex
	active map[watchKey]struct{}
}

// NewConfirmationTracker creates a new confirmation tracker over a chain
// reader.
func NewConfirmationTracker(
	cfg Config,
	reader interfaces.ChainReader,
	m *metrics.Metrics,
	logger interfaces.Logger,
) interfaces.ConfirmationTracker {
	return &confirmationTracker{
		cfg:     cfg.withDefaults(),
		reader:  reader,
		metrics: m,
		logger:  logger,
		active:  make(map[watchKey]struct{}),
	}
}

// Watch polls the chain until the transaction reaches its required
// confirmations, reverts, or the deadline passes.
func (t *confirmationTracker) Watch(
	ctx context.Context,
	params interfaces.WatchParams,
) (*interfaces.WatchOutcome, error) {
	if params.TxHandle == "" {
		return nil, errors.NewDomainError(errors.ErrInvalidInput, "tx handle is required")
	}
	if err := t.register(params.Chain, params.TxHandle); err != nil {
		return nil, err
	}
	defer t.unregister(params.Chain, params.TxHandle)

	required := params.RequiredConfirmations
	if required == 0 {
		required = 1
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = t.cfg.MaxWait
	}

	watchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := t.logger.WithFields(map[string]interface{}{
		"chain":    params.Chain,
		"tx":       params.TxHandle.String(),
		"required": required,
	})
	log.Info("confirmation watch started", "timeout", timeout.String())

	start := time.Now()
	milestones := t.milestonesFor(required)
	nextMilestone := 0
	var confirmations uint64

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := t.reader.TxStatus(watchCtx, params.Chain, params.TxHandle)
		switch {
		case err != nil:
			// A failed read is skipped, not terminal; the deadline bounds
			// how long a flaky endpoint can stall the watch.
			if watchCtx.Err() == nil {
				log.Warn("confirmation poll failed", "error", err)
			}

		case !status.Found:
			// Not visible yet. Keep polling.

		case !status.Succeeded:
			return t.terminal(log, entities.WatchFailed, status.Confirmations, start, "transaction reverted"), nil

		default:
			confirmations = status.Confirmations
			for nextMilestone < len(milestones) && confirmations >= milestones[nextMilestone] {
				if params.OnMilestone != nil {
					params.OnMilestone(milestones[nextMilestone])
				}
				nextMilestone++
			}
			if confirmations >= required {
				return t.terminal(log, entities.WatchConfirmed, confirmations, start, ""), nil
			}
		}

		select {
		case <-watchCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason := fmt.Sprintf("no terminal state after %s", timeout)
			return t.terminal(log, entities.WatchStale, confirmations, start, reason), nil
		case <-ticker.C:
		}
	}
}

// WatchArrival polls a bridge provider probe until the transfer arrives,
// fails, or the deadline passes.
func (t *confirmationTracker) WatchArrival(
	ctx context.Context,
	params interfaces.ArrivalParams,
) (*interfaces.WatchOutcome, error) {
	if params.TxHandle == "" {
		return nil, errors.NewDomainError(errors.ErrInvalidInput, "tx handle is required")
	}
	if params.Probe == nil {
		return nil, errors.NewDomainError(errors.ErrInvalidInput, "arrival probe is required")
	}
	if err := t.register(params.Chain, params.TxHandle); err != nil {
		return nil, err
	}
	defer t.unregister(params.Chain, params.TxHandle)

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = t.cfg.MaxWait
	}

	watchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := t.logger.WithFields(map[string]interface{}{
		"chain": params.Chain,
		"tx":    params.TxHandle.String(),
	})
	log.Info("arrival watch started", "timeout", timeout.String())

	start := time.Now()
	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		state, err := params.Probe(watchCtx)
		switch {
		case err != nil:
			if watchCtx.Err() == nil {
				log.Warn("arrival poll failed", "error", err)
			}

		case state == entities.BridgeTransferFailed:
			return t.terminal(log, entities.WatchFailed, 0, start, "bridge transfer failed"), nil

		case state == entities.BridgeTransferArrived:
			return t.terminal(log, entities.WatchConfirmed, 0, start, ""), nil
		}

		select {
		case <-watchCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason := fmt.Sprintf("no terminal state after %s", timeout)
			return t.terminal(log, entities.WatchStale, 0, start, reason), nil
		case <-ticker.C:
		}
	}
}

// ActiveWatches reports how many watches are currently live.
func (t *confirmationTracker) ActiveWatches() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *confirmationTracker) register(chain string, handle entities.TxHandle) error {
	key := watchKey{chain: chain, handle: handle}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, live := t.active[key]; live {
		return errors.NewDomainError(errors.ErrConflict,
			fmt.Sprintf("transaction %s on %s is already being watched", handle, chain))
	}
	t.active[key] = struct{}{}
	t.metrics.SetActiveWatches(len(t.active))
	return nil
}

func (t *confirmationTracker) unregister(chain string, handle entities.TxHandle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, watchKey{chain: chain, handle: handle})
	t.metrics.SetActiveWatches(len(t.active))
}

// milestonesFor clips the configured milestones to the watch's required
// depth, always ending on the required depth itself.
func (t *confirmationTracker) milestonesFor(required uint64) []uint64 {
	var out []uint64
	for _, m := range t.cfg.Milestones {
		if m <= required {
			out = append(out, m)
		}
	}
	if len(out) == 0 || out[len(out)-1] != required {
		out = append(out, required)
	}
	return out
}

func (t *confirmationTracker) terminal(
	log interfaces.Logger,
	state entities.WatchState,
	confirmations uint64,
	start time.Time,
	reason string,
) *interfaces.WatchOutcome {
	outcome := &interfaces.WatchOutcome{
		State:         state,
		Confirmations: confirmations,
		Waited:        time.Since(start),
		Reason:        reason,
	}
	t.metrics.IncWatchOutcome(string(state))

	switch state {
	case entities.WatchConfirmed:
		log.Info("watch confirmed", "confirmations", confirmations, "waited", outcome.Waited.String())
	case entities.WatchFailed:
		log.Error("watch failed", "reason", reason, "waited", outcome.Waited.String())
	default:
		log.Warn("watch went stale", "waited", outcome.Waited.String())
	}
	return outcome
}
