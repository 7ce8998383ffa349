package errors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Class buckets every failure the engine can produce. Workers consult the
// class, never the error text, to decide whether an attempt is retried.
type Class string

// Failure classes.
const (
	ClassInput     Class = "input"
	ClassFunds     Class = "funds"
	ClassRoute     Class = "route"
	ClassTimeout   Class = "timeout"
	ClassTransient Class = "transient"
)

// InsufficientFundsError reports that no funding chain holds enough balance
// for the payment. Chain names the best candidate considered.
type InsufficientFundsError struct {
	Chain       string
	TokenSymbol string
	Needed      decimal.Decimal
	Available   decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: need %s %s, have %s",
		e.Chain, e.Needed, e.TokenSymbol, e.Available)
}

// UnsupportedRouteError reports that no bridge route exists between the
// source and target chains for the token.
type UnsupportedRouteError struct {
	FromChain   string
	ToChain     string
	TokenSymbol string
}

// Error implements the error interface
func (e *UnsupportedRouteError) Error() string {
	return fmt.Sprintf("no route for %s from %s to %s",
		e.TokenSymbol, e.FromChain, e.ToChain)
}

// BridgeTimeoutError reports that bridged funds did not arrive on the
// target chain within the wait budget.
type BridgeTimeoutError struct {
	Provider string
	TxHandle string
	Waited   time.Duration
}

// Error implements the error interface
func (e *BridgeTimeoutError) Error() string {
	return fmt.Sprintf("bridge transfer %s via %s not arrived after %s",
		e.TxHandle, e.Provider, e.Waited)
}

// PaymentExecutionFailedError reports that the target chain payment did not
// go through. Transient distinguishes executor or chain hiccups, which may
// be retried, from deterministic rejections and reverts, which may not.
type PaymentExecutionFailedError struct {
	Chain     string
	TxHandle  string
	Reason    string
	Transient bool
}

// Error implements the error interface
func (e *PaymentExecutionFailedError) Error() string {
	if e.TxHandle != "" {
		return fmt.Sprintf("payment execution failed on %s (tx %s): %s",
			e.Chain, e.TxHandle, e.Reason)
	}
	return fmt.Sprintf("payment execution failed on %s: %s", e.Chain, e.Reason)
}

// ConfirmationStaleError reports that a watched transaction never reached
// its required confirmations within the watch deadline.
type ConfirmationStaleError struct {
	Chain    string
	TxHandle string
	Waited   time.Duration
}

// Error implements the error interface
func (e *ConfirmationStaleError) Error() string {
	return fmt.Sprintf("transaction %s on %s stale after %s",
		e.TxHandle, e.Chain, e.Waited)
}

// RecipientUnresolvedError reports that the directory has no address for a
// recipient handle.
type RecipientUnresolvedError struct {
	Recipient string
}

// Error implements the error interface
func (e *RecipientUnresolvedError) Error() string {
	return fmt.Sprintf("recipient %q could not be resolved", e.Recipient)
}

// AlreadyInProgressError reports a cancel attempt on a payment that has
// already been claimed for execution.
type AlreadyInProgressError struct {
	PaymentID string
	Status    string
}

// Error implements the error interface
func (e *AlreadyInProgressError) Error() string {
	return fmt.Sprintf("payment %s is already %s and cannot be cancelled",
		e.PaymentID, e.Status)
}

// Is implements errors.Is interface
func (e *AlreadyInProgressError) Is(target error) bool {
	return errors.Is(target, ErrConflict)
}

// Classify maps an error to its failure class. Unknown errors classify as
// transient so the retry budget, not the classifier, bounds them.
func Classify(err error) Class {
	var (
		validationErr *ValidationError
		recipientErr  *RecipientUnresolvedError
		inProgressErr *AlreadyInProgressError
		fundsErr      *InsufficientFundsError
		routeErr      *UnsupportedRouteError
		bridgeTimeout *BridgeTimeoutError
		staleErr      *ConfirmationStaleError
		executionErr  *PaymentExecutionFailedError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &recipientErr),
		errors.As(err, &inProgressErr),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized):
		return ClassInput
	case errors.As(err, &fundsErr):
		return ClassFunds
	case errors.As(err, &routeErr):
		return ClassRoute
	case errors.As(err, &bridgeTimeout), errors.As(err, &staleErr):
		return ClassTimeout
	case errors.As(err, &executionErr):
		if executionErr.Transient {
			return ClassTransient
		}
		return ClassInput
	default:
		return ClassTransient
	}
}

// IsRetryable reports whether a failed attempt may be re-executed. Only
// transient failures are; input, funds, route, and timeout failures would
// fail identically on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err) == ClassTransient
}
