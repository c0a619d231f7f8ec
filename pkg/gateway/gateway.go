// Package gateway abstracts the external payment provider. Exactly one
// provider is configured per deployment.
package gateway

import (
	"context"
	"errors"
	"net"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeApproved, OutcomeCancelled, OutcomeFailed, OutcomePending:
		return true
	}
	return false
}

var (
	// ErrTransient marks failures worth one retry (timeouts, 5xx, resets).
	ErrTransient = errors.New("transient gateway failure")
	// ErrInvalidCallback covers malformed or unauthenticated notifications.
	ErrInvalidCallback = errors.New("invalid gateway callback")
)

type PaymentRequest struct {
	ReferenceID string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
	PayerEmail  string
	PayerName   string
}

type PaymentIntent struct {
	GatewayPaymentID string
	ApprovalURL      string
}

type CallbackResult struct {
	GatewayPaymentID string
	Outcome          Outcome
	Raw              []byte
}

type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentIntent, error)
	// ParseCallback authenticates and decodes an asynchronous notification.
	ParseCallback(ctx context.Context, raw []byte) (*CallbackResult, error)
}

func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
