// Package mock is a stand-in payment provider for development and tests.
// Callbacks are plain JSON: {"payment_id": "...", "outcome": "approved"}.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"carematch-be/pkg/gateway"

	"github.com/google/uuid"
)

type Gateway struct {
	mu       sync.Mutex
	baseURL  string
	failures []error
	requests []gateway.PaymentRequest
}

func New(baseURL string) *Gateway {
	return &Gateway{baseURL: baseURL}
}

func (g *Gateway) Name() string {
	return "mock"
}

// FailNext queues errors returned by the next CreatePayment calls, in order.
func (g *Gateway) FailNext(errs ...error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = append(g.failures, errs...)
}

func (g *Gateway) Requests() []gateway.PaymentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]gateway.PaymentRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

func (g *Gateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	if len(g.failures) > 0 {
		err := g.failures[0]
		g.failures = g.failures[1:]
		return nil, err
	}

	id := "PAY-" + uuid.NewString()
	return &gateway.PaymentIntent{
		GatewayPaymentID: id,
		ApprovalURL:      fmt.Sprintf("%s/approve/%s", g.baseURL, id),
	}, nil
}

type callback struct {
	PaymentID string `json:"payment_id"`
	Outcome   string `json:"outcome"`
}

func (g *Gateway) ParseCallback(ctx context.Context, raw []byte) (*gateway.CallbackResult, error) {
	var cb callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrInvalidCallback, err)
	}
	outcome := gateway.Outcome(cb.Outcome)
	if cb.PaymentID == "" || !outcome.Valid() {
		return nil, fmt.Errorf("%w: payment_id and a known outcome are required", gateway.ErrInvalidCallback)
	}
	return &gateway.CallbackResult{
		GatewayPaymentID: cb.PaymentID,
		Outcome:          outcome,
		Raw:              raw,
	}, nil
}

// Callback builds a notification body the way the provider would send it.
func Callback(paymentID string, outcome gateway.Outcome) []byte {
	raw, _ := json.Marshal(callback{PaymentID: paymentID, Outcome: string(outcome)})
	return raw
}
