// Package midtrans adapts Midtrans Snap to the gateway interface.
package midtrans

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"carematch-be/pkg/gateway"

	"github.com/google/uuid"
	mt "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// snapAPI is the subset of *snap.Client we call.
type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *mt.Error)
}

type Gateway struct {
	serverKey string
	client    snapAPI
}

func New(serverKey string, production bool) *Gateway {
	env := mt.Sandbox
	if production {
		env = mt.Production
	}
	var client snap.Client
	client.New(serverKey, env)
	return &Gateway{serverKey: serverKey, client: &client}
}

func (g *Gateway) Name() string {
	return "midtrans"
}

type snapResult struct {
	resp *snap.Response
	err  *mt.Error
}

// CreatePayment registers a Snap transaction. The order id doubles as the
// gateway payment id and is what notifications carry back.
func (g *Gateway) CreatePayment(ctx context.Context, req gateway.PaymentRequest) (*gateway.PaymentIntent, error) {
	orderID := "PAY-" + uuid.NewString()
	// Snap takes whole units.
	gross := req.Amount.Round(0).IntPart()

	snapReq := &snap.Request{
		TransactionDetails: mt.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: req.ReturnURL,
		},
		CustomerDetail: &mt.CustomerDetails{
			FName: req.PayerName,
			Email: req.PayerEmail,
		},
		Items: &[]mt.ItemDetails{
			{
				ID:    req.ReferenceID,
				Price: gross,
				Qty:   1,
				Name:  req.Description,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	// The SDK has no context support; abandon the call when ctx ends.
	done := make(chan snapResult, 1)
	go func() {
		resp, err := g.client.CreateTransaction(snapReq)
		done <- snapResult{resp: resp, err: err}
	}()

	var res snapResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", gateway.ErrTransient, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		return nil, classify(res.err)
	}
	if res.resp == nil || res.resp.RedirectURL == "" {
		return nil, fmt.Errorf("midtrans returned no redirect url")
	}

	return &gateway.PaymentIntent{
		GatewayPaymentID: orderID,
		ApprovalURL:      res.resp.RedirectURL,
	}, nil
}

func classify(err *mt.Error) error {
	if err.StatusCode == 0 || err.StatusCode >= 500 || err.StatusCode == 429 {
		return fmt.Errorf("%w: midtrans %d: %s", gateway.ErrTransient, err.StatusCode, err.Message)
	}
	return fmt.Errorf("midtrans %d: %s", err.StatusCode, err.Message)
}

type notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key), hex encoded.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (g *Gateway) ParseCallback(ctx context.Context, raw []byte) (*gateway.CallbackResult, error) {
	var n notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", gateway.ErrInvalidCallback, err)
	}
	if n.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order_id", gateway.ErrInvalidCallback)
	}

	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, g.serverKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) != 1 {
		return nil, fmt.Errorf("%w: signature mismatch for %s", gateway.ErrInvalidCallback, n.OrderID)
	}

	return &gateway.CallbackResult{
		GatewayPaymentID: n.OrderID,
		Outcome:          mapStatus(n.TransactionStatus, n.FraudStatus),
		Raw:              raw,
	}, nil
}

func mapStatus(status, fraud string) gateway.Outcome {
	switch status {
	case "capture":
		if fraud == "challenge" {
			return gateway.OutcomePending
		}
		return gateway.OutcomeApproved
	case "settlement":
		return gateway.OutcomeApproved
	case "cancel":
		return gateway.OutcomeCancelled
	case "deny", "expire", "failure":
		return gateway.OutcomeFailed
	default:
		return gateway.OutcomePending
	}
}
