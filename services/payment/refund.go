package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
)

// Refunder reverses an online payment.
type Refunder interface {
	// Refund refunds the full amount captured by paymentIntentID and returns
	// the refund id.
	Refund(ctx context.Context, paymentIntentID, reason string) (string, error)
}

// StripeRefunder issues refunds through Stripe. stripe.Key must be set.
type StripeRefunder struct{}

func NewStripeRefunder() *StripeRefunder {
	return &StripeRefunder{}
}

func (StripeRefunder) Refund(ctx context.Context, paymentIntentID, reason string) (string, error) {
	if stripe.Key == "" {
		return "", fmt.Errorf("stripe key not configured")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.AddMetadata("reason", reason)

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund for %s failed: %w", paymentIntentID, err)
	}
	return r.ID, nil
}
