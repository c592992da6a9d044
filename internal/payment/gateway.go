// Package payment bridges the store to an external card payment gateway.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrGatewayUnavailable is returned by Unavailable for every call and wrapped
// around SDK failures by gateway implementations.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Intent status values reported by RetrieveIntent.
const (
	IntentSucceeded             = "succeeded"
	IntentCanceled              = "canceled"
	IntentProcessing            = "processing"
	IntentRequiresPaymentMethod = "requires_payment_method"
)

// Webhook event types the store reacts to.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type WebhookEvent struct {
	ID       string
	Type     string
	IntentID string
}

// Gateway is the capability the payment flow depends on. Callers always get a
// Gateway; when no provider is configured it is Unavailable.
type Gateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (string, error)
	ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
	CreateRefund(ctx context.Context, intentID string, amount decimal.Decimal) (string, error)
}

// Unavailable is the Gateway used when no provider is configured.
type Unavailable struct{}

func (Unavailable) CreateIntent(context.Context, decimal.Decimal, string, map[string]string) (*Intent, error) {
	return nil, ErrGatewayUnavailable
}

func (Unavailable) RetrieveIntent(context.Context, string) (string, error) {
	return "", ErrGatewayUnavailable
}

func (Unavailable) ConstructWebhookEvent([]byte, string) (*WebhookEvent, error) {
	return nil, ErrGatewayUnavailable
}

func (Unavailable) CreateRefund(context.Context, string, decimal.Decimal) (string, error) {
	return "", ErrGatewayUnavailable
}

// ToMinorUnits converts an amount to integer cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
