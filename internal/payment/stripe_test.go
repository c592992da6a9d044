package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(5940), ToMinorUnits(decimal.RequireFromString("59.40")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(0), ToMinorUnits(decimal.Zero))
}

func TestStripeParamsCarryContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")

	ip := intentParams(ctx, decimal.RequireFromString("12.34"), "USD", map[string]string{"order_id": "o-1"})
	assert.Equal(t, ctx, ip.Context)
	assert.Equal(t, int64(1234), *ip.Amount)
	assert.Equal(t, "usd", *ip.Currency)
	assert.Equal(t, "o-1", ip.Metadata["order_id"])

	rp := refundParams(ctx, "pi_1", decimal.RequireFromString("5"))
	assert.Equal(t, ctx, rp.Context)
	assert.Equal(t, "pi_1", *rp.PaymentIntent)
	assert.Equal(t, int64(500), *rp.Amount)
}

func TestUnavailable(t *testing.T) {
	var g Gateway = Unavailable{}
	_, err := g.CreateIntent(context.Background(), decimal.NewFromInt(1), "usd", nil)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	_, err = g.ConstructWebhookEvent(nil, "")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
