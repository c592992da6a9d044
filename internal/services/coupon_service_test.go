package services_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestEvaluateCoupon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		coupon   models.Coupon
		subtotal string
		applied  bool
		discount string
	}{
		{
			name:     "percentage clamped to maximum discount",
			coupon:   models.Coupon{Type: models.CouponPercentage, Value: money("10"), MaximumDiscount: decimal.NewNullDecimal(money("30")), IsActive: true},
			subtotal: "500",
			applied:  true,
			discount: "30",
		},
		{
			name:     "percentage under maximum",
			coupon:   models.Coupon{Type: models.CouponPercentage, Value: money("10"), MaximumDiscount: decimal.NewNullDecimal(money("30")), IsActive: true},
			subtotal: "120",
			applied:  true,
			discount: "12",
		},
		{
			name:     "fixed",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true},
			subtotal: "55",
			applied:  true,
			discount: "20",
		},
		{
			name:     "inactive",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20")},
			subtotal: "55",
		},
		{
			name:     "not started",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true, StartsAt: timePtr(now.Add(time.Hour))},
			subtotal: "55",
		},
		{
			name:     "expired",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true, ExpiresAt: timePtr(now.Add(-time.Hour))},
			subtotal: "55",
		},
		{
			name:     "inside window",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("5"), IsActive: true, StartsAt: timePtr(now.Add(-time.Hour)), ExpiresAt: timePtr(now.Add(time.Hour))},
			subtotal: "55",
			applied:  true,
			discount: "5",
		},
		{
			name:     "usage exhausted",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true, UsageLimit: intPtr(3), UsedCount: 3},
			subtotal: "55",
		},
		{
			name:     "below minimum",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true, MinimumAmount: decimal.NewNullDecimal(money("100"))},
			subtotal: "55",
		},
		{
			name:     "exactly minimum",
			coupon:   models.Coupon{Type: models.CouponFixed, Value: money("20"), IsActive: true, MinimumAmount: decimal.NewNullDecimal(money("55"))},
			subtotal: "55",
			applied:  true,
			discount: "20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := services.EvaluateCoupon(&tt.coupon, money(tt.subtotal), now)
			assert.Equal(t, tt.applied, ev.Applied)
			if tt.applied {
				assertMoney(t, tt.discount, ev.Discount)
				assert.Empty(t, ev.Reason)
			} else {
				assert.True(t, ev.Discount.IsZero())
				assert.NotEmpty(t, ev.Reason)
			}
		})
	}
}

func TestCouponService_CreateCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.coupons.CreateCoupon(ctx, services.CreateCouponInput{
		Code:  " save20 ",
		Type:  models.CouponFixed,
		Value: money("20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", c.Code)
	assert.True(t, c.IsActive)

	_, err = f.coupons.CreateCoupon(ctx, services.CreateCouponInput{Code: "SAVE20", Type: models.CouponFixed, Value: money("5")})
	assert.ErrorIs(t, err, services.ErrCouponCodeTaken)

	_, err = f.coupons.CreateCoupon(ctx, services.CreateCouponInput{Code: "HUGE", Type: models.CouponPercentage, Value: money("150")})
	assert.ErrorIs(t, err, services.ErrInvalidCoupon)

	_, err = f.coupons.CreateCoupon(ctx, services.CreateCouponInput{Code: "BOGUS", Type: "bogus", Value: money("5")})
	assert.ErrorIs(t, err, services.ErrValidation)

	list, err := f.coupons.ListCoupons(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCouponService_Preview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.coupon(t, &models.Coupon{Code: "TENOFF", Type: models.CouponPercentage, Value: money("10"), MaximumDiscount: decimal.NewNullDecimal(money("30"))})

	ev, err := f.coupons.Preview(ctx, "tenoff", money("500"))
	require.NoError(t, err)
	assert.True(t, ev.Applied)
	assertMoney(t, "30", ev.Discount)

	ev, err = f.coupons.Preview(ctx, "MISSING", money("500"))
	require.NoError(t, err)
	assert.False(t, ev.Applied)
	assert.Equal(t, "coupon not found", ev.Reason)
}
