package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// CouponEvaluation is the outcome of checking a coupon against a subtotal.
type CouponEvaluation struct {
	Code     string          `json:"code"`
	Applied  bool            `json:"applied"`
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason,omitempty"`
}

// EvaluateCoupon decides whether the coupon applies to subtotal at now and
// computes the discount. A coupon that fails a check yields a zero discount
// and the reason, never an error.
func EvaluateCoupon(c *models.Coupon, subtotal decimal.Decimal, now time.Time) CouponEvaluation {
	ev := CouponEvaluation{Code: c.Code, Discount: decimal.Zero}

	switch {
	case !c.IsActive:
		ev.Reason = "coupon is not active"
	case c.StartsAt != nil && now.Before(*c.StartsAt):
		ev.Reason = "coupon is not yet valid"
	case c.ExpiresAt != nil && now.After(*c.ExpiresAt):
		ev.Reason = "coupon has expired"
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		ev.Reason = "coupon usage limit reached"
	case c.MinimumAmount.Valid && subtotal.LessThan(c.MinimumAmount.Decimal):
		ev.Reason = fmt.Sprintf("minimum order amount is %s", c.MinimumAmount.Decimal.StringFixed(2))
	}
	if ev.Reason != "" {
		return ev
	}

	switch c.Type {
	case models.CouponPercentage:
		ev.Discount = subtotal.Mul(c.Value).Div(hundred).Round(2)
		if c.MaximumDiscount.Valid && ev.Discount.GreaterThan(c.MaximumDiscount.Decimal) {
			ev.Discount = c.MaximumDiscount.Decimal
		}
	case models.CouponFixed:
		ev.Discount = c.Value
	default:
		ev.Reason = "unknown coupon type"
		return ev
	}

	ev.Applied = true
	return ev
}

// CreateCouponInput carries the fields of a new coupon.
type CreateCouponInput struct {
	Code            string
	Type            models.CouponType
	Value           decimal.Decimal
	MinimumAmount   *decimal.Decimal
	MaximumDiscount *decimal.Decimal
	UsageLimit      *int
	StartsAt        *time.Time
	ExpiresAt       *time.Time
}

// CouponService handles coupon administration and evaluation.
type CouponService struct {
	repo repositories.CouponRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewCouponService(repo repositories.CouponRepository, log *zap.Logger) *CouponService {
	return &CouponService{repo: repo, log: log, now: time.Now}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *CouponService) CreateCoupon(ctx context.Context, in CreateCouponInput) (*models.Coupon, error) {
	code := normalizeCode(in.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidCoupon)
	}
	switch in.Type {
	case models.CouponPercentage:
		if !in.Value.IsPositive() || in.Value.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: percentage must be within (0, 100]", ErrInvalidCoupon)
		}
	case models.CouponFixed:
		if !in.Value.IsPositive() {
			return nil, fmt.Errorf("%w: fixed value must be positive", ErrInvalidCoupon)
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCoupon, in.Type)
	}
	if in.StartsAt != nil && in.ExpiresAt != nil && in.ExpiresAt.Before(*in.StartsAt) {
		return nil, fmt.Errorf("%w: expires_at is before starts_at", ErrInvalidCoupon)
	}

	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, ErrCouponCodeTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:       code,
		Type:       in.Type,
		Value:      in.Value,
		UsageLimit: in.UsageLimit,
		StartsAt:   in.StartsAt,
		ExpiresAt:  in.ExpiresAt,
		IsActive:   true,
	}
	if in.MinimumAmount != nil {
		coupon.MinimumAmount = decimal.NewNullDecimal(*in.MinimumAmount)
	}
	if in.MaximumDiscount != nil {
		coupon.MaximumDiscount = decimal.NewNullDecimal(*in.MaximumDiscount)
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	s.log.Info("coupon created", zap.String("code", coupon.Code), zap.String("type", string(coupon.Type)))
	return coupon, nil
}

func (s *CouponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

// Lookup fetches a coupon by code and evaluates it. An unknown code is not an
// error: the evaluation comes back unapplied with a nil coupon.
func (s *CouponService) Lookup(ctx context.Context, code string, subtotal decimal.Decimal) (*models.Coupon, CouponEvaluation, error) {
	code = normalizeCode(code)
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, CouponEvaluation{Code: code, Discount: decimal.Zero, Reason: ErrCouponNotFound.Error()}, nil
		}
		return nil, CouponEvaluation{}, err
	}
	return coupon, EvaluateCoupon(coupon, subtotal, s.now()), nil
}

// Preview evaluates a code against an amount without redeeming it.
func (s *CouponService) Preview(ctx context.Context, code string, amount decimal.Decimal) (CouponEvaluation, error) {
	_, ev, err := s.Lookup(ctx, code, amount)
	return ev, err
}

// Redeem records one use of the coupon.
func (s *CouponService) Redeem(ctx context.Context, coupon *models.Coupon) error {
	return s.repo.IncrementUsage(ctx, coupon.ID)
}
