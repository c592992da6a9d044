package services

import (
	"errors"
	"fmt"

	"marketplace/internal/payment"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrVariantNotFound  = fmt.Errorf("variant %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("review %w", ErrNotFound)
	ErrAddressNotFound  = fmt.Errorf("address %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
	ErrCouponNotFound   = fmt.Errorf("coupon %w", ErrNotFound)
	ErrPaymentNotFound  = fmt.Errorf("payment %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)

	ErrValidation            = errors.New("validation failed")
	ErrEmptyCart             = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrProductUnavailable    = fmt.Errorf("%w: product unavailable", ErrValidation)
	ErrInvalidStatus         = fmt.Errorf("%w: invalid order status", ErrValidation)
	ErrInsufficientInventory = fmt.Errorf("%w: insufficient inventory", ErrValidation)
	ErrInvalidRating         = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrInvalidQuantity       = fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	ErrInvalidAmount         = fmt.Errorf("%w: amount must be > 0", ErrValidation)
	ErrInvalidCoupon         = fmt.Errorf("%w: invalid coupon definition", ErrValidation)
	ErrOrderNotPending       = fmt.Errorf("%w: order is not pending", ErrValidation)
	ErrPaymentNotRefundable  = fmt.Errorf("%w: payment cannot be refunded", ErrValidation)
	ErrRefundExceedsPayment  = fmt.Errorf("%w: refund exceeds payment amount", ErrValidation)
	ErrNoGatewayTransaction  = fmt.Errorf("%w: payment has no gateway transaction", ErrValidation)
	ErrInvalidWebhook        = fmt.Errorf("%w: invalid webhook", ErrValidation)

	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrConflict              = errors.New("conflict")
	ErrAlreadyCancelled      = fmt.Errorf("%w: order already cancelled", ErrConflict)
	ErrCannotCancelDelivered = fmt.Errorf("%w: delivered orders cannot be cancelled", ErrConflict)
	ErrInvalidTransition     = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrDuplicateReview       = fmt.Errorf("%w: product already reviewed", ErrConflict)
	ErrCouponCodeTaken       = fmt.Errorf("%w: coupon code already exists", ErrConflict)
	ErrUsernameTaken         = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrEmailTaken            = fmt.Errorf("%w: email already registered", ErrConflict)

	ErrGatewayUnavailable = payment.ErrGatewayUnavailable
)
