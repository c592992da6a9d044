package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// Coupon is a discount code with an optional activation window, usage cap and
// minimum order amount.
type Coupon struct {
	ID              string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code            string              `json:"code" gorm:"uniqueIndex;type:varchar(50)"`
	Type            CouponType          `json:"type" gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal     `json:"value" gorm:"type:decimal(12,2);not null"`
	MinimumAmount   decimal.NullDecimal `json:"minimum_amount" gorm:"type:decimal(12,2)"`
	MaximumDiscount decimal.NullDecimal `json:"maximum_discount" gorm:"type:decimal(12,2)"`
	UsageLimit      *int                `json:"usage_limit,omitempty"`
	UsedCount       int                 `json:"used_count" gorm:"not null"`
	StartsAt        *time.Time          `json:"starts_at,omitempty"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	IsActive        bool                `json:"is_active" gorm:"not null"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
