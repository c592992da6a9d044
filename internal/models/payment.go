package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentCompleted         PaymentStatus = "COMPLETED"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// Payment mirrors the state of a gateway payment intent for an order. An order
// may carry several payments.
type Payment struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null"`
	Status          PaymentStatus   `json:"status" gorm:"type:varchar(20);not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(30)"`
	TransactionID   *string         `json:"transaction_id,omitempty" gorm:"type:varchar(255);index"`
	ClientSecret    string          `json:"client_secret,omitempty" gorm:"-"`
	GatewayResponse *string         `json:"-" gorm:"type:text"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount" gorm:"type:decimal(12,2);not null"`
	RefundedAt      *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
