package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Rank orders the fulfilment statuses. CANCELLED sits outside the sequence and ranks -1.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderProcessing:
		return 1
	case OrderShipped:
		return 2
	case OrderDelivered:
		return 3
	}
	return -1
}

// Order represents a customer order. Amounts are fixed at checkout; only the
// status and its timestamps change afterwards.
type Order struct {
	ID                string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber       string          `json:"order_number" gorm:"uniqueIndex;type:varchar(40)"`
	UserID            string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	BillingAddressID  string          `json:"billing_address_id" gorm:"type:varchar(36)"`
	ShippingAddressID string          `json:"shipping_address_id" gorm:"type:varchar(36)"`
	BillingAddress    *Address        `json:"billing_address,omitempty" gorm:"foreignKey:BillingAddressID"`
	ShippingAddress   *Address        `json:"shipping_address,omitempty" gorm:"foreignKey:ShippingAddressID"`
	Subtotal          decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	TaxAmount         decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2);not null"`
	ShippingAmount    decimal.Decimal `json:"shipping_amount" gorm:"type:decimal(12,2);not null"`
	DiscountAmount    decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status            OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null"`
	Currency          string          `json:"currency" gorm:"type:varchar(3);not null"`
	CouponCode        *string         `json:"coupon_code,omitempty" gorm:"type:varchar(50)"`
	Notes             *string         `json:"notes,omitempty" gorm:"type:text"`
	Items             []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ShippedAt         *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
}

// OrderItem is the immutable snapshot of one cart line at purchase time.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	VariantID *string         `json:"variant_id,omitempty" gorm:"type:varchar(36)"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"` // Price at the time of order
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// Sequence is a named monotonically increasing counter.
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value int64  `gorm:"not null"`
}
