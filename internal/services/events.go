package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Routing keys of the events published by the services.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentCompleted   = "payment.completed"
)

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type OrderItemEvent struct {
	ProductID string          `json:"product_id"`
	VariantID *string         `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

type OrderCreatedEvent struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      string           `json:"user_id"`
	Email       string           `json:"email,omitempty"`
	Items       []OrderItemEvent `json:"items"`
	Total       decimal.Decimal  `json:"total"`
	Currency    string           `json:"currency"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
}

type PaymentCompletedEvent struct {
	PaymentID string          `json:"payment_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// publishEvent is best effort: a broker failure never fails the request.
func publishEvent(ctx context.Context, pub EventPublisher, log *zap.Logger, key string, payload any) {
	if pub == nil {
		log.Debug("event publisher not configured, skipping", zap.String("event", key))
		return
	}
	if err := pub.Publish(ctx, key, payload); err != nil {
		log.Warn("failed to publish event", zap.String("event", key), zap.Error(err))
	}
}
