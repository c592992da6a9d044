package repositories

import (
	"context"
	"time"

	"marketplace/internal/models"
)

// StatusChange describes a status update together with the timestamp column it stamps.
type StatusChange struct {
	Status      models.OrderStatus
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create writes the order header and its items in one transaction.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	HasSellerItem(ctx context.Context, orderID, sellerID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) error
}
