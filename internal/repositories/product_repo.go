package repositories

import (
	"context"

	"marketplace/internal/models"
)

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	Query      string
	CategoryID string
	SellerID   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository defines the interface for product, variant and inventory data access.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) (archived bool, err error)

	CreateVariant(ctx context.Context, variant *models.ProductVariant) error
	SetInventory(ctx context.Context, productID string, variantID *string, quantity int) (*models.Inventory, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
