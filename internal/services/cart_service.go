package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartLine is a cart item with its effective unit price resolved.
type CartLine struct {
	models.CartItem
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available int             `json:"available"`
}

// Cart is the priced view of a user's cart.
type Cart struct {
	Lines     []CartLine      `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"item_count"`
}

// effectivePrice is the variant price when the line has a variant, else the product price.
func effectivePrice(item *models.CartItem) decimal.Decimal {
	if item.Variant != nil {
		return item.Variant.Price
	}
	if item.Product != nil {
		return item.Product.Price
	}
	return decimal.Zero
}

// CartService handles business logic for shopping carts.
type CartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	log      *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

// GetCart loads the user's lines and computes subtotal and item count.
func (s *CartService) GetCart(ctx context.Context, userID string) (*Cart, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart := &Cart{Lines: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for i := range items {
		item := items[i]
		price := effectivePrice(&item)
		line := CartLine{
			CartItem:  item,
			UnitPrice: price,
			LineTotal: price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Product != nil {
			line.Available = item.Product.StockFor(item.VariantID)
		}
		cart.Lines = append(cart.Lines, line)
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal)
		cart.ItemCount += item.Quantity
	}
	return cart, nil
}

// AddItem puts quantity units of a product (or one of its variants) into the
// cart, merging with an existing line for the same pair.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, variantID *string, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, product.Name)
	}
	if variantID != nil && product.FindVariant(*variantID) == nil {
		return nil, ErrVariantNotFound
	}

	line, err := s.carts.FindLine(ctx, userID, productID, variantID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	existing := 0
	if line != nil {
		existing = line.Quantity
	}

	// Stock is read here and written below without a lock; concurrent adds can overshoot.
	if available := product.StockFor(variantID); existing+quantity > available {
		return nil, fmt.Errorf("%w: %s has %d available", ErrInsufficientInventory, product.Name, available)
	}

	if line == nil {
		line = &models.CartItem{UserID: userID, ProductID: productID, VariantID: variantID}
	}
	line.Quantity = existing + quantity
	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateItem sets the quantity of one of the user's lines.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	line, err := s.ownedLine(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, line.ProductID)
		}
		return nil, err
	}
	if available := product.StockFor(line.VariantID); quantity > available {
		return nil, fmt.Errorf("%w: %s has %d available", ErrInsufficientInventory, product.Name, available)
	}

	line.Quantity = quantity
	if err := s.carts.Save(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveItem deletes one of the user's lines.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.ownedLine(ctx, userID, itemID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, itemID)
}

// ClearCart deletes every line of the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	return s.carts.ClearByUser(ctx, userID)
}

// ownedLine hides lines of other users behind ErrCartItemNotFound.
func (s *CartService) ownedLine(ctx context.Context, userID, itemID string) (*models.CartItem, error) {
	line, err := s.carts.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if line.UserID != userID {
		return nil, ErrCartItemNotFound
	}
	return line, nil
}
