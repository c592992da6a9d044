package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	CategoryID  *string
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    *bool
}

// VariantInput carries the fields of a new variant.
type VariantInput struct {
	SKU   string
	Name  string
	Price decimal.Decimal
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ProductService handles business logic for the catalog: categories,
// products, variants and inventory.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		log:        log,
	}
}

// ListProducts returns active products matching the filter.
func (s *ProductService) ListProducts(ctx context.Context, f repositories.ProductFilter) (*ProductPage, error) {
	f.ActiveOnly = true
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// GetProductByID retrieves a single product with its variants and inventory.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct lists a new product owned by the calling seller.
func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (*models.Product, error) {
	if actor.Role != models.RoleSeller && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}

	product := &models.Product{
		SellerID:    actor.UserID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		IsActive:    true,
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.String("product_id", product.ID), zap.String("seller_id", product.SellerID))
	return product, nil
}

// UpdateProduct changes a product; only its seller or an admin may do so.
func (s *ProductService) UpdateProduct(ctx context.Context, actor Actor, id string, in ProductInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}

	product.CategoryID = in.CategoryID
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product with its variants, inventory and cart lines.
// Products that were ever ordered are deactivated instead so order history
// keeps its lines.
func (s *ProductService) DeleteProduct(ctx context.Context, actor Actor, id string) error {
	if _, err := s.ownedProduct(ctx, actor, id); err != nil {
		return err
	}
	archived, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if archived {
		s.log.Info("ordered product archived instead of deleted", zap.String("product_id", id))
	}
	return nil
}

// AddVariant adds a SKU to a product owned by the caller.
func (s *ProductService) AddVariant(ctx context.Context, actor Actor, productID string, in VariantInput) (*models.ProductVariant, error) {
	if _, err := s.ownedProduct(ctx, actor, productID); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	variant := &models.ProductVariant{
		ProductID: productID,
		SKU:       strings.TrimSpace(in.SKU),
		Name:      in.Name,
		Price:     in.Price,
	}
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// SetInventory sets the stock of a product, or of one of its variants.
func (s *ProductService) SetInventory(ctx context.Context, actor Actor, productID string, variantID *string, quantity int) (*models.Inventory, error) {
	product, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	if variantID != nil && product.FindVariant(*variantID) == nil {
		return nil, ErrVariantNotFound
	}
	return s.repo.SetInventory(ctx, productID, variantID, quantity)
}

func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *ProductService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// CreateCategory adds a category; the slug defaults to the slugified name.
func (s *ProductService) CreateCategory(ctx context.Context, actor Actor, name, slug, description string) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if slug == "" {
		slug = Slugify(name)
	}
	category := &models.Category{Name: name, Slug: slug, Description: description}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *ProductService) checkInput(ctx context.Context, in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if in.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *in.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, actor Actor, id string) (*models.Product, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return product, nil
}
