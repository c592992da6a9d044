package services_test

import (
	"context"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, f repositories.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockProductRepository) SetInventory(ctx context.Context, productID string, variantID *string, quantity int) (*models.Inventory, error) {
	args := m.Called(ctx, productID, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inventory), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func newProductService() (*services.ProductService, *MockProductRepository, *MockCategoryRepository) {
	repo := new(MockProductRepository)
	cats := new(MockCategoryRepository)
	return services.NewProductService(repo, cats, zap.NewNop()), repo, cats
}

var (
	sellerA = services.Actor{UserID: "seller-a", Role: models.RoleSeller}
	sellerB = services.Actor{UserID: "seller-b", Role: models.RoleSeller}
)

func TestProductService_ListProductsForcesActive(t *testing.T) {
	service, repo, _ := newProductService()

	expected := []models.Product{
		{ID: "1", Name: "Product A", Price: money("10"), IsActive: true},
		{ID: "2", Name: "Product B", Price: money("20"), IsActive: true},
	}
	repo.On("List", mock.Anything, repositories.ProductFilter{Query: "prod", ActiveOnly: true, Limit: 20}).
		Return(expected, int64(2), nil).Once()

	page, err := service.ListProducts(context.Background(), repositories.ProductFilter{Query: "prod", Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, expected, page.Products)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 0, page.Offset)
	repo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	service, repo, _ := newProductService()
	repo.On("GetByID", mock.Anything, "1").Return(&models.Product{ID: "1", Name: "Product A"}, nil).Once()
	repo.On("GetByID", mock.Anything, "nope").Return(nil, notFound("product")).Once()

	product, err := service.GetProductByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Product A", product.Name)

	_, err = service.GetProductByID(context.Background(), "nope")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	service, repo, cats := newProductService()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.SellerID == sellerA.UserID && p.IsActive
	})).Return(nil).Once()

	product, err := service.CreateProduct(ctx, sellerA, services.ProductInput{Name: "Mug", Price: money("9.99")})
	require.NoError(t, err)
	assert.Equal(t, "seller-a", product.SellerID)

	customer := services.Actor{UserID: "c-1", Role: models.RoleCustomer}
	_, err = service.CreateProduct(ctx, customer, services.ProductInput{Name: "Mug", Price: money("9.99")})
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = service.CreateProduct(ctx, sellerA, services.ProductInput{Name: " ", Price: money("1")})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.CreateProduct(ctx, sellerA, services.ProductInput{Name: "Mug", Price: money("-1")})
	assert.ErrorIs(t, err, services.ErrValidation)

	missing := "missing-category"
	cats.On("GetByID", mock.Anything, missing).Return(nil, notFound("category")).Once()
	_, err = service.CreateProduct(ctx, sellerA, services.ProductInput{Name: "Mug", Price: money("1"), CategoryID: &missing})
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)

	repo.AssertExpectations(t)
	cats.AssertExpectations(t)
}

func TestProductService_Ownership(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newProductService()

	owned := &models.Product{ID: "p-1", SellerID: sellerA.UserID, Name: "Mug", Price: money("5"), IsActive: true}
	repo.On("GetByID", mock.Anything, "p-1").Return(owned, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	repo.On("Delete", mock.Anything, "p-1").Return(false, nil).Once()

	_, err := service.UpdateProduct(ctx, sellerB, "p-1", services.ProductInput{Name: "Stolen", Price: money("1")})
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.ErrorIs(t, service.DeleteProduct(ctx, sellerB, "p-1"), services.ErrForbidden)

	updated, err := service.UpdateProduct(ctx, sellerA, "p-1", services.ProductInput{Name: "Big Mug", Price: money("7")})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assertMoney(t, "7", updated.Price)

	assert.NoError(t, service.DeleteProduct(ctx, admin, "p-1"))
	repo.AssertExpectations(t)
}

func TestProductService_SetInventory(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newProductService()

	product := &models.Product{
		ID:       "p-1",
		SellerID: sellerA.UserID,
		Variants: []models.ProductVariant{{ID: "v-1", ProductID: "p-1", SKU: "MUG-L"}},
	}
	repo.On("GetByID", mock.Anything, "p-1").Return(product, nil)

	variant := "v-1"
	repo.On("SetInventory", mock.Anything, "p-1", &variant, 12).
		Return(&models.Inventory{ProductID: "p-1", VariantID: &variant, Quantity: 12}, nil).Once()

	inv, err := service.SetInventory(ctx, sellerA, "p-1", &variant, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, inv.Quantity)

	_, err = service.SetInventory(ctx, sellerA, "p-1", nil, -1)
	assert.ErrorIs(t, err, services.ErrValidation)

	unknown := "v-9"
	_, err = service.SetInventory(ctx, sellerA, "p-1", &unknown, 1)
	assert.ErrorIs(t, err, services.ErrVariantNotFound)

	_, err = service.SetInventory(ctx, sellerB, "p-1", nil, 1)
	assert.ErrorIs(t, err, services.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestProductService_CreateCategory(t *testing.T) {
	ctx := context.Background()
	service, _, cats := newProductService()

	cats.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Category) bool {
		return c.Slug == "home-garden"
	})).Return(nil).Once()

	c, err := service.CreateCategory(ctx, admin, "Home & Garden", "", "")
	require.NoError(t, err)
	assert.Equal(t, "home-garden", c.Slug)

	_, err = service.CreateCategory(ctx, sellerA, "Toys", "", "")
	assert.ErrorIs(t, err, services.ErrForbidden)
	cats.AssertExpectations(t)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Electronics":      "electronics",
		"  Home & Garden ": "home-garden",
		"Kids' Toys 2026":  "kids-toys-2026",
	}
	for in, want := range tests {
		assert.Equal(t, want, services.Slugify(in), in)
	}
}

func TestProductService_DeleteOrderedProductArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := fillCart(t, f)

	res, err := f.orders.CreateOrder(ctx, s.buyer.ID, s.input())
	require.NoError(t, err)

	var mug models.Product
	require.NoError(t, f.db.First(&mug, "name = ?", "Mug").Error)

	// another buyer still holds the product in their cart
	other := f.user(t, models.RoleCustomer)
	_, err = f.carts.AddItem(ctx, other.ID, mug.ID, nil, 1)
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(ctx, actorOf(s.seller), mug.ID))

	var kept models.Product
	require.NoError(t, f.db.First(&kept, "id = ?", mug.ID).Error, "ordered product keeps its row")
	assert.False(t, kept.IsActive)

	var lines int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("product_id = ?", mug.ID).Count(&lines).Error)
	assert.Zero(t, lines)

	orders, err := f.orders.ListSellerOrders(ctx, s.seller.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, res.Order.ID, orders[0].ID)
	assert.Len(t, orders[0].Items, 2)

	_, err = f.carts.AddItem(ctx, other.ID, mug.ID, nil, 1)
	assert.ErrorIs(t, err, services.ErrProductUnavailable)

	// a product nobody ordered is removed outright
	lamp := f.product(t, s.seller.ID, "Lamp", "12", 3)
	require.NoError(t, f.products.DeleteProduct(ctx, actorOf(s.seller), lamp.ID))
	assert.ErrorIs(t, f.db.First(&models.Product{}, "id = ?", lamp.ID).Error, gorm.ErrRecordNotFound)
}
