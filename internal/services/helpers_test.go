package services_test

import (
	"context"
	"fmt"
	"testing"

	"marketplace/internal/database"
	"marketplace/internal/models"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with every table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, money(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) RetrieveIntent(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ConstructWebhookEvent(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, intentID string, amount decimal.Decimal) (string, error) {
	args := m.Called(ctx, intentID, amount)
	return args.String(0), args.Error(1)
}

// fixture wires every service against one test database.
type fixture struct {
	db        *gorm.DB
	pub       *MockPublisher
	gateway   *MockGateway
	products  *services.ProductService
	carts     *services.CartService
	addresses *services.AddressService
	coupons   *services.CouponService
	orders    *services.OrderService
	payments  *services.PaymentService
	reviews   *services.ReviewService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop()

	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	gateway := new(MockGateway)

	productRepo := repositories.NewGORMProductRepository(db)
	f := &fixture{db: db, pub: pub, gateway: gateway}
	f.products = services.NewProductService(productRepo, repositories.NewGORMCategoryRepository(db), log)
	f.carts = services.NewCartService(repositories.NewGORMCartRepository(db), productRepo, log)
	f.addresses = services.NewAddressService(repositories.NewGORMAddressRepository(db))
	f.coupons = services.NewCouponService(repositories.NewGORMCouponRepository(db), log)
	f.orders = services.NewOrderService(services.OrderDeps{
		Orders:    repositories.NewGORMOrderRepository(db),
		Users:     repositories.NewGORMUserRepository(db),
		Sequence:  repositories.NewGORMSequence(db),
		Carts:     f.carts,
		Addresses: f.addresses,
		Coupons:   f.coupons,
		Publisher: pub,
		Logger:    log,
		Currency:  "usd",
	})
	f.payments = services.NewPaymentService(repositories.NewGORMPaymentRepository(db), f.orders, gateway, pub, log)
	f.reviews = services.NewReviewService(repositories.NewGORMReviewRepository(db), productRepo)
	return f
}

func (f *fixture) user(t *testing.T, role models.Role) *models.User {
	t.Helper()
	name := "user-" + uuid.NewString()[:8]
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

// product creates an active product with a product-level inventory row.
func (f *fixture) product(t *testing.T, sellerID, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{SellerID: sellerID, Name: name, Price: money(price), IsActive: true}
	require.NoError(t, f.db.Create(p).Error)
	require.NoError(t, f.db.Create(&models.Inventory{ProductID: p.ID, Quantity: stock}).Error)
	return p
}

func (f *fixture) address(t *testing.T, userID string) *models.Address {
	t.Helper()
	a := &models.Address{UserID: userID, FullName: "Jane Doe", Line1: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"}
	require.NoError(t, f.db.Create(a).Error)
	return a
}

func (f *fixture) coupon(t *testing.T, c *models.Coupon) *models.Coupon {
	t.Helper()
	c.IsActive = true
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func actorOf(u *models.User) services.Actor {
	return services.Actor{UserID: u.ID, Role: u.Role}
}

func nullMoney(s string) decimal.NullDecimal { return decimal.NewNullDecimal(money(s)) }
