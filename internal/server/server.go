// Package server assembles the HTTP application from its dependencies.
package server

import (
	"time"

	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/payment"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the external resources the application is built from. Gateway,
// Publisher and Sequence are optional.
type Deps struct {
	DB        *gorm.DB
	Logger    *zap.Logger
	JWTSecret string
	Currency  string
	Gateway   payment.Gateway
	Publisher services.EventPublisher
	Sequence  repositories.Sequence
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// New wires repositories, services and handlers into a Fiber app.
func New(d Deps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gateway := d.Gateway
	if gateway == nil {
		gateway = payment.Unavailable{}
	}
	sequence := d.Sequence
	if sequence == nil {
		sequence = repositories.NewGORMSequence(d.DB)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(d.DB)
	cartRepo := repositories.NewGORMCartRepository(d.DB)
	addressRepo := repositories.NewGORMAddressRepository(d.DB)
	couponRepo := repositories.NewGORMCouponRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	paymentRepo := repositories.NewGORMPaymentRepository(d.DB)
	reviewRepo := repositories.NewGORMReviewRepository(d.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, d.JWTSecret, log)
	productService := services.NewProductService(productRepo, categoryRepo, log)
	cartService := services.NewCartService(cartRepo, productRepo, log)
	addressService := services.NewAddressService(addressRepo)
	couponService := services.NewCouponService(couponRepo, log)
	orderService := services.NewOrderService(services.OrderDeps{
		Orders:    orderRepo,
		Users:     userRepo,
		Sequence:  sequence,
		Carts:     cartService,
		Addresses: addressService,
		Coupons:   couponService,
		Publisher: d.Publisher,
		Logger:    log,
		Currency:  d.Currency,
	})
	paymentService := services.NewPaymentService(paymentRepo, orderService, gateway, d.Publisher, log)
	reviewService := services.NewReviewService(reviewRepo, productRepo)

	app := fiber.New(fiber.Config{
		AppName:      "marketplace",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// --- Middleware ---
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		status["database"] = "connected"
		return c.JSON(status)
	})

	// --- API Routes ---
	authRequired := middleware.AuthRequired(authService, log)
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(authService, log).RegisterRoutes(apiV1, authRequired)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, authRequired)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, authRequired)
	handlers.NewAddressHandler(addressService).RegisterRoutes(apiV1, authRequired)
	handlers.NewCouponHandler(couponService).RegisterRoutes(apiV1, authRequired)
	handlers.NewPaymentHandler(paymentService, log).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(orderService, log).RegisterRoutes(apiV1, authRequired)

	return app
}
