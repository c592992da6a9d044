package handlers

import (
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	log      *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)

	router.Get("/seller/orders", authRequired,
		middleware.RequireRole(models.RoleSeller, models.RoleAdmin), h.HandleGetSellerOrders)
}

// CreateOrderRequest is the checkout body. Tax and shipping are optional overrides.
type CreateOrderRequest struct {
	BillingAddressID  string           `json:"billing_address_id" validate:"required"`
	ShippingAddressID string           `json:"shipping_address_id" validate:"required"`
	CouponCode        *string          `json:"coupon_code"`
	ShippingAmount    *decimal.Decimal `json:"shipping_amount"`
	TaxAmount         *decimal.Decimal `json:"tax_amount"`
	Notes             *string          `json:"notes" validate:"omitempty,max=1000"`
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), currentActor(c).UserID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetSellerOrders lists orders containing the calling seller's products.
func (h *OrderHandler) HandleGetSellerOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListSellerOrders(c.UserContext(), currentActor(c).UserID)
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	actor := currentActor(c)
	result, err := h.service.CreateOrder(c.UserContext(), actor.UserID, services.CheckoutInput{
		BillingAddressID:  req.BillingAddressID,
		ShippingAddressID: req.ShippingAddressID,
		CouponCode:        req.CouponCode,
		ShippingAmount:    req.ShippingAmount,
		TaxAmount:         req.TaxAmount,
		Notes:             req.Notes,
	})
	if err != nil {
		h.log.Info("checkout rejected", zap.String("user_id", actor.UserID), zap.Error(err))
		return respondError(c, "Could not create order", err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status string `json:"status" validate:"required"`
	}
	if body := decode(c, h.validate, &updateData); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	order, err := h.service.UpdateStatus(c.UserContext(), currentActor(c), c.Params("id"), models.OrderStatus(updateData.Status))
	if err != nil {
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an order that is not yet delivered.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(order)
}
