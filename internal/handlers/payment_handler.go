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

// PaymentHandler handles payment intents, confirmations, refunds and gateway webhooks.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
	log      *zap.Logger
}

func NewPaymentHandler(service *services.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, validate: validator.New(), log: log}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	payments := router.Group("/payments")
	payments.Post("/webhook", h.HandleWebhook)
	payments.Post("/intent", authRequired, h.HandleCreateIntent)
	payments.Post("/:id/confirm", authRequired, h.HandleConfirm)
	payments.Post("/:id/refund", authRequired, middleware.RequireRole(models.RoleAdmin), h.HandleRefund)

	router.Get("/orders/:id/payments", authRequired, h.HandleListForOrder)
}

type CreateIntentRequest struct {
	OrderID string           `json:"order_id" validate:"required"`
	Amount  *decimal.Decimal `json:"amount"`
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *PaymentHandler) HandleCreateIntent(c *fiber.Ctx) error {
	var req CreateIntentRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	p, err := h.service.CreatePaymentIntent(c.UserContext(), currentActor(c), req.OrderID, req.Amount)
	if err != nil {
		return respondError(c, "Could not create payment intent", err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PaymentHandler) HandleConfirm(c *fiber.Ctx) error {
	p, err := h.service.ConfirmPayment(c.UserContext(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not confirm payment", err)
	}
	return c.JSON(p)
}

func (h *PaymentHandler) HandleRefund(c *fiber.Ctx) error {
	var req RefundRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	p, err := h.service.RefundPayment(c.UserContext(), currentActor(c), c.Params("id"), req.Amount)
	if err != nil {
		return respondError(c, "Could not refund payment", err)
	}
	return c.JSON(p)
}

func (h *PaymentHandler) HandleListForOrder(c *fiber.Ctx) error {
	payments, err := h.service.ListPayments(c.UserContext(), currentActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve payments", err)
	}
	return c.JSON(payments)
}

// HandleWebhook verifies the gateway signature over the raw body.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	if err := h.service.HandleWebhook(c.UserContext(), payload, c.Get("Stripe-Signature")); err != nil {
		h.log.Warn("webhook rejected", zap.Error(err))
		return respondError(c, "Webhook rejected", err)
	}
	return c.JSON(fiber.Map{"received": true})
}
