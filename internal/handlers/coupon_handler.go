package handlers

import (
	"time"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CouponHandler handles coupon administration and storefront previews.
type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
}

func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{service: service, validate: validator.New()}
}

func (h *CouponHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	admin := middleware.RequireRole(models.RoleAdmin)
	coupons := router.Group("/coupons")
	coupons.Post("/preview", h.HandlePreview)
	coupons.Get("/", authRequired, admin, h.HandleList)
	coupons.Post("/", authRequired, admin, h.HandleCreate)
}

type CreateCouponRequest struct {
	Code            string           `json:"code" validate:"required,max=50"`
	Type            string           `json:"type" validate:"required,oneof=percentage fixed"`
	Value           decimal.Decimal  `json:"value"`
	MinimumAmount   *decimal.Decimal `json:"minimum_amount"`
	MaximumDiscount *decimal.Decimal `json:"maximum_discount"`
	UsageLimit      *int             `json:"usage_limit" validate:"omitempty,gt=0"`
	StartsAt        *time.Time       `json:"starts_at"`
	ExpiresAt       *time.Time       `json:"expires_at"`
}

type PreviewCouponRequest struct {
	Code   string          `json:"code" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *CouponHandler) HandleList(c *fiber.Ctx) error {
	coupons, err := h.service.ListCoupons(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve coupons", err)
	}
	return c.JSON(coupons)
}

func (h *CouponHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateCouponRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	coupon, err := h.service.CreateCoupon(c.UserContext(), services.CreateCouponInput{
		Code:            req.Code,
		Type:            models.CouponType(req.Type),
		Value:           req.Value,
		MinimumAmount:   req.MinimumAmount,
		MaximumDiscount: req.MaximumDiscount,
		UsageLimit:      req.UsageLimit,
		StartsAt:        req.StartsAt,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		return respondError(c, "Could not create coupon", err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// HandlePreview reports what a code would take off an amount without redeeming it.
func (h *CouponHandler) HandlePreview(c *fiber.Ctx) error {
	var req PreviewCouponRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	ev, err := h.service.Preview(c.UserContext(), req.Code, req.Amount)
	if err != nil {
		return respondError(c, "Could not evaluate coupon", err)
	}
	return c.JSON(ev)
}
