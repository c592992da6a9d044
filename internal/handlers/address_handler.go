package handlers

import (
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for the caller's addresses.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{service: service, validate: validator.New()}
}

func (h *AddressHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	addresses := router.Group("/addresses", authRequired)
	addresses.Get("/", h.HandleList)
	addresses.Post("/", h.HandleCreate)
	addresses.Put("/:id", h.HandleUpdate)
	addresses.Delete("/:id", h.HandleDelete)
}

type AddressRequest struct {
	FullName   string `json:"full_name" validate:"required,max=150"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone" validate:"max=30"`
}

func (r AddressRequest) model() models.Address {
	return models.Address{
		FullName:   r.FullName,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
	}
}

func (h *AddressHandler) HandleList(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(c.UserContext(), currentActor(c).UserID)
	if err != nil {
		return respondError(c, "Could not retrieve addresses", err)
	}
	return c.JSON(addresses)
}

func (h *AddressHandler) HandleCreate(c *fiber.Ctx) error {
	var req AddressRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	address := req.model()
	if err := h.service.CreateAddress(c.UserContext(), currentActor(c).UserID, &address); err != nil {
		return respondError(c, "Could not create address", err)
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

func (h *AddressHandler) HandleUpdate(c *fiber.Ctx) error {
	var req AddressRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	address, err := h.service.UpdateAddress(c.UserContext(), currentActor(c).UserID, c.Params("id"), req.model())
	if err != nil {
		return respondError(c, "Could not update address", err)
	}
	return c.JSON(address)
}

func (h *AddressHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(c.UserContext(), currentActor(c).UserID, c.Params("id")); err != nil {
		return respondError(c, "Could not delete address", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
