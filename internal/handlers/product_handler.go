package handlers

import (
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers category and product routes. Reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	sellers := middleware.RequireRole(models.RoleSeller, models.RoleAdmin)

	categories := router.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Get("/:id", h.HandleGetCategory)
	categories.Post("/", authRequired, middleware.RequireRole(models.RoleAdmin), h.HandleCreateCategory)

	products := router.Group("/products")
	products.Get("/", h.HandleListProducts)
	products.Get("/:id", h.HandleGetProduct)
	products.Post("/", authRequired, sellers, h.HandleCreateProduct)
	products.Put("/:id", authRequired, sellers, h.HandleUpdateProduct)
	products.Delete("/:id", authRequired, sellers, h.HandleDeleteProduct)
	products.Post("/:id/variants", authRequired, sellers, h.HandleAddVariant)
	products.Put("/:id/inventory", authRequired, sellers, h.HandleSetInventory)
}

// ProductRequest is the body of product create and update.
type ProductRequest struct {
	CategoryID  *string         `json:"category_id"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsActive    *bool           `json:"is_active"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		IsActive:    r.IsActive,
	}
}

// HandleListProducts lists active products; supports q, category_id, seller_id, limit and offset.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page, err := h.service.ListProducts(c.UserContext(), repositories.ProductFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		SellerID:   c.Query("seller_id"),
		Limit:      c.QueryInt("limit", 20),
		Offset:     c.QueryInt("offset", 0),
	})
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(page)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	product, err := h.service.CreateProduct(c.UserContext(), currentActor(c), req.input())
	if err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), currentActor(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), currentActor(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VariantRequest is the body of variant creation.
type VariantRequest struct {
	SKU   string          `json:"sku" validate:"required,max=64"`
	Name  string          `json:"name" validate:"required,max=100"`
	Price decimal.Decimal `json:"price"`
}

func (h *ProductHandler) HandleAddVariant(c *fiber.Ctx) error {
	var req VariantRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	variant, err := h.service.AddVariant(c.UserContext(), currentActor(c), c.Params("id"), services.VariantInput{
		SKU:   req.SKU,
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		return respondError(c, "Could not add variant", err)
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// InventoryRequest sets the stock of a product or of one variant.
type InventoryRequest struct {
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
}

func (h *ProductHandler) HandleSetInventory(c *fiber.Ctx) error {
	var req InventoryRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	inv, err := h.service.SetInventory(c.UserContext(), currentActor(c), c.Params("id"), req.VariantID, req.Quantity)
	if err != nil {
		return respondError(c, "Could not set inventory", err)
	}
	return c.JSON(inv)
}

func (h *ProductHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(categories)
}

func (h *ProductHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve category", err)
	}
	return c.JSON(category)
}

// CategoryRequest is the body of category creation.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	Description string `json:"description"`
}

func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	category, err := h.service.CreateCategory(c.UserContext(), currentActor(c), req.Name, req.Slug, req.Description)
	if err != nil {
		return respondError(c, "Could not create category", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
