package handlers

import (
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service, validate: validator.New()}
}

func (h *ReviewHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/products/:id/reviews", h.HandleList)
	router.Post("/products/:id/reviews", authRequired, h.HandleCreate)
	router.Put("/reviews/:id", authRequired, h.HandleUpdate)
	router.Delete("/reviews/:id", authRequired, h.HandleDelete)
}

// ReviewRequest is the body of review create and update. The rating range is
// checked by the service so the error kind stays the same for every caller.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title" validate:"max=150"`
	Comment string `json:"comment" validate:"max=5000"`
}

func (r ReviewRequest) input() services.ReviewInput {
	return services.ReviewInput{Rating: r.Rating, Title: r.Title, Comment: r.Comment}
}

func (h *ReviewHandler) HandleList(c *fiber.Ctx) error {
	reviews, err := h.service.ListProductReviews(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) HandleCreate(c *fiber.Ctx) error {
	var req ReviewRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	review, err := h.service.CreateReview(c.UserContext(), currentActor(c).UserID, c.Params("id"), req.input())
	if err != nil {
		return respondError(c, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) HandleUpdate(c *fiber.Ctx) error {
	var req ReviewRequest
	if body := decode(c, h.validate, &req); body != nil {
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
	review, err := h.service.UpdateReview(c.UserContext(), currentActor(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, "Could not update review", err)
	}
	return c.JSON(review)
}

func (h *ReviewHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.UserContext(), currentActor(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete review", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
