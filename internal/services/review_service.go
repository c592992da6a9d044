package services

import (
	"context"
	"errors"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

// ReviewInput carries the editable fields of a review.
type ReviewInput struct {
	Rating  int
	Title   string
	Comment string
}

// ReviewService handles product reviews. A user reviews a product at most once.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
}

func NewReviewService(reviews repositories.ReviewRepository, products repositories.ProductRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products}
}

func (s *ReviewService) ListProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

func (s *ReviewService) CreateReview(ctx context.Context, userID, productID string, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.product(ctx, productID); err != nil {
		return nil, err
	}
	exists, err := s.reviews.Exists(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// UpdateReview lets the author change their review.
func (s *ReviewService) UpdateReview(ctx context.Context, actor Actor, reviewID string, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	review, err := s.review(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	review.Rating = in.Rating
	review.Title = in.Title
	review.Comment = in.Comment
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review. Admins may remove any review.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, reviewID string) error {
	review, err := s.review(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.reviews.Delete(ctx, reviewID)
}

func (s *ReviewService) review(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) product(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
