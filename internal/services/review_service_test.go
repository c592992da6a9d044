package services_test

import (
	"context"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, models.RoleSeller)
	buyer := f.user(t, models.RoleCustomer)
	p := f.product(t, seller.ID, "Kettle", "40", 5)

	r, err := f.reviews.CreateReview(ctx, buyer.ID, p.ID, services.ReviewInput{Rating: 4, Title: "Solid", Comment: "Boils fast"})
	require.NoError(t, err)
	assert.Equal(t, 4, r.Rating)

	_, err = f.reviews.CreateReview(ctx, buyer.ID, p.ID, services.ReviewInput{Rating: 5})
	assert.ErrorIs(t, err, services.ErrDuplicateReview)

	for _, rating := range []int{0, 6} {
		_, err = f.reviews.CreateReview(ctx, seller.ID, p.ID, services.ReviewInput{Rating: rating})
		assert.ErrorIs(t, err, services.ErrInvalidRating)
	}

	_, err = f.reviews.CreateReview(ctx, seller.ID, "missing", services.ReviewInput{Rating: 3})
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	list, err := f.reviews.ListProductReviews(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Solid", list[0].Title)

	_, err = f.reviews.ListProductReviews(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestReviewService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seller := f.user(t, models.RoleSeller)
	author := f.user(t, models.RoleCustomer)
	other := f.user(t, models.RoleCustomer)
	p := f.product(t, seller.ID, "Kettle", "40", 5)

	r, err := f.reviews.CreateReview(ctx, author.ID, p.ID, services.ReviewInput{Rating: 2})
	require.NoError(t, err)

	_, err = f.reviews.UpdateReview(ctx, actorOf(other), r.ID, services.ReviewInput{Rating: 1})
	assert.ErrorIs(t, err, services.ErrForbidden)

	updated, err := f.reviews.UpdateReview(ctx, actorOf(author), r.ID, services.ReviewInput{Rating: 5, Comment: "Grew on me"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	assert.ErrorIs(t, f.reviews.DeleteReview(ctx, actorOf(other), r.ID), services.ErrForbidden)
	require.NoError(t, f.reviews.DeleteReview(ctx, admin, r.ID))
	assert.ErrorIs(t, f.reviews.DeleteReview(ctx, actorOf(author), r.ID), services.ErrReviewNotFound)
}
