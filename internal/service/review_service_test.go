package service

import (
	"context"
	"testing"

	"foodloop/internal/models"
	"foodloop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReviewService(db *gorm.DB) *ReviewService {
	return NewReviewService(repository.NewReviewRepository(db), repository.NewFoodPostRepository(db))
}

func TestReviewService_Create(t *testing.T) {
	db := setupTestDB(t)
	posts := newFoodPostService(db)
	svc := newReviewService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner", "owner@example.com")
	reviewer := createTestUser(t, db, "reviewer", "reviewer@example.com")

	post, err := posts.Create(ctx, owner.ID, validPostInput(52.52, 13.405))
	require.NoError(t, err)

	t.Run("review targets the post owner", func(t *testing.T) {
		review, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 5, Comment: "great"})
		require.NoError(t, err)
		assert.Equal(t, owner.ID, review.TargetUserID)
		assert.Equal(t, reviewer.ID, review.UserID)
	})

	t.Run("second review of the same post conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 4})
		assertAppErrorCode(t, err, models.CodeConflict)
	})

	t.Run("owner cannot review their own post", func(t *testing.T) {
		_, err := svc.Create(ctx, post.ID, owner.ID, CreateReviewInput{Rating: 5})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("rating must be 1 to 5", func(t *testing.T) {
		_, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 0})
		assertAppErrorCode(t, err, models.CodeValidation)

		_, err = svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 6})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		_, err := svc.Create(ctx, 9999, reviewer.ID, CreateReviewInput{Rating: 5})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("same reviewer may review a different post", func(t *testing.T) {
		second, err := posts.Create(ctx, owner.ID, validPostInput(52.53, 13.41))
		require.NoError(t, err)

		_, err = svc.Create(ctx, second.ID, reviewer.ID, CreateReviewInput{Rating: 3})
		assert.NoError(t, err)
	})
}

func TestReviewService_DeleteAllowsReReview(t *testing.T) {
	db := setupTestDB(t)
	posts := newFoodPostService(db)
	svc := newReviewService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner", "owner@example.com")
	reviewer := createTestUser(t, db, "reviewer", "reviewer@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	post, err := posts.Create(ctx, owner.ID, validPostInput(52.52, 13.405))
	require.NoError(t, err)

	review, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	t.Run("only the author can delete", func(t *testing.T) {
		err := svc.Delete(ctx, review.ID, other.ID)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("deleting frees the post for a new review", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, review.ID, reviewer.ID))

		again, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 4, Comment: "better"})
		require.NoError(t, err)
		assert.Equal(t, 4, again.Rating)
	})
}

func TestReviewService_Update(t *testing.T) {
	db := setupTestDB(t)
	posts := newFoodPostService(db)
	svc := newReviewService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner", "owner@example.com")
	reviewer := createTestUser(t, db, "reviewer", "reviewer@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	post, err := posts.Create(ctx, owner.ID, validPostInput(52.52, 13.405))
	require.NoError(t, err)

	review, err := svc.Create(ctx, post.ID, reviewer.ID, CreateReviewInput{Rating: 2, Comment: "meh"})
	require.NoError(t, err)

	t.Run("author edits rating, untouched fields survive", func(t *testing.T) {
		rating := 5
		updated, err := svc.Update(ctx, review.ID, reviewer.ID, UpdateReviewInput{Rating: &rating})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)
		assert.Equal(t, "meh", updated.Comment)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		rating := 1
		_, err := svc.Update(ctx, review.ID, other.ID, UpdateReviewInput{Rating: &rating})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("rating bounds are enforced", func(t *testing.T) {
		rating := 0
		_, err := svc.Update(ctx, review.ID, reviewer.ID, UpdateReviewInput{Rating: &rating})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("missing review is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, reviewer.ID, UpdateReviewInput{})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestReviewService_Listing(t *testing.T) {
	db := setupTestDB(t)
	posts := newFoodPostService(db)
	svc := newReviewService(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner", "owner@example.com")
	reviewerA := createTestUser(t, db, "a", "a@example.com")
	reviewerB := createTestUser(t, db, "b", "b@example.com")

	post, err := posts.Create(ctx, owner.ID, validPostInput(52.52, 13.405))
	require.NoError(t, err)

	_, err = svc.Create(ctx, post.ID, reviewerA.ID, CreateReviewInput{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, post.ID, reviewerB.ID, CreateReviewInput{Rating: 3})
	require.NoError(t, err)

	t.Run("lists reviews for a post", func(t *testing.T) {
		reviews, err := svc.ListByFoodPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})

	t.Run("lists reviews received by a user", func(t *testing.T) {
		reviews, err := svc.ListByTargetUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
		for _, r := range reviews {
			assert.Equal(t, owner.ID, r.TargetUserID)
		}
	})

	t.Run("listing a missing post is not found", func(t *testing.T) {
		_, err := svc.ListByFoodPost(ctx, 9999)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}
