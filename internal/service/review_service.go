package service

import (
	"context"
	"errors"

	"foodloop/internal/models"
	"foodloop/internal/repository"

	"gorm.io/gorm"
)

// ReviewService provides review business logic.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	postRepo   repository.FoodPostRepository
}

// NewReviewService returns a new ReviewService.
func NewReviewService(reviewRepo repository.ReviewRepository, postRepo repository.FoodPostRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, postRepo: postRepo}
}

// CreateReviewInput is the input for creating a review.
type CreateReviewInput struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment"`
	Images  []string `json:"images"`
}

// Create records authorID's review of a food post. The review targets
// the post's owner. An author cannot review their own post and can
// review a given post only once.
func (s *ReviewService) Create(ctx context.Context, foodPostID, authorID uint, in CreateReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	post, err := s.postRepo.GetByID(ctx, foodPostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Food post", foodPostID)
		}
		return nil, err
	}
	if post.UserID == authorID {
		return nil, models.NewValidationError("You cannot review your own post")
	}

	review := &models.Review{
		UserID:       authorID,
		TargetUserID: post.UserID,
		FoodPostID:   foodPostID,
		Rating:       in.Rating,
		Comment:      in.Comment,
		Images:       in.Images,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if models.IsDuplicateKeyError(err) {
			return nil, models.NewConflictError("You have already reviewed this post")
		}
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, review.ID)
}

// UpdateReviewInput carries the editable review fields. Nil pointers leave
// the current value unchanged.
type UpdateReviewInput struct {
	Rating  *int     `json:"rating"`
	Comment *string  `json:"comment"`
	Images  []string `json:"images"`
}

// Update edits a review. Only its author may edit it.
func (s *ReviewService) Update(ctx context.Context, id, callerID uint, in UpdateReviewInput) (*models.Review, error) {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != callerID {
		return nil, models.NewForbiddenError("Only the author can edit this review")
	}

	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return nil, models.NewValidationError("Rating must be between 1 and 5")
		}
		review.Rating = *in.Rating
	}
	if in.Comment != nil {
		review.Comment = *in.Comment
	}
	if in.Images != nil {
		review.Images = in.Images
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, id)
}

// List returns reviews newest first, optionally scoped to one food post.
func (s *ReviewService) List(ctx context.Context, foodPostID *uint, limit, offset int) ([]*models.Review, error) {
	if foodPostID != nil {
		return s.ListByFoodPost(ctx, *foodPostID)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.reviewRepo.List(ctx, limit, offset)
}

// GetByID returns a review or a not-found error.
func (s *ReviewService) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, err
	}
	return review, nil
}

// ListByFoodPost returns the reviews left on a food post, newest first.
func (s *ReviewService) ListByFoodPost(ctx context.Context, foodPostID uint) ([]*models.Review, error) {
	if _, err := s.postRepo.GetByID(ctx, foodPostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Food post", foodPostID)
		}
		return nil, err
	}
	return s.reviewRepo.ListByFoodPost(ctx, foodPostID)
}

// ListByTargetUser returns the reviews a user has received, newest first.
func (s *ReviewService) ListByTargetUser(ctx context.Context, targetUserID uint) ([]*models.Review, error) {
	return s.reviewRepo.ListByTargetUser(ctx, targetUserID)
}

// Delete removes a review. Only its author may delete it. After
// deletion the author may review the post again.
func (s *ReviewService) Delete(ctx context.Context, id, callerID uint) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if review.UserID != callerID {
		return models.NewForbiddenError("Only the author can delete this review")
	}
	return s.reviewRepo.Delete(ctx, id)
}
