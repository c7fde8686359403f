package server

import (
	"strconv"

	"foodloop/internal/models"
	"foodloop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateFoodPostReview records the caller's review of the post in the path (protected)
func (s *Server) CreateFoodPostReview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CreateReviewInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.Create(ctx, postID, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, review)
}

// CreateReview records a review of the post named in the body (protected)
func (s *Server) CreateReview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req struct {
		FoodPostID uint `json:"foodPostId"`
		service.CreateReviewInput
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}
	if req.FoodPostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("foodPostId is required"))
	}

	review, err := s.reviewService.Create(ctx, req.FoodPostID, userID, req.CreateReviewInput)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, review)
}

// GetReviews lists reviews, optionally scoped to one post via food_post_id (public)
func (s *Server) GetReviews(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var foodPostID *uint
	if raw := c.Query("food_post_id"); raw != "" {
		parsed, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil || parsed == 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("food_post_id must be a positive integer"))
		}
		id := uint(parsed)
		foodPostID = &id
	}

	pagination := parsePagination(c, 20)
	reviews, err := s.reviewService.List(ctx, foodPostID, pagination.Limit, pagination.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(reviews), reviews)
}

// UpdateReview edits a review (author only)
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateReviewInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.Update(ctx, id, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, review)
}

// GetReview returns a single review (public)
func (s *Server) GetReview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	review, err := s.reviewService.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, review)
}

// GetFoodPostReviews lists the reviews left on a post (public)
func (s *Server) GetFoodPostReviews(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewService.ListByFoodPost(ctx, postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(reviews), reviews)
}

// GetUserReviews lists the reviews a user has received (public)
func (s *Server) GetUserReviews(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewService.ListByTargetUser(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(reviews), reviews)
}

// DeleteReview removes a review (author only)
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.Delete(ctx, id, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
