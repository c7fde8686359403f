package server

import (
	"strconv"

	"foodloop/internal/models"
	"foodloop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateFoodPost publishes a new donation or request (protected)
func (s *Server) CreateFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req service.CreateFoodPostInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.foodPostService.Create(ctx, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, post)
}

// GetFoodPosts lists food posts, newest first. With lat/lng query
// parameters it becomes the radius search instead (public)
func (s *Server) GetFoodPosts(c *fiber.Ctx) error {
	if c.Query("lat") != "" || c.Query("lng") != "" {
		return s.GetNearbyFoodPosts(c)
	}

	ctx := c.UserContext()
	p := parsePagination(c, 20)

	posts, err := s.foodPostService.List(ctx, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(posts), posts)
}

// GetNearbyFoodPosts lists available posts within a radius of a point (public)
func (s *Server) GetNearbyFoodPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("lat and lng query parameters are required"))
	}

	radiusKm := 0.0
	raw := c.Query("radius_km")
	if raw == "" {
		raw = c.Query("radius")
	}
	if raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("radius must be a non-negative number"))
		}
		radiusKm = parsed
	}

	posts, err := s.foodPostService.ListNearby(ctx, service.NearbyQuery{
		Lat:      lat,
		Lng:      lng,
		RadiusKm: radiusKm,
		Type:     c.Query("type"),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(posts), posts)
}

// GetFoodPost returns a single food post (public)
func (s *Server) GetFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.foodPostService.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, post)
}

// GetMyFoodPosts lists the caller's own posts (protected)
func (s *Server) GetMyFoodPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)
	p := parsePagination(c, 20)

	posts, err := s.foodPostService.ListByUser(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(posts), posts)
}

// UpdateFoodPost updates a post (owner only)
func (s *Server) UpdateFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateFoodPostInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.foodPostService.Update(ctx, id, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, post)
}

// DeleteFoodPost removes a post (owner only)
func (s *Server) DeleteFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.foodPostService.Delete(ctx, id, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// AssignFoodPost claims an available post for the caller (protected)
func (s *Server) AssignFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.foodPostService.Assign(ctx, id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, post)
}

// CompleteFoodPost marks a pending post as completed (owner only)
func (s *Server) CompleteFoodPost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.foodPostService.Complete(ctx, id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, post)
}
