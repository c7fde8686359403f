package server

import (
	"foodloop/internal/models"
	"foodloop/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBlog publishes a new blog post (protected)
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	var req service.CreateBlogInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.Create(ctx, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, blog)
}

// GetBlogs lists blogs, newest first (public)
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 20)

	blogs, err := s.blogService.List(ctx, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithList(c, len(blogs), blogs)
}

// GetBlog returns a single blog with comments and likes (public)
func (s *Server) GetBlog(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, blog)
}

// UpdateBlog updates a blog (author only)
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.UpdateBlogInput
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	blog, err := s.blogService.Update(ctx, id, userID, req)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, blog)
}

// DeleteBlog removes a blog (author only)
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.Delete(ctx, id, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// ToggleBlogLike flips the caller's like on a blog (protected)
func (s *Server) ToggleBlogLike(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.ToggleLike(ctx, id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, blog)
}

// CreateBlogComment appends a comment to a blog (protected)
func (s *Server) CreateBlogComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.blogService.AddComment(ctx, id, userID, req.Text)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, comment)
}
