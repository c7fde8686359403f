package service

import (
	"context"
	"errors"

	"foodloop/internal/models"
	"foodloop/internal/repository"

	"gorm.io/gorm"
)

// BlogService provides blog business logic.
type BlogService struct {
	blogRepo repository.BlogRepository
}

// NewBlogService returns a new BlogService.
func NewBlogService(blogRepo repository.BlogRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo}
}

// CreateBlogInput is the input for creating a blog post.
type CreateBlogInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
	Tags    []string `json:"tags"`
}

// UpdateBlogInput is the input for updating a blog post. Nil fields are
// left untouched.
type UpdateBlogInput struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Images  []string `json:"images"`
	Tags    []string `json:"tags"`
}

// Create validates and persists a new blog post authored by userID.
func (s *BlogService) Create(ctx context.Context, userID uint, in CreateBlogInput) (*models.Blog, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}

	blog := &models.Blog{
		UserID:  userID,
		Title:   in.Title,
		Content: in.Content,
		Images:  in.Images,
		Tags:    in.Tags,
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, blog.ID)
}

// GetByID returns a blog with its author, comments and likes preloaded.
func (s *BlogService) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, err
	}
	return blog, nil
}

// List returns blogs in reverse chronological order.
func (s *BlogService) List(ctx context.Context, limit, offset int) ([]*models.Blog, error) {
	return s.blogRepo.List(ctx, normalizeLimit(limit), offset)
}

// Update modifies a blog. Only the author may update it.
func (s *BlogService) Update(ctx context.Context, id, callerID uint, in UpdateBlogInput) (*models.Blog, error) {
	blog, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog.UserID != callerID {
		return nil, models.NewForbiddenError("Only the author can update this blog")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		blog.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, models.NewValidationError("Content is required")
		}
		blog.Content = *in.Content
	}
	if in.Images != nil {
		blog.Images = in.Images
	}
	if in.Tags != nil {
		blog.Tags = in.Tags
	}

	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a blog. Only the author may delete it.
func (s *BlogService) Delete(ctx context.Context, id, callerID uint) error {
	blog, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blog.UserID != callerID {
		return models.NewForbiddenError("Only the author can delete this blog")
	}
	return s.blogRepo.Delete(ctx, id)
}

// ToggleLike flips userID's like on the blog: liked blogs are unliked,
// unliked blogs are liked. Returns the blog in its post-toggle state.
func (s *BlogService) ToggleLike(ctx context.Context, id, userID uint) (*models.Blog, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	liked, err := s.blogRepo.IsLiked(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if liked {
		err = s.blogRepo.Unlike(ctx, id, userID)
	} else {
		err = s.blogRepo.Like(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// AddComment appends a comment by userID to the blog.
func (s *BlogService) AddComment(ctx context.Context, id, userID uint, text string) (*models.BlogComment, error) {
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	comment := &models.BlogComment{
		BlogID: id,
		UserID: userID,
		Text:   text,
	}
	if err := s.blogRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.blogRepo.GetComment(ctx, comment.ID)
}
