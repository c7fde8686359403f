package repository

import (
	"context"

	"foodloop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	List(ctx context.Context, limit, offset int) ([]*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, blogID, userID uint) error
	Unlike(ctx context.Context, blogID, userID uint) error
	IsLiked(ctx context.Context, blogID, userID uint) (bool, error)
	AddComment(ctx context.Context, comment *models.BlogComment) error
	GetComment(ctx context.Context, id uint) (*models.BlogComment, error)
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("blog_comments.created_at ASC")
		}).
		Preload("Comments.User").
		First(&blog, id).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) List(ctx context.Context, limit, offset int) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Likes").
		Preload("Comments").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&blogs).Error
	return blogs, err
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Blog{}, id).Error
}

// Like is idempotent: inserting an existing (blog, user) pair is a no-op.
func (r *blogRepository) Like(ctx context.Context, blogID, userID uint) error {
	like := models.BlogLike{BlogID: blogID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error
}

func (r *blogRepository) Unlike(ctx context.Context, blogID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Delete(&models.BlogLike{}).Error
}

func (r *blogRepository) IsLiked(ctx context.Context, blogID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogLike{}).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *blogRepository) AddComment(ctx context.Context, comment *models.BlogComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *blogRepository) GetComment(ctx context.Context, id uint) (*models.BlogComment, error) {
	var comment models.BlogComment
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
