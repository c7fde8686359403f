package repository

import (
	"context"

	"foodloop/internal/models"

	"gorm.io/gorm"
)

// FoodPostRepository defines the interface for food post data operations
type FoodPostRepository interface {
	Create(ctx context.Context, post *models.FoodPost) error
	GetByID(ctx context.Context, id uint) (*models.FoodPost, error)
	List(ctx context.Context, limit, offset int) ([]*models.FoodPost, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.FoodPost, error)
	ListAvailableWithin(ctx context.Context, minLat, maxLat, minLng, maxLng float64, postType string) ([]*models.FoodPost, error)
	Update(ctx context.Context, post *models.FoodPost) error
	Delete(ctx context.Context, id uint) error
}

type foodPostRepository struct {
	db *gorm.DB
}

// NewFoodPostRepository creates a new food post repository
func NewFoodPostRepository(db *gorm.DB) FoodPostRepository {
	return &foodPostRepository{db: db}
}

func (r *foodPostRepository) Create(ctx context.Context, post *models.FoodPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *foodPostRepository) GetByID(ctx context.Context, id uint) (*models.FoodPost, error) {
	var post models.FoodPost
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("AssignedTo").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *foodPostRepository) List(ctx context.Context, limit, offset int) ([]*models.FoodPost, error) {
	var posts []*models.FoodPost
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *foodPostRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.FoodPost, error) {
	var posts []*models.FoodPost
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// ListAvailableWithin returns available posts inside a latitude/longitude
// bounding box, optionally restricted to one post kind. The box is a cheap
// pre-filter; the caller applies the exact great-circle cutoff and ordering.
func (r *foodPostRepository) ListAvailableWithin(ctx context.Context, minLat, maxLat, minLng, maxLng float64, postType string) ([]*models.FoodPost, error) {
	var posts []*models.FoodPost
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.FoodPostStatusAvailable).
		Where("lat BETWEEN ? AND ?", minLat, maxLat).
		Where("lng BETWEEN ? AND ?", minLng, maxLng)
	if postType != "" {
		query = query.Where("type = ?", postType)
	}
	err := query.Order("id ASC").Find(&posts).Error
	return posts, err
}

func (r *foodPostRepository) Update(ctx context.Context, post *models.FoodPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *foodPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FoodPost{}, id).Error
}
