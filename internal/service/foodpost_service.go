// Package service provides application business logic (food posts, blogs, reviews, chats).
package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"foodloop/internal/geo"
	"foodloop/internal/models"
	"foodloop/internal/repository"

	"gorm.io/gorm"
)

// FoodPostService provides food post business logic.
type FoodPostService struct {
	postRepo        repository.FoodPostRepository
	defaultRadiusKm float64
	maxRadiusKm     float64
}

// NewFoodPostService returns a new FoodPostService.
func NewFoodPostService(postRepo repository.FoodPostRepository, defaultRadiusKm, maxRadiusKm float64) *FoodPostService {
	return &FoodPostService{
		postRepo:        postRepo,
		defaultRadiusKm: defaultRadiusKm,
		maxRadiusKm:     maxRadiusKm,
	}
}

// CreateFoodPostInput is the input for creating a food post.
type CreateFoodPostInput struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FoodType    string    `json:"foodType"`
	Quantity    string    `json:"quantity"`
	ExpiryTime  time.Time `json:"expiryTime"`
	Images      []string  `json:"images"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Address     string    `json:"address"`
}

// UpdateFoodPostInput is the input for updating a food post. Nil fields
// are left untouched.
type UpdateFoodPostInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	FoodType    *string    `json:"foodType"`
	Quantity    *string    `json:"quantity"`
	ExpiryTime  *time.Time `json:"expiryTime"`
	Images      []string   `json:"images"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Address     *string    `json:"address"`
	Status      *string    `json:"status"`
}

// NearbyQuery describes a radius search around a point.
type NearbyQuery struct {
	Lat      float64
	Lng      float64
	RadiusKm float64

	// Type restricts results to one post kind; empty means both.
	Type string
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return models.NewValidationError("Latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return models.NewValidationError("Longitude must be between -180 and 180")
	}
	return nil
}

// Create validates and persists a new food post owned by userID.
func (s *FoodPostService) Create(ctx context.Context, userID uint, in CreateFoodPostInput) (*models.FoodPost, error) {
	if !models.IsValidFoodPostType(in.Type) {
		return nil, models.NewValidationError("Type must be 'donation' or 'request'")
	}
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if in.FoodType == "" {
		return nil, models.NewValidationError("Food type is required")
	}
	if in.Quantity == "" {
		return nil, models.NewValidationError("Quantity is required")
	}
	if in.ExpiryTime.IsZero() {
		return nil, models.NewValidationError("Expiry time is required")
	}
	if err := validateCoordinates(in.Lat, in.Lng); err != nil {
		return nil, err
	}

	post := &models.FoodPost{
		UserID:      userID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		FoodType:    in.FoodType,
		Quantity:    in.Quantity,
		ExpiryTime:  in.ExpiryTime,
		Images:      in.Images,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Address:     in.Address,
		Status:      models.FoodPostStatusAvailable,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetByID returns a food post or a not-found error.
func (s *FoodPostService) GetByID(ctx context.Context, id uint) (*models.FoodPost, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Food post", id)
		}
		return nil, err
	}
	return post, nil
}

// List returns food posts in reverse chronological order.
func (s *FoodPostService) List(ctx context.Context, limit, offset int) ([]*models.FoodPost, error) {
	return s.postRepo.List(ctx, normalizeLimit(limit), offset)
}

// ListByUser returns a user's food posts.
func (s *FoodPostService) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.FoodPost, error) {
	return s.postRepo.ListByUser(ctx, userID, normalizeLimit(limit), offset)
}

// ListNearby returns available posts within the radius of the query
// point, closest first. Ties in distance keep ascending ID order. Each
// result carries its computed distance in meters.
func (s *FoodPostService) ListNearby(ctx context.Context, q NearbyQuery) ([]*models.FoodPost, error) {
	if err := validateCoordinates(q.Lat, q.Lng); err != nil {
		return nil, err
	}
	if q.Type != "" && !models.IsValidFoodPostType(q.Type) {
		return nil, models.NewValidationError("Type must be 'donation' or 'request'")
	}
	radiusKm := q.RadiusKm
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}
	if radiusKm > s.maxRadiusKm {
		return nil, models.NewValidationError("Radius exceeds the maximum allowed")
	}
	radiusMeters := radiusKm * 1000

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(q.Lat, q.Lng, radiusMeters)
	candidates, err := s.postRepo.ListAvailableWithin(ctx, minLat, maxLat, minLng, maxLng, q.Type)
	if err != nil {
		return nil, err
	}

	results := make([]*models.FoodPost, 0, len(candidates))
	for _, post := range candidates {
		d := geo.HaversineMeters(q.Lat, q.Lng, post.Lat, post.Lng)
		if d > radiusMeters {
			continue
		}
		post.DistanceMeters = d
		results = append(results, post)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMeters < results[j].DistanceMeters
	})

	return results, nil
}

// Update modifies a post. Only the owner may update it.
func (s *FoodPostService) Update(ctx context.Context, id, callerID uint, in UpdateFoodPostInput) (*models.FoodPost, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, models.NewForbiddenError("Only the owner can update this post")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title is required")
		}
		post.Title = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			return nil, models.NewValidationError("Description is required")
		}
		post.Description = *in.Description
	}
	if in.FoodType != nil {
		if *in.FoodType == "" {
			return nil, models.NewValidationError("Food type is required")
		}
		post.FoodType = *in.FoodType
	}
	if in.Quantity != nil {
		if *in.Quantity == "" {
			return nil, models.NewValidationError("Quantity is required")
		}
		post.Quantity = *in.Quantity
	}
	if in.ExpiryTime != nil {
		if in.ExpiryTime.IsZero() {
			return nil, models.NewValidationError("Expiry time is required")
		}
		post.ExpiryTime = *in.ExpiryTime
	}
	if in.Images != nil {
		post.Images = in.Images
	}
	if in.Lat != nil || in.Lng != nil {
		lat, lng := post.Lat, post.Lng
		if in.Lat != nil {
			lat = *in.Lat
		}
		if in.Lng != nil {
			lng = *in.Lng
		}
		if err := validateCoordinates(lat, lng); err != nil {
			return nil, err
		}
		post.Lat, post.Lng = lat, lng
	}
	if in.Address != nil {
		post.Address = *in.Address
	}
	if in.Status != nil {
		if !models.IsValidFoodPostStatus(*in.Status) {
			return nil, models.NewValidationError("Status must be 'available', 'pending' or 'completed'")
		}
		post.Status = *in.Status
		// Reverting to available releases the claim; an assignee can
		// never remain bound to an available post.
		if post.Status == models.FoodPostStatusAvailable {
			post.AssignedToID = nil
			post.AssignedTo = nil
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

// Delete removes a post. Only the owner may delete it. Reviews and
// chats referencing the post are left in place.
func (s *FoodPostService) Delete(ctx context.Context, id, callerID uint) error {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		return models.NewForbiddenError("Only the owner can delete this post")
	}
	return s.postRepo.Delete(ctx, id)
}

// Assign claims an available post for callerID and moves it to pending.
// The owner cannot claim their own post, and a post that is already
// pending or completed cannot be claimed again.
func (s *FoodPostService) Assign(ctx context.Context, id, callerID uint) (*models.FoodPost, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID == callerID {
		return nil, models.NewValidationError("You cannot claim your own post")
	}
	if post.Status != models.FoodPostStatusAvailable {
		return nil, models.NewConflictError("Post is no longer available")
	}

	post.Status = models.FoodPostStatusPending
	post.AssignedToID = &callerID
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

// Complete marks a pending post as completed. Only the owner may do this.
func (s *FoodPostService) Complete(ctx context.Context, id, callerID uint) (*models.FoodPost, error) {
	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, models.NewForbiddenError("Only the owner can complete this post")
	}
	if post.Status != models.FoodPostStatusPending {
		return nil, models.NewConflictError("Only a pending post can be completed")
	}

	post.Status = models.FoodPostStatusCompleted
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

const defaultListLimit = 20
const maxListLimit = 100

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
