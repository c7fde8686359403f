// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"foodloop/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // weak randomness is fine for demo data
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, opts: opts, rng: rng}
}

// jitter returns coordinates scattered around the configured center,
// within roughly spreadKm kilometers.
func (f *Factory) jitter() (float64, float64) {
	spread := f.opts.SpreadKm
	if spread <= 0 {
		spread = 8
	}
	dLat := (f.rng.Float64()*2 - 1) * spread / 111.0
	dLng := (f.rng.Float64()*2 - 1) * spread / (111.0 * math.Cos(f.opts.CenterLat*math.Pi/180))
	return f.opts.CenterLat + dLat, f.opts.CenterLng + dLng
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	lat, lng := f.jitter()
	user := &models.User{
		Name:    gofakeit.Name(),
		Email:   fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		Avatar:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Lat:     lat,
		Lng:     lng,
		Address: gofakeit.Street(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.PasswordHash = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.PasswordHash = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

var foodTypes = []string{
	"bread", "vegetables", "fruit", "dairy", "pastries",
	"canned goods", "cooked meal", "rice", "pasta", "soup",
}

var quantities = []string{
	"1 portion", "2 portions", "4 portions", "1 bag", "2 bags",
	"1 box", "half a loaf", "3 jars", "a crate",
}

// CreateFoodPost constructs and persists a food post near the configured
// center, owned by the given user.
func (f *Factory) CreateFoodPost(user *models.User, overrides ...func(*models.FoodPost)) (*models.FoodPost, error) {
	lat, lng := f.jitter()
	postType := models.FoodPostTypeDonation
	if f.rng.Float32() < 0.3 {
		postType = models.FoodPostTypeRequest
	}

	post := &models.FoodPost{
		UserID:      user.ID,
		Type:        postType,
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		FoodType:    foodTypes[f.rng.Intn(len(foodTypes))],
		Quantity:    quantities[f.rng.Intn(len(quantities))],
		ExpiryTime:  time.Now().Add(time.Duration(f.rng.Intn(72)+1) * time.Hour),
		Lat:         lat,
		Lng:         lng,
		Address:     gofakeit.Street(),
		Status:      models.FoodPostStatusAvailable,
	}
	if f.rng.Float32() < 0.5 {
		post.Images = []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())}
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 14
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

var blogTags = []string{
	"recipes", "zero-waste", "community", "gardening", "preserving",
	"meal-prep", "foraging", "composting", "events",
}

// CreateBlog constructs and persists a blog post by the given user.
func (f *Factory) CreateBlog(user *models.User, overrides ...func(*models.Blog)) (*models.Blog, error) {
	tagCount := f.rng.Intn(3) + 1
	tags := make([]string, 0, tagCount)
	for i := 0; i < tagCount; i++ {
		tags = append(tags, blogTags[f.rng.Intn(len(blogTags))])
	}

	blog := &models.Blog{
		UserID:  user.ID,
		Title:   gofakeit.Sentence(5),
		Content: gofakeit.Paragraph(2, 4, 10, "\n"),
		Tags:    tags,
	}
	if f.rng.Float32() < 0.4 {
		blog.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/400", gofakeit.UUID())
	}

	for _, override := range overrides {
		override(blog)
	}

	if err := f.db.Create(blog).Error; err != nil {
		return nil, err
	}
	return blog, nil
}

// CreateComment attaches a generated comment from user to the blog.
func (f *Factory) CreateComment(blog *models.Blog, user *models.User) (*models.BlogComment, error) {
	comment := &models.BlogComment{
		BlogID: blog.ID,
		UserID: user.ID,
		Text:   gofakeit.Sentence(f.rng.Intn(12) + 3),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReview persists a review of post's owner written by author.
func (f *Factory) CreateReview(post *models.FoodPost, author *models.User) (*models.Review, error) {
	review := &models.Review{
		FoodPostID:   post.ID,
		UserID:       author.ID,
		TargetUserID: post.UserID,
		Rating:       f.rng.Intn(3) + 3,
		Comment:      gofakeit.Sentence(f.rng.Intn(10) + 4),
	}
	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CreateChat opens a chat between two users, optionally scoped to a post,
// and fills it with a short back-and-forth.
func (f *Factory) CreateChat(a, b *models.User, post *models.FoodPost, messageCount int) (*models.Chat, error) {
	chat := &models.Chat{
		Participants: []models.User{*a, *b},
		LastMessage:  time.Now().UTC(),
	}
	if post != nil {
		chat.FoodPostID = &post.ID
	}
	if err := f.db.Create(chat).Error; err != nil {
		return nil, err
	}

	senders := []uint{a.ID, b.ID}
	for i := 0; i < messageCount; i++ {
		msg := &models.Message{
			ChatID:   chat.ID,
			SenderID: senders[i%2],
			Content:  gofakeit.Sentence(f.rng.Intn(10) + 2),
			Read:     i < messageCount-1,
		}
		if err := f.db.Create(msg).Error; err != nil {
			return nil, err
		}
		chat.LastMessage = msg.CreatedAt
	}

	if err := f.db.Model(chat).Update("last_message", chat.LastMessage).Error; err != nil {
		log.Printf("failed to bump chat %d last_message: %v", chat.ID, err)
	}
	return chat, nil
}
