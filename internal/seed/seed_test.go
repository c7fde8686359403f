package seed

import (
	"testing"

	"foodloop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FoodPost{},
		&models.Blog{},
		&models.BlogLike{},
		&models.BlogComment{},
		&models.Review{},
		&models.Chat{},
		&models.Message{},
	))
	return db
}

func TestSeed_PopulatesAllTables(t *testing.T) {
	db := setupSeedDB(t)

	opts := DefaultOptions()
	opts.NumUsers = 10
	opts.NumFoodPosts = 20
	opts.NumBlogs = 5
	opts.SkipBcrypt = true

	require.NoError(t, Seed(db, opts))

	var userCount, postCount, blogCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.FoodPost{}).Count(&postCount)
	db.Model(&models.Blog{}).Count(&blogCount)

	assert.Equal(t, int64(10), userCount)
	assert.Equal(t, int64(20), postCount)
	assert.Equal(t, int64(5), blogCount)

	// Fixed dev accounts always exist.
	var alice models.User
	require.NoError(t, db.Where("email = ?", "alice@foodloop.local").First(&alice).Error)

	// Every post stays within a valid lifecycle state.
	var posts []models.FoodPost
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.True(t, models.IsValidFoodPostStatus(p.Status), "post %d has status %q", p.ID, p.Status)
		if p.Status == models.FoodPostStatusAvailable {
			assert.Nil(t, p.AssignedToID, "available post %d should be unassigned", p.ID)
		} else {
			assert.NotNil(t, p.AssignedToID, "post %d in state %q should be assigned", p.ID, p.Status)
		}
	}
}

func TestSeed_ReviewsTargetPostOwners(t *testing.T) {
	db := setupSeedDB(t)

	opts := DefaultOptions()
	opts.NumUsers = 8
	opts.NumFoodPosts = 30
	opts.NumBlogs = 0
	opts.SkipBcrypt = true

	require.NoError(t, Seed(db, opts))

	var reviews []models.Review
	require.NoError(t, db.Find(&reviews).Error)
	for _, r := range reviews {
		var post models.FoodPost
		require.NoError(t, db.First(&post, r.FoodPostID).Error)
		assert.Equal(t, post.UserID, r.TargetUserID)
		assert.NotEqual(t, r.UserID, r.TargetUserID)
		assert.GreaterOrEqual(t, r.Rating, 1)
		assert.LessOrEqual(t, r.Rating, 5)
	}
}

func TestFactory_JitterStaysNearCenter(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, Options{CenterLat: 52.52, CenterLng: 13.405, SpreadKm: 5})

	for i := 0; i < 50; i++ {
		lat, lng := f.jitter()
		assert.InDelta(t, 52.52, lat, 0.05)
		assert.InDelta(t, 13.405, lng, 0.08)
	}
}

func TestFactory_CreateChatFillsMessages(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db, DefaultOptions())

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	chat, err := f.CreateChat(a, b, nil, 4)
	require.NoError(t, err)

	var msgs []models.Message
	require.NoError(t, db.Where("chat_id = ?", chat.ID).Order("created_at ASC").Find(&msgs).Error)
	require.Len(t, msgs, 4)
	assert.False(t, msgs[3].Read)
	for _, m := range msgs[:3] {
		assert.True(t, m.Read)
	}
}
