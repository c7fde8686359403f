package seed

import (
	"fmt"
	"log"

	"foodloop/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers     int
	NumFoodPosts int
	NumBlogs     int

	// CenterLat/CenterLng anchor generated coordinates; SpreadKm controls
	// how far from the anchor posts and users scatter.
	CenterLat float64
	CenterLng float64
	SpreadKm  float64

	// MaxDays caps how far in the past generated posts are dated.
	MaxDays int

	SkipBcrypt  bool
	ShouldClean bool
}

// DefaultOptions seeds a small neighborhood around central Berlin.
func DefaultOptions() Options {
	return Options{
		NumUsers:     25,
		NumFoodPosts: 60,
		NumBlogs:     15,
		CenterLat:    52.5200,
		CenterLng:    13.4050,
		SpreadKm:     8,
		MaxDays:      14,
	}
}

// Seed populates the database with demo data: users scattered around the
// configured center, food posts in various lifecycle states, blogs with
// likes and comments, reviews for completed exchanges, and a few chats.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d users, %d food posts, %d blogs...", opts.NumUsers, opts.NumFoodPosts, opts.NumBlogs)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db, opts)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	posts, err := createFoodPosts(f, users, opts.NumFoodPosts)
	if err != nil {
		return fmt.Errorf("failed to create food posts: %w", err)
	}
	log.Printf("✓ %d food posts created", len(posts))

	if err := advanceLifecycles(f, users, posts); err != nil {
		return fmt.Errorf("failed to advance post lifecycles: %w", err)
	}

	blogs, err := createBlogs(f, users, opts.NumBlogs)
	if err != nil {
		return fmt.Errorf("failed to create blogs: %w", err)
	}
	log.Printf("✓ %d blogs created", len(blogs))

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() != "postgres" {
		return db.Exec(`DELETE FROM messages; DELETE FROM chat_participants; DELETE FROM chats;
			DELETE FROM reviews; DELETE FROM blog_comments; DELETE FROM blog_likes;
			DELETE FROM blogs; DELETE FROM food_posts; DELETE FROM users;`).Error
	}
	sql := `TRUNCATE TABLE messages, chat_participants, chats, reviews,
		blog_comments, blog_likes, blogs, food_posts, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a couple of fixed accounts so a dev can log in.
	baseNames := []string{"alice", "bob"}
	for _, n := range baseNames {
		if len(users) >= count {
			break
		}
		name := n
		user, err := f.CreateUser(func(u *models.User) {
			u.Name = name
			u.Email = fmt.Sprintf("%s@foodloop.local", name)
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("failed to create user %d: %v", i, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

func createFoodPosts(f *Factory, users []*models.User, count int) ([]*models.FoodPost, error) {
	posts := make([]*models.FoodPost, 0, count)
	for i := 0; i < count; i++ {
		user := users[f.rng.Intn(len(users))]
		post, err := f.CreateFoodPost(user)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// advanceLifecycles claims roughly a third of the posts and completes half of
// the claimed ones, adding a review and a chat for each completion.
func advanceLifecycles(f *Factory, users []*models.User, posts []*models.FoodPost) error {
	claimed, completed, reviewed := 0, 0, 0

	for _, post := range posts {
		if f.rng.Float32() >= 0.33 {
			continue
		}

		claimer := users[f.rng.Intn(len(users))]
		if claimer.ID == post.UserID {
			continue
		}

		post.Status = models.FoodPostStatusPending
		post.AssignedToID = &claimer.ID
		if err := f.db.Save(post).Error; err != nil {
			return err
		}
		claimed++

		if _, err := f.CreateChat(claimer, userByID(users, post.UserID), post, f.rng.Intn(5)+2); err != nil {
			return err
		}

		if f.rng.Float32() < 0.5 {
			continue
		}

		post.Status = models.FoodPostStatusCompleted
		if err := f.db.Save(post).Error; err != nil {
			return err
		}
		completed++

		if _, err := f.CreateReview(post, claimer); err != nil {
			return err
		}
		reviewed++
	}

	log.Printf("✓ %d posts claimed, %d completed, %d reviews written", claimed, completed, reviewed)
	return nil
}

func userByID(users []*models.User, id uint) *models.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return users[0]
}

func createBlogs(f *Factory, users []*models.User, count int) ([]*models.Blog, error) {
	blogs := make([]*models.Blog, 0, count)
	for i := 0; i < count; i++ {
		author := users[f.rng.Intn(len(users))]
		blog, err := f.CreateBlog(author)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)

		// Sprinkle likes and comments from other users.
		likers := f.rng.Intn(len(users))
		for j := 0; j < likers; j++ {
			u := users[f.rng.Intn(len(users))]
			like := models.BlogLike{BlogID: blog.ID, UserID: u.ID}
			// duplicates are expected; the composite key rejects them
			_ = f.db.Create(&like).Error
		}

		comments := f.rng.Intn(4)
		for j := 0; j < comments; j++ {
			u := users[f.rng.Intn(len(users))]
			if _, err := f.CreateComment(blog, u); err != nil {
				return nil, err
			}
		}
	}
	return blogs, nil
}
