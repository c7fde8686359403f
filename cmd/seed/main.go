// Command main runs the database seeder for Foodloop.
package main

import (
	"flag"
	"log"

	"foodloop/internal/config"
	"foodloop/internal/database"
	"foodloop/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of food posts to create")
	numBlogs := flag.Int("blogs", 15, "Number of blogs to create")
	lat := flag.Float64("lat", 52.5200, "Center latitude for generated locations")
	lng := flag.Float64("lng", 13.4050, "Center longitude for generated locations")
	spread := flag.Float64("spread", 8, "Scatter radius in kilometers")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d food posts, %d blogs around (%.4f, %.4f), clean=%v\n",
		*numUsers, *numPosts, *numBlogs, *lat, *lng, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:     *numUsers,
		NumFoodPosts: *numPosts,
		NumBlogs:     *numBlogs,
		CenterLat:    *lat,
		CenterLng:    *lng,
		SpreadKm:     *spread,
		MaxDays:      14,
		ShouldClean:  *shouldClean,
	}

	if err := seed.Seed(db, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with demo data.")
	log.Println("📧 All demo users have the password: password123")
}
