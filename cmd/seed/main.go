// Command seed populates the development database with demo data.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"

	"gorm.io/gorm"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build entities without touching the database")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, clean=%v, dry-run=%v\n",
		*numUsers, *numPosts, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	var db *gorm.DB
	if !*dryRun {
		if _, err := database.Connect(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		db = database.DB
	}

	s := seed.NewSeederWithOptions(db, seed.Options{DryRun: *dryRun})

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.SeedWellKnownAccounts(); err != nil {
		log.Fatalf("Account seeding failed: %v", err)
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if err := s.SeedPosts(users, *numPosts); err != nil {
		log.Fatalf("Post seeding failed: %v", err)
	}

	if *dryRun {
		log.Println("Dry run complete, nothing was written")
		return
	}
	log.Println("All done! Test users share the password: Password123")
}
