package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithOptions(db, Options{})
}

// NewSeederWithOptions creates a Seeder with explicit options. With DryRun
// set the database handle may be nil; nothing is written.
func NewSeederWithOptions(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll wipes the seeded tables. Posts go first to respect the foreign
// key to users.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		log.Println("[dry-run] ClearAll: skipped")
		return nil
	}
	log.Println("Clearing existing data...")
	if err := s.db.Exec("DELETE FROM posts").Error; err != nil {
		return err
	}
	if err := s.db.Exec("DELETE FROM users").Error; err != nil {
		return err
	}
	return nil
}

// SeedWellKnownAccounts creates the fixed admin and moderator logins every
// development environment gets.
func (s *Seeder) SeedWellKnownAccounts() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	accounts := []models.User{
		{
			Email:          "admin@inkwell.dev",
			HashedPassword: string(hashed),
			FirstName:      "Ada",
			LastName:       "Admin",
			Role:           models.RoleAdmin,
			IsActive:       true,
			IsVerified:     true,
		},
		{
			Email:          "moderator@inkwell.dev",
			HashedPassword: string(hashed),
			FirstName:      "Mo",
			LastName:       "Moderator",
			Role:           models.RoleModerator,
			IsActive:       true,
			IsVerified:     true,
		},
	}

	for i := range accounts {
		if s.opts.DryRun {
			log.Printf("[dry-run] SeedWellKnownAccounts: %s", accounts[i].Email)
			continue
		}
		if err := s.db.Create(&accounts[i]).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", accounts[i].Email, err)
		}
	}
	log.Printf("Created %d well-known accounts", len(accounts))
	return nil
}

// SeedUsers creates n random users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))
	return users, nil
}

// SeedPosts distributes n posts over the given authors.
func (s *Seeder) SeedPosts(authors []*models.User, n int) error {
	if len(authors) == 0 {
		return nil
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := authors[r.Intn(len(authors))]
		posts = append(posts, s.factory.BuildPost(author))
	}

	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return err
	}
	log.Printf("Created %d posts", len(posts))
	return nil
}
