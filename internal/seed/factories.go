// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how the seeder behaves.
type Options struct {
	// DryRun builds entities without persisting them.
	DryRun bool
	// SkipBcrypt stores plain passwords, useful for fast local reseeds.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, nextID: 1000}
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:      gofakeit.Email(),
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Bio:        gofakeit.Sentence(10),
		AvatarURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Role:       models.RoleUser,
		IsActive:   true,
		IsVerified: gofakeit.Bool(),
	}

	if f.opts.SkipBcrypt {
		user.HashedPassword = "Password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
		user.HashedPassword = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.FullName(), user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the given author without persisting it.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(gofakeit.Sentence(6), ".")
	content := gofakeit.Paragraph(3, 5, 12, "\n\n")

	post := &models.Post{
		UserID:  author.ID,
		Title:   title,
		Content: content,
		Slug:    fmt.Sprintf("%s-%s", service.Slugify(title), gofakeit.LetterN(6)),
		Excerpt: service.GenerateExcerpt(content),
		Tags:    strings.Join([]string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}, ","),
		Status:  models.PostStatusDraft,
	}

	// realistic created_at spread
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	back := time.Duration(r.Intn(maxDays))*24*time.Hour +
		time.Duration(r.Intn(24))*time.Hour +
		time.Duration(r.Intn(60))*time.Minute
	post.CreatedAt = time.Now().Add(-back)

	// Roughly two thirds of seeded posts are live.
	if r.Intn(3) != 0 {
		publishedAt := post.CreatedAt.Add(time.Duration(r.Intn(48)) * time.Hour)
		post.Status = models.PostStatusPublished
		post.PublishedAt = &publishedAt
		post.ViewCount = r.Intn(5000)
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}
