package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostStats aggregates post counts by lifecycle status.
type PostStats struct {
	TotalPosts     int64 `json:"total_posts"`
	PublishedPosts int64 `json:"published_posts"`
	DraftPosts     int64 `json:"draft_posts"`
	ArchivedPosts  int64 `json:"archived_posts"`
	TotalViews     int64 `json:"total_views"`
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, limit, offset int, publishedOnly bool) ([]models.Post, int64, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int, publishedOnly bool) ([]models.Post, int64, error)
	Search(ctx context.Context, query string, limit, offset int, publishedOnly bool) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint, slug string) error
	Stats(ctx context.Context) (*PostStats, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	key := cache.PostSlugKey(slug)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		defer observability.TrackQuery("select", "posts")()
		if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int, publishedOnly bool) ([]models.Post, int64, error) {
	return r.findPosts(ctx, r.db.WithContext(ctx), limit, offset, publishedOnly)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit, offset int, publishedOnly bool) ([]models.Post, int64, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return r.findPosts(ctx, db, limit, offset, publishedOnly)
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, publishedOnly bool) ([]models.Post, int64, error) {
	like := "%" + query + "%"
	db := r.db.WithContext(ctx).
		Where("title ILIKE ? OR content ILIKE ? OR tags ILIKE ?", like, like, like)
	return r.findPosts(ctx, db, limit, offset, publishedOnly)
}

// findPosts applies the shared visibility filter, count and page window.
func (r *postRepository) findPosts(ctx context.Context, db *gorm.DB, limit, offset int, publishedOnly bool) ([]models.Post, int64, error) {
	defer observability.TrackQuery("select", "posts")()

	if publishedOnly {
		db = db.Where("status = ?", models.PostStatusPublished)
	}

	var total int64
	if err := db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []models.Post
	if err := db.Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Post with this slug already exists")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID, post.Slug)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	// Fetch the slug first so both cache keys can be invalidated.
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "slug").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id, post.Slug)
	return nil
}

func (r *postRepository) IncrementViewCount(ctx context.Context, id uint, slug string) error {
	defer observability.TrackQuery("update", "posts")()
	// Single UPDATE so concurrent reads cannot lose increments.
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		return models.NewInternalError(err)
	}
	observability.PostViews.Inc()
	// Both cached representations carry the counter.
	cache.InvalidatePost(ctx, id, slug)
	return nil
}

func (r *postRepository) Stats(ctx context.Context) (*PostStats, error) {
	defer observability.TrackQuery("select", "posts")()
	stats := &PostStats{}

	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byStatus := map[models.PostStatus]*int64{
		models.PostStatusPublished: &stats.PublishedPosts,
		models.PostStatusDraft:     &stats.DraftPosts,
		models.PostStatusArchived:  &stats.ArchivedPosts,
	}
	for status, dest := range byStatus {
		if err := r.db.WithContext(ctx).Model(&models.Post{}).
			Where("status = ?", status).Count(dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("COALESCE(SUM(view_count), 0)").Scan(&stats.TotalViews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
