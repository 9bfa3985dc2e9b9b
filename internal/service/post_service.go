package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

const (
	maxTitleLength   = 200
	maxContentLength = 10000
	excerptMaxLength = 200
)

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// PostService handles post lifecycle, authorization policy and derived
// content fields such as slugs and excerpts.
type PostService struct {
	postRepo repository.PostRepository
}

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Tags    string `json:"tags"`
	Publish bool   `json:"publish"`
}

// UpdatePostInput uses pointers so that absent fields are left untouched.
type UpdatePostInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tags    *string `json:"tags"`
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// Create validates the input and stores a new post owned by author.
// The slug is derived from the title; on collision a timestamp suffix makes
// it unique.
func (s *PostService) Create(ctx context.Context, author *models.User, in CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "posts.create")
	defer span.End()

	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title must not be empty"
	} else if len(in.Title) > maxTitleLength {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "content must not be empty"
	} else if len(in.Content) > maxContentLength {
		fields["content"] = fmt.Sprintf("content must be at most %d characters", maxContentLength)
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	post := &models.Post{
		UserID:  author.ID,
		Title:   in.Title,
		Content: in.Content,
		Tags:    in.Tags,
		Slug:    Slugify(in.Title),
		Excerpt: GenerateExcerpt(in.Content),
		Status:  models.PostStatusDraft,
	}
	if in.Publish {
		now := time.Now()
		post.Status = models.PostStatusPublished
		post.PublishedAt = &now
	}

	err := s.postRepo.Create(ctx, post)
	if err != nil && isConflict(err) {
		// Slug taken; retry once with a timestamp suffix.
		post.Slug = fmt.Sprintf("%s-%d", post.Slug, time.Now().Unix())
		err = s.postRepo.Create(ctx, post)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetByID returns a post, enforcing visibility: drafts and archived posts
// are only visible to users who may edit them. Views of published posts are
// counted.
func (s *PostService) GetByID(ctx context.Context, viewer *models.User, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(viewer, post); err != nil {
		return nil, err
	}
	s.countView(ctx, post)
	return post, nil
}

// GetBySlug returns a post by its slug with the same visibility rules as
// GetByID.
func (s *PostService) GetBySlug(ctx context.Context, viewer *models.User, slug string) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(viewer, post); err != nil {
		return nil, err
	}
	s.countView(ctx, post)
	return post, nil
}

// List returns a page of posts. Moderators see every post, other viewers see
// published posts only.
func (s *PostService) List(ctx context.Context, viewer *models.User, limit, offset int) ([]models.Post, int64, error) {
	return s.postRepo.List(ctx, limit, offset, !isModerator(viewer))
}

// ListByUser returns a page of one author's posts. The author and moderators
// see drafts too.
func (s *PostService) ListByUser(ctx context.Context, viewer *models.User, authorID uint, limit, offset int) ([]models.Post, int64, error) {
	publishedOnly := !(isModerator(viewer) || (viewer != nil && viewer.ID == authorID))
	return s.postRepo.ListByUser(ctx, authorID, limit, offset, publishedOnly)
}

// Search finds posts matching the query in title, content or tags.
func (s *PostService) Search(ctx context.Context, viewer *models.User, query string, limit, offset int) ([]models.Post, int64, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, models.NewValidationError("Search query must not be empty")
	}
	span, ctx := observability.NewSpan(ctx, "posts.search")
	defer span.End()
	return s.postRepo.Search(ctx, query, limit, offset, !isModerator(viewer))
}

// Update applies the submitted fields. A content change regenerates the
// excerpt; the slug stays stable so existing links keep working.
func (s *PostService) Update(ctx context.Context, requester *models.User, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanEditPost(post) {
		return nil, models.NewForbiddenError("Not enough permissions to edit this post")
	}

	fields := map[string]string{}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			fields["title"] = "title must not be empty"
		} else if len(*in.Title) > maxTitleLength {
			fields["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
		} else {
			post.Title = *in.Title
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			fields["content"] = "content must not be empty"
		} else if len(*in.Content) > maxContentLength {
			fields["content"] = fmt.Sprintf("content must be at most %d characters", maxContentLength)
		} else {
			post.Content = *in.Content
			post.Excerpt = GenerateExcerpt(*in.Content)
		}
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Owners and admins may delete.
func (s *PostService) Delete(ctx context.Context, requester *models.User, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanDeletePost(post) {
		return models.NewForbiddenError("Not enough permissions to delete this post")
	}
	return s.postRepo.Delete(ctx, id)
}

// Publish moves a draft to published and stamps the publication time.
// Republishing an already published post is rejected.
func (s *PostService) Publish(ctx context.Context, requester *models.User, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanEditPost(post) {
		return nil, models.NewForbiddenError("Not enough permissions to publish this post")
	}
	if post.IsPublished() {
		return nil, models.NewValidationError("Post is already published")
	}

	now := time.Now()
	post.Status = models.PostStatusPublished
	post.PublishedAt = &now
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Archive retires a post from public view. Moderator only.
func (s *PostService) Archive(ctx context.Context, requester *models.User, id uint) (*models.Post, error) {
	if !requester.IsModerator() {
		return nil, models.NewForbiddenError("Only moderators can archive posts")
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostStatusArchived {
		return nil, models.NewValidationError("Post is already archived")
	}

	post.Status = models.PostStatusArchived
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Stats returns aggregate post counts. Moderator only.
func (s *PostService) Stats(ctx context.Context, requester *models.User) (*repository.PostStats, error) {
	if !requester.IsModerator() {
		return nil, models.NewForbiddenError("Only moderators can view post statistics")
	}
	return s.postRepo.Stats(ctx)
}

// checkVisibility hides unpublished posts from viewers who may not edit
// them. Hidden posts read as not found rather than forbidden so their
// existence is not leaked.
func (s *PostService) checkVisibility(viewer *models.User, post *models.Post) error {
	if post.IsPublished() {
		return nil
	}
	if viewer != nil && viewer.CanEditPost(post) {
		return nil
	}
	return models.NewNotFoundError("Post", post.ID)
}

// countView increments the view counter for published posts. Failures are
// ignored; a lost count never breaks a read.
func (s *PostService) countView(ctx context.Context, post *models.Post) {
	if !post.IsPublished() {
		return
	}
	_ = s.postRepo.IncrementViewCount(ctx, post.ID, post.Slug)
	post.ViewCount++
}

func isModerator(u *models.User) bool {
	return u != nil && u.IsModerator()
}

func isConflict(err error) bool {
	appErr, ok := err.(*models.AppError)
	return ok && appErr.Code == "CONFLICT"
}

// Slugify converts a title into a URL-safe slug.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fmt.Sprintf("post-%d", time.Now().Unix())
	}
	if len(slug) > 200 {
		slug = strings.Trim(slug[:200], "-")
	}
	return slug
}

// GenerateExcerpt returns the leading part of content, cut at a word
// boundary and suffixed with an ellipsis when truncated.
func GenerateExcerpt(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= excerptMaxLength {
		return content
	}

	cut := content[:excerptMaxLength]
	// Never split a multi-byte rune at the cut point.
	for len(cut) > 0 && !utf8.RuneStart(content[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
