package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Run("Creates a draft", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		author := &models.User{ID: 7, Role: models.RoleUser, IsActive: true}
		userRepo.On("GetByID", mock.Anything, uint(7)).Return(author, nil)
		postRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Post")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Post).ID = 1
			}).Return(nil)

		req := jsonRequest(t, http.MethodPost, "/api/v1/posts", map[string]any{
			"title":   "My First Post",
			"content": "Hello world content.",
		})
		req.Header.Set("Authorization", bearerToken(t, 7))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body models.Post
		decodeBody(t, resp, &body)
		assert.Equal(t, models.PostStatusDraft, body.Status)
		assert.Equal(t, "my-first-post", body.Slug)
	})

	t.Run("Anonymous rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		req := jsonRequest(t, http.MethodPost, "/api/v1/posts", map[string]any{
			"title":   "Nope",
			"content": "No token.",
		})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Missing fields rejected with causes", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		author := &models.User{ID: 7, Role: models.RoleUser, IsActive: true}
		userRepo.On("GetByID", mock.Anything, uint(7)).Return(author, nil)

		req := jsonRequest(t, http.MethodPost, "/api/v1/posts", map[string]any{
			"title": "", "content": "",
		})
		req.Header.Set("Authorization", bearerToken(t, 7))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Contains(t, body.Fields, "title")
		assert.Contains(t, body.Fields, "content")
	})
}

func TestGetPosts(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	_, app := newTestServer(t, userRepo, postRepo)

	now := time.Now()
	posts := []models.Post{
		{ID: 1, Title: "One", Status: models.PostStatusPublished, PublishedAt: &now},
		{ID: 2, Title: "Two", Status: models.PostStatusPublished, PublishedAt: &now},
	}
	postRepo.On("List", mock.Anything, 10, 0, true).Return(posts, int64(12), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Items []models.Post `json:"items"`
		Total int64         `json:"total"`
		Page  int           `json:"page"`
		Pages int64         `json:"pages"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Items, 2)
	assert.Equal(t, int64(12), body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, int64(2), body.Pages)
}

func TestGetPost(t *testing.T) {
	t.Run("Published post visible and counted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		now := time.Now()
		post := &models.Post{ID: 5, UserID: 1, Status: models.PostStatusPublished, PublishedAt: &now}
		postRepo.On("GetByID", mock.Anything, uint(5)).Return(post, nil)
		postRepo.On("IncrementViewCount", mock.Anything, uint(5), mock.Anything).Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/5", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		postRepo.AssertCalled(t, "IncrementViewCount", mock.Anything, uint(5), mock.Anything)
	})

	t.Run("Draft hidden from anonymous viewers", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		post := &models.Post{ID: 5, UserID: 1, Status: models.PostStatusDraft}
		postRepo.On("GetByID", mock.Anything, uint(5)).Return(post, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/5", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Refresh token does not reveal drafts to their owner", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		post := &models.Post{ID: 5, UserID: 7, Status: models.PostStatusDraft}
		postRepo.On("GetByID", mock.Anything, uint(5)).Return(post, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/5", nil)
		req.Header.Set("Authorization", refreshBearerToken(t, 7))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		// The token never resolved to a user.
		userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Invalid ID rejected", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/zero", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSearchPosts(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	_, app := newTestServer(t, userRepo, postRepo)

	postRepo.On("Search", mock.Anything, "golang", 10, 0, true).
		Return([]models.Post{{ID: 1, Title: "Golang"}}, int64(1), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/search?q=golang", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("Empty query rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/search", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPublishPost(t *testing.T) {
	t.Run("Owner publishes and publish time is set", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		owner := &models.User{ID: 7, Role: models.RoleUser, IsActive: true}
		draft := &models.Post{ID: 5, UserID: 7, Status: models.PostStatusDraft}
		userRepo.On("GetByID", mock.Anything, uint(7)).Return(owner, nil)
		postRepo.On("GetByID", mock.Anything, uint(5)).Return(draft, nil)
		postRepo.On("Update", mock.Anything, draft).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/5/publish", nil)
		req.Header.Set("Authorization", bearerToken(t, 7))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body models.Post
		decodeBody(t, resp, &body)
		assert.Equal(t, models.PostStatusPublished, body.Status)
		require.NotNil(t, body.PublishedAt)
	})

	t.Run("Stranger forbidden", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		stranger := &models.User{ID: 8, Role: models.RoleUser, IsActive: true}
		draft := &models.Post{ID: 5, UserID: 7, Status: models.PostStatusDraft}
		userRepo.On("GetByID", mock.Anything, uint(8)).Return(stranger, nil)
		postRepo.On("GetByID", mock.Anything, uint(5)).Return(draft, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/5/publish", nil)
		req.Header.Set("Authorization", bearerToken(t, 8))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestGetPostStats(t *testing.T) {
	t.Run("Moderator allowed", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		moderator := &models.User{ID: 3, Role: models.RoleModerator, IsActive: true}
		userRepo.On("GetByID", mock.Anything, uint(3)).Return(moderator, nil)
		postRepo.On("Stats", mock.Anything).Return(&repository.PostStats{TotalPosts: 4}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/stats", nil)
		req.Header.Set("Authorization", bearerToken(t, 3))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Regular user forbidden", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		postRepo := new(MockPostRepository)
		_, app := newTestServer(t, userRepo, postRepo)

		user := &models.User{ID: 7, Role: models.RoleUser, IsActive: true}
		userRepo.On("GetByID", mock.Anything, uint(7)).Return(user, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/stats", nil)
		req.Header.Set("Authorization", bearerToken(t, 7))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
