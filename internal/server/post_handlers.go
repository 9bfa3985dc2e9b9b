package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/v1/posts
// @Summary Create a post
// @Description Create a draft, or publish immediately with publish=true
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post data"
// @Success 201 {object} models.Post
// @Failure 422 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	author, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req service.CreatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.Context(), author, req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/v1/posts
// @Summary List posts
// @Description Anonymous viewers see published posts; moderators see all
// @Tags posts
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} Paginated
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)
	p := parsePagination(c)

	posts, total, err := s.postService.List(c.Context(), viewer, p.Limit(), p.Offset())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(paginated(posts, total, p))
}

// SearchPosts handles GET /api/v1/posts/search
// @Summary Search posts
// @Description Case-insensitive match over title, content and tags
// @Tags posts
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} Paginated
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	viewer := s.optionalUser(c)
	p := parsePagination(c)

	posts, total, err := s.postService.Search(c.Context(), viewer, c.Query("q"), p.Limit(), p.Offset())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(paginated(posts, total, p))
}

// GetPostStats handles GET /api/v1/posts/stats (moderator only)
// @Summary Post statistics
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.PostStats
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/stats [get]
func (s *Server) GetPostStats(c *fiber.Ctx) error {
	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	stats, err := s.postService.Stats(c.Context(), requester)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// GetPost handles GET /api/v1/posts/:id
// @Summary Post by ID
// @Description Reading a published post counts a view
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetByID(c.Context(), s.optionalUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// GetPostBySlug handles GET /api/v1/posts/slug/:slug
// @Summary Post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/slug/{slug} [get]
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid slug"))
	}

	post, err := s.postService.GetBySlug(c.Context(), s.optionalUser(c), slug)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/v1/posts/:id
// @Summary Update a post
// @Description Owners and moderators may edit; content changes refresh the excerpt
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdatePostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Update(c.Context(), requester, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/v1/posts/:id
// @Summary Delete a post
// @Description Owners and admins may delete
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{detail=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	if err := s.postService.Delete(c.Context(), requester, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Post deleted"})
}

// PublishPost handles POST /api/v1/posts/:id/publish
// @Summary Publish a draft
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/publish [post]
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	post, err := s.postService.Publish(c.Context(), requester, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// ArchivePost handles POST /api/v1/posts/:id/archive (moderator only)
// @Summary Archive a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id}/archive [post]
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	post, err := s.postService.Archive(c.Context(), requester, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}
