package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/v1/users/me
// @Summary Own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
// @Summary Update own profile
// @Description Apply only the submitted fields to the profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 422 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Update(c.Context(), requester, requester.ID, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/v1/users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} Paginated
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c)
	users, total, err := s.userService.List(c.Context(), p.Limit(), p.Offset())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(paginated(users, total, p))
}

// GetUserStats handles GET /api/v1/users/stats (admin only)
// @Summary Account statistics
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.UserStats
// @Failure 403 {object} models.ErrorResponse
// @Router /users/stats [get]
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	stats, err := s.userService.Stats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// GetUserProfile handles GET /api/v1/users/:id
// @Summary User profile by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}
	if requester.ID != id && !requester.IsAdmin() {
		return fail(c, models.NewForbiddenError("Not enough permissions to view this profile"))
	}

	user, err := s.userService.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdateUser handles PUT /api/v1/users/:id
// @Summary Update a user
// @Description Users can edit themselves; admins can edit anyone and change roles
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Update(c.Context(), requester, id, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin only)
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{detail=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	requester, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	if err := s.userService.Delete(c.Context(), requester, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"detail": "User deleted"})
}

// GetUserPosts handles GET /api/v1/users/:id/posts
// @Summary Posts by author
// @Description Authors and moderators also see unpublished posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} Paginated
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer, err := s.currentUser(c)
	if err != nil {
		return fail(c, err)
	}

	p := parsePagination(c)
	posts, total, err := s.postService.ListByUser(c.Context(), viewer, id, p.Limit(), p.Offset())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(paginated(posts, total, p))
}
