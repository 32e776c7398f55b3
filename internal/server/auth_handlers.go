package server

import (
	"log/slog"

	"pictive/internal/middleware"
	"pictive/internal/models"
	"pictive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles new account creation and returns a signed token along
// with the created user.
func (s *Server) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.authService.IssueToken(user)
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login authenticates by email or username and returns a signed token.
func (s *Server) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Login(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}

	token, err := s.authService.IssueToken(user)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's own record.
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
