package server

import (
	"pictive/internal/cache"
	"pictive/internal/models"
	"pictive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns a user's public profile with aggregate counts.
// Anonymous viewers get IsFollowing=false; the follow state depends on the
// viewer, so only anonymous lookups are cached.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID := currentUserID(c)

	if viewerID == 0 {
		profile, err := cache.CacheAside(c.UserContext(), cache.ProfileKey(username), cache.ProfileTTL,
			func() (*models.Profile, error) {
				return s.userService.GetProfile(c.UserContext(), username, 0)
			})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(profile)
	}

	profile, err := s.userService.GetProfile(c.UserContext(), username, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// MyProfile returns the authenticated user's own profile with counts.
func (s *Server) MyProfile(c *fiber.Ctx) error {
	profile, err := s.userService.MyProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile applies a partial update to the caller's profile.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// FollowUser creates a follow edge to the named user.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	if err := s.userService.Follow(c.UserContext(), currentUserID(c), c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"following": true})
}

// UnfollowUser removes a follow edge to the named user.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	if err := s.userService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// GetFollowers lists the users following the named user.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	users, err := s.userService.Followers(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetFollowing lists the users the named user follows.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	users, err := s.userService.Following(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetUserPosts returns the named user's posts, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page, limit := parsePage(c)
	result, err := s.postService.UserPosts(c.UserContext(), c.Params("username"), currentUserID(c), page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
