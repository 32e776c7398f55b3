package server

import (
	"pictive/internal/cache"
	"pictive/internal/models"
	"pictive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost creates a post owned by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var input service.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.UserID = currentUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts returns the global timeline, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, limit := parsePage(c)
	result, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		ViewerID: currentUserID(c),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// GetPost returns a single post with its author and the viewer's like state.
// The like state depends on the viewer, so only anonymous reads are cached.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID := currentUserID(c)
	if viewerID == 0 {
		post, err := cache.CacheAside(c.UserContext(), cache.PostKey(postID), cache.PostTTL,
			func() (*models.Post, error) {
				return s.postService.GetPost(c.UserContext(), postID, 0)
			})
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(post)
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetFeed returns the authenticated user's personalized timeline. Feed pages
// are cached briefly rather than invalidated; a short TTL bounds staleness.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, limit := parsePage(c)
	userID := currentUserID(c)

	result, err := cache.CacheAside(c.UserContext(), cache.FeedKey(userID, page, limit), cache.FeedTTL,
		func() (*models.PostPage, error) {
			return s.feedService.Feed(c.UserContext(), userID, page, limit)
		})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// UpdatePost applies a partial edit to the caller's own post.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.UserID = currentUserID(c)
	input.PostID = postID

	post, err := s.postService.UpdatePost(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes the caller's own post and everything attached to it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost records a like on a post. Repeats are no-ops.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": true})
}

// UnlikePost removes a like from a post. Repeats are no-ops.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": false})
}
