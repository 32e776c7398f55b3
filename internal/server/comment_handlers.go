package server

import (
	"pictive/internal/models"
	"pictive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment adds a comment, or a reply when parent_id is set. The target
// post comes from the request body.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var input service.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.UserID = currentUserID(c)

	comment, err := s.commentService.CreateComment(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComments lists a post's top-level comments with their replies.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	page, limit := parsePage(c)
	comments, total, err := s.commentService.ListComments(c.UserContext(), postID, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"total":    total,
	})
}

// GetReplies lists a comment's direct replies, oldest first.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	replies, err := s.commentService.ListReplies(c.UserContext(), commentID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"replies": replies})
}

// UpdateComment edits the caller's own comment.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	input.UserID = currentUserID(c)
	input.CommentID = commentID

	comment, err := s.commentService.UpdateComment(c.UserContext(), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes the caller's own comment and its replies.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
