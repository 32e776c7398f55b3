package service

import (
	"context"
	"strings"

	"pictive/internal/cache"
	"pictive/internal/models"
	"pictive/internal/repository"
	"pictive/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	UserID   uint   `json:"-"`
	PostID   uint   `json:"post_id"`
	ParentID *uint  `json:"parent_id"`
	Content  string `json:"content"`
}

type UpdateCommentInput struct {
	UserID    uint   `json:"-"`
	CommentID uint   `json:"-"`
	Content   string `json:"content"`
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// CreateComment adds a comment or, when ParentID is set, a reply. Replies to
// replies are rejected so threads stay one level deep.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, models.NewValidationError("cannot reply to a reply")
		}
	}

	comment := &models.Comment{
		Content:  strings.TrimSpace(in.Content),
		UserID:   in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, in.PostID)
	return comment, nil
}

// ListComments returns a post's top-level comments with their replies.
func (s *CommentService) ListComments(ctx context.Context, postID uint, page, limit int) ([]*models.Comment, int64, error) {
	// Listing comments of a missing post is a 404, not an empty page.
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, 0, err
	}
	page, limit = NormalizePage(page, limit)
	return s.commentRepo.ListTopLevel(ctx, postID, (page-1)*limit, limit)
}

// ListReplies returns a comment's direct replies, oldest first. Top-level
// comments read newest first; replies read in thread order.
func (s *CommentService) ListReplies(ctx context.Context, commentID uint) ([]*models.Comment, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListReplies(ctx, commentID)
}

// UpdateComment edits a comment's content. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("you can only edit your own comments")
	}
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment.Content = strings.TrimSpace(in.Content)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return comment, nil
}

// DeleteComment removes a comment and its direct replies. Only the author
// may delete; owning the post grants no moderation rights over comments.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.NewForbiddenError("you can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}
