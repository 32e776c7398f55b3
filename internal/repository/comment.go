package repository

import (
	"context"
	"errors"
	"time"

	"pictive/internal/models"
	"pictive/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, offset, limit int) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

// GormCommentRepository implements CommentRepository using GORM
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GORM-based comment repository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment and adjusts the post's comment_count, plus the
// parent's reply_count when the comment is a reply, in one transaction.
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer observability.ObserveQuery("insert", "comments", time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *comment.ParentID).Error; err != nil {
				return err
			}
			if parent.PostID != comment.PostID {
				return models.NewValidationError("parent comment belongs to a different post")
			}
			if err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Post or parent comment", comment.PostID)
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	// Reload with the author for the response body.
	if err := r.db.WithContext(ctx).Preload("User").First(comment, comment.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *GormCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observability.ObserveQuery("select", "comments", time.Now())
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListTopLevel returns a post's top-level comments newest-first with their
// direct replies preloaded oldest-first.
func (r *GormCommentRepository) ListTopLevel(ctx context.Context, postID uint, offset, limit int) ([]*models.Comment, int64, error) {
	defer observability.ObserveQuery("select", "comments", time.Now())
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL", postID).
		Count(&total).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []*models.Comment
	err = r.db.WithContext(ctx).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Replies.User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *GormCommentRepository) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	defer observability.ObserveQuery("select", "comments", time.Now())
	var replies []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *GormCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer observability.ObserveQuery("update", "comments", time.Now())
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes a comment and its direct replies, decrements the parent's
// reply_count for replies, and subtracts 1 plus the number of direct replies
// from the post's comment_count, all in one transaction.
func (r *GormCommentRepository) Delete(ctx context.Context, id uint) error {
	defer observability.ObserveQuery("delete", "comments", time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			return err
		}

		var replyCount int64
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", id).
			Count(&replyCount).Error; err != nil {
			return err
		}
		if replyCount > 0 {
			if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return err
		}

		if comment.ParentID != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", *comment.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", replyCount+1)).Error
	})
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Comment", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
