package repository

import (
	"context"
	"time"

	"pictive/internal/models"
	"pictive/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow edge data access
type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID uint) error
	Delete(ctx context.Context, followerID, followeeID uint) error
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowers(ctx context.Context, userID uint) ([]*models.User, error)
	ListFollowing(ctx context.Context, userID uint) ([]*models.User, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

// GormFollowRepository implements FollowRepository using GORM
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-based follow repository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) Create(ctx context.Context, followerID, followeeID uint) error {
	defer observability.ObserveQuery("insert", "follows", time.Now())
	follow := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *GormFollowRepository) Delete(ctx context.Context, followerID, followeeID uint) error {
	defer observability.ObserveQuery("delete", "follows", time.Now())
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewValidationError("not following this user")
	}
	return nil
}

func (r *GormFollowRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *GormFollowRepository) ListFollowers(ctx context.Context, userID uint) ([]*models.User, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *GormFollowRepository) ListFollowing(ctx context.Context, userID uint) ([]*models.User, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *GormFollowRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	defer observability.ObserveQuery("select", "follows", time.Now())
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
