package repository

import (
	"context"
	"time"

	"pictive/internal/models"
	"pictive/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, viewerID uint, offset, limit int) ([]*models.Post, int64, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error)
	ListByUser(ctx context.Context, userID uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
}

// GormPostRepository implements PostRepository using GORM
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.ObserveQuery("insert", "posts", time.Now())
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	// Reload with the author for the response body.
	if err := r.db.WithContext(ctx).Preload("User").First(post, post.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// annotateLiked marks each post with whether viewerID has liked it.
// A zero viewerID means an unauthenticated request; Liked stays false.
func (r *GormPostRepository) annotateLiked(ctx context.Context, posts []*models.Post, viewerID uint) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	var likedIDs []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", viewerID, ids).
		Pluck("post_id", &likedIDs).Error
	if err != nil {
		return err
	}
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}
	for _, p := range posts {
		p.Liked = liked[p.ID]
	}
	return nil
}

func (r *GormPostRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	defer observability.ObserveQuery("select", "posts", time.Now())
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if isNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	if err := r.annotateLiked(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *GormPostRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Post{})).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	err := scope(r.db.WithContext(ctx)).
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if err := r.annotateLiked(ctx, posts, viewerID); err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func (r *GormPostRepository) List(ctx context.Context, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	defer observability.ObserveQuery("select", "posts", time.Now())
	return r.list(ctx, func(db *gorm.DB) *gorm.DB { return db }, viewerID, offset, limit)
}

func (r *GormPostRepository) ListByAuthors(ctx context.Context, authorIDs []uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	defer observability.ObserveQuery("select", "posts", time.Now())
	if len(authorIDs) == 0 {
		return []*models.Post{}, 0, nil
	}
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id IN ?", authorIDs)
	}
	return r.list(ctx, scope, viewerID, offset, limit)
}

func (r *GormPostRepository) ListByUser(ctx context.Context, userID uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	defer observability.ObserveQuery("select", "posts", time.Now())
	scope := func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
	return r.list(ctx, scope, viewerID, offset, limit)
}

func (r *GormPostRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	defer observability.ObserveQuery("select", "posts", time.Now())
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.ObserveQuery("update", "posts", time.Now())
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes a post together with its comments and likes. Counter
// columns live on the post row, so they vanish with it.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	defer observability.ObserveQuery("delete", "posts", time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Post", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Like records a like and bumps the post's like_count in one transaction.
// Liking an already-liked post is a no-op.
func (r *GormPostRepository) Like(ctx context.Context, userID, postID uint) error {
	defer observability.ObserveQuery("insert", "likes", time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}
		like := models.Like{UserID: userID, PostID: postID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already liked
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike removes a like and decrements like_count. Unliking a post the user
// never liked is a no-op.
func (r *GormPostRepository) Unlike(ctx context.Context, userID, postID uint) error {
	defer observability.ObserveQuery("delete", "likes", time.Now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}
		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		if isNotFound(err) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *GormPostRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	defer observability.ObserveQuery("select", "likes", time.Now())
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
