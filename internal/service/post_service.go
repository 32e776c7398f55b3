package service

import (
	"context"
	"strings"

	"pictive/internal/cache"
	"pictive/internal/models"
	"pictive/internal/repository"
	"pictive/internal/validation"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

type ListPostsInput struct {
	ViewerID uint
	Page     int
	Limit    int
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

// NormalizePage clamps page and limit to sane bounds.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post := &models.Post{
		Content:  strings.TrimSpace(in.Content),
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

// ListPosts returns the global timeline, newest first.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	page, limit := NormalizePage(in.Page, in.Limit)
	posts, total, err := s.postRepo.List(ctx, in.ViewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.PostPage{
		Posts:      posts,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UserPosts returns one user's posts, newest first.
func (s *PostService) UserPosts(ctx context.Context, username string, viewerID uint, page, limit int) (*models.PostPage, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	page, limit = NormalizePage(page, limit)
	posts, total, err := s.postRepo.ListByUser(ctx, user.ID, viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.PostPage{
		Posts:      posts,
		Total:      total,
		Page:       page,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdatePost applies a partial update. Only the author may edit a post.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("you can only edit your own posts")
	}

	if in.Content != nil {
		if err := validation.ValidatePostContent(*in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = strings.TrimSpace(*in.Content)
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, post.ID)
	return post, nil
}

// DeletePost removes a post and everything attached to it. Only the author
// may delete a post.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("you can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// LikePost records a like. Already-liked posts are left unchanged.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

// UnlikePost removes a like. Not-liked posts are left unchanged.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}
