package service

import (
	"context"

	"pictive/internal/models"
	"pictive/internal/observability"
	"pictive/internal/repository"
)

type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo}
}

// Feed returns the personalized timeline for userID: the user's own posts
// plus posts from everyone they follow, newest first. A user who follows
// nobody sees only their own posts.
func (s *FeedService) Feed(ctx context.Context, userID uint, page, limit int) (*models.PostPage, error) {
	observability.FeedQueries.Inc()

	followingIDs, err := s.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followingIDs, userID)

	page, limit = NormalizePage(page, limit)
	posts, total, err := s.postRepo.ListByAuthors(ctx, authorIDs, userID, (page-1)*limit, limit)
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
