package service

import (
	"context"
	"strings"

	"pictive/internal/cache"
	"pictive/internal/models"
	"pictive/internal/repository"
	"pictive/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
}

type UpdateProfileInput struct {
	UserID      uint    `json:"-"`
	Email       *string `json:"email"`
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo, postRepo: postRepo}
}

// GetProfile builds the public profile for a username. viewerID 0 means an
// unauthenticated viewer; IsFollowing stays false.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	postCount, err := s.postRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewerID != 0 && viewerID != user.ID {
		isFollowing, err = s.followRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return &models.Profile{
		ID:             user.ID,
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Bio:            user.Bio,
		AvatarURL:      user.AvatarURL,
		PostCount:      postCount,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
		CreatedAt:      user.CreatedAt,
	}, nil
}

// MyProfile builds the authenticated user's own profile. IsFollowing is
// always false for a self view.
func (s *UserService) MyProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, user.Username, userID)
}

// UpdateProfile applies the provided fields to the caller's own profile.
// Nil pointers leave the field unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	oldUsername := user.Username

	// Uniqueness of a changed email or username is enforced by the store's
	// unique indexes; the repository maps violations to a conflict error.
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = *in.Username
	}
	if in.DisplayName != nil {
		if err := validation.ValidateDisplayName(*in.DisplayName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, oldUsername)
	if user.Username != oldUsername {
		cache.InvalidateProfile(ctx, user.Username)
	}
	return user, nil
}

// Follow creates a follower edge from followerID to the named user.
func (s *UserService) Follow(ctx context.Context, followerID uint, username string) error {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return models.NewValidationError("cannot follow yourself")
	}
	if err := s.followRepo.Create(ctx, followerID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, target.Username)
	return nil
}

// Unfollow removes the follower edge to the named user.
func (s *UserService) Unfollow(ctx context.Context, followerID uint, username string) error {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return models.NewValidationError("cannot unfollow yourself")
	}
	if err := s.followRepo.Delete(ctx, followerID, target.ID); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, target.Username)
	return nil
}

// Followers lists the users following the named user.
func (s *UserService) Followers(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, user.ID)
}

// Following lists the users the named user follows.
func (s *UserService) Following(ctx context.Context, username string) ([]*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, user.ID)
}
