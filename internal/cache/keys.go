package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache TTLs per entity. Profiles change rarely, feed pages churn fast.
const (
	ProfileTTL = 5 * time.Minute
	PostTTL    = 2 * time.Minute
	FeedTTL    = 30 * time.Second
)

// ProfileKey returns the cache key for a user profile by username.
func ProfileKey(username string) string {
	return fmt.Sprintf("profile:%s", username)
}

// PostKey returns the cache key for a single post.
func PostKey(id uint) string {
	return fmt.Sprintf("post:%d", id)
}

// FeedKey returns the cache key for one page of a user's feed.
func FeedKey(userID uint, page, limit int) string {
	return fmt.Sprintf("feed:%d:%d:%d", userID, page, limit)
}

// InvalidateProfile drops the cached profile for a username.
func InvalidateProfile(ctx context.Context, username string) {
	Delete(ctx, ProfileKey(username))
}

// InvalidatePost drops the cached post entry.
func InvalidatePost(ctx context.Context, id uint) {
	Delete(ctx, PostKey(id))
}
