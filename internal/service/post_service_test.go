package service

import (
	"context"
	"strings"
	"testing"

	"pictive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	t.Run("success", func(t *testing.T) {
		post, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "  hello world  "})
		require.NoError(t, err)
		assert.Equal(t, "hello world", post.Content)
		assert.Equal(t, "alice", post.User.Username)
		assert.Zero(t, post.LikeCount)
		assert.Zero(t, post.CommentCount)
	})

	t.Run("blank content rejected", func(t *testing.T) {
		_, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "   "})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("overlong content rejected", func(t *testing.T) {
		_, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: strings.Repeat("x", 501)})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})
}

func TestPostService_Ownership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	post, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "mine"})
	require.NoError(t, err)

	t.Run("non-author cannot edit", func(t *testing.T) {
		content := "hijacked"
		_, err := f.posts.UpdatePost(ctx, UpdatePostInput{UserID: bob.ID, PostID: post.ID, Content: &content})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeForbidden, appErr.Code)
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		err := f.posts.DeletePost(ctx, bob.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeForbidden, appErr.Code)
	})

	t.Run("author partial update", func(t *testing.T) {
		content := "edited"
		updated, err := f.posts.UpdatePost(ctx, UpdatePostInput{UserID: alice.ID, PostID: post.ID, Content: &content})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
	})

	t.Run("author delete", func(t *testing.T) {
		require.NoError(t, f.posts.DeletePost(ctx, alice.ID, post.ID))
		_, err := f.posts.GetPost(ctx, post.ID, 0)
		assert.Error(t, err)
	})
}

func TestPostService_Likes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	post, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "likeable"})
	require.NoError(t, err)

	// N likes then M repeats leaves the count at N.
	require.NoError(t, f.posts.LikePost(ctx, alice.ID, post.ID))
	require.NoError(t, f.posts.LikePost(ctx, bob.ID, post.ID))
	require.NoError(t, f.posts.LikePost(ctx, bob.ID, post.ID))
	require.NoError(t, f.posts.LikePost(ctx, bob.ID, post.ID))

	fetched, err := f.posts.GetPost(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.LikeCount)
	assert.True(t, fetched.Liked)

	require.NoError(t, f.posts.UnlikePost(ctx, bob.ID, post.ID))
	require.NoError(t, f.posts.UnlikePost(ctx, bob.ID, post.ID))

	fetched, err = f.posts.GetPost(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.LikeCount)
	assert.False(t, fetched.Liked)
}

func TestPostService_Pagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	for i := 0; i < 7; i++ {
		_, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "post"})
		require.NoError(t, err)
	}

	page, err := f.posts.ListPosts(ctx, ListPostsInput{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Posts, 3)

	last, err := f.posts.ListPosts(ctx, ListPostsInput{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, last.Posts, 1)

	beyond, err := f.posts.ListPosts(ctx, ListPostsInput{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Posts)
	assert.EqualValues(t, 7, beyond.Total)

	t.Run("bad values clamped", func(t *testing.T) {
		page, limit := NormalizePage(0, -5)
		assert.Equal(t, 1, page)
		assert.Equal(t, DefaultPageSize, limit)

		_, capped := NormalizePage(1, 1000)
		assert.Equal(t, MaxPageSize, capped)
	})
}

func TestFeedService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	_, err := f.posts.CreatePost(ctx, CreatePostInput{UserID: alice.ID, Content: "from alice"})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, CreatePostInput{UserID: bob.ID, Content: "from bob"})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, CreatePostInput{UserID: carol.ID, Content: "from carol"})
	require.NoError(t, err)

	t.Run("no follows shows only own posts", func(t *testing.T) {
		feed, err := f.feed.Feed(ctx, alice.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, feed.Posts, 1)
		assert.Equal(t, "from alice", feed.Posts[0].Content)
	})

	t.Run("feed includes followed users newest first", func(t *testing.T) {
		require.NoError(t, f.users.Follow(ctx, alice.ID, "bob"))

		feed, err := f.feed.Feed(ctx, alice.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, feed.Posts, 2)
		assert.Equal(t, "from bob", feed.Posts[0].Content)
		assert.Equal(t, "from alice", feed.Posts[1].Content)
		assert.EqualValues(t, 2, feed.Total)
		assert.Equal(t, 1, feed.TotalPages)
	})

	t.Run("unfollow removes the author's posts", func(t *testing.T) {
		require.NoError(t, f.users.Unfollow(ctx, alice.ID, "bob"))

		feed, err := f.feed.Feed(ctx, alice.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, feed.Posts, 1)
		assert.Equal(t, "from alice", feed.Posts[0].Content)
	})
}
