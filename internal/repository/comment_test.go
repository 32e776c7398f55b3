package repository

import (
	"context"
	"testing"

	"pictive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	posts := NewGormPostRepository(db)
	repo := NewGormCommentRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	newPost := func(t *testing.T) *models.Post {
		t.Helper()
		post := &models.Post{Content: "a post", UserID: alice.ID}
		require.NoError(t, posts.Create(ctx, post))
		return post
	}

	t.Run("Create increments comment_count", func(t *testing.T) {
		post := newPost(t)
		comment := &models.Comment{Content: "nice", UserID: bob.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, comment))
		assert.NotZero(t, comment.ID)
		assert.Equal(t, "bob", comment.User.Username)

		fetched, err := posts.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.CommentCount)
	})

	t.Run("Reply increments both counters", func(t *testing.T) {
		post := newPost(t)
		parent := &models.Comment{Content: "parent", UserID: bob.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, parent))

		reply := &models.Comment{Content: "child", UserID: alice.ID, PostID: post.ID, ParentID: &parent.ID}
		require.NoError(t, repo.Create(ctx, reply))

		fetchedPost, err := posts.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, fetchedPost.CommentCount)

		fetchedParent, err := repo.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetchedParent.ReplyCount)
	})

	t.Run("Reply to comment on another post rejected", func(t *testing.T) {
		postA := newPost(t)
		postB := newPost(t)
		parent := &models.Comment{Content: "on A", UserID: bob.ID, PostID: postA.ID}
		require.NoError(t, repo.Create(ctx, parent))

		crossed := &models.Comment{Content: "on B?", UserID: bob.ID, PostID: postB.ID, ParentID: &parent.ID}
		err := repo.Create(ctx, crossed)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)

		// The failed transaction must not leak counter updates.
		fetchedB, err := posts.GetByID(ctx, postB.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, fetchedB.CommentCount)
		fetchedParent, err := repo.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, fetchedParent.ReplyCount)
	})

	t.Run("Create on missing post rejected", func(t *testing.T) {
		comment := &models.Comment{Content: "ghost", UserID: bob.ID, PostID: 9999}
		err := repo.Create(ctx, comment)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("ListTopLevel newest first with replies oldest first", func(t *testing.T) {
		post := newPost(t)
		first := &models.Comment{Content: "first", UserID: bob.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, first))
		second := &models.Comment{Content: "second", UserID: alice.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, second))

		replyA := &models.Comment{Content: "reply a", UserID: alice.ID, PostID: post.ID, ParentID: &first.ID}
		require.NoError(t, repo.Create(ctx, replyA))
		replyB := &models.Comment{Content: "reply b", UserID: bob.ID, PostID: post.ID, ParentID: &first.ID}
		require.NoError(t, repo.Create(ctx, replyB))

		comments, total, err := repo.ListTopLevel(ctx, post.ID, 0, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0].Content)
		assert.Equal(t, "first", comments[1].Content)

		require.Len(t, comments[1].Replies, 2)
		assert.Equal(t, "reply a", comments[1].Replies[0].Content)
		assert.Equal(t, "reply b", comments[1].Replies[1].Content)

		replies, err := repo.ListReplies(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, replies, 2)
		assert.Equal(t, "reply a", replies[0].Content)
		assert.Equal(t, "reply b", replies[1].Content)
	})

	t.Run("Delete top-level removes replies and adjusts counts", func(t *testing.T) {
		post := newPost(t)
		parent := &models.Comment{Content: "parent", UserID: bob.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, parent))
		for i := 0; i < 3; i++ {
			reply := &models.Comment{Content: "reply", UserID: alice.ID, PostID: post.ID, ParentID: &parent.ID}
			require.NoError(t, repo.Create(ctx, reply))
		}

		fetchedPost, err := posts.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		require.Equal(t, 4, fetchedPost.CommentCount)

		require.NoError(t, repo.Delete(ctx, parent.ID))

		fetchedPost, err = posts.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, fetchedPost.CommentCount)

		var orphans int64
		db.Model(&models.Comment{}).Where("parent_id = ?", parent.ID).Count(&orphans)
		assert.Zero(t, orphans)
	})

	t.Run("Delete reply decrements parent reply_count", func(t *testing.T) {
		post := newPost(t)
		parent := &models.Comment{Content: "parent", UserID: bob.ID, PostID: post.ID}
		require.NoError(t, repo.Create(ctx, parent))
		reply := &models.Comment{Content: "reply", UserID: alice.ID, PostID: post.ID, ParentID: &parent.ID}
		require.NoError(t, repo.Create(ctx, reply))

		require.NoError(t, repo.Delete(ctx, reply.ID))

		fetchedParent, err := repo.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, fetchedParent.ReplyCount)

		fetchedPost, err := posts.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, fetchedPost.CommentCount)
	})
}

func TestFollowRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	t.Run("Create and Exists", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))

		following, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, following)

		reverse, err := repo.Exists(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, reverse)
	})

	t.Run("Duplicate follow conflicts", func(t *testing.T) {
		err := repo.Create(ctx, alice.ID, bob.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("Counts and lists", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, carol.ID, bob.ID))

		followers, err := repo.CountFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, followers)

		followerUsers, err := repo.ListFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Len(t, followerUsers, 2)

		ids, err := repo.FollowingIDs(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{bob.ID}, ids)
	})

	t.Run("Unfollow a non-followed user fails", func(t *testing.T) {
		err := repo.Delete(ctx, bob.ID, carol.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("Unfollow removes the edge", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))
		following, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, following)
	})
}
