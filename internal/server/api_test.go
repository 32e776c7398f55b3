package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"pictive/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp builds the full application over the in-memory storage driver.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	os.Setenv("APP_ENV", "test")

	cfg := &config.Config{
		JWTSecret:     "integration-test-secret",
		StorageDriver: config.DriverMemory,
		Env:           "test",
	}
	s, err := NewServerWithDeps(cfg, nil, nil)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": username,
		"password":   "secret1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPI_EndToEnd(t *testing.T) {
	app := newTestApp(t)

	aliceToken := registerAndLogin(t, app, "alice")
	bobToken := registerAndLogin(t, app, "bob")

	// alice creates a post
	resp, post := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]string{
		"content": "hello from alice",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	postID := int(post["id"].(float64))
	assert.EqualValues(t, 0, post["like_count"])

	// bob likes it twice, count stays at 1
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", postID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, fetched := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, fetched["like_count"])
	assert.Equal(t, true, fetched["liked"])

	// bob comments, alice replies
	resp, comment := doJSON(t, app, http.MethodPost, "/api/comments", bobToken, map[string]any{
		"post_id": postID,
		"content": "nice post",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	commentID := int(comment["id"].(float64))

	resp, _ = doJSON(t, app, http.MethodPost, "/api/comments", aliceToken, map[string]any{
		"post_id":   postID,
		"parent_id": commentID,
		"content":   "thanks!",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, fetched = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, fetched["comment_count"])

	resp, comments := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/post/%d", postID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := comments["comments"].([]any)
	require.Len(t, list, 1)
	top := list[0].(map[string]any)
	assert.EqualValues(t, 1, top["reply_count"])
	assert.Len(t, top["replies"].([]any), 1)

	// standalone replies endpoint
	resp, replies := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/replies/%d", commentID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	replyList := replies["replies"].([]any)
	require.Len(t, replyList, 1)
	assert.Equal(t, "thanks!", replyList[0].(map[string]any)["content"])

	// bob follows alice, feed shows her post
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/follow/alice", bobToken, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, feed := doJSON(t, app, http.MethodGet, "/api/posts/feed", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	posts := feed["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello from alice", posts[0].(map[string]any)["content"])
	assert.EqualValues(t, 1, feed["total"])
	assert.EqualValues(t, 1, feed["total_pages"])

	// profile reflects the follow
	resp, profile := doJSON(t, app, http.MethodGet, "/api/users/alice", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, profile["follower_count"])
	assert.Equal(t, true, profile["is_following"])
	assert.EqualValues(t, 1, profile["post_count"])

	// alice's posts by username
	resp, userPosts := doJSON(t, app, http.MethodGet, "/api/posts/user/alice", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, userPosts["posts"].([]any), 1)

	// bob unlikes, then unfollows
	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/unlike", postID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, fetched = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", postID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, fetched["like_count"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/unfollow/alice", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPI_CurrentUserRoutes(t *testing.T) {
	app := newTestApp(t)
	aliceToken := registerAndLogin(t, app, "alice")
	registerAndLogin(t, app, "bob")

	t.Run("users/me returns own profile", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/users/me", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, false, body["is_following"])
	})

	t.Run("users/me requires a token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/users/me", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("patch updates profile fields", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPatch, "/api/users/me", aliceToken, map[string]string{
			"display_name": "Alice Q",
			"bio":          "hello",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Alice Q", body["display_name"])
		assert.Equal(t, "hello", body["bio"])
	})

	t.Run("patch can change email and username", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPatch, "/api/users/me", aliceToken, map[string]string{
			"email":    "Alice2@Example.com",
			"username": "alice2",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice2@example.com", body["email"])
		assert.Equal(t, "alice2", body["username"])

		resp, _ = doJSON(t, app, http.MethodGet, "/api/users/alice2", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("taken username conflicts", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPatch, "/api/users/me", aliceToken, map[string]string{
			"username": "bob",
		})
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestAPI_AuthBoundaries(t *testing.T) {
	app := newTestApp(t)
	aliceToken := registerAndLogin(t, app, "alice")
	bobToken := registerAndLogin(t, app, "bob")

	t.Run("protected routes need a token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/posts/feed", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]string{"content": "x"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/users/alice/followers", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/users/alice/following", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/posts/feed", "not.a.jwt", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("public routes work without a token", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/users/alice", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/posts/user/alice", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("non-author edit forbidden", func(t *testing.T) {
		resp, post := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]string{"content": "mine"})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		postID := int(post["id"].(float64))

		resp, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/posts/%d", postID), bobToken, map[string]string{"content": "stolen"})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), bobToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("comment author only", func(t *testing.T) {
		resp, post := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, map[string]string{"content": "host"})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		postID := int(post["id"].(float64))

		resp, comment := doJSON(t, app, http.MethodPost, "/api/comments", bobToken, map[string]any{
			"post_id": postID,
			"content": "from bob",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		commentID := int(comment["id"].(float64))

		// alice owns the post but not the comment
		resp, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/comments/%d", commentID), aliceToken, map[string]string{"content": "edited"})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), aliceToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), bobToken, nil)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("follow rules over HTTP", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/users/follow/alice", aliceToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/users/follow/bob", aliceToken, nil)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp, _ = doJSON(t, app, http.MethodPost, "/api/users/follow/bob", aliceToken, nil)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodPost, "/api/users/unfollow/bob", aliceToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp, _ = doJSON(t, app, http.MethodPost, "/api/users/unfollow/bob", aliceToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing resources 404", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/posts/99999", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/users/ghost", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/comments/replies/99999", "", nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id 400", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/posts/abc", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("me returns the caller", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/auth/me", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
		_, hasPassword := body["password"]
		assert.False(t, hasPassword)
	})

	t.Run("health endpoints", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
