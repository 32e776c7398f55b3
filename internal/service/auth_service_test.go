package service

import (
	"context"
	"testing"

	"pictive/internal/models"
	"pictive/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-signing"

func newAuthService() (*AuthService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	return NewAuthService(store.Users(), testSecret), store
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterInput{
			Email:       "Alice@Example.com",
			Username:    "alice",
			DisplayName: "Alice",
			Password:    "secret1",
		})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "secret1", user.Password, "password must be hashed")
	})

	t.Run("display name defaults to username", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterInput{
			Email:    "bob@example.com",
			Username: "bob",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "bob", user.DisplayName)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "alice@example.com",
			Username: "alice2",
			Password: "secret1",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "carol@example.com",
			Username: "carol",
			Password: "short",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})

	t.Run("bad username rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Email:    "dave@example.com",
			Username: "dave smith",
			Password: "secret1",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeValidation, appErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		Password:    "secret1",
	})
	require.NoError(t, err)

	t.Run("login by email", func(t *testing.T) {
		user, err := svc.Login(ctx, LoginInput{Identifier: "alice@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("login by username", func(t *testing.T) {
		user, err := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password and unknown user yield the same message", func(t *testing.T) {
		_, errWrongPass := svc.Login(ctx, LoginInput{Identifier: "alice", Password: "nope123"})
		_, errUnknown := svc.Login(ctx, LoginInput{Identifier: "nobody", Password: "secret1"})

		var appErr1, appErr2 *models.AppError
		require.ErrorAs(t, errWrongPass, &appErr1)
		require.ErrorAs(t, errUnknown, &appErr2)
		assert.Equal(t, models.CodeUnauthorized, appErr1.Code)
		assert.Equal(t, appErr1.Message, appErr2.Message)
	})
}

func TestAuthService_IssueToken(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "secret1",
	})
	require.NoError(t, err)

	signed, err := svc.IssueToken(user)
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.EqualValues(t, user.ID, claims["sub"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "pictive", claims["iss"])
	assert.NotEmpty(t, claims["jti"])

	exp := int64(claims["exp"].(float64))
	iat := int64(claims["iat"].(float64))
	assert.EqualValues(t, 7*24*3600, exp-iat, "tokens are valid for seven days")
}
