// Package service contains the application's business logic, composed from
// repositories.
package service

import (
	"context"
	"strings"
	"time"

	"pictive/internal/models"
	"pictive/internal/observability"
	"pictive/internal/repository"
	"pictive/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
}

type RegisterInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginInput struct {
	// Identifier is an email when it contains "@", a username otherwise.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: []byte(jwtSecret)}
}

// Register validates the input, hashes the password, and creates the user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = in.Username
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Username:    in.Username,
		DisplayName: displayName,
		Password:    string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login resolves the identifier against email or username and verifies the
// password. Unknown identifier and wrong password produce the same error so
// the response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, models.NewValidationError("identifier and password are required")
	}

	var user *models.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		observability.AuthFailures.WithLabelValues("unknown_identifier").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		observability.AuthFailures.WithLabelValues("bad_password").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// IssueToken creates a signed JWT for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iss":      "pictive",
		"aud":      "pictive-api",
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}
