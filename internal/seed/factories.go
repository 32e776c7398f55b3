// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"pictive/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user gets.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rng  *rand.Rand
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// One bcrypt hash shared by all seeded users keeps seeding fast.
	hashed, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	return &Factory{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		hash: string(hashed),
	}
}

// CreateUser persists a user with plausible fake data.
func (f *Factory) CreateUser(n int) (*models.User, error) {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), n)

	user := &models.User{
		Email:       fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
		Username:    username,
		DisplayName: first + " " + last,
		Bio:         gofakeit.Sentence(8),
		AvatarURL:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Password:    f.hash,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs an unsaved post with a created_at spread over the
// last 90 days.
func (f *Factory) BuildPost(user *models.User) *models.Post {
	post := &models.Post{
		Content: gofakeit.Paragraph(1, 2, 8, " "),
		UserID:  user.ID,
	}
	if f.rng.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
	post.UpdatedAt = post.CreatedAt
	return post
}

// BuildComment constructs an unsaved comment dated after its post.
func (f *Factory) BuildComment(user *models.User, post *models.Post, parentID *uint) *models.Comment {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(f.rng.Intn(12) + 3),
		UserID:   user.ID,
		PostID:   post.ID,
		ParentID: parentID,
	}
	comment.CreatedAt = post.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour)
	if comment.CreatedAt.After(time.Now()) {
		comment.CreatedAt = time.Now()
	}
	comment.UpdatedAt = comment.CreatedAt
	return comment
}
