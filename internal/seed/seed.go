package seed

import (
	"log"

	"pictive/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seed populates the database with a social mesh: users, follow edges,
// posts, likes, comments, and replies. Denormalized counters are written to
// match the rows exactly, so seeded data satisfies the same invariants as
// data created through the API.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding database with %d users and %d posts", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			return err
		}
	}

	factory := NewFactory(db)
	rng := factory.rng

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser(i)
		if err != nil {
			return err
		}
		users = append(users, user)
	}

	// Follow mesh: each user follows a handful of others.
	for _, follower := range users {
		targets := rng.Perm(len(users))
		wanted := rng.Intn(6) + 1
		made := 0
		for _, idx := range targets {
			if made >= wanted {
				break
			}
			followee := users[idx]
			if followee.ID == follower.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			if err := db.Create(&follow).Error; err != nil {
				return err
			}
			made++
		}
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[rng.Intn(len(users))]
		post := factory.BuildPost(author)
		if err := db.Create(post).Error; err != nil {
			return err
		}

		// Likes: a random subset of users, one like each.
		likers := rng.Perm(len(users))[:rng.Intn(len(users)/2+1)]
		for _, idx := range likers {
			like := models.Like{UserID: users[idx].ID, PostID: post.ID}
			if err := db.Create(&like).Error; err != nil {
				return err
			}
		}

		// Comments with occasional replies.
		commentTotal := 0
		numComments := rng.Intn(5)
		for c := 0; c < numComments; c++ {
			commenter := users[rng.Intn(len(users))]
			comment := factory.BuildComment(commenter, post, nil)
			if err := db.Create(comment).Error; err != nil {
				return err
			}
			commentTotal++

			numReplies := 0
			if rng.Intn(3) == 0 {
				numReplies = rng.Intn(3) + 1
			}
			for r := 0; r < numReplies; r++ {
				replier := users[rng.Intn(len(users))]
				reply := factory.BuildComment(replier, post, &comment.ID)
				if err := db.Create(reply).Error; err != nil {
					return err
				}
				commentTotal++
			}
			if numReplies > 0 {
				if err := db.Model(&models.Comment{}).Where("id = ?", comment.ID).
					UpdateColumn("reply_count", numReplies).Error; err != nil {
					return err
				}
			}
		}

		if err := db.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumns(map[string]interface{}{
				"like_count":    len(likers),
				"comment_count": commentTotal,
			}).Error; err != nil {
			return err
		}
	}

	log.Printf("seeding complete: all users have the password %q", DefaultPassword)
	return nil
}

// ClearAll removes all seeded data in dependency order.
func ClearAll(db *gorm.DB) error {
	tables := []string{"likes", "comments", "posts", "follows", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
