package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pictive/internal/models"
)

// MemoryStore is an in-memory implementation of all repositories, backed by
// maps behind a single mutex. It exists for the memory storage driver and
// for tests; it keeps the same counter and idempotency semantics as the
// GORM implementations.
type MemoryStore struct {
	mu sync.Mutex

	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	likes    map[[2]uint]time.Time // [userID, postID]
	follows  map[[2]uint]time.Time // [followerID, followeeID]

	nextUserID    uint
	nextPostID    uint
	nextCommentID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		likes:    make(map[[2]uint]time.Time),
		follows:  make(map[[2]uint]time.Time),
	}
}

// Users returns the store viewed as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return (*memoryUserRepo)(s) }

// Posts returns the store viewed as a PostRepository.
func (s *MemoryStore) Posts() PostRepository { return (*memoryPostRepo)(s) }

// Comments returns the store viewed as a CommentRepository.
func (s *MemoryStore) Comments() CommentRepository { return (*memoryCommentRepo)(s) }

// Follows returns the store viewed as a FollowRepository.
func (s *MemoryStore) Follows() FollowRepository { return (*memoryFollowRepo)(s) }

type memoryUserRepo MemoryStore
type memoryPostRepo MemoryStore
type memoryCommentRepo MemoryStore
type memoryFollowRepo MemoryStore

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = nil
	return &c
}

func (s *MemoryStore) copyPost(p *models.Post, viewerID uint) *models.Post {
	c := *p
	if author, ok := s.users[p.UserID]; ok {
		c.User = *copyUser(author)
	}
	c.Liked = viewerID != 0 && s.isLikedLocked(viewerID, p.ID)
	return &c
}

func (s *MemoryStore) copyComment(cm *models.Comment) *models.Comment {
	c := *cm
	if author, ok := s.users[cm.UserID]; ok {
		c.User = *copyUser(author)
	}
	c.Replies = nil
	return &c
}

func (s *MemoryStore) isLikedLocked(userID, postID uint) bool {
	_, ok := s.likes[[2]uint{userID, postID}]
	return ok
}

// --- UserRepository ---

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return models.NewConflictError("email or username already taken")
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = copyUser(user)
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	return copyUser(user), nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, models.NewNotFoundError("User", email)
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, models.NewNotFoundError("User", username)
}

func (r *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return models.NewNotFoundError("User", user.ID)
	}
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email || existing.Username == user.Username {
			return models.NewConflictError("email or username already taken")
		}
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return models.NewNotFoundError("User", id)
	}
	delete(s.users, id)
	return nil
}

// --- PostRepository ---

func (r *memoryPostRepo) Create(ctx context.Context, post *models.Post) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	post.ID = s.nextPostID
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	stored := *post
	stored.User = models.User{}
	s.posts[post.ID] = &stored
	if author, ok := s.users[post.UserID]; ok {
		post.User = *copyUser(author)
	}
	return nil
}

func (r *memoryPostRepo) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	return s.copyPost(post, viewerID), nil
}

func (s *MemoryStore) listPostsLocked(filter func(*models.Post) bool, viewerID uint, offset, limit int) ([]*models.Post, int64) {
	var matched []*models.Post
	for _, post := range s.posts {
		if filter(post) {
			matched = append(matched, post)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*models.Post{}, total
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*models.Post, 0, end-offset)
	for _, post := range matched[offset:end] {
		page = append(page, s.copyPost(post, viewerID))
	}
	return page, total
}

func (r *memoryPostRepo) List(ctx context.Context, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, total := s.listPostsLocked(func(*models.Post) bool { return true }, viewerID, offset, limit)
	return posts, total, nil
}

func (r *memoryPostRepo) ListByAuthors(ctx context.Context, authorIDs []uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := make(map[uint]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	posts, total := s.listPostsLocked(func(p *models.Post) bool { return allowed[p.UserID] }, viewerID, offset, limit)
	return posts, total, nil
}

func (r *memoryPostRepo) ListByUser(ctx context.Context, userID uint, viewerID uint, offset, limit int) ([]*models.Post, int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, total := s.listPostsLocked(func(p *models.Post) bool { return p.UserID == userID }, viewerID, offset, limit)
	return posts, total, nil
}

func (r *memoryPostRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, post := range s.posts {
		if post.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memoryPostRepo) Update(ctx context.Context, post *models.Post) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return models.NewNotFoundError("Post", post.ID)
	}
	existing.Content = post.Content
	existing.ImageURL = post.ImageURL
	existing.UpdatedAt = time.Now()
	post.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memoryPostRepo) Delete(ctx context.Context, id uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return models.NewNotFoundError("Post", id)
	}
	delete(s.posts, id)
	for cid, comment := range s.comments {
		if comment.PostID == id {
			delete(s.comments, cid)
		}
	}
	for key := range s.likes {
		if key[1] == id {
			delete(s.likes, key)
		}
	}
	return nil
}

func (r *memoryPostRepo) Like(ctx context.Context, userID, postID uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	key := [2]uint{userID, postID}
	if _, liked := s.likes[key]; liked {
		return nil
	}
	s.likes[key] = time.Now()
	post.LikeCount++
	return nil
}

func (r *memoryPostRepo) Unlike(ctx context.Context, userID, postID uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	key := [2]uint{userID, postID}
	if _, liked := s.likes[key]; !liked {
		return nil
	}
	delete(s.likes, key)
	post.LikeCount--
	return nil
}

func (r *memoryPostRepo) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isLikedLocked(userID, postID), nil
}

// --- CommentRepository ---

func (r *memoryCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return models.NewNotFoundError("Post", comment.PostID)
	}
	if comment.ParentID != nil {
		parent, ok := s.comments[*comment.ParentID]
		if !ok {
			return models.NewNotFoundError("Comment", *comment.ParentID)
		}
		if parent.PostID != comment.PostID {
			return models.NewValidationError("parent comment belongs to a different post")
		}
		parent.ReplyCount++
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	stored := *comment
	stored.User = models.User{}
	s.comments[comment.ID] = &stored
	post.CommentCount++
	if author, ok := s.users[comment.UserID]; ok {
		comment.User = *copyUser(author)
	}
	return nil
}

func (r *memoryCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return s.copyComment(comment), nil
}

func (s *MemoryStore) repliesLocked(parentID uint) []*models.Comment {
	var replies []*models.Comment
	for _, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			replies = append(replies, c)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].ID < replies[j].ID
		}
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
	return replies
}

func (r *memoryCommentRepo) ListTopLevel(ctx context.Context, postID uint, offset, limit int) ([]*models.Comment, int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var topLevel []*models.Comment
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentID == nil {
			topLevel = append(topLevel, c)
		}
	}
	sort.Slice(topLevel, func(i, j int) bool {
		if topLevel[i].CreatedAt.Equal(topLevel[j].CreatedAt) {
			return topLevel[i].ID > topLevel[j].ID
		}
		return topLevel[i].CreatedAt.After(topLevel[j].CreatedAt)
	})

	total := int64(len(topLevel))
	if offset >= len(topLevel) {
		return []*models.Comment{}, total, nil
	}
	end := offset + limit
	if end > len(topLevel) {
		end = len(topLevel)
	}

	page := make([]*models.Comment, 0, end-offset)
	for _, c := range topLevel[offset:end] {
		cp := s.copyComment(c)
		for _, reply := range s.repliesLocked(c.ID) {
			cp.Replies = append(cp.Replies, *s.copyComment(reply))
		}
		page = append(page, cp)
	}
	return page, total, nil
}

func (r *memoryCommentRepo) ListReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	replies := s.repliesLocked(parentID)
	out := make([]*models.Comment, 0, len(replies))
	for _, reply := range replies {
		out = append(out, s.copyComment(reply))
	}
	return out, nil
}

func (r *memoryCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.comments[comment.ID]
	if !ok {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	existing.Content = comment.Content
	existing.UpdatedAt = time.Now()
	comment.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *memoryCommentRepo) Delete(ctx context.Context, id uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return models.NewNotFoundError("Comment", id)
	}

	removed := 1
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(s.comments, cid)
			removed++
		}
	}
	delete(s.comments, id)

	if comment.ParentID != nil {
		if parent, ok := s.comments[*comment.ParentID]; ok {
			parent.ReplyCount--
		}
	}
	if post, ok := s.posts[comment.PostID]; ok {
		post.CommentCount -= removed
	}
	return nil
}

// --- FollowRepository ---

func (r *memoryFollowRepo) Create(ctx context.Context, followerID, followeeID uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]uint{followerID, followeeID}
	if _, ok := s.follows[key]; ok {
		return models.NewConflictError("already following this user")
	}
	s.follows[key] = time.Now()
	return nil
}

func (r *memoryFollowRepo) Delete(ctx context.Context, followerID, followeeID uint) error {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]uint{followerID, followeeID}
	if _, ok := s.follows[key]; !ok {
		return models.NewValidationError("not following this user")
	}
	delete(s.follows, key)
	return nil
}

func (r *memoryFollowRepo) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.follows[[2]uint{followerID, followeeID}]
	return ok, nil
}

func (s *MemoryStore) followEdgesLocked(filter func(key [2]uint) (uint, bool)) []*models.User {
	type edge struct {
		userID uint
		at     time.Time
	}
	var edges []edge
	for key, at := range s.follows {
		if userID, ok := filter(key); ok {
			edges = append(edges, edge{userID: userID, at: at})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].at.After(edges[j].at) })

	users := make([]*models.User, 0, len(edges))
	for _, e := range edges {
		if user, ok := s.users[e.userID]; ok {
			users = append(users, copyUser(user))
		}
	}
	return users
}

func (r *memoryFollowRepo) ListFollowers(ctx context.Context, userID uint) ([]*models.User, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.followEdgesLocked(func(key [2]uint) (uint, bool) {
		return key[0], key[1] == userID
	}), nil
}

func (r *memoryFollowRepo) ListFollowing(ctx context.Context, userID uint) ([]*models.User, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.followEdgesLocked(func(key [2]uint) (uint, bool) {
		return key[1], key[0] == userID
	}), nil
}

func (r *memoryFollowRepo) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []uint
	for key := range s.follows {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (r *memoryFollowRepo) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for key := range s.follows {
		if key[1] == userID {
			count++
		}
	}
	return count, nil
}

func (r *memoryFollowRepo) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	s := (*MemoryStore)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for key := range s.follows {
		if key[0] == userID {
			count++
		}
	}
	return count, nil
}
