// Package databasetest provides an in-memory Store implementation for
// exercising actors and handlers without a running MongoDB.
package databasetest

import (
	"context"
	"sort"
	"sync"

	"gator-gram/internal/database"
	"gator-gram/internal/models"
	"gator-gram/internal/utils"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	posts map[uuid.UUID]*models.Post
}

var _ database.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]*models.User),
		posts: make(map[uuid.UUID]*models.Post),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email && existing.ID != user.ID {
			return utils.NewAppError(utils.ErrDuplicate, "Email already registered", nil)
		}
	}

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", nil)
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrNotFound, "User not found", nil)
}

func (s *MemoryStore) UpdateUserProfile(ctx context.Context, id uuid.UUID, name, avatar string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", nil)
	}
	user.Name = name
	user.Avatar = avatar
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) UpdateUserScore(ctx context.Context, id uuid.UUID, score int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", nil)
	}
	user.Score = score
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetTopUsers(ctx context.Context, limit int) ([]*models.RankedUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Score != users[j].Score {
			return users[i].Score > users[j].Score
		}
		return users[i].ID.String() < users[j].ID.String()
	})

	if len(users) > limit {
		users = users[:limit]
	}

	ranking := make([]*models.RankedUser, len(users))
	for i, user := range users {
		ranking[i] = &models.RankedUser{
			Name:   user.Name,
			Avatar: user.Avatar,
			Score:  user.Score,
		}
	}
	return ranking, nil
}

func (s *MemoryStore) SavePost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := clonePost(post)
	s.posts[post.ID] = copied
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	copied := clonePost(post)
	s.expand(copied)
	return copied, nil
}

func (s *MemoryStore) GetAllPosts(ctx context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		copied := clonePost(post)
		s.expand(copied)
		posts = append(posts, copied)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, postID, ownerID uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok || post.AuthorID != ownerID {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	delete(s.posts, postID)
	return clonePost(post), nil
}

func (s *MemoryStore) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	for i, id := range post.Likes {
		if id == userID {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			return false, len(post.Likes), nil
		}
	}
	post.Likes = append(post.Likes, userID)
	return true, len(post.Likes), nil
}

func (s *MemoryStore) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	post.Comments = append(post.Comments, comment)

	copied := clonePost(post)
	s.expand(copied)
	return copied.Comments, nil
}

func (s *MemoryStore) SetReaction(ctx context.Context, postID uuid.UUID, reaction models.Reaction) ([]models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	kept := post.Reactions[:0]
	for _, r := range post.Reactions {
		if r.AuthorID != reaction.AuthorID {
			kept = append(kept, r)
		}
	}
	post.Reactions = append(kept, reaction)

	copied := clonePost(post)
	s.expand(copied)
	return copied.Reactions, nil
}

func (s *MemoryStore) expand(post *models.Post) {
	if author, ok := s.users[post.AuthorID]; ok {
		post.AuthorName = author.Name
		post.AuthorAvatar = author.Avatar
	}
	for i := range post.Comments {
		if author, ok := s.users[post.Comments[i].AuthorID]; ok {
			post.Comments[i].AuthorName = author.Name
			post.Comments[i].AuthorAvatar = author.Avatar
		}
	}
	for i := range post.Reactions {
		if author, ok := s.users[post.Reactions[i].AuthorID]; ok {
			post.Reactions[i].AuthorName = author.Name
			post.Reactions[i].AuthorAvatar = author.Avatar
		}
	}
}

func clonePost(post *models.Post) *models.Post {
	copied := *post
	copied.Likes = append([]uuid.UUID(nil), post.Likes...)
	copied.Comments = append([]models.Comment(nil), post.Comments...)
	copied.Reactions = append([]models.Reaction(nil), post.Reactions...)
	return &copied
}
