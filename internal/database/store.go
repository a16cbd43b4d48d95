// internal/database/store.go
package database

import (
	"context"

	"gator-gram/internal/models"

	"github.com/google/uuid"
)

// Store defines the common interface for persistence operations. The
// actors depend on this interface rather than the Mongo adapter so they
// can be exercised against an in-memory implementation in tests.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, name, avatar string) (*models.User, error)
	UpdateUserScore(ctx context.Context, id uuid.UUID, score int) (*models.User, error)
	GetTopUsers(ctx context.Context, limit int) ([]*models.RankedUser, error)

	// Post methods
	SavePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, postID, ownerID uuid.UUID) (*models.Post, error)
	ToggleLike(ctx context.Context, postID, userID uuid.UUID) (liked bool, likes int, err error)
	AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) ([]models.Comment, error)
	SetReaction(ctx context.Context, postID uuid.UUID, reaction models.Reaction) ([]models.Reaction, error)
}
