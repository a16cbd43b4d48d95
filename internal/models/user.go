package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Avatar         string    `json:"avatar"`
	Score          int       `json:"score"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PublicUser is the projection of a user that is safe to return to
// clients: no credential fields.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// RankedUser is the projection returned by the leaderboard query.
type RankedUser struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Score  int    `json:"score"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Score:     u.Score,
		CreatedAt: u.CreatedAt,
	}
}

// AvatarURL derives the placeholder avatar for a display name.
func AvatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&size=200", url.QueryEscape(name))
}
