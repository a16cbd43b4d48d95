package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is an image reference plus its social metadata. Comments and
// reactions live inside the post; they have no independent lifecycle.
// Author display fields are filled in at read time from the users
// collection.
type Post struct {
	ID           uuid.UUID   `json:"id"`
	AuthorID     uuid.UUID   `json:"authorId"`
	AuthorName   string      `json:"authorName"`
	AuthorAvatar string      `json:"authorAvatar"`
	ImageURL     string      `json:"imageUrl"`
	UploadID     string      `json:"-"` // provider deletion handle, not exposed
	Caption      string      `json:"caption"`
	Likes        []uuid.UUID `json:"likes"`
	Comments     []Comment   `json:"comments"`
	Reactions    []Reaction  `json:"reactions"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// LikedBy reports whether the user is present in the like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
