package models

import "github.com/google/uuid"

// Reaction is a single emoji tag a user attaches to a post. A post holds
// at most one reaction per user; a new one replaces the old one.
type Reaction struct {
	AuthorID     uuid.UUID `json:"authorId"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	Emoji        string    `json:"emoji"`
}
