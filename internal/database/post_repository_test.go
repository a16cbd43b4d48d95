package database

import (
	"testing"
	"time"

	"gator-gram/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDocumentRoundTrip(t *testing.T) {
	original := &models.Post{
		ID:       uuid.New(),
		AuthorID: uuid.New(),
		ImageURL: "https://cdn.example.com/gator.jpg",
		UploadID: "gator-gram/abc123",
		Caption:  "basking",
		Likes:    []uuid.UUID{uuid.New(), uuid.New()},
		Comments: []models.Comment{{
			ID:        uuid.New(),
			AuthorID:  uuid.New(),
			Text:      "nice one",
			CreatedAt: time.Now().Truncate(time.Millisecond),
		}},
		Reactions: []models.Reaction{{
			AuthorID: uuid.New(),
			Emoji:    "🐊",
		}},
		CreatedAt: time.Now().Truncate(time.Millisecond),
	}

	doc := postToDocument(original)
	restored, err := documentToPost(doc)
	require.NoError(t, err)

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.AuthorID, restored.AuthorID)
	assert.Equal(t, original.ImageURL, restored.ImageURL)
	assert.Equal(t, original.UploadID, restored.UploadID)
	assert.Equal(t, original.Likes, restored.Likes)
	assert.Equal(t, original.Comments, restored.Comments)
	assert.Equal(t, original.Reactions, restored.Reactions)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))
}

func TestDocumentToPostSkipsMalformedEntries(t *testing.T) {
	doc := &PostDocument{
		ID:       uuid.New().String(),
		AuthorID: uuid.New().String(),
		Likes:    []string{"not-a-uuid", uuid.New().String()},
		Comments: []CommentDocument{{
			ID:       "not-a-uuid",
			AuthorID: uuid.New().String(),
			Text:     "orphaned",
		}},
	}

	post, err := documentToPost(doc)
	require.NoError(t, err)
	assert.Len(t, post.Likes, 1)
	assert.Empty(t, post.Comments)
}

func TestDocumentToPostRejectsBadIDs(t *testing.T) {
	_, err := documentToPost(&PostDocument{ID: "garbage", AuthorID: uuid.New().String()})
	assert.Error(t, err)

	_, err = documentToPost(&PostDocument{ID: uuid.New().String(), AuthorID: "garbage"})
	assert.Error(t, err)
}
