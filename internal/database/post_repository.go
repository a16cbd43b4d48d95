// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gator-gram/internal/models"
	"gator-gram/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post. Comments and
// reactions are embedded; they never exist outside their post.
type PostDocument struct {
	ID        string             `bson:"_id"`
	AuthorID  string             `bson:"authorid"`
	ImageURL  string             `bson:"imageurl"`
	UploadID  string             `bson:"uploadid"` // provider deletion handle
	Caption   string             `bson:"caption"`
	Likes     []string           `bson:"likes"`
	Comments  []CommentDocument  `bson:"comments"`
	Reactions []ReactionDocument `bson:"reactions"`
	CreatedAt time.Time          `bson:"createdat"`
}

type CommentDocument struct {
	ID        string    `bson:"id"`
	AuthorID  string    `bson:"authorid"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdat"`
}

type ReactionDocument struct {
	AuthorID string `bson:"authorid"`
	Emoji    string `bson:"emoji"`
}

func postToDocument(post *models.Post) *PostDocument {
	doc := &PostDocument{
		ID:        post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		ImageURL:  post.ImageURL,
		UploadID:  post.UploadID,
		Caption:   post.Caption,
		Likes:     make([]string, len(post.Likes)),
		Comments:  make([]CommentDocument, len(post.Comments)),
		Reactions: make([]ReactionDocument, len(post.Reactions)),
		CreatedAt: post.CreatedAt,
	}

	for i, userID := range post.Likes {
		doc.Likes[i] = userID.String()
	}
	for i, c := range post.Comments {
		doc.Comments[i] = CommentDocument{
			ID:        c.ID.String(),
			AuthorID:  c.AuthorID.String(),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		}
	}
	for i, r := range post.Reactions {
		doc.Reactions[i] = ReactionDocument{
			AuthorID: r.AuthorID.String(),
			Emoji:    r.Emoji,
		}
	}

	return doc
}

func documentToPost(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %v", err)
	}

	post := &models.Post{
		ID:        id,
		AuthorID:  authorID,
		ImageURL:  doc.ImageURL,
		UploadID:  doc.UploadID,
		Caption:   doc.Caption,
		Likes:     make([]uuid.UUID, 0, len(doc.Likes)),
		Comments:  make([]models.Comment, 0, len(doc.Comments)),
		Reactions: make([]models.Reaction, 0, len(doc.Reactions)),
		CreatedAt: doc.CreatedAt,
	}

	for _, s := range doc.Likes {
		userID, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		post.Likes = append(post.Likes, userID)
	}
	for _, c := range doc.Comments {
		commentID, err := uuid.Parse(c.ID)
		if err != nil {
			continue
		}
		commentAuthor, err := uuid.Parse(c.AuthorID)
		if err != nil {
			continue
		}
		post.Comments = append(post.Comments, models.Comment{
			ID:        commentID,
			AuthorID:  commentAuthor,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	for _, r := range doc.Reactions {
		reactionAuthor, err := uuid.Parse(r.AuthorID)
		if err != nil {
			continue
		}
		post.Reactions = append(post.Reactions, models.Reaction{
			AuthorID: reactionAuthor,
			Emoji:    r.Emoji,
		})
	}

	return post, nil
}

// SavePost creates or updates a post in MongoDB.
func (m *MongoDB) SavePost(ctx context.Context, post *models.Post) error {
	doc := postToDocument(post)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Posts.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetPost retrieves a post by its ID with author fields expanded.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument

	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	post, err := documentToPost(&doc)
	if err != nil {
		return nil, err
	}

	if err := m.expandAuthors(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetAllPosts retrieves every post, newest first, with the author of the
// post and of every comment and reaction expanded inline. Full-table
// scan semantics; the feed is not paginated.
func (m *MongoDB) GetAllPosts(ctx context.Context) ([]*models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdat", Value: -1}})

	cursor, err := m.Posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			slog.Warn("skipping undecodable post document", "error", err)
			continue
		}

		post, err := documentToPost(&doc)
		if err != nil {
			slog.Warn("skipping malformed post document", "error", err)
			continue
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	if err := m.expandAuthors(ctx, posts...); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost removes a post only if it belongs to ownerID and returns the
// removed post so the caller can release the stored image. A missing post
// and a post owned by someone else are indistinguishable to the caller.
func (m *MongoDB) DeletePost(ctx context.Context, postID, ownerID uuid.UUID) (*models.Post, error) {
	filter := bson.M{"_id": postID.String(), "authorid": ownerID.String()}

	var doc PostDocument
	err := m.Posts.FindOneAndDelete(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToPost(&doc)
}

// ToggleLike removes the user from the like set if present, otherwise
// adds them. Both paths are single atomic updates, so a concurrent
// duplicate toggle cannot corrupt the set.
func (m *MongoDB) ToggleLike(ctx context.Context, postID, userID uuid.UUID) (bool, int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// Remove-if-present first.
	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID.String(), "likes": userID.String()},
		bson.M{"$pull": bson.M{"likes": userID.String()}},
		opts,
	).Decode(&doc)
	if err == nil {
		return false, len(doc.Likes), nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, err
	}

	// Not currently liked; add-if-absent.
	err = m.Posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$addToSet": bson.M{"likes": userID.String()}},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return false, 0, err
	}

	return true, len(doc.Likes), nil
}

// AddComment appends a comment and returns the full expanded comment list.
func (m *MongoDB) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) ([]models.Comment, error) {
	update := bson.M{"$push": bson.M{"comments": CommentDocument{
		ID:        comment.ID.String(),
		AuthorID:  comment.AuthorID.String(),
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": postID.String()}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	post, err := documentToPost(&doc)
	if err != nil {
		return nil, err
	}
	if err := m.expandAuthors(ctx, post); err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// SetReaction replaces any prior reaction from the same author and
// returns the full expanded reaction list. At most one reaction per user
// per post survives.
func (m *MongoDB) SetReaction(ctx context.Context, postID uuid.UUID, reaction models.Reaction) ([]models.Reaction, error) {
	result, err := m.Posts.UpdateOne(ctx,
		bson.M{"_id": postID.String()},
		bson.M{"$pull": bson.M{"reactions": bson.M{"authorid": reaction.AuthorID.String()}}},
	)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	update := bson.M{"$push": bson.M{"reactions": ReactionDocument{
		AuthorID: reaction.AuthorID.String(),
		Emoji:    reaction.Emoji,
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err = m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": postID.String()}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, err
	}

	post, err := documentToPost(&doc)
	if err != nil {
		return nil, err
	}
	if err := m.expandAuthors(ctx, post); err != nil {
		return nil, err
	}
	return post.Reactions, nil
}

// expandAuthors fills in name/avatar for post, comment and reaction
// authors with a single $in query against the users collection. Authors
// that no longer exist are left blank rather than failing the read.
func (m *MongoDB) expandAuthors(ctx context.Context, posts ...*models.Post) error {
	idSet := make(map[string]bool)
	for _, post := range posts {
		idSet[post.AuthorID.String()] = true
		for _, c := range post.Comments {
			idSet[c.AuthorID.String()] = true
		}
		for _, r := range post.Reactions {
			idSet[r.AuthorID.String()] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}

	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("author lookup failed: %v", err)
	}
	defer cursor.Close(ctx)

	authors := make(map[string]UserDocument, len(ids))
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		authors[doc.ID] = doc
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("author cursor iteration failed: %v", err)
	}

	for _, post := range posts {
		if author, ok := authors[post.AuthorID.String()]; ok {
			post.AuthorName = author.Name
			post.AuthorAvatar = author.Avatar
		}
		for i := range post.Comments {
			if author, ok := authors[post.Comments[i].AuthorID.String()]; ok {
				post.Comments[i].AuthorName = author.Name
				post.Comments[i].AuthorAvatar = author.Avatar
			}
		}
		for i := range post.Reactions {
			if author, ok := authors[post.Reactions[i].AuthorID.String()]; ok {
				post.Reactions[i].AuthorName = author.Name
				post.Reactions[i].AuthorAvatar = author.Avatar
			}
		}
	}

	return nil
}
