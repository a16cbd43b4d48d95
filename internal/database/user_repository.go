// internal/database/user_repository.go
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

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID             string    `bson:"_id"`            // MongoDB primary key
	Name           string    `bson:"name"`           // Display name
	Email          string    `bson:"email"`          // Email address, unique index
	HashedPassword string    `bson:"hashedPassword"` // Hashed password
	Avatar         string    `bson:"avatar"`         // Derived avatar URL
	Score          int       `bson:"score"`          // Leaderboard score
	CreatedAt      time.Time `bson:"createdAt"`      // Account creation timestamp
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:             user.ID.String(),
		Name:           user.Name,
		Email:          user.Email,
		HashedPassword: user.HashedPassword,
		Avatar:         user.Avatar,
		Score:          user.Score,
		CreatedAt:      user.CreatedAt,
	}
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	return &models.User{
		ID:             id,
		Name:           doc.Name,
		Email:          doc.Email,
		HashedPassword: doc.HashedPassword,
		Avatar:         doc.Avatar,
		Score:          doc.Score,
		CreatedAt:      doc.CreatedAt,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := userToDocument(user)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		return utils.NewAppError(utils.ErrDuplicate, "Email already registered", err)
	}
	return err
}

// GetUser retrieves a user by ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// GetUserByEmail retrieves a user by email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// UpdateUserProfile sets a new display name and avatar and returns the
// updated user.
func (m *MongoDB) UpdateUserProfile(ctx context.Context, id uuid.UUID, name, avatar string) (*models.User, error) {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$set": bson.M{"name": name, "avatar": avatar}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// UpdateUserScore overwrites the stored score with the supplied value.
// No bounds checking and no increment semantics, per the API contract.
func (m *MongoDB) UpdateUserScore(ctx context.Context, id uuid.UUID, score int) (*models.User, error) {
	filter := bson.M{"_id": id.String()}
	update := bson.M{"$set": bson.M{"score": score}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc UserDocument
	err := m.Users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return documentToUser(&doc)
}

// GetTopUsers returns the highest-scoring users. Ties are broken by
// ascending ID so the ordering is deterministic.
func (m *MongoDB) GetTopUsers(ctx context.Context, limit int) ([]*models.RankedUser, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"name": 1, "avatar": 1, "score": 1})

	cursor, err := m.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var ranking []*models.RankedUser
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			slog.Warn("skipping undecodable user document", "error", err)
			continue
		}
		ranking = append(ranking, &models.RankedUser{
			Name:   doc.Name,
			Avatar: doc.Avatar,
			Score:  doc.Score,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return ranking, nil
}
