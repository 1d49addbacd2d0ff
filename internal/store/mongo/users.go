// Package mongo stores verified users in a MongoDB collection, matching
// the document shape of the original users collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nhle/teamboard/internal/model"
	"github.com/nhle/teamboard/internal/store"
)

// CollectionName is the collection holding verified users.
const CollectionName = "users"

// userDocument is the stored form of a verified user.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ClerkID   string             `bson:"clerkId"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Avatar    string             `bson:"avatar,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDocument) toModel() model.VerifiedUser {
	return model.VerifiedUser{
		ClerkID:   d.ClerkID,
		Email:     d.Email,
		Name:      d.Name,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// UserStore implements store.UserStore on a MongoDB collection.
type UserStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ store.UserStore = (*UserStore)(nil)

// Connect dials uri, verifies the connection, and ensures the unique
// clerkId index exists.
func Connect(ctx context.Context, uri, database string) (*UserStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	s := &UserStore{
		client: client,
		coll:   client.Database(database).Collection(CollectionName),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *UserStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "clerkId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating clerkId index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *UserStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// UpsertUser replaces email, name and avatar for the subject, creating the
// document when absent, and returns the post-update document.
func (s *UserStore) UpsertUser(
	ctx context.Context,
	u model.VerifiedUser,
) (model.VerifiedUser, error) {
	now := time.Now().UTC()

	filter := bson.M{"clerkId": u.ClerkID}
	update := bson.M{
		"$set": bson.M{
			"email":     u.Email,
			"name":      u.Name,
			"avatar":    u.Avatar,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc userDocument
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return model.VerifiedUser{}, fmt.Errorf("upserting user %s: %w", u.ClerkID, err)
	}
	return doc.toModel(), nil
}

// GetUser retrieves a verified user by subject id.
func (s *UserStore) GetUser(ctx context.Context, clerkID string) (*model.VerifiedUser, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{"clerkId": clerkID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", clerkID, err)
	}
	u := doc.toModel()
	return &u, nil
}
