package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogdesk/internal/db"
)

const (
	usersCollection  = "users"
	blogsCollection  = "blogs"
	imagesCollection = "images"
)

// collection resolves name through the lazily connected provider.
func collection(ctx context.Context, provider db.MongoProvider, name string) (*mongo.Collection, error) {
	database, err := provider.Database(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

// CreateMongoIndexes creates the indexes the repositories rely on. It is a
// db.ConnectHook, so a lazily connected store gets them on its first connect.
// The unique email index backs duplicate signup detection.
func CreateMongoIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		blogsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		imagesCollection: {
			{Keys: bson.D{{Key: "uploadedAt", Value: -1}}},
		},
	}
	for _, name := range []string{usersCollection, blogsCollection, imagesCollection} {
		models := indexes[name]
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, mongoErr(err))
		}
	}
	return nil
}

func newestFirst(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}

var _ db.ConnectHook = CreateMongoIndexes
