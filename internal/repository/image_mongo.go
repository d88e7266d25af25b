package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"blogdesk/internal/db"
	"blogdesk/internal/model"
)

type mongoImageRepository struct {
	provider db.MongoProvider
}

// NewMongoImageRepository builds a MongoDB-backed repository over the images collection.
func NewMongoImageRepository(provider db.MongoProvider) ImageRepository {
	return &mongoImageRepository{provider: provider}
}

func (r *mongoImageRepository) Create(ctx context.Context, image *model.Image) error {
	coll, err := collection(ctx, r.provider, imagesCollection)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, image)
	return mongoErr(err)
}

func (r *mongoImageRepository) List(ctx context.Context) ([]model.Image, error) {
	coll, err := collection(ctx, r.provider, imagesCollection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.M{}, newestFirst("uploadedAt"))
	if err != nil {
		return nil, mongoErr(err)
	}
	var images []model.Image
	if err := cur.All(ctx, &images); err != nil {
		return nil, mongoErr(err)
	}
	return images, nil
}

func (r *mongoImageRepository) Delete(ctx context.Context, id string) error {
	coll, err := collection(ctx, r.provider, imagesCollection)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoImageRepository) Count(ctx context.Context) (int64, error) {
	coll, err := collection(ctx, r.provider, imagesCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	return n, mongoErr(err)
}
