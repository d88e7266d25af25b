package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogdesk/internal/db"
	"blogdesk/internal/model"
)

type mongoBlogRepository struct {
	provider db.MongoProvider
}

// NewMongoBlogRepository builds a MongoDB-backed repository over the blogs collection.
func NewMongoBlogRepository(provider db.MongoProvider) BlogRepository {
	return &mongoBlogRepository{provider: provider}
}

func (r *mongoBlogRepository) Create(ctx context.Context, blog *model.Blog) error {
	coll, err := collection(ctx, r.provider, blogsCollection)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, blog)
	return mongoErr(err)
}

func (r *mongoBlogRepository) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	coll, err := collection(ctx, r.provider, blogsCollection)
	if err != nil {
		return nil, err
	}
	var blog model.Blog
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&blog); err != nil {
		return nil, mongoErr(err)
	}
	return &blog, nil
}

func (r *mongoBlogRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*model.Blog, error) {
	coll, err := collection(ctx, r.provider, blogsCollection)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var blog model.Blog
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&blog); err != nil {
		return nil, mongoErr(err)
	}
	return &blog, nil
}

func (r *mongoBlogRepository) IncrementViews(ctx context.Context, id string) (*model.Blog, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *mongoBlogRepository) Update(ctx context.Context, id string, patch model.BlogPatch, at time.Time) (*model.Blog, error) {
	fields := bson.M(patchFields(patch))
	fields["updatedAt"] = at
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": fields})
}

func (r *mongoBlogRepository) Delete(ctx context.Context, id string) error {
	coll, err := collection(ctx, r.provider, blogsCollection)
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

func (r *mongoBlogRepository) list(ctx context.Context, filter bson.M) ([]model.Blog, error) {
	coll, err := collection(ctx, r.provider, blogsCollection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, newestFirst("createdAt"))
	if err != nil {
		return nil, mongoErr(err)
	}
	var blogs []model.Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, mongoErr(err)
	}
	return blogs, nil
}

func (r *mongoBlogRepository) ListPublished(ctx context.Context) ([]model.Blog, error) {
	return r.list(ctx, bson.M{"status": model.BlogPublished})
}

func (r *mongoBlogRepository) ListAll(ctx context.Context) ([]model.Blog, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoBlogRepository) Totals(ctx context.Context) (BlogTotals, error) {
	coll, err := collection(ctx, r.provider, blogsCollection)
	if err != nil {
		return BlogTotals{}, err
	}
	pipeline := bson.A{
		bson.M{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"views": bson.M{"$sum": "$views"},
		}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return BlogTotals{}, mongoErr(err)
	}
	var rows []struct {
		Status model.BlogStatus `bson:"_id"`
		Count  int64            `bson:"count"`
		Views  int64            `bson:"views"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return BlogTotals{}, mongoErr(err)
	}

	var totals BlogTotals
	for _, row := range rows {
		if row.Status == model.BlogPublished {
			totals.Published += row.Count
		} else {
			totals.Draft += row.Count
		}
		totals.Views += row.Views
	}
	return totals, nil
}
