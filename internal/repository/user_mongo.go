package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blogdesk/internal/db"
	"blogdesk/internal/model"
)

type mongoUserRepository struct {
	provider db.MongoProvider
}

// NewMongoUserRepository builds a MongoDB-backed repository over the users collection.
func NewMongoUserRepository(provider db.MongoProvider) UserRepository {
	return &mongoUserRepository{provider: provider}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	coll, err := collection(ctx, r.provider, usersCollection)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, user)
	return mongoErr(err)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	coll, err := collection(ctx, r.provider, usersCollection)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.User, error) {
	coll, err := collection(ctx, r.provider, usersCollection)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, mongoErr(err)
	}
	return users, nil
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *mongoUserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.find(ctx, bson.M{}, newestFirst("createdAt").SetProjection(bson.M{"password": 0}))
}

func (r *mongoUserRepository) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	coll, err := collection(ctx, r.provider, usersCollection)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}}, opts).Decode(&user)
	if err != nil {
		return nil, mongoErr(err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	coll, err := collection(ctx, r.provider, usersCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.M{})
	return n, mongoErr(err)
}
