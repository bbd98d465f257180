package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

// UserRepository stores users in Mongo.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(UsersCollection)}
}

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	defer metrics.ObserveDBQuery(UsersCollection, "find_one", time.Now())

	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery(UsersCollection, "insert", time.Now())

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) (orm.Page[models.User], error) {
	return orm.Find[models.User](ctx, r.col, userListQuery(f))
}

func userListQuery(f UserFilter) *orm.Query {
	return query(f.ListParams, UserSortKeys).
		Like("firstName", f.FirstName).
		Like("lastName", f.LastName).
		Like("email", f.Email)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.D{}
	for _, f := range []struct {
		key string
		val *string
	}{
		{"firstName", upd.FirstName},
		{"lastName", upd.LastName},
		{"email", upd.Email},
		{"address", upd.Address},
	} {
		if f.val != nil {
			set = append(set, bson.E{Key: f.key, Value: *f.val})
		}
	}
	if len(set) == 0 {
		return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
	}
	return r.update(ctx, id, bson.D{{Key: "$set", Value: set}})
}

func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.update(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: hash}}}})
	return err
}

func (r *UserRepository) SetBan(ctx context.Context, id string, ban models.Ban) (*models.User, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, oid, bson.D{{Key: "$set", Value: bson.D{{Key: "ban", Value: ban}}}})
}

func (r *UserRepository) ClearBan(ctx context.Context, id string) (*models.User, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, oid, unsetBan)
}

func (r *UserRepository) ClearExpiredBans(ctx context.Context, now time.Time) (int64, error) {
	defer metrics.ObserveDBQuery(UsersCollection, "update", time.Now())

	res, err := r.col.UpdateMany(ctx, expiredBanFilter(now), unsetBan)
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}

var unsetBan = bson.D{{Key: "$unset", Value: bson.D{{Key: "ban", Value: ""}}}}

func expiredBanFilter(now time.Time) bson.D {
	return bson.D{{Key: "ban.expired", Value: bson.D{{Key: "$lte", Value: now}}}}
}

func (r *UserRepository) update(ctx context.Context, id primitive.ObjectID, update bson.D) (*models.User, error) {
	defer metrics.ObserveDBQuery(UsersCollection, "update", time.Now())

	var u models.User
	err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, returnAfter).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
