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

// CategoryRepository stores categories in Mongo.
type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: db.Collection(CategoriesCollection)}
}

var byName = bson.D{{Key: "name", Value: 1}}

func (r *CategoryRepository) All(ctx context.Context) ([]models.Category, error) {
	defer metrics.ObserveDBQuery(CategoriesCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(byName))
	if err != nil {
		return nil, err
	}
	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, substr string) (*models.Category, error) {
	defer metrics.ObserveDBQuery(CategoriesCollection, "find_one", time.Now())

	var c models.Category
	if err := r.col.FindOne(ctx, orm.New().Like("name", substr).Filter(), options.FindOne().SetSort(byName)).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	defer metrics.ObserveDBQuery(CategoriesCollection, "insert", time.Now())

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *CategoryRepository) Update(ctx context.Context, id, name string) (*models.Category, error) {
	defer metrics.ObserveDBQuery(CategoriesCollection, "update", time.Now())

	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	var c models.Category
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "name", Value: name}}}}
	if err := r.col.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, returnAfter).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Delete removes the category and pulls its id from every product.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery(CategoriesCollection, "delete", time.Now())

	oid, err := ObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	products := r.col.Database().Collection(ProductsCollection)
	filter, update := pullCategory(oid)
	_, err = products.UpdateMany(ctx, filter, update)
	return err
}

// pullCategory removes a deleted category's id from every product.
func pullCategory(id primitive.ObjectID) (filter, update bson.D) {
	return bson.D{{Key: "categories", Value: id}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "categories", Value: id}}}}
}
