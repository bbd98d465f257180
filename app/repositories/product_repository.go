package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

// ProductRepository stores products in Mongo and resolves their categories
// with $lookup.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(ProductsCollection)}
}

var lookupCategories = bson.D{{Key: "$lookup", Value: bson.D{
	{Key: "from", Value: CategoriesCollection},
	{Key: "localField", Value: "categories"},
	{Key: "foreignField", Value: "_id"},
	{Key: "as", Value: "categories"},
}}}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.ProductDetail, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.detail(ctx, oid)
}

func (r *ProductRepository) detail(ctx context.Context, id primitive.ObjectID) (*models.ProductDetail, error) {
	defer metrics.ObserveDBQuery(ProductsCollection, "aggregate", time.Now())

	cur, err := r.col.Aggregate(ctx, productDetailPipeline(id))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var p models.ProductDetail
	if err := cur.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func productDetailPipeline(id primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		lookupCategories,
	}
}

func (r *ProductRepository) FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	defer metrics.ObserveDBQuery(ProductsCollection, "find", time.Now())

	cur, err := r.col.Find(ctx, bson.D{{Key: "_id", Value: bson.M{"$in": ids}}})
	if err != nil {
		return nil, err
	}
	var out []models.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) (orm.Page[models.ProductDetail], error) {
	return orm.Aggregate[models.ProductDetail](ctx, r.col, productListQuery(f), lookupCategories)
}

func productListQuery(f ProductFilter) *orm.Query {
	q := query(f.ListParams, ProductSortKeys).Like("name", f.Name)
	if !f.Category.IsZero() {
		q = q.Where("categories", f.Category)
	}
	return q
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery(ProductsCollection, "insert", time.Now())

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	normalize(p)
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *ProductRepository) Update(ctx context.Context, id string, upd ProductUpdate) (*models.ProductDetail, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{}
	add := func(key string, val any) { set = append(set, bson.E{Key: key, Value: val}) }
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Variants != nil {
		add("variants", nonNil(*upd.Variants))
	}
	if upd.Categories != nil {
		add("categories", nonNil(*upd.Categories))
	}
	if upd.Images != nil {
		add("images", nonNil(*upd.Images))
	}

	if len(set) > 0 {
		start := time.Now()
		res, err := r.col.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: set}})
		metrics.ObserveDBQuery(ProductsCollection, "update", start)
		if err != nil {
			return nil, translate(err)
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
	}
	return r.detail(ctx, oid)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery(ProductsCollection, "delete", time.Now())

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
	return nil
}

// normalize stores empty arrays rather than null so $lookup and $in behave.
func normalize(p *models.Product) {
	p.Variants = nonNil(p.Variants)
	p.Categories = nonNil(p.Categories)
	p.Images = nonNil(p.Images)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
