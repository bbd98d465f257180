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

// OrderRepository stores orders in Mongo. Reads resolve the ordering user
// and every cart product.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(OrdersCollection)}
}

// populateOrder joins the user summary and replaces each cart product id with
// the product document (absent when the product was deleted).
var populateOrder = []bson.D{
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: UsersCollection},
		{Key: "localField", Value: "user"},
		{Key: "foreignField", Value: "_id"},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$project", Value: bson.D{
				{Key: "firstName", Value: 1},
				{Key: "lastName", Value: 1},
				{Key: "email", Value: 1},
				{Key: "address", Value: 1},
			}}},
		}},
		{Key: "as", Value: "user"},
	}}},
	{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$user"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}},
	{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: ProductsCollection},
		{Key: "localField", Value: "cart.product"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "products"},
	}}},
	{{Key: "$addFields", Value: bson.D{{Key: "cart", Value: bson.D{{Key: "$map", Value: bson.D{
		{Key: "input", Value: "$cart"},
		{Key: "as", Value: "line"},
		{Key: "in", Value: bson.D{
			{Key: "product", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: "$products"},
					{Key: "as", Value: "p"},
					{Key: "cond", Value: bson.D{{Key: "$eq", Value: bson.A{"$$p._id", "$$line.product"}}}},
				}}},
				0,
			}}}},
			{Key: "quantity", Value: "$$line.quantity"},
			{Key: "variant", Value: "$$line.variant"},
		}},
	}}}}}}},
	{{Key: "$project", Value: bson.D{{Key: "products", Value: 0}}}},
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	defer metrics.ObserveDBQuery(OrdersCollection, "insert", time.Now())

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, o)
	return translate(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.OrderDetail, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}
	return r.detail(ctx, oid)
}

func (r *OrderRepository) detail(ctx context.Context, id primitive.ObjectID) (*models.OrderDetail, error) {
	defer metrics.ObserveDBQuery(OrdersCollection, "aggregate", time.Now())

	cur, err := r.col.Aggregate(ctx, orderDetailPipeline(id))
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
	var o models.OrderDetail
	if err := cur.Decode(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func orderDetailPipeline(id primitive.ObjectID) mongo.Pipeline {
	return append(mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}}, populateOrder...)
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter) (orm.Page[models.OrderDetail], error) {
	return orm.Aggregate[models.OrderDetail](ctx, r.col, query(f.ListParams, OrderSortKeys), populateOrder...)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) (*models.OrderDetail, error) {
	oid, err := ObjectID(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := r.col.UpdateByID(ctx, oid, bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}})
	metrics.ObserveDBQuery(OrdersCollection, "update", start)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.detail(ctx, oid)
}
