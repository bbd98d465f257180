package migrations

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

func init() {
	migration.Register("20240101000000_users_indexes", indexes{
		collection: repositories.UsersCollection,
		models: []mongo.IndexModel{
			unique("email"),
			plain("lastName"),
		},
	})
	migration.Register("20240101000001_categories_indexes", indexes{
		collection: repositories.CategoriesCollection,
		models:     []mongo.IndexModel{unique("name")},
	})
	migration.Register("20240101000002_products_indexes", indexes{
		collection: repositories.ProductsCollection,
		models: []mongo.IndexModel{
			unique("name"),
			plain("categories"),
		},
	})
	migration.Register("20240101000003_orders_indexes", indexes{
		collection: repositories.OrdersCollection,
		models: []mongo.IndexModel{
			plain("user"),
			plain("created"),
		},
	})
}

// indexes creates a set of single-field indexes and drops them on rollback.
type indexes struct {
	collection string
	models     []mongo.IndexModel
}

func (m indexes) Up(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().CreateMany(ctx, m.models)
	return err
}

func (m indexes) Down(ctx context.Context, db *mongo.Database) error {
	view := db.Collection(m.collection).Indexes()
	for _, im := range m.models {
		if _, err := view.DropOne(ctx, *im.Options.Name); err != nil && !isIndexNotFound(err) {
			return err
		}
	}
	return nil
}

func unique(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(field + "_unique").SetUnique(true),
	}
}

func plain(field string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetName(field + "_1"),
	}
}

// IndexNotFound is server error 27.
func isIndexNotFound(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == 27
	}
	return false
}
