// Package repositories is the persistence layer. Services depend on the Store
// interfaces; the Mongo implementations live alongside them.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

var (
	ErrNotFound  = errors.New("repository: not found")
	ErrDuplicate = errors.New("repository: duplicate key")
)

// Collection names.
const (
	UsersCollection      = "users"
	ProductsCollection   = "products"
	CategoriesCollection = "categories"
	OrdersCollection     = "orders"
)

// ListParams are the paging and sorting inputs shared by list endpoints.
type ListParams struct {
	Page    int
	PerPage int
	Sort    string
}

type UserFilter struct {
	ListParams
	FirstName string
	LastName  string
	Email     string
}

type ProductFilter struct {
	ListParams
	Name string
	// Category restricts to products referencing this id; zero means any.
	Category primitive.ObjectID
}

type OrderFilter struct {
	ListParams
}

// ProfileUpdate holds the editable profile fields; nil fields are unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Address   *string
}

// ProductUpdate holds a partial product update; nil fields are unchanged.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
	Variants    *[]string
	Categories  *[]primitive.ObjectID
	Images      *[]models.Image
}

// Sort keys accepted by the list endpoints.
var (
	UserSortKeys = orm.SortKeys{
		Default: "firstName",
		Keys: map[string]bson.D{
			"firstName":      {{Key: "firstName", Value: 1}},
			"firstName-desc": {{Key: "firstName", Value: -1}},
			"lastName-asc":   {{Key: "lastName", Value: 1}},
			"lastName-desc":  {{Key: "lastName", Value: -1}},
			"email-asc":      {{Key: "email", Value: 1}},
			"email-desc":     {{Key: "email", Value: -1}},
		},
	}

	ProductSortKeys = orm.SortKeys{
		Default: "name",
		Keys: map[string]bson.D{
			"name":       {{Key: "name", Value: 1}},
			"name-desc":  {{Key: "name", Value: -1}},
			"price-asc":  {{Key: "price", Value: 1}, {Key: "name", Value: 1}},
			"price-desc": {{Key: "price", Value: -1}, {Key: "name", Value: 1}},
		},
	}

	OrderSortKeys = orm.SortKeys{
		Default: "created",
		Keys: map[string]bson.D{
			"created":      {{Key: "created", Value: 1}},
			"created-desc": {{Key: "created", Value: -1}},
		},
	}
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	List(ctx context.Context, f UserFilter) (orm.Page[models.User], error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetBan(ctx context.Context, id string, ban models.Ban) (*models.User, error)
	ClearBan(ctx context.Context, id string) (*models.User, error)
	// ClearExpiredBans removes every ban whose expiry is at or before now.
	ClearExpiredBans(ctx context.Context, now time.Time) (int64, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, id string) (*models.ProductDetail, error)
	// FindMany returns the products among ids that exist, in no particular order.
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	List(ctx context.Context, f ProductFilter) (orm.Page[models.ProductDetail], error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id string, upd ProductUpdate) (*models.ProductDetail, error)
	Delete(ctx context.Context, id string) error
}

type CategoryStore interface {
	All(ctx context.Context) ([]models.Category, error)
	// FindByName returns the first category, by name, whose name contains
	// substr case-insensitively.
	FindByName(ctx context.Context, substr string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id string, name string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.OrderDetail, error)
	List(ctx context.Context, f OrderFilter) (orm.Page[models.OrderDetail], error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.OrderDetail, error)
}

// ObjectID parses a hex id. Malformed ids cannot match any document, so they
// are reported as ErrNotFound.
func ObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func query(p ListParams, keys orm.SortKeys) *orm.Query {
	return orm.New().OrderBy(p.Sort, keys).Paginate(p.Page, p.PerPage)
}
