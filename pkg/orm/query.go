// Package orm builds MongoDB list queries: filters, an enumerated sort key
// and page/rowsPerPage pagination, and runs them as a counted page.
package orm

import (
	"context"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*perPage from overflowing.
	MaxPage = math.MaxInt / MaxPerPage
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// SortKeys maps the public sort names accepted by a list endpoint to Mongo
// sort documents. Unknown names fall back to Default.
type SortKeys struct {
	Default string
	Keys    map[string]bson.D
}

// Resolve returns the sort document for name.
func (s SortKeys) Resolve(name string) bson.D {
	if d, ok := s.Keys[name]; ok {
		return d
	}
	return s.Keys[s.Default]
}

type Query struct {
	filter  bson.D
	sort    bson.D
	page    int
	perPage int
}

func New() *Query {
	return &Query{page: DefaultPage, perPage: DefaultPerPage}
}

func (q *Query) clone() *Query {
	c := *q
	c.filter = append(bson.D(nil), q.filter...)
	return &c
}

// Where adds an equality (or operator document) condition on key.
func (q *Query) Where(key string, value interface{}) *Query {
	c := q.clone()
	c.filter = append(c.filter, bson.E{Key: key, Value: value})
	return c
}

// In matches documents whose key is one of values.
func (q *Query) In(key string, values interface{}) *Query {
	return q.Where(key, bson.M{"$in": values})
}

// Like adds a case-insensitive substring match. The input is matched
// literally; regex metacharacters are escaped. Empty input adds nothing.
func (q *Query) Like(key, substr string) *Query {
	if substr == "" {
		return q
	}
	return q.Where(key, bson.M{"$regex": regexp.QuoteMeta(substr), "$options": "i"})
}

// OrderBy sorts by the document keys registered for name.
func (q *Query) OrderBy(name string, keys SortKeys) *Query {
	c := q.clone()
	c.sort = keys.Resolve(name)
	return c
}

// Paginate selects a 1-based page. Non-positive values take the defaults and
// perPage is capped at MaxPerPage.
func (q *Query) Paginate(page, perPage int) *Query {
	c := q.clone()
	c.page, c.perPage = Normalize(page, perPage)
	return c
}

// Normalize applies the pagination defaults and bounds.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Filter returns the match document; never nil so it is safe to pass to the driver.
func (q *Query) Filter() bson.D {
	if q.filter == nil {
		return bson.D{}
	}
	return q.filter
}

func (q *Query) Sort() bson.D { return q.sort }
func (q *Query) Skip() int64 { return int64(q.page-1) * int64(q.perPage) }
func (q *Query) Limit() int64 { return int64(q.perPage) }

// FindOptions returns sort, skip and limit for Collection.Find.
func (q *Query) FindOptions() *options.FindOptions {
	opts := options.Find().SetSkip(q.Skip()).SetLimit(q.Limit())
	if len(q.sort) > 0 {
		opts.SetSort(q.sort)
	}
	return opts
}

// Pipeline returns $match, $sort, $skip and $limit followed by extra stages
// (typically $lookup), so joins only run for the selected page.
func (q *Query) Pipeline(extra ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{{{Key: "$match", Value: q.Filter()}}}
	if len(q.sort) > 0 {
		p = append(p, bson.D{{Key: "$sort", Value: q.sort}})
	}
	p = append(p,
		bson.D{{Key: "$skip", Value: q.Skip()}},
		bson.D{{Key: "$limit", Value: q.Limit()}},
	)
	return append(p, extra...)
}

// Find runs q against col and returns the page plus the total match count.
func Find[T any](ctx context.Context, col *mongo.Collection, q *Query) (Page[T], error) {
	defer metrics.ObserveDBQuery(col.Name(), "find", time.Now())

	total, err := col.CountDocuments(ctx, q.Filter())
	if err != nil {
		return Page[T]{}, err
	}

	cur, err := col.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, q.Limit())
	if err := cur.All(ctx, &items); err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}

// Aggregate is Find for pipelines: the count uses q's filter and the page is
// read through q.Pipeline(extra...).
func Aggregate[T any](ctx context.Context, col *mongo.Collection, q *Query, extra ...bson.D) (Page[T], error) {
	defer metrics.ObserveDBQuery(col.Name(), "aggregate", time.Now())

	total, err := col.CountDocuments(ctx, q.Filter())
	if err != nil {
		return Page[T]{}, err
	}

	cur, err := col.Aggregate(ctx, q.Pipeline(extra...))
	if err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, q.Limit())
	if err := cur.All(ctx, &items); err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}
