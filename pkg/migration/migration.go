// Package migration applies versioned changes to the Mongo database (index
// creation, backfills) and records what ran in a "migrations" collection.
//
// Register migrations from an init() in database/migrations:
//
//	func init() {
//	    migration.Register("20240101000000_users_email_index", usersEmailIndex{})
//	}
//
// and drive them from the CLI:
//
//	shopfront migrate
//	shopfront migrate:rollback
//	shopfront migrate:status
package migration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Collection is where applied migrations are tracked.
const Collection = "migrations"

// Migration is implemented by every registered change.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

// Record is one applied migration.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

// Status describes a registered migration for migrate:status.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Tracker persists which migrations have been applied.
type Tracker interface {
	Applied(ctx context.Context) ([]Record, error)
	Add(ctx context.Context, rec Record) error
	Remove(ctx context.Context, name string) error
}

// ------------------- Registry -------------------

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration. Names are timestamp-prefixed so they sort
// chronologically.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// ------------------- Mongo tracker -------------------

type mongoTracker struct {
	col *mongo.Collection
}

// NewMongoTracker stores records in db.migrations with a unique name index.
func NewMongoTracker(ctx context.Context, db *mongo.Database) (Tracker, error) {
	col := db.Collection(Collection)
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("migration: tracking index: %w", err)
	}
	return &mongoTracker{col: col}, nil
}

func (t *mongoTracker) Applied(ctx context.Context) ([]Record, error) {
	cur, err := t.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "batch", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *mongoTracker) Add(ctx context.Context, rec Record) error {
	_, err := t.col.InsertOne(ctx, rec)
	return err
}

func (t *mongoTracker) Remove(ctx context.Context, name string) error {
	_, err := t.col.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	return err
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db         *mongo.Database
	tracker    Tracker
	migrations []registered
	now        func() time.Time
}

// New returns a Runner over every registered migration.
func New(ctx context.Context, db *mongo.Database) (*Runner, error) {
	tracker, err := NewMongoTracker(ctx, db)
	if err != nil {
		return nil, err
	}
	return NewWithTracker(db, tracker), nil
}

// NewWithTracker is New with a caller-supplied Tracker.
func NewWithTracker(db *mongo.Database, tracker Tracker) *Runner {
	ms := make([]registered, len(registry))
	copy(ms, registry)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
	return &Runner{db: db, tracker: tracker, migrations: ms, now: time.Now}
}

// Run applies every pending migration as one batch and returns their names.
func (r *Runner) Run(ctx context.Context) ([]string, error) {
	applied, err := r.tracker.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: fetch applied: %w", err)
	}

	done := make(map[string]bool, len(applied))
	batch := 0
	for _, rec := range applied {
		done[rec.Name] = true
		batch = max(batch, rec.Batch)
	}
	batch++

	var ran []string
	for _, reg := range r.migrations {
		if done[reg.name] {
			continue
		}
		logger.Info("migration: running", "name", reg.name, "batch", batch)
		if err := reg.m.Up(ctx, r.db); err != nil {
			return ran, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.tracker.Add(ctx, Record{Name: reg.name, Batch: batch, RunAt: r.now().UTC()}); err != nil {
			return ran, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		ran = append(ran, reg.name)
	}

	if len(ran) == 0 {
		logger.Info("migration: nothing to migrate")
	}
	return ran, nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) ([]string, error) {
	applied, err := r.tracker.Applied(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: fetch applied: %w", err)
	}

	last := 0
	for _, rec := range applied {
		last = max(last, rec.Batch)
	}
	if last == 0 {
		return nil, nil
	}

	var batch []Record
	for _, rec := range applied {
		if rec.Batch == last {
			batch = append(batch, rec)
		}
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Name > batch[j].Name })

	byName := make(map[string]Migration, len(r.migrations))
	for _, reg := range r.migrations {
		byName[reg.name] = reg.m
	}

	var rolled []string
	for _, rec := range batch {
		m, ok := byName[rec.Name]
		if !ok {
			return rolled, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(ctx, r.db); err != nil {
			return rolled, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.tracker.Remove(ctx, rec.Name); err != nil {
			return rolled, err
		}
		rolled = append(rolled, rec.Name)
	}
	return rolled, nil
}

// Status lists every registered migration in run order.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	applied, err := r.tracker.Applied(ctx)
	if err != nil {
		return nil, err
	}
	batches := make(map[string]int, len(applied))
	for _, rec := range applied {
		batches[rec.Name] = rec.Batch
	}

	out := make([]Status, 0, len(r.migrations))
	for _, reg := range r.migrations {
		b, ok := batches[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: b})
	}
	return out, nil
}
