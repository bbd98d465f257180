// Package seeders provides a registry of database seed functions.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    Register("categories", seedCategories)
//	}
//
// then run them with: shopfront seed
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/shopfront/app/repositories"
)

// Stores are what seeders write through.
type Stores struct {
	Users      repositories.UserStore
	Categories repositories.CategoryStore
}

// SeederFunc is the signature for a seed function. Seeders must be
// idempotent: seed may be run against a populated database.
type SeederFunc func(ctx context.Context, s Stores) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes every registered seeder against db in registration order.
func RunAll(ctx context.Context, db *mongo.Database, out io.Writer) error {
	return Run(ctx, Stores{
		Users:      repositories.NewUserRepository(db),
		Categories: repositories.NewCategoryRepository(db),
	}, out)
}

// Run executes every registered seeder against s. It stops on the first error.
func Run(ctx context.Context, s Stores, out io.Writer) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	if len(current) == 0 {
		fmt.Fprintln(out, "  (no seeders registered)")
		return nil
	}

	for _, e := range current {
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, s); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
	}
	return nil
}
