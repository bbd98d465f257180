// Package migrations holds the index migrations. Each file registers itself
// from init(); cmd/shopfront imports this package for the side effect.
package migrations
