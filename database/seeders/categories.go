package seeders

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/models"
)

var starterCategories = []string{"Tops", "Bottoms", "Shoes", "Accessories"}

func init() {
	Register("categories", func(ctx context.Context, s Stores) error {
		return seedCategories(ctx, s, starterCategories)
	})
}

func seedCategories(ctx context.Context, s Stores, names []string) error {
	existing, err := s.Categories.All(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}

	for _, name := range names {
		if have[name] {
			continue
		}
		if err := s.Categories.Create(ctx, &models.Category{Name: name}); err != nil {
			return err
		}
	}
	return nil
}
