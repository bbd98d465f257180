package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

// PriceLookup loads the products referenced by a cart.
type PriceLookup interface {
	FindMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

// Pricer computes order totals from current catalog prices. Client-sent
// prices are never trusted.
type Pricer struct {
	products PriceLookup
}

func NewPricer(products PriceLookup) *Pricer {
	return &Pricer{products: products}
}

// Total returns the sum of price × quantity over cart. Every referenced
// product must exist.
func (p *Pricer) Total(ctx context.Context, cart []models.CartItem) (float64, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(cart))
	ids := make([]primitive.ObjectID, 0, len(cart))
	for _, item := range cart {
		if _, ok := seen[item.Product]; ok {
			continue
		}
		seen[item.Product] = struct{}{}
		ids = append(ids, item.Product)
	}

	found, err := p.products.FindMany(ctx, ids)
	if err != nil {
		return 0, apperr.Internal("Internal Server Error", err)
	}
	prices := make(map[primitive.ObjectID]decimal.Decimal, len(found))
	for _, prod := range found {
		prices[prod.ID] = decimal.NewFromFloat(prod.Price)
	}

	total := decimal.Zero
	for _, item := range cart {
		price, ok := prices[item.Product]
		if !ok {
			return 0, apperr.NotFound("Product " + item.Product.Hex() + " not found")
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.InexactFloat64(), nil
}
