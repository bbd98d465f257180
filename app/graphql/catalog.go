// Package graphql exposes the read side of the catalog as a GraphQL schema.
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	gqlserver "github.com/shashiranjanraj/shopfront/pkg/graphql"
)

// hexID resolves the id of a model; ObjectIDs are rendered as hex.
func hexID(p graphql.ResolveParams) (any, error) {
	switch src := p.Source.(type) {
	case models.Category:
		return src.ID.Hex(), nil
	case *models.Category:
		return src.ID.Hex(), nil
	case models.ProductDetail:
		return src.ID.Hex(), nil
	case *models.ProductDetail:
		return src.ID.Hex(), nil
	case primitive.ObjectID:
		return src.Hex(), nil
	}
	return nil, nil
}

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: hexID},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var imageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Image",
	Fields: graphql.Fields{
		"url":     &graphql.Field{Type: graphql.String},
		"dataURL": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: hexID},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"variants":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"categories":  &graphql.Field{Type: graphql.NewList(categoryType)},
		"images":      &graphql.Field{Type: graphql.NewList(imageType)},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"items": &graphql.Field{Type: graphql.NewList(productType)},
		"total": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

// public strips internal causes so only the client-safe message is returned.
func public(err error) error {
	return errors.New(apperr.Message(err))
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(int); ok {
		return v
	}
	return def
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// NewCatalogSchema builds the products, product and categories queries over
// svc. Errors carry the same messages as the REST endpoints.
func NewCatalogSchema(svc *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: graphql.FieldConfigArgument{
					"page":        &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"rowsPerPage": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
					"sort":        &graphql.ArgumentConfig{Type: graphql.String},
					"name":        &graphql.ArgumentConfig{Type: graphql.String},
					"category":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := svc.List(p.Context, services.ProductListInput{
						Page:        intArg(p.Args, "page", 1),
						RowsPerPage: intArg(p.Args, "rowsPerPage", 10),
						Sort:        stringArg(p.Args, "sort"),
						Name:        stringArg(p.Args, "name"),
						Category:    stringArg(p.Args, "category"),
					})
					if err != nil {
						return nil, public(err)
					}
					return map[string]any{"items": page.Items, "total": int(page.Total)}, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					product, err := svc.Get(p.Context, stringArg(p.Args, "id"))
					if err != nil {
						return nil, public(err)
					}
					return product, nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					cats, err := svc.Categories(p.Context)
					if err != nil {
						return nil, public(err)
					}
					return cats, nil
				},
			},
		},
	})
	return gqlserver.NewSchema(query)
}
