package graphql_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/graphql"
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories/repotest"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	gqlserver "github.com/shashiranjanraj/shopfront/pkg/graphql"
)

type result struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func query(t *testing.T, h http.Handler, q string) result {
	t.Helper()
	body, err := json.Marshal(gqlserver.Request{Query: q})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body))))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCatalogQueries(t *testing.T) {
	ctx := context.Background()
	s := repotest.New()
	shoes := &models.Category{Name: "Shoes"}
	require.NoError(t, s.Categories.Create(ctx, shoes))
	runner := &models.Product{Name: "Runner", Price: 80, Variants: []string{"42"}, Categories: []primitive.ObjectID{shoes.ID}}
	require.NoError(t, s.Products.Create(ctx, runner))
	require.NoError(t, s.Products.Create(ctx, &models.Product{Name: "Cap", Price: 15}))

	schema, err := graphql.NewCatalogSchema(services.NewProductService(s.Products, s.Categories, event.NewBus(nil)))
	require.NoError(t, err)
	h := gqlserver.Handler(schema)

	out := query(t, h, `{ products(category: "shoe") { total items { id name price categories { name } } } }`)
	require.Empty(t, out.Errors)
	var page struct {
		Total int `json:"total"`
		Items []struct {
			ID         string  `json:"id"`
			Name       string  `json:"name"`
			Price      float64 `json:"price"`
			Categories []struct {
				Name string `json:"name"`
			} `json:"categories"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(out.Data["products"], &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, runner.ID.Hex(), page.Items[0].ID)
	assert.Equal(t, "Shoes", page.Items[0].Categories[0].Name)

	out = query(t, h, `{ product(id: "`+runner.ID.Hex()+`") { name variants } }`)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"name":"Runner","variants":["42"]}`, string(out.Data["product"]))

	out = query(t, h, `{ categories { id name } }`)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `[{"id":"`+shoes.ID.Hex()+`","name":"Shoes"}]`, string(out.Data["categories"]))
}

func TestCatalogErrorsUseServiceMessages(t *testing.T) {
	s := repotest.New()
	schema, err := graphql.NewCatalogSchema(services.NewProductService(s.Products, s.Categories, event.NewBus(nil)))
	require.NoError(t, err)
	h := gqlserver.Handler(schema)

	out := query(t, h, `{ products { total } }`)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Products not found", out.Errors[0].Message)

	out = query(t, h, `{ product(id: "nope") { name } }`)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "Product not found", out.Errors[0].Message)
}
