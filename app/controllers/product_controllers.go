package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// GET /products
func (pc *ProductController) Index(c *ctx.Context) {
	page, err := pc.products.List(c.Context(), services.ProductListInput{
		Page:        c.QueryInt("page", 1),
		RowsPerPage: c.QueryInt("rowsPerPage", 10),
		Sort:        c.Query("sort"),
		Name:        c.Query("name"),
		Category:    c.Query("category"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(page)
}

// GET /products/{productId}
func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.products.Get(c.Context(), c.Param("productId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

// POST /products
func (pc *ProductController) Store(c *ctx.Context) {
	var input services.ProductInput
	if !c.BindJSON(&input) {
		return
	}
	p, err := pc.products.Create(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Product created", p)
}

// PUT /products/{productId}
func (pc *ProductController) Update(c *ctx.Context) {
	var input services.ProductPatch
	if !c.BindJSON(&input) {
		return
	}
	p, err := pc.products.Update(c.Context(), c.Param("productId"), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

// DELETE /products/{productId}
func (pc *ProductController) Destroy(c *ctx.Context) {
	if err := pc.products.Delete(c.Context(), c.Param("productId")); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}

// GET /products/categories
func (pc *ProductController) Categories(c *ctx.Context) {
	cats, err := pc.products.Categories(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cats)
}

// POST /products/categories
func (pc *ProductController) StoreCategory(c *ctx.Context) {
	var input services.CategoryInput
	if !c.BindJSON(&input) {
		return
	}
	cat, err := pc.products.CreateCategory(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Category created", cat)
}

// PUT /products/categories/{categoryId}
func (pc *ProductController) UpdateCategory(c *ctx.Context) {
	var input services.CategoryInput
	if !c.BindJSON(&input) {
		return
	}
	cat, err := pc.products.UpdateCategory(c.Context(), c.Param("categoryId"), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

// DELETE /products/categories/{categoryId}
func (pc *ProductController) DestroyCategory(c *ctx.Context) {
	if err := pc.products.DeleteCategory(c.Context(), c.Param("categoryId")); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}
