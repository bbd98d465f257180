package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

type ProductListInput struct {
	Page        int
	RowsPerPage int
	Sort        string
	Name        string
	Category    string
}

type ProductInput struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description"`
	Price       *float64       `json:"price" validate:"required,gte=0"`
	Variants    []string       `json:"variants"`
	Categories  []string       `json:"categories" validate:"dive,objectid"`
	Images      []models.Image `json:"images"`
}

// ProductPatch is a partial update; omitted fields are kept.
type ProductPatch struct {
	Name        *string         `json:"name" validate:"omitnil,min=1"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price" validate:"omitnil,gte=0"`
	Variants    *[]string       `json:"variants"`
	Categories  *[]string       `json:"categories" validate:"omitnil,dive,objectid"`
	Images      *[]models.Image `json:"images"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

// Purger drops cached product reads.
type Purger interface {
	Purge(ctx context.Context)
}

type ProductService struct {
	products   repositories.ProductStore
	categories repositories.CategoryStore
	events     *event.Bus
	images     *ImageOffloader
	cache      Purger
}

func NewProductService(products repositories.ProductStore, categories repositories.CategoryStore, events *event.Bus) *ProductService {
	return &ProductService{products: products, categories: categories, events: events}
}

// WithImageOffload stores data-URL images on write instead of in the document.
func (s *ProductService) WithImageOffload(o *ImageOffloader) *ProductService {
	s.images = o
	return s
}

// WithCache registers the product cache to purge on category writes.
func (s *ProductService) WithCache(p Purger) *ProductService {
	s.cache = p
	return s
}

// ─── Products ────────────────────────────────────────────────────────────────

// List returns a page of products. A category filter resolves to the first
// category whose name matches; no matching category is NotFound.
func (s *ProductService) List(ctx context.Context, in ProductListInput) (orm.Page[models.ProductDetail], error) {
	f := repositories.ProductFilter{
		ListParams: repositories.ListParams{Page: in.Page, PerPage: in.RowsPerPage, Sort: in.Sort},
		Name:       in.Name,
	}
	if in.Category != "" {
		c, err := s.categories.FindByName(ctx, in.Category)
		if err != nil {
			return orm.Page[models.ProductDetail]{}, notFoundOr(err, "Category not found")
		}
		f.Category = c.ID
	}

	page, err := s.products.List(ctx, f)
	if err != nil {
		return page, apperr.Internal("Internal Server Error", err)
	}
	if len(page.Items) == 0 {
		return page, apperr.NotFound("Products not found")
	}
	return page, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.ProductDetail, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	images, err := s.offload(ctx, in.Images)
	if err != nil {
		return nil, err
	}
	p := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Variants:    in.Variants,
		Categories:  objectIDs(in.Categories),
		Images:      images,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, writeError(err, "Product name already exists", "Product not found")
	}
	s.events.FireAsync(ctx, EventProductCreated, ProductEvent{ID: p.ID.Hex(), Name: p.Name, Price: p.Price})
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductPatch) (*models.ProductDetail, error) {
	upd := repositories.ProductUpdate{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Variants:    in.Variants,
	}
	if in.Categories != nil {
		ids := objectIDs(*in.Categories)
		upd.Categories = &ids
	}
	if in.Images != nil {
		images, err := s.offload(ctx, *in.Images)
		if err != nil {
			return nil, err
		}
		upd.Images = &images
	}

	p, err := s.products.Update(ctx, id, upd)
	if err != nil {
		return nil, writeError(err, "Product name already exists", "Product not found")
	}
	s.events.FireAsync(ctx, EventProductUpdated, ProductEvent{ID: p.ID.Hex(), Name: p.Name, Price: p.Price})
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Product not found")
	}
	s.events.FireAsync(ctx, EventProductDeleted, DeletedEvent{ID: id})
	return nil
}

func (s *ProductService) offload(ctx context.Context, images []models.Image) ([]models.Image, error) {
	if s.images == nil || len(images) == 0 {
		return images, nil
	}
	return s.images.Offload(ctx, images)
}

// ─── Categories ──────────────────────────────────────────────────────────────

func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.categories.All(ctx)
	if err != nil {
		return nil, apperr.Internal("Internal Server Error", err)
	}
	if len(cats) == 0 {
		return nil, apperr.NotFound("Categories not found")
	}
	return cats, nil
}

func (s *ProductService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	c := &models.Category{Name: in.Name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, writeError(err, "Category name already exists", "Category not found")
	}
	s.events.FireAsync(ctx, EventCategoryCreated, CategoryEvent{ID: c.ID.Hex(), Name: c.Name})
	return c, nil
}

func (s *ProductService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	c, err := s.categories.Update(ctx, id, in.Name)
	if err != nil {
		return nil, writeError(err, "Category name already exists", "Category not found")
	}
	s.purge(ctx)
	s.events.FireAsync(ctx, EventCategoryUpdated, CategoryEvent{ID: c.ID.Hex(), Name: c.Name})
	return c, nil
}

func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Category not found")
	}
	s.purge(ctx)
	s.events.FireAsync(ctx, EventCategoryDeleted, DeletedEvent{ID: id})
	return nil
}

func (s *ProductService) purge(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// objectIDs converts validated hex ids.
func objectIDs(hex []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hex))
	for _, h := range hex {
		if id, err := primitive.ObjectIDFromHex(h); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal("Internal Server Error", err)
}

func writeError(err error, duplicateMsg, notFoundMsg string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return apperr.BadRequest(duplicateMsg)
	}
	return notFoundOr(err, notFoundMsg)
}
