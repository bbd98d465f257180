// Package repotest provides in-memory implementations of the repository
// stores for service and route tests. They honour the same unique-key,
// filtering, sorting and paging rules as the Mongo repositories.
package repotest

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

type db struct {
	mu         sync.Mutex
	users      []models.User
	products   []models.Product
	categories []models.Category
	orders     []models.Order
}

// Stores bundles the four stores over one shared dataset.
type Stores struct {
	Users      *Users
	Products   *Products
	Categories *Categories
	Orders     *Orders
}

func New() *Stores {
	d := &db{}
	return &Stores{
		Users:      &Users{d},
		Products:   &Products{d},
		Categories: &Categories{d},
		Orders:     &Orders{d},
	}
}

func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func page[T any](items []T, p repositories.ListParams) orm.Page[T] {
	pg, per := orm.Normalize(p.Page, p.PerPage)
	total := len(items)
	start := min((pg-1)*per, total)
	end := min(start+per, total)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return orm.Page[T]{Items: out, Total: int64(total)}
}

func index[T any](items []T, id primitive.ObjectID, idOf func(T) primitive.ObjectID) int {
	return slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
}

// ─── Users ───────────────────────────────────────────────────────────────────

type Users struct{ d *db }

var _ repositories.UserStore = (*Users)(nil)

func userID(u models.User) primitive.ObjectID { return u.ID }

func (s *Users) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	return s.byID(oid)
}

func (s *Users) byID(id primitive.ObjectID) (*models.User, error) {
	i := index(s.d.users, id, userID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	u := s.d.users[i]
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, u := range s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.d.users = append(s.d.users, *u)
	return nil
}

func (s *Users) List(_ context.Context, f repositories.UserFilter) (orm.Page[models.User], error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	var out []models.User
	for _, u := range s.d.users {
		if contains(u.FirstName, f.FirstName) && contains(u.LastName, f.LastName) && contains(u.Email, f.Email) {
			out = append(out, u)
		}
	}
	var key func(models.User) string
	desc := strings.HasSuffix(f.Sort, "-desc")
	switch strings.TrimSuffix(strings.TrimSuffix(f.Sort, "-desc"), "-asc") {
	case "lastName":
		key = func(u models.User) string { return u.LastName }
	case "email":
		key = func(u models.User) string { return u.Email }
	default:
		key = func(u models.User) string { return u.FirstName }
		desc = f.Sort == "firstName-desc"
	}
	slices.SortStableFunc(out, func(a, b models.User) int {
		if desc {
			return cmp.Compare(key(b), key(a))
		}
		return cmp.Compare(key(a), key(b))
	})
	return page(out, f.ListParams), nil
}

func (s *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, upd repositories.ProfileUpdate) (*models.User, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.users, id, userID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	if upd.Email != nil {
		for j, other := range s.d.users {
			if j != i && other.Email == *upd.Email {
				return nil, repositories.ErrDuplicate
			}
		}
	}
	u := &s.d.users[i]
	set(&u.FirstName, upd.FirstName)
	set(&u.LastName, upd.LastName)
	set(&u.Email, upd.Email)
	set(&u.Address, upd.Address)
	out := *u
	return &out, nil
}

func (s *Users) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.users, id, userID)
	if i < 0 {
		return repositories.ErrNotFound
	}
	s.d.users[i].Password = hash
	return nil
}

func (s *Users) SetBan(_ context.Context, id string, ban models.Ban) (*models.User, error) {
	return s.mutate(id, func(u *models.User) { u.Ban = &ban })
}

func (s *Users) ClearBan(_ context.Context, id string) (*models.User, error) {
	return s.mutate(id, func(u *models.User) { u.Ban = nil })
}

func (s *Users) ClearExpiredBans(_ context.Context, now time.Time) (int64, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var n int64
	for i := range s.d.users {
		if b := s.d.users[i].Ban; b != nil && !b.Expired.After(now) {
			s.d.users[i].Ban = nil
			n++
		}
	}
	return n, nil
}

func (s *Users) mutate(id string, fn func(*models.User)) (*models.User, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.users, oid, userID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	fn(&s.d.users[i])
	out := s.d.users[i]
	return &out, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// ─── Categories ──────────────────────────────────────────────────────────────

type Categories struct{ d *db }

var _ repositories.CategoryStore = (*Categories)(nil)

func categoryID(c models.Category) primitive.ObjectID { return c.ID }

func byCategoryName(a, b models.Category) int { return cmp.Compare(a.Name, b.Name) }

func (s *Categories) All(context.Context) ([]models.Category, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	out := slices.Clone(s.d.categories)
	if out == nil {
		out = []models.Category{}
	}
	slices.SortFunc(out, byCategoryName)
	return out, nil
}

func (s *Categories) FindByName(ctx context.Context, substr string) (*models.Category, error) {
	all, _ := s.All(ctx)
	for _, c := range all {
		if contains(c.Name, substr) {
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Categories) Create(_ context.Context, c *models.Category) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.categories {
		if existing.Name == c.Name {
			return repositories.ErrDuplicate
		}
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.d.categories = append(s.d.categories, *c)
	return nil
}

func (s *Categories) Update(_ context.Context, id, name string) (*models.Category, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.categories, oid, categoryID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	for j, other := range s.d.categories {
		if j != i && other.Name == name {
			return nil, repositories.ErrDuplicate
		}
	}
	s.d.categories[i].Name = name
	out := s.d.categories[i]
	return &out, nil
}

func (s *Categories) Delete(_ context.Context, id string) error {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.categories, oid, categoryID)
	if i < 0 {
		return repositories.ErrNotFound
	}
	s.d.categories = slices.Delete(s.d.categories, i, i+1)
	for j := range s.d.products {
		s.d.products[j].Categories = slices.DeleteFunc(s.d.products[j].Categories, func(c primitive.ObjectID) bool { return c == oid })
	}
	return nil
}

// ─── Products ────────────────────────────────────────────────────────────────

type Products struct{ d *db }

var _ repositories.ProductStore = (*Products)(nil)

func productID(p models.Product) primitive.ObjectID { return p.ID }

// detail resolves categories; callers hold the lock.
func (s *Products) detail(p models.Product) models.ProductDetail {
	cats := []models.Category{}
	for _, id := range p.Categories {
		if i := index(s.d.categories, id, categoryID); i >= 0 {
			cats = append(cats, s.d.categories[i])
		}
	}
	return models.ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Variants:    p.Variants,
		Categories:  cats,
		Images:      p.Images,
	}
}

func (s *Products) FindByID(_ context.Context, id string) (*models.ProductDetail, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.products, oid, productID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	d := s.detail(s.d.products[i])
	return &d, nil
}

func (s *Products) FindMany(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	var out []models.Product
	for _, p := range s.d.products {
		if slices.Contains(ids, p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Products) List(_ context.Context, f repositories.ProductFilter) (orm.Page[models.ProductDetail], error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	var matched []models.Product
	for _, p := range s.d.products {
		if !contains(p.Name, f.Name) {
			continue
		}
		if !f.Category.IsZero() && !slices.Contains(p.Categories, f.Category) {
			continue
		}
		matched = append(matched, p)
	}
	slices.SortStableFunc(matched, func(a, b models.Product) int {
		switch f.Sort {
		case "name-desc":
			return cmp.Compare(b.Name, a.Name)
		case "price-asc":
			return cmp.Or(cmp.Compare(a.Price, b.Price), cmp.Compare(a.Name, b.Name))
		case "price-desc":
			return cmp.Or(cmp.Compare(b.Price, a.Price), cmp.Compare(a.Name, b.Name))
		}
		return cmp.Compare(a.Name, b.Name)
	})

	out := make([]models.ProductDetail, 0, len(matched))
	for _, p := range matched {
		out = append(out, s.detail(p))
	}
	return page(out, f.ListParams), nil
}

func (s *Products) Create(_ context.Context, p *models.Product) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	for _, existing := range s.d.products {
		if existing.Name == p.Name {
			return repositories.ErrDuplicate
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.d.products = append(s.d.products, *p)
	return nil
}

func (s *Products) Update(_ context.Context, id string, upd repositories.ProductUpdate) (*models.ProductDetail, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.products, oid, productID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	if upd.Name != nil {
		for j, other := range s.d.products {
			if j != i && other.Name == *upd.Name {
				return nil, repositories.ErrDuplicate
			}
		}
	}
	p := &s.d.products[i]
	set(&p.Name, upd.Name)
	set(&p.Description, upd.Description)
	set(&p.Price, upd.Price)
	set(&p.Variants, upd.Variants)
	set(&p.Categories, upd.Categories)
	set(&p.Images, upd.Images)
	d := s.detail(*p)
	return &d, nil
}

func (s *Products) Delete(_ context.Context, id string) error {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.products, oid, productID)
	if i < 0 {
		return repositories.ErrNotFound
	}
	s.d.products = slices.Delete(s.d.products, i, i+1)
	return nil
}

// ─── Orders ──────────────────────────────────────────────────────────────────

type Orders struct{ d *db }

var _ repositories.OrderStore = (*Orders)(nil)

func orderID(o models.Order) primitive.ObjectID { return o.ID }

func (s *Orders) detail(o models.Order) models.OrderDetail {
	out := models.OrderDetail{
		ID:         o.ID,
		TotalPrice: o.TotalPrice,
		Created:    o.Created,
		Status:     o.Status,
		Cart:       make([]models.CartLine, 0, len(o.Cart)),
	}
	if i := index(s.d.users, o.User, userID); i >= 0 {
		out.User = s.d.users[i].Summary()
	}
	for _, item := range o.Cart {
		line := models.CartLine{Quantity: item.Quantity, Variant: item.Variant}
		if i := index(s.d.products, item.Product, productID); i >= 0 {
			p := s.d.products[i]
			line.Product = &p
		}
		out.Cart = append(out.Cart, line)
	}
	return out
}

func (s *Orders) Create(_ context.Context, o *models.Order) error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.d.orders = append(s.d.orders, *o)
	return nil
}

func (s *Orders) FindByID(_ context.Context, id string) (*models.OrderDetail, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.orders, oid, orderID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	d := s.detail(s.d.orders[i])
	return &d, nil
}

func (s *Orders) List(_ context.Context, f repositories.OrderFilter) (orm.Page[models.OrderDetail], error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()

	orders := slices.Clone(s.d.orders)
	slices.SortStableFunc(orders, func(a, b models.Order) int {
		if f.Sort == "created-desc" {
			return b.Created.Compare(a.Created)
		}
		return a.Created.Compare(b.Created)
	})
	out := make([]models.OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.detail(o))
	}
	return page(out, f.ListParams), nil
}

func (s *Orders) UpdateStatus(_ context.Context, id, status string) (*models.OrderDetail, error) {
	oid, err := repositories.ObjectID(id)
	if err != nil {
		return nil, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	i := index(s.d.orders, oid, orderID)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	s.d.orders[i].Status = status
	d := s.detail(s.d.orders[i])
	return &d, nil
}
