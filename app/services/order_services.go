package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/orm"
)

type CartItemInput struct {
	Product  string `json:"product" validate:"required,objectid"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Variant  string `json:"variant"`
}

type CreateOrderInput struct {
	Cart []CartItemInput `json:"cart" validate:"required,min=1,dive"`
}

type OrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof='in process' delivering complete"`
}

type OrderListInput struct {
	Page        int
	RowsPerPage int
	Sort        string
}

type OrderService struct {
	orders repositories.OrderStore
	pricer *Pricer
	events *event.Bus
	now    func() time.Time
}

func NewOrderService(orders repositories.OrderStore, pricer *Pricer, events *event.Bus) *OrderService {
	return &OrderService{orders: orders, pricer: pricer, events: events, now: time.Now}
}

func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// Create prices the cart against the catalog and stores the order for u.
func (s *OrderService) Create(ctx context.Context, u *models.User, in CreateOrderInput) (*models.Order, error) {
	cart := make([]models.CartItem, len(in.Cart))
	for i, item := range in.Cart {
		id, err := repositories.ObjectID(item.Product)
		if err != nil {
			return nil, apperr.NotFound("Product " + item.Product + " not found")
		}
		cart[i] = models.CartItem{Product: id, Quantity: item.Quantity, Variant: item.Variant}
	}

	total, err := s.pricer.Total(ctx, cart)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		User:       u.ID,
		Cart:       cart,
		TotalPrice: total,
		Created:    s.now().UTC(),
		Status:     models.StatusInProcess,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, apperr.Internal("Internal Server Error", err)
	}
	s.events.FireAsync(ctx, EventOrderCreated, OrderEvent{
		OrderID: o.ID.Hex(), UserID: u.ID.Hex(), Status: o.Status, TotalPrice: o.TotalPrice,
	})
	return o, nil
}

func (s *OrderService) List(ctx context.Context, in OrderListInput) (orm.Page[models.OrderDetail], error) {
	page, err := s.orders.List(ctx, repositories.OrderFilter{
		ListParams: repositories.ListParams{Page: in.Page, PerPage: in.RowsPerPage, Sort: in.Sort},
	})
	if err != nil {
		return page, apperr.Internal("Internal Server Error", err)
	}
	if len(page.Items) == 0 {
		return page, apperr.NotFound("Orders not found")
	}
	return page, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.OrderDetail, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	return o, nil
}

// UpdateStatus moves an order to in.Status. Only the status is editable.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, in OrderStatusInput) (*models.OrderDetail, error) {
	o, err := s.orders.UpdateStatus(ctx, id, in.Status)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	ev := OrderEvent{OrderID: o.ID.Hex(), Status: o.Status, TotalPrice: o.TotalPrice}
	if o.User != nil {
		ev.UserID = o.User.ID.Hex()
	}
	s.events.FireAsync(ctx, EventOrderUpdated, ev)
	return o, nil
}
