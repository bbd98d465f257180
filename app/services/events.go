package services

import (
	"github.com/shashiranjanraj/shopfront/app/models"
)

// Domain events fired on the bus after a successful write.
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
	EventOrderCreated    = "order.created"
	EventOrderUpdated    = "order.updated"
	EventUserBanned      = "user.banned"
	EventUserUnbanned    = "user.unbanned"
)

// AllEvents lists every event name, for broker topic setup.
var AllEvents = []string{
	EventProductCreated, EventProductUpdated, EventProductDeleted,
	EventCategoryCreated, EventCategoryUpdated, EventCategoryDeleted,
	EventOrderCreated, EventOrderUpdated,
	EventUserBanned, EventUserUnbanned,
}

// OrderEvent is the payload of order.* events.
type OrderEvent struct {
	OrderID    string  `json:"orderId"`
	UserID     string  `json:"userId"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"totalPrice"`
}

func (e OrderEvent) EventKey() string { return e.OrderID }

// DeletedEvent is the payload of *.deleted events.
type DeletedEvent struct {
	ID string `json:"id"`
}

func (e DeletedEvent) EventKey() string { return e.ID }

// BanEvent is the payload of user.banned and user.unbanned.
type BanEvent struct {
	UserID string      `json:"userId"`
	Ban    *models.Ban `json:"ban,omitempty"`
}

func (e BanEvent) EventKey() string { return e.UserID }

// ProductEvent is the payload of product.created and product.updated.
type ProductEvent struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (e ProductEvent) EventKey() string { return e.ID }

// CategoryEvent is the payload of category.created and category.updated.
type CategoryEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (e CategoryEvent) EventKey() string { return e.ID }
