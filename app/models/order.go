package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusInProcess  = "in process"
	StatusDelivering = "delivering"
	StatusComplete   = "complete"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []string{StatusInProcess, StatusDelivering, StatusComplete}

// CartItem is one cart line as submitted. Prices are not stored per line.
type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Variant  string             `bson:"variant,omitempty" json:"variant,omitempty"`
}

// Order is the stored order document.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User       primitive.ObjectID `bson:"user" json:"user"`
	Cart       []CartItem         `bson:"cart" json:"cart"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	Created    time.Time          `bson:"created" json:"created"`
	Status     string             `bson:"status" json:"status"`
}

// CartLine is a cart item with its product resolved. Product is nil when the
// product has since been deleted.
type CartLine struct {
	Product  *Product `bson:"product" json:"product"`
	Quantity int      `bson:"quantity" json:"quantity"`
	Variant  string   `bson:"variant,omitempty" json:"variant,omitempty"`
}

// OrderDetail is an order with its user and products resolved.
type OrderDetail struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	User       *UserSummary       `bson:"user" json:"user"`
	Cart       []CartLine         `bson:"cart" json:"cart"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	Created    time.Time          `bson:"created" json:"created"`
	Status     string             `bson:"status" json:"status"`
}
