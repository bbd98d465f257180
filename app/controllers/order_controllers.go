package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/ws"
)

type OrderController struct {
	orders *services.OrderService
	hub    *ws.Hub
}

func NewOrderController(orders *services.OrderService, hub *ws.Hub) *OrderController {
	return &OrderController{orders: orders, hub: hub}
}

// POST /orders
func (oc *OrderController) Store(c *ctx.Context) {
	u, err := currentUser(c)
	if err != nil {
		c.Fail(err)
		return
	}
	var input services.CreateOrderInput
	if !c.BindJSON(&input) {
		return
	}
	o, err := oc.orders.Create(c.Context(), u, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Order created", o)
}

// GET /orders/all
func (oc *OrderController) Index(c *ctx.Context) {
	page, err := oc.orders.List(c.Context(), services.OrderListInput{
		Page:        c.QueryInt("page", 1),
		RowsPerPage: c.QueryInt("rowsPerPage", 10),
		Sort:        c.Query("sort"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(page)
}

// GET /orders/{orderId}
func (oc *OrderController) Show(c *ctx.Context) {
	o, err := oc.orders.Get(c.Context(), c.Param("orderId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}

// PUT /orders/{orderId}
func (oc *OrderController) Update(c *ctx.Context) {
	var input services.OrderStatusInput
	if !c.BindJSON(&input) {
		return
	}
	o, err := oc.orders.UpdateStatus(c.Context(), c.Param("orderId"), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(o)
}

// GET /orders/ws streams order events for the caller; admins see every order.
func (oc *OrderController) Stream(c *ctx.Context) {
	u, err := currentUser(c)
	if err != nil {
		c.Fail(err)
		return
	}
	if err := ws.Upgrade(c.W, c.R, oc.hub, u.ID.Hex(), u.IsAdmin()); err != nil {
		// The upgrader has already written the handshake error.
		logger.WithCtx(c.Context()).Warn("websocket upgrade failed", "error", err)
	}
}
