// Package controllers adapts HTTP requests to service calls. Controllers bind
// and validate input, call one service method and render its result.
package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

func currentUser(c *ctx.Context) (*models.User, error) {
	p, _ := c.Principal()
	return services.CurrentUser(p)
}
