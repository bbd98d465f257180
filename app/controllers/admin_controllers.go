package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type AdminController struct {
	users *services.UserService
}

func NewAdminController(users *services.UserService) *AdminController {
	return &AdminController{users: users}
}

// POST /admin/ban_user
func (ac *AdminController) Ban(c *ctx.Context) {
	var input services.BanInput
	if !c.BindJSON(&input) {
		return
	}
	ban, err := ac.users.Ban(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ban)
}

// GET /admin/unban_user/{userId}
func (ac *AdminController) Unban(c *ctx.Context) {
	u, err := ac.users.Unban(c.Context(), c.Param("userId"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}
