package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type UserController struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewUserController(auth *services.AuthService, users *services.UserService) *UserController {
	return &UserController{auth: auth, users: users}
}

// GET /users/all
func (uc *UserController) Index(c *ctx.Context) {
	page, err := uc.users.List(c.Context(), services.UserListInput{
		Page:        c.QueryInt("page", 1),
		RowsPerPage: c.QueryInt("rowsPerPage", 10),
		Sort:        c.Query("sort"),
		FirstName:   c.Query("firstName"),
		LastName:    c.Query("lastName"),
		Email:       c.Query("email"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(page)
}

// GET /users
func (uc *UserController) Show(c *ctx.Context) {
	u, err := currentUser(c)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"user": u})
}

// POST /users/signup
func (uc *UserController) Signup(c *ctx.Context) {
	var input services.SignupInput
	if !c.BindJSON(&input) {
		return
	}
	res, err := uc.auth.Signup(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("Signup successfully", res)
}

// POST /users/signin
func (uc *UserController) Signin(c *ctx.Context) {
	var input services.SigninInput
	if !c.BindJSON(&input) {
		return
	}
	res, err := uc.auth.Signin(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

// POST /users/signin_with_google
func (uc *UserController) SigninWithGoogle(c *ctx.Context) {
	var input services.GoogleSigninInput
	if !c.BindJSON(&input) {
		return
	}
	res, err := uc.auth.SigninWithGoogle(c.Context(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(res)
}

// PUT /users/password
func (uc *UserController) ChangePassword(c *ctx.Context) {
	u, err := currentUser(c)
	if err != nil {
		c.Fail(err)
		return
	}
	var input services.ChangePasswordInput
	if !c.BindJSON(&input) {
		return
	}
	token, err := uc.users.ChangePassword(c.Context(), u, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Your password has been changed", map[string]string{"token": token})
}

// PUT /users
func (uc *UserController) Update(c *ctx.Context) {
	u, err := currentUser(c)
	if err != nil {
		c.Fail(err)
		return
	}
	var input services.ProfileInput
	if !c.BindJSON(&input) {
		return
	}
	res, err := uc.users.UpdateProfile(c.Context(), u, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message("Your profile has been updated", res)
}
