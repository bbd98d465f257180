package routes

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/rbac"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/ws"
)

// Deps are the services the API is served from.
type Deps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Products *services.ProductService
	Orders   *services.OrderService
	Hub      *ws.Hub
	// GraphQL serves the catalog schema; nil disables the endpoint.
	GraphQL http.Handler
}

func RegisterAPI(r *router.Router, d Deps) {
	userController := controllers.NewUserController(d.Auth, d.Users)
	productController := controllers.NewProductController(d.Products)
	orderController := controllers.NewOrderController(d.Orders, d.Hub)
	adminController := controllers.NewAdminController(d.Users)

	jwt := middleware.Authenticate(d.Auth)
	admin := rbac.HasRole(models.RoleAdmin)

	api := r.Group("/api/v1")

	users := api.Group("/users")
	users.Get("/all", "users.index", ctx.Wrap(userController.Index), jwt, admin)
	users.Get("/", "users.show", ctx.Wrap(userController.Show), jwt)
	users.Post("/signup", "users.signup", ctx.Wrap(userController.Signup))
	users.Post("/signin", "users.signin", ctx.Wrap(userController.Signin))
	users.Post("/signin_with_google", "users.signin_with_google", ctx.Wrap(userController.SigninWithGoogle))
	users.Put("/password", "users.password", ctx.Wrap(userController.ChangePassword), jwt)
	users.Put("/", "users.update", ctx.Wrap(userController.Update), jwt)

	products := api.Group("/products")
	products.Get("/categories", "categories.index", ctx.Wrap(productController.Categories))
	products.Post("/categories", "categories.store", ctx.Wrap(productController.StoreCategory), jwt, admin)
	products.Put("/categories/{categoryId}", "categories.update", ctx.Wrap(productController.UpdateCategory), jwt, admin)
	products.Delete("/categories/{categoryId}", "categories.destroy", ctx.Wrap(productController.DestroyCategory), jwt, admin)
	products.Get("/", "products.index", ctx.Wrap(productController.Index))
	products.Get("/{productId}", "products.show", ctx.Wrap(productController.Show))
	products.Post("/", "products.store", ctx.Wrap(productController.Store), jwt, admin)
	products.Put("/{productId}", "products.update", ctx.Wrap(productController.Update), jwt, admin)
	products.Delete("/{productId}", "products.destroy", ctx.Wrap(productController.Destroy), jwt, admin)

	orders := api.Group("/orders", jwt)
	orders.Post("/", "orders.store", ctx.Wrap(orderController.Store))
	orders.Get("/all", "orders.index", ctx.Wrap(orderController.Index))
	orders.Get("/ws", "orders.stream", ctx.Wrap(orderController.Stream))
	orders.Get("/{orderId}", "orders.show", ctx.Wrap(orderController.Show))
	orders.Put("/{orderId}", "orders.update", ctx.Wrap(orderController.Update), admin)

	adminGroup := api.Group("/admin", jwt, admin)
	adminGroup.Post("/ban_user", "admin.ban", ctx.Wrap(adminController.Ban))
	adminGroup.Get("/unban_user/{userId}", "admin.unban", ctx.Wrap(adminController.Unban))

	if d.GraphQL != nil {
		api.Post("/graphql", "graphql", d.GraphQL.ServeHTTP)
	}
}
