// Package adminapi holds the http handlers of the point-of-sale admin api.
package adminapi

import (
	"context"

	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/storage"
	"github.com/talkincode/toughpos/internal/webserver"
)

// Services groups what the handlers depend on.
type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Categories *service.CategoryService
	Products   *service.ProductService
	Customers  *service.CustomerService
	Store      storage.Store

	// CleanImages runs the orphan image gc on demand; nil disables the route
	CleanImages func(ctx context.Context) (int, error)
}

type API struct {
	auth        *service.AuthService
	users       *service.UserService
	categories  *service.CategoryService
	products    *service.ProductService
	customers   *service.CustomerService
	store       storage.Store
	cleanImages func(ctx context.Context) (int, error)
}

func New(svc Services) *API {
	return &API{
		auth:        svc.Auth,
		users:       svc.Users,
		categories:  svc.Categories,
		products:    svc.Products,
		customers:   svc.Customers,
		store:       svc.Store,
		cleanImages: svc.CleanImages,
	}
}

// Init registers every admin api route on s
func (a *API) Init(s *webserver.Server) {
	a.registerPublicRoutes(s)
	a.registerAuthRoutes(s)
	a.registerUserRoutes(s)
	a.registerCategoryRoutes(s)
	a.registerProductRoutes(s)
	a.registerCustomerRoutes(s)
	a.registerMaintenanceRoutes(s)
}
