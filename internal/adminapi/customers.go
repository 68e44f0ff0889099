package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/webserver"
)

type customerPayload struct {
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	NoTelp  string `json:"no_telp" form:"no_telp" validate:"required,max=32"`
	Address string `json:"address" form:"address" validate:"required"`
}

func (p customerPayload) input() service.CustomerInput {
	return service.CustomerInput{Name: p.Name, NoTelp: p.NoTelp, Address: p.Address}
}

// registerCustomerRoutes registers customer CRUD routes
func (a *API) registerCustomerRoutes(s *webserver.Server) {
	s.ApiGET("/customers", a.listCustomers)
	s.ApiGET("/customers/:id", a.getCustomer)
	s.ApiPOST("/customers", a.createCustomer)
	s.ApiPUT("/customers/:id", a.updateCustomer)
	s.ApiDELETE("/customers/:id", a.deleteCustomer)
}

func (a *API) listCustomers(c echo.Context) error {
	page, err := a.customers.List(c.Request().Context(), parsePagination(c))
	if err != nil {
		return handleServiceError(c, err, "Customer")
	}
	return paged(c, "Customers retrieved", page)
}

func (a *API) getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid customer ID", nil)
	}
	customer, err := a.customers.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Customer")
	}
	return ok(c, "Customer retrieved", customer)
}

func (a *API) createCustomer(c echo.Context) error {
	var payload customerPayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	if len(errs) > 0 {
		return handleValidationError(c, errs)
	}
	customer, err := a.customers.Create(c.Request().Context(), payload.input())
	if err != nil {
		return handleServiceError(c, err, "Customer")
	}
	return created(c, "Customer created", customer)
}

func (a *API) updateCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid customer ID", nil)
	}
	var payload customerPayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	if len(errs) > 0 {
		return handleValidationError(c, errs)
	}
	customer, err := a.customers.Update(c.Request().Context(), id, payload.input())
	if err != nil {
		return handleServiceError(c, err, "Customer")
	}
	return ok(c, "Customer updated", customer)
}

func (a *API) deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid customer ID", nil)
	}
	if err := a.customers.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, "Customer")
	}
	return ok(c, "Customer deleted", map[string]interface{}{"id": id})
}
