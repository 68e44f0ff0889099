package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/webserver"
)

type categoryPayload struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
}

func (p categoryPayload) input() service.CategoryInput {
	return service.CategoryInput{Name: p.Name, Description: p.Description}
}

// registerCategoryRoutes registers category CRUD routes
func (a *API) registerCategoryRoutes(s *webserver.Server) {
	s.ApiGET("/categories", a.listCategories)
	s.ApiGET("/categories-all", a.allCategories)
	s.ApiGET("/categories/:id", a.getCategory)
	s.ApiPOST("/categories", a.createCategory)
	s.ApiPUT("/categories/:id", a.updateCategory)
	s.ApiDELETE("/categories/:id", a.deleteCategory)
}

func (a *API) listCategories(c echo.Context) error {
	page, err := a.categories.List(c.Request().Context(), parsePagination(c))
	if err != nil {
		return handleServiceError(c, err, "Category")
	}
	return paged(c, "Categories retrieved", page)
}

func (a *API) allCategories(c echo.Context) error {
	categories, err := a.categories.All(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Category")
	}
	return ok(c, "Categories retrieved", categories)
}

func (a *API) getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID", nil)
	}
	category, err := a.categories.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Category")
	}
	return ok(c, "Category retrieved", category)
}

func (a *API) createCategory(c echo.Context) error {
	var payload categoryPayload
	input, img, done, err := a.readCategory(c, 0, &payload)
	if done {
		return err
	}
	category, err := a.categories.Create(c.Request().Context(), input, img)
	if err != nil {
		return handleServiceError(c, err, "Category")
	}
	return created(c, "Category created", category)
}

func (a *API) updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID", nil)
	}
	var payload categoryPayload
	input, img, done, err := a.readCategory(c, id, &payload)
	if done {
		return err
	}
	category, err := a.categories.Update(c.Request().Context(), id, input, img)
	if err != nil {
		return handleServiceError(c, err, "Category")
	}
	return ok(c, "Category updated", category)
}

// readCategory binds and validates a category write. When done is true the
// response has been written and err is the handler result. An update of a
// missing id answers 404 before any validation.
func (a *API) readCategory(c echo.Context, id int64, payload *categoryPayload) (in service.CategoryInput, img *service.Upload, done bool, err error) {
	if id > 0 {
		if _, err := a.categories.Get(c.Request().Context(), id); err != nil {
			return in, nil, true, handleServiceError(c, err, "Category")
		}
	}
	errs, err := bindAndValidate(c, payload)
	if err != nil {
		return in, nil, true, handleBindError(c, err)
	}
	img, err = readImage(c)
	if err != nil {
		return in, nil, true, handleBindError(c, err)
	}
	in = payload.input()
	domainErrs, err := a.categories.Validate(c.Request().Context(), id, in, img)
	if err != nil {
		return in, nil, true, handleServiceError(c, err, "Category")
	}
	if errs = append(errs, domainErrs...); len(errs) > 0 {
		return in, nil, true, handleValidationError(c, errs)
	}
	return in, img, false, nil
}

func (a *API) deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID", nil)
	}
	if err := a.categories.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, "Category")
	}
	return ok(c, "Category deleted", map[string]interface{}{"id": id})
}
