package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/webserver"
)

type userCreatePayload struct {
	Name     string `json:"name" form:"name" validate:"required,max=200"`
	Email    string `json:"email" form:"email" validate:"required,email,max=200"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// userUpdatePayload leaves the password unchanged when it is blank
type userUpdatePayload struct {
	Name     string `json:"name" form:"name" validate:"required,max=200"`
	Email    string `json:"email" form:"email" validate:"required,email,max=200"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
}

// registerUserRoutes registers user CRUD routes
func (a *API) registerUserRoutes(s *webserver.Server) {
	s.ApiGET("/users", a.listUsers)
	s.ApiGET("/users/:id", a.getUser)
	s.ApiPOST("/users", a.createUser)
	s.ApiPUT("/users/:id", a.updateUser)
	s.ApiDELETE("/users/:id", a.deleteUser)
}

func (a *API) listUsers(c echo.Context) error {
	page, err := a.users.List(c.Request().Context(), parsePagination(c))
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return paged(c, "Users retrieved", page)
}

func (a *API) getUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}
	user, err := a.users.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return ok(c, "User retrieved", user)
}

func (a *API) createUser(c echo.Context) error {
	var payload userCreatePayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	input := service.UserInput{Name: payload.Name, Email: payload.Email, Password: payload.Password}
	if errs, err = a.validateUser(c, 0, input, errs); err != nil || len(errs) > 0 {
		return a.userValidationResult(c, errs, err)
	}
	user, err := a.users.Create(c.Request().Context(), input)
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return created(c, "User created", user)
}

func (a *API) updateUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}
	var payload userUpdatePayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	input := service.UserInput{Name: payload.Name, Email: payload.Email, Password: payload.Password}
	if errs, err = a.validateUser(c, id, input, errs); err != nil || len(errs) > 0 {
		return a.userValidationResult(c, errs, err)
	}
	user, err := a.users.Update(c.Request().Context(), id, input)
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return ok(c, "User updated", user)
}

// validateUser adds the email uniqueness check unless the email itself was rejected.
func (a *API) validateUser(c echo.Context, id int64, in service.UserInput, errs []domain.FieldError) ([]domain.FieldError, error) {
	for _, fe := range errs {
		if fe.Field == "email" {
			return errs, nil
		}
	}
	more, err := a.users.Validate(c.Request().Context(), id, in)
	if err != nil {
		return nil, err
	}
	return append(errs, more...), nil
}

func (a *API) userValidationResult(c echo.Context, errs []domain.FieldError, err error) error {
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return handleValidationError(c, errs)
}

func (a *API) deleteUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid user ID", nil)
	}
	if err := a.users.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, "User")
	}
	return ok(c, "User deleted", map[string]interface{}{"id": id})
}
