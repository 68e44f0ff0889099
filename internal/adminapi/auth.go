package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/webserver"
)

type loginPayload struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"min=6"`
}

// registerAuthRoutes registers login and logout; login is the only public api route
func (a *API) registerAuthRoutes(s *webserver.Server) {
	s.ApiPOST("/login", a.login)
	s.ApiPOST("/logout", a.logout)
}

func (a *API) login(c echo.Context) error {
	var payload loginPayload
	errs, err := bindAndValidate(c, &payload)
	if err != nil {
		return handleBindError(c, err)
	}
	if len(errs) > 0 {
		return handleValidationError(c, errs)
	}
	result, err := a.auth.Login(c.Request().Context(), payload.Email, payload.Password)
	if domain.IsNotFound(err) {
		return fail(c, http.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return handleServiceError(c, err, "User")
	}
	return ok(c, "Login successful", result)
}

func (a *API) logout(c echo.Context) error {
	if err := a.auth.Logout(c.Request().Context(), webserver.UserID(c)); err != nil {
		return handleServiceError(c, err, "User")
	}
	return ok(c, "Logout successful", nil)
}
