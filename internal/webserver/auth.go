package webserver

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/auth"
)

const userIDKey = "user_id"

// tokenAuth requires a valid bearer token on every route except the public paths.
func tokenAuth(tokens TokenValidator, public ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(public))
	for _, p := range public {
		skip[p] = struct{}{}
	}
	return echojwt.WithConfig(echojwt.Config{
		Skipper: func(c echo.Context) bool {
			_, ok := skip[c.Path()]
			return ok
		},
		ContextKey:  userIDKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return tokens.Validate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			message := "Token not found"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				message = "Token expired"
			case errors.Is(err, auth.ErrTokenInvalid):
				message = "Invalid token"
			}
			return Respond(c, http.StatusUnauthorized, Envelope{Meta: Meta{Message: message}})
		},
	})
}

// UserID returns the id of the authenticated user, 0 on public routes.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}
