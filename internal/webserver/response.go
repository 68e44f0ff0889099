package webserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
)

type Meta struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Envelope is the body of every api response.
type Envelope struct {
	Meta       Meta               `json:"meta"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *domain.Pagination `json:"pagination,omitempty"`
	Errors     interface{}        `json:"errors,omitempty"`
}

// Respond writes body with status; meta.success follows the status class.
func Respond(c echo.Context, status int, body Envelope) error {
	body.Meta.Success = status < http.StatusBadRequest
	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}
	return c.JSON(status, body)
}

// RequestID returns the id assigned by the RequestID middleware.
func RequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// handleError renders errors that escape handlers, mostly from echo itself
// (unknown route, bad method, body too large). 5xx details are only logged.
func handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if status < http.StatusInternalServerError {
			message = fmt.Sprint(he.Message)
		}
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", RequestID(c)),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
	}
	if rerr := Respond(c, status, Envelope{Meta: Meta{Message: message}}); rerr != nil {
		zap.L().Error("write error response", zap.Error(rerr))
	}
}
