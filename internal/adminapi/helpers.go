package adminapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/internal/service"
	"github.com/talkincode/toughpos/internal/webserver"
)

func ok(c echo.Context, message string, data interface{}) error {
	return webserver.Respond(c, http.StatusOK, webserver.Envelope{Meta: webserver.Meta{Message: message}, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return webserver.Respond(c, http.StatusCreated, webserver.Envelope{Meta: webserver.Meta{Message: message}, Data: data})
}

func paged[T any](c echo.Context, message string, page *domain.Page[T]) error {
	return webserver.Respond(c, http.StatusOK, webserver.Envelope{
		Meta:       webserver.Meta{Message: message},
		Data:       page.Items,
		Pagination: &page.Pagination,
	})
}

func fail(c echo.Context, status int, message string, errs interface{}) error {
	return webserver.Respond(c, status, webserver.Envelope{Meta: webserver.Meta{Message: message}, Errors: errs})
}

// parsePagination reads search, page and limit; bad numbers fall back to defaults.
func parsePagination(c echo.Context) domain.ListQuery {
	q := domain.ListQuery{
		Search:  strings.TrimSpace(c.QueryParam("search")),
		Page:    cast.ToInt(c.QueryParam("page")),
		PerPage: cast.ToInt(c.QueryParam("limit")),
	}
	return q.Normalize()
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// bindAndValidate binds the request into payload and collects struct rule
// violations; a nil result with a nil error means the payload is clean.
func bindAndValidate(c echo.Context, payload interface{}) ([]domain.FieldError, error) {
	if err := c.Bind(payload); err != nil {
		return nil, err
	}
	if err := c.Validate(payload); err != nil {
		errs, ok := webserver.FieldErrors(err)
		if !ok {
			return nil, err
		}
		return errs, nil
	}
	return nil, nil
}

func handleValidationError(c echo.Context, errs []domain.FieldError) error {
	return fail(c, http.StatusUnprocessableEntity, "Validation failed", errs)
}

func handleBindError(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, "Invalid request", nil)
}

// handleServiceError maps domain errors to responses; anything unknown is
// logged with the request id and answered with a generic 500.
func handleServiceError(c echo.Context, err error, resource string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return handleValidationError(c, verr.Errors)
	case domain.IsNotFound(err):
		return fail(c, http.StatusNotFound, resource+" not found", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid password", nil)
	case errors.Is(err, domain.ErrCategoryInUse):
		return fail(c, http.StatusConflict, "Category is in use by products and cannot be deleted", nil)
	}
	zap.L().Error("request failed",
		zap.String("request_id", webserver.RequestID(c)),
		zap.String("resource", resource),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "Internal server error", nil)
}

// readImage returns the optional "image" multipart file. Files larger than
// the upload limit are read just past it so validation can reject them.
func readImage(c echo.Context) (*service.Upload, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}
