package adminapi

import (
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/storage"
	"github.com/talkincode/toughpos/internal/webserver"
)

// registerPublicRoutes registers the routes served without a token
func (a *API) registerPublicRoutes(s *webserver.Server) {
	s.GET("/", a.index)
	s.GET("/"+storage.KeyPrefix+"/*", a.serveUpload)
}

func (a *API) index(c echo.Context) error {
	return ok(c, "ToughPOS api is running", nil)
}

// serveUpload streams a stored image; blob paths are public as stored in rows.
func (a *API) serveUpload(c echo.Context) error {
	p, err := storage.CleanPath(storage.KeyPrefix + "/" + c.Param("*"))
	if err != nil {
		return fail(c, http.StatusNotFound, "File not found", nil)
	}
	rc, err := a.store.Open(c.Request().Context(), p)
	if errors.Is(err, storage.ErrNotExist) {
		return fail(c, http.StatusNotFound, "File not found", nil)
	}
	if err != nil {
		return handleServiceError(c, err, "File")
	}
	defer rc.Close()
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
