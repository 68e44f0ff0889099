package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughpos/internal/webserver"
)

// registerMaintenanceRoutes registers on-demand runs of background jobs
func (a *API) registerMaintenanceRoutes(s *webserver.Server) {
	if a.cleanImages == nil {
		return
	}
	s.ApiPOST("/maintenance/image-gc", a.triggerImageGC)
}

// triggerImageGC runs the orphan image gc now instead of waiting for its schedule
func (a *API) triggerImageGC(c echo.Context) error {
	n, err := a.cleanImages(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Image")
	}
	return ok(c, "Orphan images cleaned", map[string]interface{}{"deleted": n})
}
