// Package webserver hosts the echo instance, its middleware chain and the
// /api route group the admin handlers register on.
package webserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/talkincode/toughpos/config"
)

const (
	apiPrefix       = "/api"
	shutdownTimeout = 10 * time.Second
)

// TokenValidator resolves a bearer token into a user id.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (int64, error)
}

type Server struct {
	root *echo.Echo
	api  *echo.Group
	cfg  config.WebConfig
}

func NewServer(cfg *config.AppConfig, tokens TokenValidator) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = jsonSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = handleError
	if cfg.System.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(accessLog())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Web.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.Web.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Web.BodyLimit))
	}
	if cfg.Web.RateLimit > 0 {
		e.Use(rateLimiter(cfg.Web.RateLimit, cfg.Web.RateBurst))
	}

	s := &Server{root: e, cfg: cfg.Web}
	s.api = e.Group(apiPrefix, tokenAuth(tokens, apiPrefix+"/login"))
	return s
}

// Echo exposes the underlying instance, mainly for httptest.
func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.GET(path, h, m...)
}

func (s *Server) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, m...)
}

func (s *Server) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PUT(path, h, m...)
}

func (s *Server) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.DELETE(path, h, m...)
}

// GET registers a public route outside /api.
func (s *Server) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.GET(path, h, m...)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("Start admin api server %s", addr)
		errCh <- s.root.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		zap.S().Info("Shutting down admin api server")
		return s.root.Shutdown(shutdownCtx)
	}
}

func rateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	deny := func(c echo.Context, _ string, _ error) error {
		return Respond(c, http.StatusTooManyRequests, Envelope{Meta: Meta{Message: "Too many requests"}})
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return deny(c, "", err)
		},
		DenyHandler: deny,
	})
}

// accessLog writes one structured line per request.
func accessLog() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}
