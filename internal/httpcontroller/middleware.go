package httpcontroller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/recordings"
)

const (
	callerContextKey = "caller"
	csrfContextKey   = "csrf"
	csrfFormField    = "_csrf"
	submitRoute      = "/customer/:id/submit"

	// bodyLimitSlack leaves room for the checklist fields next to a
	// maximum-size recording.
	bodyLimitSlack = 1 << 20
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(s.RequestIDMiddleware())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.LoggingMiddleware())
	s.Echo.Use(s.BodyLimitMiddleware())
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.CSRFMiddleware())
	s.Echo.Use(s.CacheControlMiddleware())
	s.Echo.Use(s.CallerMiddleware())
}

// RequestIDMiddleware tags each request with a uuid and carries it into the
// request context as the log trace id.
func (s *Server) RequestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
		},
	})
}

// LoggingMiddleware writes one line per request and feeds the HTTP metrics.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:       true,
		LogURIPath:      true,
		LogRoutePath:    true,
		LogStatus:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogRequestID:    true,
		LogResponseSize: true,
		HandleError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if s.metrics != nil {
				route := v.RoutePath
				if route == "" {
					route = "unmatched"
				}
				s.metrics.HTTP.RecordHTTPRequest(v.Method, route, v.Status, v.Latency.Seconds())
				s.metrics.HTTP.RecordHTTPResponseSize(v.Method, route, v.ResponseSize)
			}

			fields := []logger.Field{
				logger.String("request_id", v.RequestID),
				logger.String("method", v.Method),
				logger.String("path", v.URIPath),
				logger.Int("status", v.Status),
				logger.Duration("latency", v.Latency),
				logger.String("ip", v.RemoteIP),
			}
			switch {
			case v.Status >= http.StatusInternalServerError:
				s.log.Error("request", fields...)
			case v.Status >= http.StatusBadRequest:
				s.log.Warn("request", fields...)
			default:
				s.log.Info("request", fields...)
			}
			return nil
		},
	})
}

// BodyLimitMiddleware caps request bodies at the recording size limit plus
// room for the form fields. An oversized checklist upload is sent back to
// the customer page with the size message instead of an error page.
func (s *Server) BodyLimitMiddleware() echo.MiddlewareFunc {
	limit := s.Settings.Recordings.MaxSize + bodyLimitSlack
	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dB", limit))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := bodyLimit(next)
		return func(c echo.Context) error {
			err := h(c)
			if err == nil || c.Path() != submitRoute || !errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
				return err
			}
			id, perr := idParam(c, "id")
			if perr != nil {
				return err
			}
			s.log.WithContext(c.Request().Context()).Warn("recording upload over body limit",
				logger.Uint("customer_id", id),
				logger.Int64("content_length", c.Request().ContentLength))
			s.flash(c, flashError, recordings.MsgFileTooLarge)
			return c.Redirect(http.StatusFound, fmt.Sprintf("/customer/%d", id))
		}
	}
}

// GzipMiddleware configures and returns the Gzip middleware. Recordings are
// already compressed and the metrics handler negotiates its own encoding.
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	metricsPath := ""
	if s.metrics != nil && s.Settings.Metrics.Enabled {
		metricsPath = s.Settings.Metrics.Path
	}
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/admin/recordings/:key" || (metricsPath != "" && p == metricsPath)
		},
	})
}

// CSRFMiddleware checks the _csrf form field or X-CSRF-Token header on every
// unsafe request.
func (s *Server) CSRFMiddleware() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfFormField + ",header:X-CSRF-Token",
		CookieName:     "csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   s.Settings.WebServer.SecureCookies,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   1800,
		ContextKey:     csrfContextKey,
		ErrorHandler: func(err error, c echo.Context) error {
			s.log.WithContext(c.Request().Context()).Warn("csrf validation failed",
				logger.String("path", c.Request().URL.Path),
				logger.String("ip", c.RealIP()),
				logger.Error(err))
			return echo.NewHTTPError(http.StatusForbidden, "invalid csrf token")
		},
	})
}

// CacheControlMiddleware keeps personal pages out of shared caches.
func (s *Server) CacheControlMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Cache-Control", "no-store")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			return next(c)
		}
	}
}

// CallerMiddleware resolves the session user into a happycall.Caller.
func (s *Server) CallerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			caller, err := s.svc.ResolveCaller(req.Context(), s.sessions.UserID(req))
			if err != nil {
				return err
			}
			c.Set(callerContextKey, caller)
			return next(c)
		}
	}
}

// LoginRateLimiter throttles login attempts per client IP.
func (s *Server) LoginRateLimiter() echo.MiddlewareFunc {
	perMinute := s.Settings.WebServer.LoginRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.recordAuth("login", "rate_limited")
			s.log.Warn("login rate limit exceeded", logger.String("ip", identifier))
			s.flash(c, flashError, msgTooManyAttempts)
			return c.Redirect(http.StatusFound, "/login")
		},
	})
}

// callerOf returns the caller resolved by CallerMiddleware.
func callerOf(c echo.Context) happycall.Caller {
	if caller, ok := c.Get(callerContextKey).(happycall.Caller); ok {
		return caller
	}
	return happycall.Anonymous()
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}
