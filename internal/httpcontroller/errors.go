package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/security"
)

const (
	flashSuccess = security.FlashSuccess
	flashError   = security.FlashError
	flashInfo    = security.FlashInfo
)

// fail recovers a workflow error at the request boundary. Denials and
// user-facing errors become a flash and a redirect; anything else goes to
// the HTTP error handler.
func (s *Server) fail(c echo.Context, err error, fallback string) error {
	if d, ok := happycall.DenialOf(err); ok {
		s.flash(c, flashError, d.Error())
		return c.Redirect(http.StatusFound, denialRedirect(d))
	}
	if msg, ok := happycall.UserMessage(err); ok {
		s.flash(c, flashError, msg)
		return c.Redirect(http.StatusFound, security.SafeRedirect(fallback))
	}
	return err
}

// denialRedirect picks the page a denied caller is sent to.
func denialRedirect(d *happycall.Denial) string {
	switch d.Reason {
	case happycall.DenyUnauthenticated:
		return "/login"
	case happycall.DenyNotOwner:
		return "/dashboard"
	default:
		return "/"
	}
}

// flash queues a message for the next rendered page. A failed cookie write
// only loses the message.
func (s *Server) flash(c echo.Context, category, message string) {
	if err := s.sessions.AddFlash(c.Response(), c.Request(), category, message); err != nil {
		s.log.WithContext(c.Request().Context()).Warn("failed to store flash message",
			logger.String("category", category),
			logger.Error(err))
	}
}

// handleHTTPError renders the error page. Server faults are logged with their
// category and reported to telemetry.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok && code < http.StatusInternalServerError {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	log := s.log.WithContext(c.Request().Context())
	if code >= http.StatusInternalServerError {
		log.Error("request failed",
			logger.String("path", c.Request().URL.Path),
			logger.String("category", string(errors.CategoryOf(err))),
			logger.Error(err))
		s.reporter.CaptureError(err, componentName)
	} else {
		log.Debug("request rejected",
			logger.String("path", c.Request().URL.Path),
			logger.Int("status", code))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = s.renderStatus(c, code, "error", message, errorPage{Code: code, Message: message})
	}
	if err != nil {
		log.Error("failed to render error page", logger.Error(err))
	}
}

type errorPage struct {
	Code    int
	Message string
}
