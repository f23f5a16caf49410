package httpcontroller

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/security"
)

// handleIndex sends each role to its home page.
func (s *Server) handleIndex(c echo.Context) error {
	caller := callerOf(c)
	if d := happycall.AuthorizeRole(caller, happycall.OpIndex); d != nil {
		return s.fail(c, d, "/login")
	}
	if caller.IsAdmin() {
		return c.Redirect(http.StatusFound, "/admin")
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

func (s *Server) handleLoginPage(c echo.Context) error {
	if callerOf(c).Authenticated() {
		return c.Redirect(http.StatusFound, "/")
	}
	return s.render(c, "login", "로그인", loginPage{Next: c.QueryParam("next")})
}

type loginPage struct {
	Next string
}

// handleLogin checks the lockout, verifies credentials and starts a session.
func (s *Server) handleLogin(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	ip := c.RealIP()

	if s.guard.Locked(username, ip) {
		s.recordAuth("login", "locked")
		s.flash(c, flashError, msgTooManyAttempts)
		return c.Redirect(http.StatusFound, "/login")
	}

	caller, err := s.svc.Authenticate(ctx, username, password)
	if err != nil {
		if _, ok := happycall.UserMessage(err); !ok {
			return err
		}
		s.recordAuth("login", "failure")
		if username != "" && s.guard.Fail(username, ip) {
			s.log.WithContext(ctx).Warn("login locked after repeated failures",
				logger.String("username", username),
				logger.String("ip", ip))
		}
		return s.fail(c, err, "/login")
	}

	s.guard.Reset(username, ip)
	if err := s.sessions.Login(c.Response(), req, caller.UserID); err != nil {
		return err
	}
	s.recordAuth("login", "success")
	s.flash(c, flashSuccess, msgLoginSuccess)

	target := "/"
	if next := c.FormValue("next"); next != "" {
		target = security.SafeRedirect(next)
	}
	return c.Redirect(http.StatusFound, target)
}

func (s *Server) handleLogout(c echo.Context) error {
	if d := happycall.AuthorizeRole(callerOf(c), happycall.OpLogout); d != nil {
		return s.fail(c, d, "/login")
	}
	if err := s.sessions.Logout(c.Response(), c.Request()); err != nil {
		return err
	}
	s.recordAuth("logout", "success")
	s.flash(c, flashInfo, msgLoggedOut)
	return c.Redirect(http.StatusFound, "/login")
}

func (s *Server) recordAuth(operation, status string) {
	if s.metrics != nil {
		s.metrics.HTTP.RecordAuthOperation(operation, status)
	}
}
