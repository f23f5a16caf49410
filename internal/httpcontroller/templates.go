package httpcontroller

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/security"
)

//go:embed views/*.html
var viewsFS embed.FS

// PageData is the data every page template receives.
type PageData struct {
	Title   string
	Caller  happycall.Caller
	CSRF    string
	Flashes []security.Flash
	Data    any
}

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template with the given data.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// setupTemplateRenderer parses the embedded views.
func (s *Server) setupTemplateRenderer() error {
	tmpl, err := template.New("").Funcs(templateFunctions()).ParseFS(viewsFS, "views/*.html")
	if err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Context("operation", "parse_templates").
			Build()
	}
	s.Echo.Renderer = &TemplateRenderer{templates: tmpl}
	return nil
}

// render writes page with status 200.
func (s *Server) render(c echo.Context, page, title string, data any) error {
	return s.renderStatus(c, http.StatusOK, page, title, data)
}

// renderStatus pops pending flashes and renders page inside the layout.
func (s *Server) renderStatus(c echo.Context, status int, page, title string, data any) error {
	flashes, err := s.sessions.Flashes(c.Response(), c.Request())
	if err != nil {
		s.log.WithContext(c.Request().Context()).Warn("failed to clear flash messages", logger.Error(err))
	}
	return c.Render(status, page, PageData{
		Title:   title,
		Caller:  callerOf(c),
		CSRF:    csrfToken(c),
		Flashes: flashes,
		Data:    data,
	})
}
