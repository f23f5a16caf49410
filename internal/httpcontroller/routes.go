package httpcontroller

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// initRoutes registers every page and form handler.
func (s *Server) initRoutes() {
	e := s.Echo

	e.GET("/", s.handleIndex)
	e.GET("/login", s.handleLoginPage)
	e.POST("/login", s.handleLogin, s.LoginRateLimiter())
	e.GET("/logout", s.handleLogout)

	// Freelancer pages
	e.GET("/dashboard", s.handleAgentDashboard)
	e.GET("/customer/:id", s.handleCustomerDetail)
	e.POST("/customer/:id/status", s.handleSetCallStatus)
	e.POST(submitRoute, s.handleSubmitChecklist)

	// Admin pages
	admin := e.Group("/admin")
	admin.GET("", s.handleAdminDashboard)
	admin.GET("/submission/:id", s.handleSubmissionDetail)
	admin.POST("/submission/:id/resolve", s.handleResolveSubmission)
	admin.GET("/recordings/:key", s.handleRecording)
	admin.GET("/freelancers", s.handleFreelancers)
	admin.POST("/freelancers/create", s.handleCreateFreelancer)
	admin.POST("/freelancers/:id/delete", s.handleDeleteFreelancer)
	admin.GET("/customers", s.handleCustomers)
	admin.POST("/customers/assign", s.handleAssignCustomer)
	admin.POST("/customers/bulk-assign", s.handleBulkAssign)
	admin.POST("/customers/create", s.handleCreateCustomer)
	admin.GET("/script", s.handleScript)
	admin.POST("/script/save", s.handleSaveScript)

	if s.metrics != nil && s.Settings.Metrics.Enabled {
		e.GET(s.Settings.Metrics.Path, echo.WrapHandler(s.metrics.Handler()))
	}
}

// idParam parses a positive numeric path parameter. Anything else is a 404.
func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return uint(id), nil
}

// optionalID parses a form id where an empty value means none. A value
// that does not parse becomes id 0, which matches no row.
func optionalID(v string) *uint {
	if v == "" {
		return nil
	}
	id, _ := strconv.ParseUint(v, 10, 0)
	u := uint(id)
	return &u
}
