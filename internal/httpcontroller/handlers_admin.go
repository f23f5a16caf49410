package httpcontroller

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/happycall"
)

func (s *Server) handleAdminDashboard(c echo.Context) error {
	filter := repository.ParseSubmissionFilter(c.QueryParam("filter"))
	dash, err := s.svc.Dashboard(c.Request().Context(), callerOf(c), filter)
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, "admin_dashboard", "관리자 대시보드", dash)
}

type submissionDetailPage struct {
	Detail *happycall.SubmissionDetail
	Items  []checklistRow
}

func (s *Server) handleSubmissionDetail(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := s.svc.SubmissionDetail(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return s.fail(c, err, "/admin")
	}
	return s.render(c, "submission_detail", "제출 상세", submissionDetailPage{
		Detail: detail,
		Items:  checklistRows(detail.Submission),
	})
}

func (s *Server) handleResolveSubmission(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := s.svc.ResolveSubmission(c.Request().Context(), callerOf(c), id); err != nil {
		return s.fail(c, err, "/admin")
	}
	s.flash(c, flashSuccess, msgResolved)
	return c.Redirect(http.StatusFound, fmt.Sprintf("/admin/submission/%d", id))
}

// handleRecording streams a recording that a submission references.
func (s *Server) handleRecording(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("key"))
	if err != nil {
		return echo.ErrNotFound
	}
	if err := s.svc.AuthorizeRecording(c.Request().Context(), callerOf(c), key); err != nil {
		return s.fail(c, err, "/admin")
	}
	if s.recordings == nil {
		return echo.ErrNotFound
	}
	return s.recordings.Serve(c, key)
}

func (s *Server) handleFreelancers(c echo.Context) error {
	rows, err := s.svc.Freelancers(c.Request().Context(), callerOf(c))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, "freelancers", "프리랜서 관리", rows)
}

func (s *Server) handleCreateFreelancer(c echo.Context) error {
	user, err := s.svc.CreateFreelancer(c.Request().Context(), callerOf(c),
		c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		return s.fail(c, err, "/admin/freelancers")
	}
	s.flash(c, flashSuccess, fmt.Sprintf(msgFreelancerAdded, user.Username))
	return c.Redirect(http.StatusFound, "/admin/freelancers")
}

func (s *Server) handleDeleteFreelancer(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, _, err := s.svc.DeleteFreelancer(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return s.fail(c, err, "/admin/freelancers")
	}
	s.flash(c, flashSuccess, fmt.Sprintf(msgFreelancerGone, user.Username))
	return c.Redirect(http.StatusFound, "/admin/freelancers")
}

type customersPage struct {
	*happycall.CustomersPage
	Statuses []entities.CallStatus
}

func (s *Server) handleCustomers(c echo.Context) error {
	status := entities.CallStatus(c.QueryParam("status"))
	page, err := s.svc.Customers(c.Request().Context(), callerOf(c), status)
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, "customers", "고객 관리", customersPage{
		CustomersPage: page,
		Statuses:      entities.CallStatuses,
	})
}

// customersReturn keeps the status filter the form was posted from.
func customersReturn(c echo.Context) string {
	if st := entities.CallStatus(c.FormValue("status_filter")); st.Valid() {
		return "/admin/customers?status=" + url.QueryEscape(string(st))
	}
	return "/admin/customers"
}

func (s *Server) handleAssignCustomer(c echo.Context) error {
	back := customersReturn(c)
	customerID, _ := strconv.ParseUint(c.FormValue("customer_id"), 10, 0)
	agentID := optionalID(c.FormValue("agent_id"))

	a, err := s.svc.AssignCustomer(c.Request().Context(), callerOf(c), uint(customerID), agentID)
	if err != nil {
		return s.fail(c, err, back)
	}
	if a.Agent != nil {
		s.flash(c, flashSuccess, fmt.Sprintf(msgAssigned, a.Customer.Name, a.Agent.Username))
	} else {
		s.flash(c, flashInfo, fmt.Sprintf(msgUnassigned, a.Customer.Name))
	}
	return c.Redirect(http.StatusFound, back)
}

// handleBulkAssign assigns every checked customer. Ids that do not parse are
// skipped like unknown ids.
func (s *Server) handleBulkAssign(c echo.Context) error {
	back := customersReturn(c)
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}
	ids := make([]uint, 0, len(form["customer_ids"]))
	for _, v := range form["customer_ids"] {
		if id, err := strconv.ParseUint(v, 10, 0); err == nil && id != 0 {
			ids = append(ids, uint(id))
		}
	}
	agentID := optionalID(c.FormValue("bulk_agent_id"))

	n, err := s.svc.BulkAssign(c.Request().Context(), callerOf(c), ids, agentID)
	if err != nil {
		return s.fail(c, err, back)
	}
	if agentID != nil {
		s.flash(c, flashSuccess, fmt.Sprintf(msgBulkAssigned, n))
	} else {
		s.flash(c, flashSuccess, fmt.Sprintf(msgBulkUnassigned, n))
	}
	return c.Redirect(http.StatusFound, back)
}

func (s *Server) handleCreateCustomer(c echo.Context) error {
	customer, err := s.svc.CreateCustomer(c.Request().Context(), callerOf(c),
		c.FormValue("name"), c.FormValue("phone"))
	if err != nil {
		return s.fail(c, err, "/admin/customers")
	}
	s.flash(c, flashSuccess, fmt.Sprintf(msgCustomerAdded, customer.Name))
	return c.Redirect(http.StatusFound, "/admin/customers")
}

type scriptPage struct {
	Script    *entities.Script
	Variables []happycall.ScriptVariable
}

func (s *Server) handleScript(c echo.Context) error {
	script, err := s.svc.ActiveScript(c.Request().Context(), callerOf(c))
	if err != nil {
		return s.fail(c, err, "/")
	}
	return s.render(c, "script", "스크립트 관리", scriptPage{
		Script:    script,
		Variables: happycall.ScriptVariables,
	})
}

func (s *Server) handleSaveScript(c echo.Context) error {
	if _, _, err := s.svc.SaveScript(c.Request().Context(), callerOf(c),
		c.FormValue("title"), c.FormValue("content")); err != nil {
		return s.fail(c, err, "/admin/script")
	}
	s.flash(c, flashSuccess, msgScriptSaved)
	return c.Redirect(http.StatusFound, "/admin/script")
}
