package httpcontroller

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
)

// handleAgentDashboard lists the freelancer's assigned customers. Admins are
// sent to their own dashboard.
func (s *Server) handleAgentDashboard(c echo.Context) error {
	caller := callerOf(c)
	if caller.IsAdmin() {
		return c.Redirect(http.StatusFound, "/admin")
	}
	customers, err := s.svc.AgentDashboard(c.Request().Context(), caller)
	if err != nil {
		return s.fail(c, err, "/login")
	}
	return s.render(c, "agent_dashboard", "내 고객 목록", customers)
}

type customerDetailPage struct {
	View              *happycall.CustomerView
	Items             []checklistRow
	CallStatuses      []entities.CallStatus
	MaxMemoLength     int
	RecordingRequired bool
}

// checklistRow pairs a checklist item with a stored answer, if any.
type checklistRow struct {
	happycall.ChecklistItem
	OK   bool
	Memo string
}

func checklistRows(sub *entities.Submission) []checklistRow {
	rows := make([]checklistRow, len(happycall.ChecklistItems))
	var checks [entities.ChecklistItems]bool
	var memos [entities.ChecklistItems]string
	if sub != nil {
		checks = sub.Checks()
		memos = happycall.Memos(sub)
	}
	for i, item := range happycall.ChecklistItems {
		rows[i] = checklistRow{ChecklistItem: item, OK: checks[i], Memo: memos[i]}
	}
	return rows
}

func agentSettableStatuses() []entities.CallStatus {
	statuses := make([]entities.CallStatus, 0, len(entities.CallStatuses))
	for _, st := range entities.CallStatuses {
		if st.AgentSettable() {
			statuses = append(statuses, st)
		}
	}
	return statuses
}

func (s *Server) handleCustomerDetail(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := s.svc.CustomerDetail(c.Request().Context(), callerOf(c), id)
	if err != nil {
		return s.fail(c, err, "/dashboard")
	}
	return s.render(c, "customer_detail", view.Customer.Name, customerDetailPage{
		View:              view,
		Items:             checklistRows(view.Existing),
		CallStatuses:      agentSettableStatuses(),
		MaxMemoLength:     happycall.MaxMemoLength,
		RecordingRequired: s.svc.Options().RecordingRequired,
	})
}

func (s *Server) handleSetCallStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	back := fmt.Sprintf("/customer/%d", id)
	status, err := s.svc.SetCallStatus(c.Request().Context(), callerOf(c), id, c.FormValue("call_status"))
	if err != nil {
		return s.fail(c, err, back)
	}
	s.flash(c, flashSuccess, fmt.Sprintf(msgStatusChanged, status))
	return c.Redirect(http.StatusFound, back)
}

// handleSubmitChecklist reads the checklist form and the optional recording
// and stores the submission.
func (s *Server) handleSubmitChecklist(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	back := fmt.Sprintf("/customer/%d", id)

	checklist := checklistFromForm(c)

	upload, closeUpload, err := recordingFromForm(c)
	if err != nil {
		return s.fail(c, err, back)
	}
	defer closeUpload()

	sub, err := s.svc.SubmitChecklist(c.Request().Context(), callerOf(c), id, checklist, upload)
	if err != nil {
		return s.fail(c, err, back)
	}
	s.flash(c, flashSuccess, fmt.Sprintf(msgSubmitted, sub.FinalStatus))
	return c.Redirect(http.StatusFound, "/dashboard")
}

func checklistFromForm(c echo.Context) happycall.Checklist {
	var cl happycall.Checklist
	for i, item := range happycall.ChecklistItems {
		cl.Items[i] = happycall.ParseCheck(c.FormValue(item.Field))
		cl.Memos[i] = c.FormValue(item.MemoField)
	}
	cl.AgentOpinion = c.FormValue("agent_opinion")
	cl.RawCustomerData = c.FormValue("raw_customer_data")
	return cl
}

// recordingFromForm opens the "recording" file field. A missing or empty
// field yields a nil upload.
func recordingFromForm(c echo.Context) (*happycall.RecordingUpload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile("recording")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, happycall.NewUserError(errors.CategoryValidation, msgInvalidUpload, err)
	}
	if fh.Filename == "" {
		return nil, noop, nil
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, noop, happycall.NewUserError(errors.CategoryValidation, msgInvalidUpload, err)
	}
	return &happycall.RecordingUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	}, func() { _ = f.Close() }, nil
}
