package httpcontroller

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/recordings"
)

// escaped is msg as html/template renders it.
func escaped(msg string) string {
	return html.EscapeString(msg)
}

// settle follows redirects until a page renders.
func (b *browser) settle(p page) page {
	b.t.Helper()
	for i := 0; p.Status == http.StatusFound && i < 5; i++ {
		p = b.get(p.Location)
	}
	return p
}

func (a *testApp) freelancerID(t *testing.T, username string) uint {
	t.Helper()
	rows, err := a.svc.Freelancers(context.Background(), a.admin)
	require.NoError(t, err)
	for _, r := range rows {
		if r.User.Username == username {
			return r.User.ID
		}
	}
	t.Fatalf("freelancer %q not found", username)
	return 0
}

func (a *testApp) customer(t *testing.T, name string, agentID *uint) *entities.Customer {
	t.Helper()
	ctx := context.Background()
	c, err := a.svc.CreateCustomer(ctx, a.admin, name, "010-1234-5678")
	require.NoError(t, err)
	if agentID != nil {
		_, err = a.svc.AssignCustomer(ctx, a.admin, c.ID, agentID)
		require.NoError(t, err)
	}
	return c
}

func checklistForm(abnormal ...string) url.Values {
	form := url.Values{}
	for _, item := range happycall.ChecklistItems {
		form.Set(item.Field, happycall.CheckValueNormal)
	}
	for _, field := range abnormal {
		form.Set(field, "abnormal")
	}
	form.Set("agent_opinion", "고객 응대 양호")
	return form
}

func TestAnonymousRedirectsToLogin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)

	for _, path := range []string{"/", "/dashboard", "/admin", "/admin/customers", "/customer/1", "/logout"} {
		p := b.get(path)
		assert.Equal(t, http.StatusFound, p.Status, path)
		assert.Equal(t, "/login", p.Location, path)
	}

	p := b.get("/login")
	assert.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, happycall.MsgLoginRequired)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		username     string
		password     string
		wantLocation string
		wantMessage  string
	}{
		{"admin", "1", "1", "/admin", "로그인 성공!"},
		{"freelancer", "2", "2", "/dashboard", "로그인 성공!"},
		{"wrong password", "1", "nope", "/login", happycall.MsgInvalidCredentials},
		{"unknown user", "ghost", "1", "/login", happycall.MsgInvalidCredentials},
		{"empty", "", "", "/login", happycall.MsgCredentialsRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)
			b := app.browser(t)

			p := b.login(tt.username, tt.password)
			require.Equal(t, http.StatusFound, p.Status)
			if tt.wantLocation == "/login" {
				assert.Equal(t, "/login", p.Location)
			} else {
				p = b.follow(p)
				assert.Equal(t, tt.wantLocation, p.Location)
			}
			page := b.settle(p)
			assert.Equal(t, http.StatusOK, page.Status)
			assert.Contains(t, page.Body, tt.wantMessage)
		})
	}
}

func TestLoginPageRedirectsAuthenticatedUser(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("1", "1")

	p := b.get("/login")
	assert.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, "/", p.Location)
}

func TestLoginHonoursSafeNext(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	tests := map[string]string{
		"/admin/customers":      "/admin/customers",
		"https://evil.example/": "/",
		"//evil.example/":       "/",
	}
	for next, want := range tests {
		b := app.browser(t)
		p := b.post("/login", url.Values{"username": {"1"}, "password": {"1"}, "next": {next}})
		assert.Equal(t, want, p.Location, next)
	}
}

func TestLoginRequiresCSRFToken(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp, err := app.srv.Client().PostForm(app.srv.URL+"/login", url.Values{"username": {"1"}, "password": {"1"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)

	// threshold is 3 in testSettings
	for i := 0; i < 3; i++ {
		b.login("1", "wrong")
	}
	p := b.login("1", "1")
	assert.Equal(t, "/login", p.Location)
	assert.Contains(t, b.get("/login").Body, msgTooManyAttempts)

	// other accounts from the same address are unaffected
	p = b.login("2", "2")
	assert.Equal(t, "/", p.Location)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("2", "2")

	p := b.get("/logout")
	assert.Equal(t, "/login", p.Location)
	assert.Contains(t, b.follow(p).Body, "로그아웃 되었습니다.")
	assert.Equal(t, "/login", b.get("/dashboard").Location)
}

func TestRoleGate(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	freelancer := app.browser(t)
	freelancer.login("2", "2")
	for _, path := range []string{"/admin", "/admin/freelancers", "/admin/customers", "/admin/script", "/admin/submission/1"} {
		p := freelancer.get(path)
		assert.Equal(t, "/", p.Location, path)
	}
	assert.Contains(t, freelancer.settle(freelancer.get("/admin")).Body, happycall.MsgAdminOnly)

	p := freelancer.post("/admin/customers/create", url.Values{"name": {"x"}, "phone": {"010"}})
	assert.Equal(t, "/", p.Location)

	admin := app.browser(t)
	admin.login("1", "1")
	p = admin.get("/dashboard")
	assert.Equal(t, "/admin", p.Location, "admins are sent to their own dashboard")
}

func TestNotOwnerIsSentToDashboard(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	ctx := context.Background()

	other, err := app.svc.CreateFreelancer(ctx, app.admin, "other", "pw")
	require.NoError(t, err)
	c := app.customer(t, "김고객", &other.ID)

	b := app.browser(t)
	b.login("2", "2")
	p := b.get(fmt.Sprintf("/customer/%d", c.ID))
	assert.Equal(t, "/dashboard", p.Location)
	assert.Contains(t, b.follow(p).Body, happycall.MsgForbidden)

	p = b.post(fmt.Sprintf("/customer/%d/status", c.ID), url.Values{"call_status": {"1차부재"}})
	assert.Equal(t, "/dashboard", p.Location)
}

func TestCallStatusUpdate(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	agentID := app.freelancerID(t, "2")
	c := app.customer(t, "김고객", &agentID)
	b := app.browser(t)
	b.login("2", "2")
	detail := fmt.Sprintf("/customer/%d", c.ID)

	tests := []struct {
		status  string
		message string
	}{
		{"1차부재", escaped(`상태가 "1차부재"로 변경되었습니다.`)},
		{"해피콜완료", happycall.MsgInvalidStatus},
		{"bogus", happycall.MsgInvalidStatus},
	}
	for _, tt := range tests {
		p := b.post(detail+"/status", url.Values{"call_status": {tt.status}})
		assert.Equal(t, detail, p.Location, tt.status)
		assert.Contains(t, b.follow(p).Body, tt.message, tt.status)
	}

	got, err := app.repos.Customers.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusMissed1, got.CallStatus)
}

// TestSubmissionWorkflow walks one customer from creation to resolution.
func TestSubmissionWorkflow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	agentID := app.freelancerID(t, "2")

	admin := app.browser(t)
	admin.login("1", "1")
	agent := app.browser(t)
	agent.login("2", "2")

	// admin creates and assigns a customer
	p := admin.post("/admin/customers/create", url.Values{"name": {"홍길동"}, "phone": {"010-9876-5432"}})
	assert.Contains(t, admin.follow(p).Body, escaped(`고객 "홍길동"이 추가되었습니다.`))
	customers, err := app.repos.Customers.List(context.Background(), repository.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	c := customers[0]

	p = admin.post("/admin/customers/assign", url.Values{
		"customer_id": {fmt.Sprint(c.ID)},
		"agent_id":    {fmt.Sprint(agentID)},
	})
	assert.Contains(t, admin.follow(p).Body, "홍길동 → 2 배정 완료")

	// the agent sees it and submits without a recording first
	assert.Contains(t, agent.get("/dashboard").Body, "홍길동")
	detail := fmt.Sprintf("/customer/%d", c.ID)
	body := agent.get(detail).Body
	assert.Contains(t, body, "check_installment")
	assert.Contains(t, body, "store_complaint_memo")

	form := checklistForm("check_penalty")
	form.Set("memo_check_penalty", "위약금 안내 누락")
	p = agent.postMultipart(detail+"/submit", form, "", nil)
	assert.Equal(t, detail, p.Location)
	assert.Contains(t, agent.follow(p).Body, happycall.MsgRecordingRequired)

	p = agent.postMultipart(detail+"/submit", form, "call.mp3", []byte("ID3fake-mp3-bytes"))
	assert.Equal(t, "/dashboard", p.Location)
	assert.Contains(t, agent.follow(p).Body, "체크리스트가 제출되었습니다. 결과: 비정상")

	// a second submission is refused
	p = agent.postMultipart(detail+"/submit", form, "call.mp3", []byte("ID3fake-mp3-bytes"))
	assert.Contains(t, agent.follow(p).Body, happycall.MsgAlreadySubmitted)

	got, err := app.repos.Customers.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CallStatusCompleted, got.CallStatus)

	// admin reviews it
	dash := admin.get("/admin?filter=abnormal").Body
	assert.Contains(t, dash, "홍길동")
	assert.Contains(t, dash, "비정상")

	sub, err := app.repos.Submissions.GetByCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, sub.CheckPenalty)
	assert.Equal(t, "위약금 안내 누락", sub.MemoPenalty)

	detailPage := admin.get(fmt.Sprintf("/admin/submission/%d", sub.ID)).Body
	assert.Contains(t, detailPage, "위약금 안내 누락")
	assert.Contains(t, detailPage, "/admin/recordings/")

	rec := admin.get("/admin/recordings/" + url.PathEscape(sub.RecordingFile))
	assert.Equal(t, http.StatusOK, rec.Status)
	assert.Equal(t, "ID3fake-mp3-bytes", rec.Body)

	assert.Equal(t, "/", agent.get("/admin/recordings/"+url.PathEscape(sub.RecordingFile)).Location,
		"recordings are admin-only")

	p = admin.post(fmt.Sprintf("/admin/submission/%d/resolve", sub.ID), nil)
	assert.Equal(t, fmt.Sprintf("/admin/submission/%d", sub.ID), p.Location)
	assert.Contains(t, admin.follow(p).Body, "처리완료로 변경되었습니다.")

	resolved, err := app.repos.Submissions.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.AdminStatusResolved, resolved.AdminStatus)
}

func TestUnknownRecordingIsNotFound(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("1", "1")

	p := b.get("/admin/recordings/" + url.PathEscape("../../etc/passwd"))
	assert.Equal(t, "/admin", p.Location)
	assert.Contains(t, b.follow(p).Body, happycall.MsgRecordingNotFound)
}

func TestFreelancerManagement(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("1", "1")

	p := b.post("/admin/freelancers/create", url.Values{"username": {"agent7"}, "password": {"pw7"}})
	assert.Contains(t, b.follow(p).Body, escaped(`프리랜서 계정 "agent7"이 생성되었습니다.`))

	p = b.post("/admin/freelancers/create", url.Values{"username": {"agent7"}, "password": {"pw7"}})
	assert.Contains(t, b.follow(p).Body, happycall.MsgUsernameTaken)

	p = b.post("/admin/freelancers/create", url.Values{"username": {""}, "password": {""}})
	assert.Contains(t, b.follow(p).Body, happycall.MsgCredentialsRequired)

	id := app.freelancerID(t, "agent7")
	c := app.customer(t, "배정고객", &id)

	p = b.post(fmt.Sprintf("/admin/freelancers/%d/delete", id), nil)
	assert.Contains(t, b.follow(p).Body, escaped(`프리랜서 계정 "agent7"이 삭제되었습니다.`))

	got, err := app.repos.Customers.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedAgentID, "deleting a freelancer unassigns their customers")

	p = b.post(fmt.Sprintf("/admin/freelancers/%d/delete", app.admin.UserID), nil)
	assert.Contains(t, b.follow(p).Body, happycall.MsgOnlyFreelancerDeletion)

	// the deleted account can no longer log in
	agent := app.browser(t)
	assert.Equal(t, "/login", agent.login("agent7", "pw7").Location)
}

func TestBulkAssign(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	agentID := app.freelancerID(t, "2")
	c1 := app.customer(t, "고객1", nil)
	c2 := app.customer(t, "고객2", nil)

	b := app.browser(t)
	b.login("1", "1")

	p := b.post("/admin/customers/bulk-assign", url.Values{"bulk_agent_id": {fmt.Sprint(agentID)}})
	assert.Contains(t, b.follow(p).Body, happycall.MsgSelectCustomers)

	p = b.post("/admin/customers/bulk-assign", url.Values{
		"customer_ids":  {fmt.Sprint(c1.ID), fmt.Sprint(c2.ID), "9999", "junk"},
		"bulk_agent_id": {fmt.Sprint(agentID)},
		"status_filter": {"대기"},
	})
	assert.Equal(t, "/admin/customers?status="+url.QueryEscape("대기"), p.Location)
	assert.Contains(t, b.follow(p).Body, "2건 배정 완료")

	p = b.post("/admin/customers/bulk-assign", url.Values{
		"customer_ids":  {fmt.Sprint(c1.ID)},
		"bulk_agent_id": {""},
	})
	assert.Contains(t, b.follow(p).Body, "1건 배정 해제 완료")

	p = b.post("/admin/customers/assign", url.Values{"customer_id": {fmt.Sprint(c2.ID)}, "agent_id": {""}})
	assert.Contains(t, b.follow(p).Body, "고객2 배정 해제")

	p = b.post("/admin/customers/assign", url.Values{
		"customer_id": {fmt.Sprint(c2.ID)},
		"agent_id":    {fmt.Sprint(app.admin.UserID)},
	})
	assert.Contains(t, b.follow(p).Body, happycall.MsgInvalidAgent)
}

func TestCustomersPageFilters(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	app.customer(t, "대기고객", nil)

	b := app.browser(t)
	b.login("1", "1")

	all := b.get("/admin/customers?status=all")
	assert.Equal(t, http.StatusOK, all.Status)
	assert.Contains(t, all.Body, "대기고객")

	missed := b.get("/admin/customers?status=" + url.QueryEscape("1차부재"))
	assert.NotContains(t, missed.Body, "대기고객")

	p := b.post("/admin/customers/create", url.Values{"name": {" "}, "phone": {""}})
	assert.Contains(t, b.follow(p).Body, happycall.MsgCustomerFieldsRequired)
}

func TestScriptEditor(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("1", "1")

	page := b.get("/admin/script")
	assert.Equal(t, http.StatusOK, page.Status)
	for _, v := range happycall.ScriptVariables {
		assert.Contains(t, page.Body, v.Placeholder())
	}

	p := b.post("/admin/script/save", url.Values{
		"title":   {"새 스크립트"},
		"content": {`<p onclick="x()">안녕하세요 [고객명]님</p><script>alert(1)</script>`},
	})
	assert.Contains(t, b.follow(p).Body, "스크립트가 저장되었습니다.")

	script, err := app.svc.ActiveScript(context.Background(), app.admin)
	require.NoError(t, err)
	assert.Equal(t, "새 스크립트", script.Title)
	assert.NotContains(t, script.Content, "<script>")
	assert.NotContains(t, script.Content, "onclick")

	agentID := app.freelancerID(t, "2")
	c := app.customer(t, "스크립트고객", &agentID)
	agent := app.browser(t)
	agent.login("2", "2")
	assert.Contains(t, agent.get(fmt.Sprintf("/customer/%d", c.ID)).Body, "새 스크립트")
}

func TestNotFoundRendersErrorPage(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)

	p := b.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Contains(t, p.Body, "404")

	b.login("1", "1")
	assert.Equal(t, http.StatusNotFound, b.get("/admin/submission/abc").Status)
}

func TestSubmitOverBodyLimitRedirectsWithFlash(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	agentID := app.freelancerID(t, "2")

	admin := app.browser(t)
	admin.login("1", "1")
	admin.post("/admin/customers/create", url.Values{"name": {"김철수"}, "phone": {"010-1111-2222"}})
	customers, err := app.repos.Customers.List(context.Background(), repository.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	c := customers[0]
	admin.post("/admin/customers/assign", url.Values{
		"customer_id": {fmt.Sprint(c.ID)},
		"agent_id":    {fmt.Sprint(agentID)},
	})

	agent := app.browser(t)
	agent.login("2", "2")
	detail := fmt.Sprintf("/customer/%d", c.ID)

	p := agent.postMultipart(detail+"/submit", checklistForm(), "call.mp3", bytes.Repeat([]byte("a"), 3<<20))
	require.Equal(t, http.StatusFound, p.Status)
	assert.Equal(t, detail, p.Location)
	assert.Contains(t, agent.follow(p).Body, recordings.MsgFileTooLarge)

	_, err = app.repos.Submissions.GetByCustomer(context.Background(), c.ID)
	assert.Error(t, err, "nothing is stored for a rejected upload")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.login("1", "1")
	b.get("/admin")

	p := b.get("/metrics")
	require.Equal(t, http.StatusOK, p.Status)
	assert.Contains(t, p.Body, "http_requests_total")
	assert.Contains(t, p.Body, `http_auth_operations_total{operation="login",status="success"} 1`)
	assert.True(t, strings.Contains(p.Body, "happycall_submissions_total"))
}

func TestMetricsEndpoint_CompressedOnce(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	b := app.browser(t)
	b.get("/login")

	req, err := http.NewRequest(http.MethodGet, app.srv.URL+"/metrics", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	zr, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# TYPE http_requests_total counter")
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp, err := app.srv.Client().Get(app.srv.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
