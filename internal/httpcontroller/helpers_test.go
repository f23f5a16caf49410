package httpcontroller

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/observability"
	"github.com/happycall-qa/happycall/internal/recordings"
	"github.com/happycall-qa/happycall/internal/security"
)

type testApp struct {
	srv     *httptest.Server
	svc     *happycall.Service
	repos   *repository.Set
	metrics *observability.Metrics
	admin   happycall.Caller
}

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	return &conf.Settings{
		WebServer: conf.WebServerSettings{
			Listen:             "127.0.0.1",
			Port:               "0",
			SessionSecret:      "test-secret-test-secret-test-secret",
			LoginRatePerMinute: 600,
			LockoutThreshold:   3,
			LockoutDuration:    time.Minute,
		},
		Recordings: conf.RecordingsSettings{
			Path:              filepath.Join(t.TempDir(), "uploads"),
			MaxSize:           1 << 20,
			AllowedExtensions: []string{"mp3", "wav", "m4a", "ogg"},
		},
		Workflow: conf.WorkflowSettings{RecordingRequired: true},
		Seed: conf.SeedSettings{
			AdminUsername:      "1",
			AdminPassword:      "1",
			FreelancerUsername: "2",
			FreelancerPassword: "2",
		},
		Metrics: conf.MetricsSettings{Enabled: true, Path: "/metrics"},
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	settings := testSettings(t)
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)

	mgr, err := datastore.NewSQLiteManager(filepath.Join(t.TempDir(), "happycall.db"), 0, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.Initialize(ctx))

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	store, err := recordings.New(&settings.Recordings, log,
		recordings.WithSizeObserver(metrics.HappyCall.RecordRecordingSize))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	repos := repository.NewSet(mgr.DB())
	svc, err := happycall.NewService(happycall.Deps{
		Repos:      repos,
		Hasher:     security.NewPasswordHasher(bcrypt.MinCost),
		Recordings: store,
		Metrics:    metrics.HappyCall,
		Logger:     log,
	}, happycall.Options{RecordingRequired: settings.Workflow.RecordingRequired})
	require.NoError(t, err)
	_, err = svc.Seed(ctx, &settings.Seed)
	require.NoError(t, err)

	srv, err := New(Deps{
		Settings:   settings,
		Service:    svc,
		Sessions:   security.NewSessionManager(settings.WebServer.SessionSecret, false, time.Hour),
		Guard:      security.NewLoginGuard(settings.WebServer.LockoutThreshold, settings.WebServer.LockoutDuration),
		Recordings: store,
		Metrics:    metrics,
		Logger:     log,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)

	admin, err := svc.Authenticate(ctx, "1", "1")
	require.NoError(t, err)
	return &testApp{srv: ts, svc: svc, repos: repos, metrics: metrics, admin: admin}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: a,
		client: &http.Client{
			Transport: a.srv.Client().Transport,
			Jar:       jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	Status   int
	Location string
	Body     string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.srv.URL+path, http.NoBody)
	require.NoError(b.t, err)
	return b.do(req)
}

// csrf returns the token cookie, fetching the login page first if needed.
func (b *browser) csrf() string {
	b.t.Helper()
	u, err := url.Parse(b.app.srv.URL)
	require.NoError(b.t, err)
	for i := 0; i < 2; i++ {
		for _, c := range b.client.Jar.Cookies(u) {
			if c.Name == "csrf" {
				return c.Value
			}
		}
		b.get("/login")
	}
	b.t.Fatal("no csrf cookie issued")
	return ""
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(csrfFormField, b.csrf())
	req, err := http.NewRequest(http.MethodPost, b.app.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, form url.Values, fileName string, content []byte) page {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(b.t, w.WriteField(csrfFormField, b.csrf()))
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(b.t, w.WriteField(k, v))
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("recording", fileName)
		require.NoError(b.t, err)
		_, err = fw.Write(content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, b.app.srv.URL+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

// follow GETs the redirect target of p.
func (b *browser) follow(p page) page {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, p.Status, "expected redirect, body: %s", p.Body)
	return b.get(p.Location)
}

func (b *browser) login(username, password string) page {
	b.t.Helper()
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}
