package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"bazaar/internal/config"
	"bazaar/internal/events"
	"bazaar/internal/http/handlers"
	"bazaar/internal/repos"
	"bazaar/web"
)

const (
	adminEmail    = "admin@bazaar.dz"
	adminPassword = "Adm1n!pass"
)

type testApp struct {
	app    *fiber.App
	db     *sqlx.DB
	events *events.Recorder
	media  string
}

func newTestApp(t *testing.T, mutate ...func(*handlers.Options)) *testApp {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedAdmin(context.Background(), db, adminEmail, adminPassword))

	media := t.TempDir()
	rec := &events.Recorder{}
	cfg := config.Config{AdminEmail: adminEmail, MediaDir: media}
	deps, err := handlers.NewDeps(context.Background(), db, cfg, handlers.Backends{Events: rec})
	require.NoError(t, err)

	opts := handlers.Options{Views: web.Engine(), MediaDir: media, GlobalLimit: 1000}
	for _, m := range mutate {
		m(&opts)
	}
	return &testApp{app: handlers.NewApp(deps, opts), db: db, events: rec, media: media}
}

// client carries the sid and csrf cookies between requests like a browser.
type client struct {
	t       *testing.T
	ta      *testApp
	cookies map[string]string
	lang    string
}

func (ta *testApp) client(t *testing.T) *client {
	cl := &client{t: t, ta: ta, cookies: map[string]string{}}
	cl.do("GET", "/healthz", nil)
	require.NotEmpty(t, cl.cookies["csrf_"], "csrf cookie issued on first visit")
	require.NotEmpty(t, cl.cookies["sid"], "sid cookie issued on first visit")
	return cl
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (cl *client) do(method, path string, body any) *http.Response {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.lang != "" {
		req.Header.Set("Accept-Language", cl.lang)
	}
	for name, v := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	if method != "GET" && method != "HEAD" {
		req.Header.Set("X-CSRF-Token", cl.cookies["csrf_"])
	}
	resp, err := cl.ta.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

// call sends a JSON request and decodes the envelope.
func (cl *client) call(method, path string, body any) (int, envelope) {
	cl.t.Helper()
	resp := cl.do(method, path, body)
	defer resp.Body.Close()
	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)
	require.NoError(cl.t, json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (cl *client) text(path string) (int, string) {
	cl.t.Helper()
	resp := cl.do("GET", path, nil)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)
	return resp.StatusCode, string(raw)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func (cl *client) register(email string) {
	cl.t.Helper()
	status, env := cl.call("POST", "/api/v1/auth/register", map[string]string{
		"first_name": "Amina", "last_name": "Benali", "email": email,
		"password": "Passw0rd!", "phone": "0555123456",
	})
	require.Equal(cl.t, http.StatusCreated, status, env.Error.Message)
}

func (cl *client) loginAdmin() {
	cl.t.Helper()
	status, env := cl.call("POST", "/api/v1/auth/login", map[string]string{"email": adminEmail, "password": adminPassword})
	require.Equal(cl.t, http.StatusOK, status, env.Error.Message)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
