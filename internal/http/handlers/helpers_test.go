package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"noiressence/internal/assistant"
	"noiressence/internal/checkout"
	"noiressence/internal/config"
	"noiressence/internal/http/handlers"
	applog "noiressence/internal/log"
	"noiressence/internal/repos"
)

const templateDir = "../../../web/templates"

type setup struct {
	gen     assistant.Generator
	sink    checkout.Sink
	retries int
	opts    handlers.Options
}

func newApp(t *testing.T, s setup) *fiber.App {
	t.Helper()
	cfg := config.Config{
		DBDSN:              ":memory:",
		AssistantTimeout:   2 * time.Second,
		OrderSubmitRetries: s.retries,
		SessionTTL:         time.Hour,
		SessionCapacity:    100,
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	opts := s.opts
	opts.TemplateDir = templateDir
	return handlers.NewApp(handlers.NewDeps(db, cfg, s.gen, s.sink), opts)
}

// client keeps cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (cl *client) do(req *http.Request) *http.Response {
	cl.t.Helper()
	for k, v := range cl.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := cl.app.Test(req, 5000)
	if err != nil {
		cl.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	for _, c := range resp.Cookies() {
		cl.cookies[c.Name] = c.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post sends a form, fetching a CSRF token first if none is held yet.
func (cl *client) post(path string, form url.Values) *http.Response {
	cl.t.Helper()
	if cl.cookies["csrf_"] == "" {
		cl.get("/our-story")
	}
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", cl.cookies["csrf_"])
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) postJSON(path string, body any) *http.Response {
	cl.t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		cl.t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

func (cl *client) cart() cartJSON {
	cl.t.Helper()
	var v cartJSON
	resp := cl.get("/api/v1/cart")
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		cl.t.Fatalf("decode cart: %v", err)
	}
	return v
}

type cartJSON struct {
	Lines []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	} `json:"lines"`
	ItemCount int    `json:"itemCount"`
	Subtotal  string `json:"subtotal"`
	PanelOpen bool   `json:"panelOpen"`
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

type logEntry struct {
	Action string         `json:"action"`
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	applog.SetOutput(buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
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

// formRequest builds a form POST without a CSRF token.
func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}
