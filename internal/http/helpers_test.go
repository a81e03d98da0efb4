package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/persist"
	"storefront/internal/repos"
	"storefront/internal/tenant"
)

func newApp(t *testing.T, mutate ...func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.MediaDir = "../../web/media"
	for _, fn := range mutate {
		fn(&cfg)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	carts, err := persist.NewMemBackend(8 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(carts.Close)
	companies, err := persist.NewMemBackend(1 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(companies.Close)

	deps := handlers.NewDeps(db, cfg, carts, companies, nil)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Use(tenant.Middleware(deps.Resolver, cfg.Tenancy.Header, nil))
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	deps.Register(app)
	return app
}

// client replays the did/sid cookies the app hands out.
type client struct {
	t       *testing.T
	app     *fiber.App
	host    string
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, app *fiber.App, host string) *client {
	return &client{t: t, app: app, host: host, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, path string, body any) (*http.Response, []byte) {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			cl.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Host = cl.host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	resp, err := cl.app.Test(req, -1)
	if err != nil {
		cl.t.Fatalf("%s %s: %v", method, path, err)
	}
	for _, ck := range resp.Cookies() {
		cl.cookies[ck.Name] = ck
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (cl *client) json(method, path string, body any, want int) map[string]any {
	cl.t.Helper()
	resp, raw := cl.do(method, path, body)
	if resp.StatusCode != want {
		cl.t.Fatalf("%s %s: want %d, got %d body=%s", method, path, want, resp.StatusCode, raw)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		cl.t.Fatalf("%s %s: bad json %s", method, path, raw)
	}
	return m
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Tenant string         `json:"tenant"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
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
