package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/axsim/audit"
	"github.com/hazyhaar/axsim/config"
	"github.com/hazyhaar/axsim/dbopen"
	"github.com/hazyhaar/axsim/internal/store"
)

const page = `<html><head><title>Docs</title></head><body>
<header><a href="/">Home</a></header>
<main>
<h1>Title</h1>
<h3>Deep</h3>
<input id="q" placeholder="Search">
<button>Go</button>
</main>
</body></html>`

func testService(t *testing.T, withStore bool) *Service {
	t.Helper()
	a := audit.New(
		audit.WithIDGenerator(func() string { return "rpt_1" }),
		audit.WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
	)
	var opts []Option
	if withStore {
		opts = append(opts, WithStore(&store.Store{DB: dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))}))
	}
	return New(a, opts...)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPAuditRoundTrip(t *testing.T) {
	h := testService(t, true).Handler()

	rec := do(t, h, http.MethodPost, "/api/audit?name=docs.html", page)
	if rec.Code != http.StatusCreated {
		t.Fatalf("audit status = %d: %s", rec.Code, rec.Body)
	}
	var rep audit.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.ID != "rpt_1" || rep.Source != "docs.html" || rep.Title != "Docs" {
		t.Errorf("report = %s %s %s", rep.ID, rep.Source, rep.Title)
	}

	rec = do(t, h, http.MethodGet, "/api/reports", "")
	var list []store.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "rpt_1" || list[0].Issues == 0 {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/api/reports/rpt_1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"headings"`) {
		t.Errorf("get json = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/api/reports/rpt_1.md", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# Accessibility report") {
		t.Errorf("get md = %d %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("md content type = %q", ct)
	}

	rec = do(t, h, http.MethodGet, "/api/reports/rpt_1.html", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<article>") {
		t.Errorf("get html = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodDelete, "/api/reports/rpt_1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/reports/rpt_1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", rec.Code)
	}
}

func TestHTTPErrors(t *testing.T) {
	h := testService(t, false).Handler()

	tests := []struct {
		name, method, target, body string
		want                       int
	}{
		{"empty audit", http.MethodPost, "/api/audit", "  ", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/tree", "{", http.StatusBadRequest},
		{"unknown vendor", http.MethodPost, "/api/simulate", `{"html":"<p>x</p>","vendor":"orca"}`, http.StatusBadRequest},
		{"narrator", http.MethodPost, "/api/simulate", `{"html":"<p>x</p>","vendor":"narrator"}`, http.StatusBadRequest},
		{"unknown command", http.MethodPost, "/api/simulate", `{"html":"<p>x</p>","commands":["fly"]}`, http.StatusBadRequest},
		{"no store", http.MethodGet, "/api/reports", "", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestHTTPTree(t *testing.T) {
	h := testService(t, false).Handler()
	body, _ := json.Marshal(TreeRequest{HTML: page})
	rec := do(t, h, http.MethodPost, "/api/tree", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp TreeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Nodes == 0 || resp.Root == nil || !strings.Contains(resp.Outline, "Title") {
		t.Errorf("tree = %+v", resp)
	}
}

func TestSimulate(t *testing.T) {
	s := testService(t, false)
	ctx := context.Background()

	resp, err := s.Simulate(ctx, &SimulateRequest{HTML: page, Vendor: "jaws", Commands: []string{"next-heading", "next-heading"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Announcements) != 2 || resp.Announcements[0].Name != "Title" || resp.Announcements[1].Name != "Deep" {
		t.Fatalf("announcements = %+v", resp.Spoken)
	}
	if resp.Vendor != "jaws" || resp.Current != resp.Announcements[1].NodeID {
		t.Errorf("vendor %s current %d", resp.Vendor, resp.Current)
	}

	// Without commands the page is read to the end and stops at the boundary.
	resp, err = s.Simulate(ctx, &SimulateRequest{HTML: page})
	if err != nil {
		t.Fatal(err)
	}
	last := resp.Announcements[len(resp.Announcements)-1]
	if !last.IsStatus() {
		t.Errorf("last = %+v, want boundary status", last)
	}
	for _, a := range resp.Announcements[:len(resp.Announcements)-1] {
		if a.IsStatus() {
			t.Errorf("status %q before the end", a.Text)
		}
	}
	if len(resp.Spoken) != len(resp.Announcements) {
		t.Errorf("spoken %d, announcements %d", len(resp.Spoken), len(resp.Announcements))
	}
}

var testImpl = &mcp.Implementation{Name: "axsim-test", Version: "0.1.0"}

func mcpSession(t *testing.T, s *Service) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testImpl, nil)
	s.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() {
		_ = srv.Run(ctx, serverT)
	}()

	session, err := mcp.NewClient(testImpl, nil).Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) (string, bool) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if len(res.Content) == 0 {
		t.Fatalf("call %s: no content", name)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("call %s: content %T", name, res.Content[0])
	}
	return tc.Text, res.IsError
}

func TestMCPTools(t *testing.T) {
	s := testService(t, true)
	session := mcpSession(t, s)

	text, isErr := callTool(t, session, "axsim_audit", map[string]any{"html": page, "name": "mcp.html"})
	if isErr {
		t.Fatalf("axsim_audit error: %s", text)
	}
	var rep audit.Report
	if err := json.Unmarshal([]byte(text), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Source != "mcp.html" || rep.Headings == nil || len(rep.Headings.Issues) == 0 {
		t.Errorf("report = %+v", rep)
	}
	if _, err := s.store.GetReport(context.Background(), rep.ID); err != nil {
		t.Errorf("report not stored: %v", err)
	}

	text, isErr = callTool(t, session, "axsim_tree", map[string]any{"html": page})
	if isErr || !strings.Contains(text, `"outline"`) {
		t.Errorf("axsim_tree = %s", text)
	}

	text, isErr = callTool(t, session, "axsim_simulate", map[string]any{
		"html": page, "vendor": "voiceover", "commands": []string{"next-heading"},
	})
	if isErr {
		t.Fatalf("axsim_simulate error: %s", text)
	}
	var sim SimulateResponse
	if err := json.Unmarshal([]byte(text), &sim); err != nil {
		t.Fatal(err)
	}
	if len(sim.Announcements) != 1 || sim.Announcements[0].Name != "Title" {
		t.Errorf("simulate = %+v", sim.Spoken)
	}

	_, isErr = callTool(t, session, "axsim_tree", map[string]any{"html": ""})
	if !isErr {
		t.Error("empty html accepted")
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, testService(t, false).Handler(), http.MethodGet, "/health", "")
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("health = %d %s", rec.Code, body)
	}
}

func TestHTTPRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimits = map[string]config.RateLimit{"POST /api/tree": {MaxRequests: 1, Window: time.Minute}}
	h := New(audit.New(), WithConfig(cfg)).Handler()

	body := `{"html":"<p>x</p>"}`
	if rec := do(t, h, http.MethodPost, "/api/tree", body); rec.Code != http.StatusOK {
		t.Fatalf("first = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/tree", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
