package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dylan-park/LastMile/internal/config"
	"github.com/dylan-park/LastMile/internal/session"
	"github.com/dylan-park/LastMile/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p := store.NewDemoProvider(nil, 0)
	t.Cleanup(p.Close)
	return NewServer(config.Config{SessionSecret: "test-secret", ServerPort: ":0"}, p)
}

// do sends a request, reusing the session cookie when one is given, and
// returns the response plus the cookie that identifies the session.
func do(t *testing.T, s *Server, method, target, cookie string, body any) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, target, err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return resp, c.Value
		}
	}
	return resp, cookie
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t)

	resp, _ := do(t, s, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["mode"] != "demo" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestSessionFlowAcrossRequests(t *testing.T) {
	s := newTestServer(t)

	// First touch mints the cookie and seeds the session.
	resp, cookie := do(t, s, http.MethodGet, "/api/shifts", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %d", resp.StatusCode)
	}
	if cookie == "" {
		t.Fatalf("expected a session cookie on first request")
	}
	var seeded []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&seeded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(seeded) == 0 {
		t.Fatalf("expected demo data")
	}

	// Clear, then write through the same session.
	resp, _ = do(t, s, http.MethodPost, "/api/test/teardown", cookie, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("teardown status: %d", resp.StatusCode)
	}
	resp, _ = do(t, s, http.MethodPost, "/api/shifts/start", cookie, map[string]any{"odometer_start": 163000})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status: %d", resp.StatusCode)
	}

	resp, _ = do(t, s, http.MethodGet, "/api/shifts", cookie, nil)
	var shifts []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&shifts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(shifts) != 1 {
		t.Fatalf("expected the one started shift, got %d", len(shifts))
	}

	// A cookie-less caller lands in a different, freshly seeded session.
	resp, other := do(t, s, http.MethodGet, "/api/shifts", "", nil)
	if other == cookie {
		t.Fatalf("expected a distinct session")
	}
	var otherShifts []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&otherShifts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(otherShifts) == len(shifts) {
		t.Fatalf("sessions should not share data")
	}
}

func TestApiRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{
		"/api/shifts",
		"/api/shifts/active",
		"/api/shifts/export",
		"/api/maintenance",
		"/api/maintenance/required",
		"/api/stats",
	} {
		resp, _ := do(t, s, http.MethodGet, target, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: %d", target, resp.StatusCode)
		}
	}
}
