package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linecheck/internal/adapters/http/perf"
)

// TestTimingMiddleware_EmitsEntry verifies that a request entry is recorded.
func TestTimingMiddleware_EmitsEntry(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	stats := collector.Snapshot(perf.KindRequest)
	if len(stats) != 1 {
		t.Errorf("Snapshot len = %d, want 1", len(stats))
	}
}

// TestTimingMiddleware_SkipsStatic verifies static assets are excluded from timing.
func TestTimingMiddleware_SkipsStatic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if stats := collector.Snapshot(perf.KindRequest); len(stats) != 0 {
		t.Errorf("Snapshot len = %d, want 0 (static excluded)", len(stats))
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_NilCollector verifies middleware works without a collector.
func TestTimingMiddleware_NilCollector(t *testing.T) {
	handler := Timing(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_EntryFieldAccuracy verifies the recorded entry has correct
// method, path, and status code.
func TestTimingMiddleware_EntryFieldAccuracy(t *testing.T) {
	collector := perf.NewCollector(1)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest("POST", "/api/locations", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	stats := collector.Snapshot(perf.KindRequest)
	if len(stats) != 1 {
		t.Fatalf("Snapshot len = %d, want 1", len(stats))
	}
	if stats[0].Path != "POST /api/locations" {
		t.Errorf("Path = %q, want \"POST /api/locations\"", stats[0].Path)
	}
}

// TestTimingMiddleware_HandlerPanic verifies that a panicking handler does not
// prevent the deferred timing logic from running and does not corrupt the pool.
func TestTimingMiddleware_HandlerPanic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/api/panic", nil)
	rr := httptest.NewRecorder()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if stats := collector.Snapshot(perf.KindRequest); len(stats) != 1 {
			t.Errorf("Snapshot len = %d, want 1 (defer must run even on panic)", len(stats))
		}
	}()

	handler.ServeHTTP(rr, req)
}

// TestTimingMiddleware_PoolNoStateLeak verifies that statusWriter pool reuse
// does not leak status codes between requests.
func TestTimingMiddleware_PoolNoStateLeak(t *testing.T) {
	collector := perf.NewCollector(100)

	handler500 := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	req1 := httptest.NewRequest("GET", "/api/fail", nil)
	rr1 := httptest.NewRecorder()
	handler500.ServeHTTP(rr1, req1)

	if rr1.Code != 500 {
		t.Errorf("request 1 status = %d, want 500", rr1.Code)
	}

	// Second request: handler does NOT call WriteHeader (implicit 200).
	// If pool leaks, we'd see 500 here.
	handler200 := Timing(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	req2 := httptest.NewRequest("GET", "/api/ok", nil)
	rr2 := httptest.NewRecorder()
	handler200.ServeHTTP(rr2, req2)

	if rr2.Code != 200 {
		t.Errorf("request 2 status = %d, want 200 (pool must not leak 500)", rr2.Code)
	}
}

// TestSessionStore_RoundTrip verifies create, get, and delete.
func TestSessionStore_RoundTrip(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acct-1", "owner@linecheck.test", "owner")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("session not found after Create")
	}
	if sess.AccountID != "acct-1" || sess.Role != "owner" {
		t.Errorf("session = %+v, want acct-1/owner", sess)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("session still present after Delete")
	}
}

// TestSessionStore_PreviewUpdate verifies role preview via Update.
func TestSessionStore_PreviewUpdate(t *testing.T) {
	ss := NewSessionStore()
	token, _ := ss.Create("acct-1", "admin@linecheck.test", "admin")

	sess, _ := ss.Get(token)
	sess.RealAccountID = sess.AccountID
	sess.RealEmail = sess.Email
	sess.RealRole = sess.Role
	sess.Role = "gm"
	if !ss.Update(token, sess) {
		t.Fatal("Update returned false for existing token")
	}

	got, _ := ss.Get(token)
	if !got.IsPreviewing() {
		t.Error("IsPreviewing = false, want true")
	}
	if got.Role != "gm" || got.RealRole != "admin" {
		t.Errorf("roles = %q/%q, want gm/admin", got.Role, got.RealRole)
	}
}

// TestRequireRole_Forbidden verifies role gating at the middleware level.
func TestRequireRole_Forbidden(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/admin", nil)
	req = req.WithContext(ContextWithSession(req.Context(), Session{AccountID: "a", Role: "gm"}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

// TestRequireAuth_RedirectsAnonymous verifies unauthenticated requests go to /login.
func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

// TestRateLimiter_Exhaustion verifies requests are rejected once tokens run out.
func TestRateLimiter_Exhaustion(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if !rl.Allow("1.2.3.4") {
		t.Fatal("second request should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request should be rejected")
	}
	// A different IP has its own bucket
	if !rl.Allow("5.6.7.8") {
		t.Error("different IP should be allowed")
	}
}
