package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionStore_CreateGetDelete(t *testing.T) {
	ss := NewSessionStore()

	token, err := ss.Create("a1", "steward@example.com", "editor")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(token))
	}

	session, ok := ss.Get(token)
	if !ok {
		t.Fatal("Get did not find a fresh session")
	}
	if session.AccountID != "a1" || session.Role != "editor" {
		t.Errorf("session = %+v", session)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("session survived Delete")
	}
}

func TestSessionStore_TokensAreUnique(t *testing.T) {
	ss := NewSessionStore()
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		token, err := ss.Create("a1", "steward@example.com", "editor")
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatalf("duplicate token after %d creates", i+1)
		}
		seen[token] = true
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("a1", "steward@example.com", "editor")
	if err != nil {
		t.Fatal(err)
	}

	stale := ss.sessions[token]
	stale.CreatedAt = time.Now().Add(-sessionTTL - time.Minute)
	ss.sessions[token] = stale

	if _, ok := ss.Get(token); ok {
		t.Error("expired session still returned")
	}
	if _, held := ss.sessions[token]; held {
		t.Error("expired session not dropped from the store")
	}
}

func sessionProbe(t *testing.T) (http.HandlerFunc, *Session) {
	t.Helper()
	var got Session
	return func(w http.ResponseWriter, r *http.Request) {
		if session, ok := GetSessionFromContext(r.Context()); ok {
			got = session
		}
		w.WriteHeader(http.StatusOK)
	}, &got
}

func TestAuth_ResolvesCookie(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("a1", "steward@example.com", "editor")
	if err != nil {
		t.Fatal(err)
	}
	probe, got := sessionProbe(t)
	handler := Auth(ss)(probe)

	req := httptest.NewRequest("GET", "/roster", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.AccountID != "a1" {
		t.Errorf("resolved session = %+v, want account a1", got)
	}
}

func TestAuth_PassesAnonymousThrough(t *testing.T) {
	probe, got := sessionProbe(t)
	handler := Auth(NewSessionStore())(probe)

	req := httptest.NewRequest("GET", "/roster", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-real-token"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (Auth must not gate)", rr.Code)
	}
	if got.AccountID != "" {
		t.Errorf("bogus token resolved to %+v", got)
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/roster", nil))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		role string // empty means anonymous
		want int
	}{
		{"anonymous", "", http.StatusSeeOther},
		{"editor", "editor", http.StatusForbidden},
		{"admin", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/admin/accounts", nil)
			if tt.role != "" {
				ctx := ContextWithSession(req.Context(), Session{AccountID: "a1", Role: tt.role})
				req = req.WithContext(ctx)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied inside the budget", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over budget allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second IP shares the first IP's bucket")
	}
}

func TestRateLimiter_RefillsAfterQuiet(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	for i := 0; i < 2; i++ {
		rl.Allow("10.0.0.1")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("bucket not empty after burst")
	}

	rl.mu.Lock()
	rl.buckets["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.Allow("10.0.0.1") {
		t.Error("bucket did not refill after a quiet period")
	}
}

func TestRateLimit_StripsPort(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest("GET", "/", nil)
	first.RemoteAddr = "10.0.0.1:1001"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rr.Code)
	}

	// Same IP on a new port must hit the same bucket.
	second := httptest.NewRequest("GET", "/", nil)
	second.RemoteAddr = "10.0.0.1:2002"
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, second)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rr.Code)
	}
}
