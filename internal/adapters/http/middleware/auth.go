package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const (
	sessionCookieName = "shoptrack_session"
	sessionTTL        = 24 * time.Hour
)

// SecureCookies marks session and CSRF cookies Secure. Left false for
// plain-HTTP development; main switches it on outside dev.
var SecureCookies bool

type contextKey string

const sessionKey contextKey = "session"

// Session is one authenticated login.
type Session struct {
	AccountID string
	Email     string
	Role      string
	CreatedAt time.Time
}

// SessionStore keeps sessions in memory. Logins do not survive a
// restart; stewards just sign in again.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Create stores a session for the account and returns its token.
func (ss *SessionStore) Create(accountID, email, role string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{AccountID: accountID, Email: email, Role: role, CreatedAt: time.Now()}
	return token, nil
}

// Get returns the live session for token. Expired sessions are dropped
// lazily here, so the store needs no background sweep.
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	s, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	if time.Since(s.CreatedAt) > sessionTTL {
		delete(ss.sessions, token)
		return Session{}, false
	}
	return s, true
}

// Delete removes the session for token, if any.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Auth resolves the session cookie into a context session. It never
// blocks a request; RequireAuth and RequireRole do the gating.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				if s, ok := sessions.Get(cookie.Value); ok {
					r = r.WithContext(ContextWithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only sessions holding one of the given roles.
// Anonymous requests go to the login page; authenticated requests with
// the wrong role get 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !allowed[s.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session placed by Auth.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// ContextWithSession returns ctx carrying the session. Handler tests
// use it to fake a login without running the Auth middleware.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SetSessionCookie attaches the session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, sessionCookie(token, int(sessionTTL/time.Second)))
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, sessionCookie("", -1))
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}
