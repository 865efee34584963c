package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/flash/internal"
)

// Default session configuration.
const (
	defaultCookieName = "__sid"
	defaultMaxAge     = 86400 * 30 // 30 days
)

// ctxKey is the context key for the request-bound session.
type ctxKey struct{}

// Manager handles session lifecycle and cookie management.
type Manager struct {
	store      Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// NewManager creates a Manager persisting sessions in the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		logger:     slog.Default(),
		cookieName: defaultCookieName,
		maxAge:     defaultMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithMaxAge sets the session max age in seconds.
func WithMaxAge(seconds int) ManagerOption {
	return func(m *Manager) {
		if seconds > 0 {
			m.maxAge = seconds
		}
	}
}

// WithDomain sets the session cookie domain.
func WithDomain(domain string) ManagerOption {
	return func(m *Manager) {
		m.domain = domain
	}
}

// WithPath sets the session cookie path.
func WithPath(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithSecure sets the session cookie Secure flag.
func WithSecure(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithHTTPOnly sets the session cookie HttpOnly flag.
func WithHTTPOnly(httpOnly bool) ManagerOption {
	return func(m *Manager) {
		m.httpOnly = httpOnly
	}
}

// WithSameSite sets the session cookie SameSite attribute.
func WithSameSite(sameSite http.SameSite) ManagerOption {
	return func(m *Manager) {
		m.sameSite = sameSite
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// FromContext returns the session bound to the request context by
// [Manager.Middleware], or nil when the middleware is not installed.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// NewContext returns a context carrying the given session.
// [Manager.Middleware] does this for every request; use it directly in
// tests or custom wiring.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Middleware binds a session to every request.
//
// An existing session is loaded from the request cookie; a missing, expired
// or unknown token yields a fresh session. The session is persisted right
// before the first response write, and only when it has unsaved changes - a
// session nobody touched leaves no trace in the store and sets no cookie.
// A failed save fails the response: silently losing session state would be
// worse than a 5xx.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.loadOrCreate(r)

		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess))

		rw := internal.NewResponseWriter(w, func(underlying http.ResponseWriter, err error) {
			http.Error(underlying, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
		rw.OnBeforeWrite(func() error {
			return m.save(r.Context(), sess, rw)
		})

		next.ServeHTTP(rw, r)

		if !rw.Written() && !rw.Failed() {
			if err := m.save(r.Context(), sess, rw); err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	})
}

// loadOrCreate resolves the request's session, falling back to a fresh one.
func (m *Manager) loadOrCreate(r *http.Request) *Session {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		sess, err := m.store.Get(r.Context(), c.Value)
		if err == nil {
			return sess
		}
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
			m.logger.WarnContext(r.Context(), "failed to load session", "error", err)
		}
	}

	token, err := generateToken()
	if err != nil {
		// crypto/rand failing means the process is in serious trouble.
		panic(fmt.Sprintf("session: generate token: %v", err))
	}
	expiresAt := time.Now().Add(time.Duration(m.maxAge) * time.Second)
	return New(uuid.NewString(), token, expiresAt)
}

// save persists the session and sets the cookie when needed.
func (m *Manager) save(ctx context.Context, sess *Session, w http.ResponseWriter) error {
	if !sess.IsDirty() {
		return nil
	}

	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.ErrorContext(ctx, "failed to save session",
			"session_id", sess.ID,
			"error", err,
		)
		return err
	}

	if sess.IsNew() {
		m.writeCookie(w, sess.Token, m.maxAge)
		sess.ClearNew()
	}
	sess.ClearDirty()
	return nil
}

// RotateToken generates a new token for the session.
// Called after authentication to prevent session fixation attacks by
// invalidating the old token and requiring a fresh one from the attacker.
func (m *Manager) RotateToken(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}

	sess.Token = newToken
	sess.MarkDirty()
	if err := m.store.Save(ctx, sess); err != nil {
		sess.Token = oldToken // Rollback on error
		return err
	}
	if err := m.store.Delete(ctx, oldToken); err != nil {
		m.logger.WarnContext(ctx, "failed to delete rotated session token", "error", err)
	}
	sess.ClearDirty()

	m.writeCookie(w, newToken, m.maxAge)
	return nil
}

// Destroy removes the session from the store and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if err := m.store.Delete(ctx, sess.Token); err != nil {
		return err
	}
	m.writeCookie(w, "", -1)
	return nil
}

// writeCookie writes the session cookie with the manager's attributes.
func (m *Manager) writeCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	})
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
