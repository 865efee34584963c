package flash

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/flash/internal"
)

// Framework wires a message [Store] into the request/response lifecycle.
//
// A Framework is built once at application startup and shared, read-only,
// across all requests. Register [Framework.Middleware] on your router; it
// loads incoming messages at the start of each request, installs the
// per-request mailbox, and flushes whatever the handler sent into the
// outgoing response.
type Framework struct {
	store        Store
	logger       *slog.Logger
	errorHandler ErrorHandler
	minLevel     Level
}

// ErrorHandler renders load and store failures.
// Load failures arrive with a 400-class status (they indicate a corrupted or
// tampered incoming payload); store failures arrive with a 500-class status
// (they indicate a server-side misconfiguration, e.g. a size limit set far
// too small, or a dead session backend).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// defaultErrorHandler writes a plain-text status response.
func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, status int, _ error) {
	http.Error(w, http.StatusText(status), status)
}

// NewFramework creates a Framework backed by the given store.
//
// The store is the only required piece of configuration. By default messages
// below [LevelInfo] are discarded; change the threshold with
// [WithMinimumLevel].
func NewFramework(store Store, opts ...Option) *Framework {
	if store == nil {
		panic("flash: NewFramework requires a non-nil store")
	}
	f := &Framework{
		store:        store,
		minLevel:     LevelInfo,
		logger:       slog.Default(),
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Middleware wraps next with the flash message lifecycle.
//
// Start: incoming messages are loaded from the request; a load failure is
// rendered as a client error (the payload was tampered with or corrupted)
// and the handler never runs.
//
// Accumulate: handler code reaches the mailbox through the request context
// via [Send] and reads the loaded messages via [Messages].
//
// Finalize: the mailbox is flushed into the response exactly once - either
// right before the handler writes its first byte (so Set-Cookie headers make
// it onto the wire), or after the handler returns without writing. A flush
// failure discards the handler's output and renders a server error.
func (f *Framework) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		incoming, err := f.store.Load(r)
		if err != nil {
			f.logger.WarnContext(r.Context(), "failed to load incoming flash messages", "error", err)
			f.errorHandler(w, r, http.StatusBadRequest, err)
			return
		}

		sc := &scope{
			incoming: incoming,
			mailbox:  newMailbox(f.minLevel),
		}

		r = r.WithContext(withScope(r.Context(), sc))

		rw := internal.NewResponseWriter(w, func(underlying http.ResponseWriter, err error) {
			f.errorHandler(underlying, r, http.StatusInternalServerError, err)
		})
		rw.OnBeforeWrite(func() error {
			return f.flush(sc.mailbox, r, rw)
		})

		next.ServeHTTP(rw, r)

		// Handlers that produce no body never trigger the before-write
		// hook, so flush explicitly.
		if !rw.Written() && !rw.Failed() {
			if err := f.flush(sc.mailbox, r, rw); err != nil {
				f.errorHandler(w, r, http.StatusInternalServerError, err)
			}
		}
	})
}

// flush stores the mailbox contents into the response, exactly once.
// Storing an empty mailbox clears the delivery medium, which is what
// consumes the messages loaded at the start of the cycle.
func (f *Framework) flush(m *mailbox, r *http.Request, w *internal.ResponseWriter) error {
	if m.flushed {
		return nil
	}
	m.flushed = true

	if err := f.store.Store(m.messages, r, w.Unwrap()); err != nil {
		f.logger.ErrorContext(r.Context(), "failed to store outgoing flash messages",
			"error", err,
			"messages", len(m.messages),
		)
		return err
	}
	return nil
}
