package flash

import (
	"context"
	"slices"
)

// scopeKey is the context key for the per-request flash scope.
type scopeKey struct{}

// scope is the request-scoped flash state installed by the middleware.
// It holds the messages loaded from the incoming request (read-only after
// Start) and the mailbox accumulating outgoing messages. One scope exists
// per in-flight request; it is reachable only through that request's
// context and is never retained past the request's completion.
type scope struct {
	incoming []Message
	mailbox  *mailbox
}

// mailbox accumulates outgoing flash messages for a single request.
// Access is single-writer within one request's execution, so no locking
// is required.
type mailbox struct {
	messages []Message
	minLevel Level
	flushed  bool
}

func newMailbox(minLevel Level) *mailbox {
	return &mailbox{minLevel: minLevel}
}

// add appends a message, dropping it when its level is below the threshold.
// Appends accumulate in call order.
func (m *mailbox) add(msg Message) {
	if msg.Level() >= m.minLevel {
		m.messages = append(m.messages, msg)
	}
}

// withScope installs the flash scope into the context.
func withScope(ctx context.Context, s *scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// scopeFrom retrieves the flash scope, or nil when the middleware is absent.
func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

const missingMiddlewareMsg = "flash: no active request scope. " +
	"To send or read flash messages you need to register Framework.Middleware " +
	"on your router so it wraps the handler for this request."

// Send attaches a message to the outgoing request.
//
// The message is dropped when its [Level] is below the minimum level the
// [Framework] was configured with. Messages accumulate in call order and are
// flushed into the response by the middleware once the handler has finished.
//
// Send panics when called outside a request scope managed by
// [Framework.Middleware]: a missing middleware is a programmer error, not a
// runtime condition to recover from.
func Send(ctx context.Context, msg Message) {
	s := scopeFrom(ctx)
	if s == nil {
		panic(missingMiddlewareMsg)
	}
	s.mailbox.add(msg)
}

// Messages returns the flash messages extracted from the incoming request,
// in the order they were originally sent.
//
// The returned slice is a copy; the loaded list itself is never mutated
// after the middleware has extracted it.
//
// Messages panics when called outside a request scope managed by
// [Framework.Middleware], for the same reason [Send] does.
func Messages(ctx context.Context) []Message {
	s := scopeFrom(ctx)
	if s == nil {
		panic(missingMiddlewareMsg)
	}
	return slices.Clone(s.incoming)
}
