package flash

import "net/http"

// Store persists flash messages between one response and the next request.
//
// The library ships two implementations: [CookieStore], which keeps messages
// in a signed cookie, and [SessionStore], which keeps them in the server-side
// session. Applications can plug in a custom backend by implementing this
// interface.
type Store interface {
	// Load extracts flash messages from an incoming request.
	// A request carrying no messages yields an empty list, not an error.
	// Failures are reported through the load error taxonomy:
	// [ErrDeserialization], [ErrIntegrityCheckFailed], [ErrLoadFailed].
	Load(r *http.Request) ([]Message, error)

	// Store attaches messages to the outgoing response so a subsequent Load
	// on the next request can recover them. An empty message list must
	// actively clear the storage medium (deletion cookie, session key
	// removal) - a stale medium would redeliver already-consumed messages.
	// Failures are reported through the store error taxonomy:
	// [ErrSerialization], [ErrSizeLimitExceeded], [ErrStoreFailed].
	//
	// The request is provided because some backends need request-scoped
	// context (the session backend looks up the session bound to the
	// request); the cookie backend ignores it.
	Store(messages []Message, r *http.Request, w http.ResponseWriter) error
}
