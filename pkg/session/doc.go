// Package session provides cookie-token sessions with pluggable storage.
//
// A [Manager] binds a [Session] to every request: the session token travels
// in a cookie, the session data lives server-side in a [Store]. Three stores
// ship with the package: [MemoryStore] for development and tests,
// [RedisStore] and [PostgresStore] for production.
//
// # Usage
//
//	store := session.NewMemoryStore()
//	manager := session.NewManager(store,
//		session.WithCookieName("__sid"),
//		session.WithSecure(true),
//	)
//
//	mux := http.NewServeMux()
//	// ... register handlers
//	http.ListenAndServe(":8080", manager.Middleware(mux))
//
// Inside a handler, the session is reachable through the request context:
//
//	sess := session.FromContext(r.Context())
//	sess.SetValue("theme", "dark")
//
// Sessions are persisted lazily: a session nobody wrote to is never saved
// and sets no cookie. Writes are flushed right before the first response
// write, so handlers must mutate the session before producing a body.
//
// # Security
//
// The cookie carries an opaque random token, never the session data. Call
// [Manager.RotateToken] after authentication to prevent session fixation.
package session
