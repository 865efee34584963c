// Package flash provides one-time notifications ("flash messages") for web
// applications: a handler sends short-lived messages like "Login successful",
// and exactly one subsequent page render consumes and discards them.
//
// Messages survive exactly one request/response boundary - typically a
// redirect - and are never durable beyond that. They are carried between
// responses and requests by a pluggable [Store]: a signed cookie
// ([CookieStore]), the server-side session ([SessionStore]), or any custom
// backend implementing the interface.
//
// # Quick Start
//
// Build a [Framework] with a store and register its middleware:
//
//	signingKey := []byte("at-least-32-bytes-of-secret-key!") // from configuration
//	store := flash.NewCookieStore(signingKey, flash.WithCookieSecure(false))
//	framework := flash.NewFramework(store)
//
//	r := chi.NewRouter()
//	r.Use(framework.Middleware)
//
// Inside handlers, send messages and read the ones delivered with the
// current request:
//
//	func login(w http.ResponseWriter, r *http.Request) {
//		flash.Send(r.Context(), flash.Success("You logged in successfully!"))
//		http.Redirect(w, r, "/", http.StatusSeeOther)
//	}
//
//	func home(w http.ResponseWriter, r *http.Request) {
//		for _, m := range flash.Messages(r.Context()) {
//			fmt.Fprintf(w, "%s: %s\n", m.Level(), m.Content())
//		}
//	}
//
// # Levels
//
// Every message carries a [Level] (debug, info, success, warning, error).
// The framework drops messages below its configured minimum level (default
// [LevelInfo]); levels are also the conventional hook for presentation,
// e.g. red for errors.
//
// # Delivery
//
// The middleware flushes the mailbox into the response right before the
// handler writes its first byte, because the cookie and session backends
// work through response headers. Send messages before writing the body.
// Handlers that write nothing are flushed after they return.
//
// Storing an empty mailbox actively clears the delivery medium - the cookie
// backend emits a deletion cookie, the session backend removes its key -
// which is what makes delivery one-time: loading messages and then flushing
// an empty mailbox consumes them.
//
// # Errors
//
// Failures loading incoming messages indicate a corrupted or tampered
// payload and are rendered as a 400-class response; failures flushing
// outgoing messages indicate server-side misconfiguration and are rendered
// as a 500-class response. Both are logged and neither is ever silently
// swallowed. Calling [Send] or [Messages] without the middleware installed
// is a programmer error and panics.
package flash
