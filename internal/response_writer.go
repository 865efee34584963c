package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to provide response interception.
// It tracks write status and runs hooks before the first write, so callers
// can attach headers (e.g. Set-Cookie) that must precede the first body
// byte. A failing hook fails the whole response over to the error callback
// and discards everything the handler writes afterwards.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	written     bool
	failed      bool
	beforeWrite []func() error
	onHookError func(http.ResponseWriter, error)
	mu          sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
// onHookError renders the response when a before-write hook fails; it
// receives the underlying writer, which at that point has not been written
// to. A nil onHookError falls back to a plain 500.
func NewResponseWriter(w http.ResponseWriter, onHookError func(http.ResponseWriter, error)) *ResponseWriter {
	if onHookError == nil {
		onHookError = func(w http.ResponseWriter, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
		onHookError:    onHookError,
	}
}

// OnBeforeWrite registers a hook to run before the first write.
// Hooks are called in registration order when WriteHeader or Write is first
// called. A hook returning an error aborts the response.
func (w *ResponseWriter) OnBeforeWrite(fn func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// WriteHeader sends an HTTP response header with the provided status code.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written || w.failed {
		w.mu.Unlock()
		return
	}
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(); err != nil {
			w.mu.Lock()
			w.failed = true
			w.status = http.StatusInternalServerError
			w.mu.Unlock()
			w.onHookError(w.ResponseWriter, err)
			return
		}
	}

	w.mu.Lock()
	w.written = true
	w.status = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

// Write writes the data to the connection as part of an HTTP reply.
// Writes after a failed before-write hook are silently discarded.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	written, failed := w.written, w.failed
	status := w.status
	w.mu.Unlock()

	if failed {
		return len(b), nil
	}
	if !written {
		w.WriteHeader(status)
		w.mu.Lock()
		failed = w.failed
		w.mu.Unlock()
		if failed {
			return len(b), nil
		}
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of bytes written to the response body.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written returns true if the response headers have been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Failed returns true if a before-write hook failed the response.
func (w *ResponseWriter) Failed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failed
}

// Flush implements the http.Flusher interface.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter.
// This allows middleware to access the original writer if needed.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
