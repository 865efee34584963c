package flash

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/flash/pkg/session"
)

// defaultSessionKey is the session map key holding the messages.
const defaultSessionKey = "_flash"

// SessionStore is a session-based implementation of [Store].
//
// Messages are kept server-side in the request-bound [session.Session], so
// nothing but the session token travels to the client and no size limit
// applies. The session middleware ([session.Manager.Middleware]) must wrap
// the flash middleware, otherwise no session is bound to the request and
// both operations fail.
type SessionStore struct {
	key string
}

// SessionOption configures the SessionStore.
type SessionOption func(*SessionStore)

// WithSessionKey sets the session map key holding the messages.
// Default: "_flash".
func WithSessionKey(key string) SessionOption {
	return func(s *SessionStore) {
		if key != "" {
			s.key = key
		}
	}
}

// NewSessionStore creates a SessionStore.
func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{key: defaultSessionKey}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errNoSession reports a request without a bound session.
var errNoSession = errors.New("no session bound to the request; register the session middleware around the flash middleware")

// Load reads flash messages from the request's session.
// An absent key yields an empty list.
func (s *SessionStore) Load(r *http.Request) ([]Message, error) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return nil, errors.Join(ErrLoadFailed, errNoSession)
	}

	val, ok := sess.GetValue(s.key)
	if !ok {
		return nil, nil
	}

	// The list is stored as a JSON string so it survives whatever
	// serialization the session store applies to its values.
	raw, ok := val.(string)
	if !ok {
		return nil, errors.Join(ErrLoadFailed, errors.New("unexpected type for stored messages"))
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, errors.Join(ErrLoadFailed, err)
	}
	return messages, nil
}

// Store writes messages into the request's session.
// An empty message list removes the key instead, clearing whatever a
// previous cycle stored.
func (s *SessionStore) Store(messages []Message, r *http.Request, _ http.ResponseWriter) error {
	sess := session.FromContext(r.Context())
	if sess == nil {
		return errors.Join(ErrStoreFailed, errNoSession)
	}

	if len(messages) == 0 {
		sess.DeleteValue(s.key)
		return nil
	}

	data, err := json.Marshal(messages)
	if err != nil {
		return errors.Join(ErrSerialization, err)
	}
	sess.SetValue(s.key, string(data))
	return nil
}
