package flash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Cookie store defaults.
const (
	defaultCookieName = "_flash"
	// defaultSizeLimit caps the encoded cookie value at 2048 bytes.
	// Browsers reject cookies above 4096 bytes; staying well below leaves
	// room for the rest of the application's cookies.
	defaultSizeLimit = 2048
)

// CookieStore is a cookie-based implementation of [Store].
//
// Messages are serialized to JSON, signed with HMAC-SHA256, percent-escaped
// and carried in a single cookie. The signature ensures messages were
// authored by the application and were not tampered with; it does not hide
// their content from the client.
type CookieStore struct {
	name       string
	signingKey []byte
	sizeLimit  int
	secure     bool
}

// CookieOption configures the CookieStore.
type CookieOption func(*CookieStore)

// WithCookieName sets the name of the cookie carrying the messages.
// Default: "_flash".
func WithCookieName(name string) CookieOption {
	return func(s *CookieStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSizeLimit caps the encoded (signed and escaped) cookie value, in
// bytes. Storing messages whose encoding exceeds the limit fails with
// [ErrSizeLimitExceeded]. Default: 2048.
//
// Research the cookie-size limits of the browsers you target before raising
// this.
func WithSizeLimit(n int) CookieOption {
	return func(s *CookieStore) {
		if n > 0 {
			s.sizeLimit = n
		}
	}
}

// WithCookieSecure sets the Secure flag on the cookie. Default: true.
func WithCookieSecure(secure bool) CookieOption {
	return func(s *CookieStore) {
		s.secure = secure
	}
}

// NewCookieStore creates a CookieStore signing with the given key.
//
// The signing key is the only required piece of configuration and must be at
// least 32 bytes; a shorter key is a configuration error and panics.
func NewCookieStore(signingKey []byte, opts ...CookieOption) *CookieStore {
	if len(signingKey) < 32 {
		panic("flash: cookie signing key must be at least 32 bytes")
	}
	s := &CookieStore{
		name:       defaultCookieName,
		signingKey: signingKey,
		sizeLimit:  defaultSizeLimit,
		secure:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load extracts flash messages from the named cookie.
// A request without the cookie yields an empty list.
func (s *CookieStore) Load(r *http.Request) ([]Message, error) {
	c, err := r.Cookie(s.name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, errors.Join(ErrLoadFailed, err)
	}
	return s.decode(c.Value)
}

// Store attaches messages to the response as a signed cookie.
// An empty message list emits a deletion cookie instead, clearing whatever
// a previous response stored.
func (s *CookieStore) Store(messages []Message, _ *http.Request, w http.ResponseWriter) error {
	if len(messages) == 0 {
		// A previous cycle may have left a cookie behind; expire it so
		// already-consumed messages are not redelivered.
		http.SetCookie(w, &http.Cookie{
			Name:   s.name,
			Value:  "",
			MaxAge: -1,
			Path:   "/",
		})
		return nil
	}

	c, err := s.encode(messages)
	if err != nil {
		return err
	}
	http.SetCookie(w, c)
	return nil
}

// encode serializes, signs and percent-escapes the messages into a cookie.
//
// The intermediate representation is JSON because the simpler form-encoded
// representation cannot express a sequence of structured records. The size
// limit is checked on the escaped value - that is what travels on the wire.
func (s *CookieStore) encode(messages []Message) (*http.Cookie, error) {
	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, errors.Join(ErrSerialization, err)
	}

	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(payload)
	tag := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	escaped := escapeCookieValue(tag + "." + string(payload))
	if len(escaped) > s.sizeLimit {
		return nil, errors.Join(ErrSizeLimitExceeded, fmt.Errorf(
			"the configured maximum cookie size is %d bytes, the signed and escaped messages are %d bytes",
			s.sizeLimit, len(escaped),
		))
	}

	return &http.Cookie{
		Name:     s.name,
		Value:    escaped,
		Path:     "/",
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// decode unescapes the cookie value, verifies the signature and
// deserializes the payload. Anything preventing signature verification -
// broken escaping, a malformed envelope, an invalid tag - is an integrity
// failure; only a verified payload can fail deserialization.
func (s *CookieStore) decode(value string) ([]Message, error) {
	envelope, err := url.PathUnescape(value)
	if err != nil {
		return nil, errors.Join(ErrIntegrityCheckFailed, err)
	}

	tag, payload, ok := strings.Cut(envelope, ".")
	if !ok {
		return nil, errors.Join(ErrIntegrityCheckFailed, errors.New("malformed signed envelope"))
	}

	sig, err := base64.RawURLEncoding.DecodeString(tag)
	if err != nil {
		return nil, errors.Join(ErrIntegrityCheckFailed, err)
	}

	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(payload))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, errors.Join(ErrIntegrityCheckFailed, errors.New("signature verification failed"))
	}

	var messages []Message
	if err := json.Unmarshal([]byte(payload), &messages); err != nil {
		return nil, errors.Join(ErrDeserialization, err)
	}
	return messages, nil
}

// cookieUnsafe marks the bytes percent-escaped in cookie values: the URL
// userinfo escape set (which includes the fragment and path sets) plus '%'
// itself. Control bytes and non-ASCII bytes are always escaped.
var cookieUnsafe = [128]bool{}

func init() {
	for _, b := range []byte(` "<>` + "`" + `#?{}/:;=@[\]^|%`) {
		cookieUnsafe[b] = true
	}
}

// escapeCookieValue percent-escapes s so it is safe to embed in a cookie
// header. The result decodes with url.PathUnescape.
func escapeCookieValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c >= 0x7f || cookieUnsafe[c] {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"
