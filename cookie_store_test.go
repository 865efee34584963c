package flash_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flash"
)

var testSigningKey = []byte("this-is-a-32-byte-or-longer-key!")

// storeRoundTrip runs Store against a recorder and feeds the resulting
// cookie into a fresh request, returning what Load recovers from it.
func storeRoundTrip(t *testing.T, store *flash.CookieStore, messages []flash.Message) ([]flash.Message, error) {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Store(messages, req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	return store.Load(next)
}

func TestCookieStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey, flash.WithCookieSecure(false))
	sent := []flash.Message{
		flash.Info("Hey there!"),
		flash.Warning("Check your email"),
		flash.Error("The provided login credentials are invalid"),
	}

	got, err := storeRoundTrip(t, store, sent)
	require.NoError(t, err)
	require.Equal(t, sent, got)
}

func TestCookieStore_LoadWithoutCookie(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	messages, err := store.Load(req)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestCookieStore_CookieAttributes(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey,
		flash.WithCookieName("my-flash"),
		flash.WithCookieSecure(false),
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Store([]flash.Message{flash.Info("Hey there!")}, req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	require.Equal(t, "my-flash", c.Name)
	require.NotEmpty(t, c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCookieStore_SecureByDefault(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Store([]flash.Message{flash.Info("hi")}, req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].Secure)
}

func TestCookieStore_EmptyStoreEmitsDeletionCookie(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey)

	t.Run("with prior cookie on the request", func(t *testing.T) {
		t.Parallel()

		// First publish something so a real cookie exists client-side.
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, store.Store([]flash.Message{flash.Info("once")}, req, rec))

		next := httptest.NewRequest(http.MethodGet, "/", nil)
		next.AddCookie(rec.Result().Cookies()[0])

		rec2 := httptest.NewRecorder()
		require.NoError(t, store.Store(nil, next, rec2))

		cookies := rec2.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "_flash", cookies[0].Name)
		require.Empty(t, cookies[0].Value)
		require.Negative(t, cookies[0].MaxAge)
		require.Equal(t, "/", cookies[0].Path)
	})

	t.Run("without prior cookie", func(t *testing.T) {
		t.Parallel()

		// Clearing must be idempotent: nothing to clear is not a failure.
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.NoError(t, store.Store(nil, req, rec))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Empty(t, cookies[0].Value)
		require.Negative(t, cookies[0].MaxAge)
	})
}

func TestCookieStore_SizeLimitExceeded(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey, flash.WithSizeLimit(64))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := store.Store([]flash.Message{flash.Info(strings.Repeat("x", 200))}, req, rec)
	require.ErrorIs(t, err, flash.ErrSizeLimitExceeded)
	require.ErrorContains(t, err, "64")

	// No partial cookie may be emitted on failure.
	require.Empty(t, rec.Result().Cookies())
}

func TestCookieStore_TamperedCookie(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, store.Store([]flash.Message{flash.Info("Hey there!")}, req, rec))

	c := rec.Result().Cookies()[0]
	c.Value = c.Value[:len(c.Value)-4] + "AAAA"

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(c)

	messages, err := store.Load(next)
	require.ErrorIs(t, err, flash.ErrIntegrityCheckFailed)
	require.Empty(t, messages)
}

func TestCookieStore_ForeignKeyCookie(t *testing.T) {
	t.Parallel()

	legit := flash.NewCookieStore(testSigningKey)
	forger := flash.NewCookieStore([]byte("a-different-32-byte-signing-key!"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, forger.Store([]flash.Message{flash.Info("forged")}, req, rec))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(rec.Result().Cookies()[0])

	messages, err := legit.Load(next)
	require.ErrorIs(t, err, flash.ErrIntegrityCheckFailed)
	require.Empty(t, messages)
}

func TestCookieStore_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	store := flash.NewCookieStore(testSigningKey)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_flash", Value: "not-an-envelope"})

	_, err := store.Load(req)
	require.ErrorIs(t, err, flash.ErrIntegrityCheckFailed)
}

func TestCookieStore_ValidSignatureInvalidPayload(t *testing.T) {
	t.Parallel()

	// A correctly signed envelope whose payload is not a message list must
	// fail deserialization, not the integrity check.
	payload := `{"not":"a message list"}`
	mac := hmac.New(sha256.New, testSigningKey)
	mac.Write([]byte(payload))
	tag := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_flash", Value: tag + "." + escapeForTest(payload)})

	store := flash.NewCookieStore(testSigningKey)
	_, err := store.Load(req)
	require.ErrorIs(t, err, flash.ErrDeserialization)
}

// escapeForTest percent-escapes the few payload bytes the codec escapes,
// enough for hand-built envelopes in tests.
func escapeForTest(s string) string {
	r := strings.NewReplacer(
		"%", "%25", `"`, "%22", " ", "%20",
		"{", "%7B", "}", "%7D", ":", "%3A",
	)
	return r.Replace(s)
}

func TestNewCookieStore_ShortKeyPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		flash.NewCookieStore([]byte("too short"))
	})
}
