package internal_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flash/internal"
)

func TestResponseWriter_HooksRunBeforeFirstWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)

	var order []string
	rw.OnBeforeWrite(func() error {
		order = append(order, "first")
		rw.Header().Set("X-Hook", "ran")
		return nil
	})
	rw.OnBeforeWrite(func() error {
		order = append(order, "second")
		return nil
	})

	_, err := rw.Write([]byte("body"))
	require.NoError(t, err)
	_, err = rw.Write([]byte(" more"))
	require.NoError(t, err)

	require.Equal(t, []string{"first", "second"}, order, "hooks run once, in registration order")
	require.Equal(t, "ran", rec.Header().Get("X-Hook"), "headers set by hooks make it onto the response")
	require.Equal(t, "body more", rec.Body.String())
}

func TestResponseWriter_HooksRunOnWriteHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)

	ran := false
	rw.OnBeforeWrite(func() error {
		ran = true
		return nil
	})

	rw.WriteHeader(http.StatusTeapot)

	require.True(t, ran)
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, http.StatusTeapot, rw.Status())
	require.True(t, rw.Written())
}

func TestResponseWriter_FailingHook(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	hookErr := errors.New("flush failed")

	var gotErr error
	rw := internal.NewResponseWriter(rec, func(w http.ResponseWriter, err error) {
		gotErr = err
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	rw.OnBeforeWrite(func() error { return hookErr })

	rw.WriteHeader(http.StatusOK)
	_, err := rw.Write([]byte("handler output"))
	require.NoError(t, err, "writes after a failed hook are discarded, not errors")

	require.ErrorIs(t, gotErr, hookErr)
	require.True(t, rw.Failed())
	require.False(t, rw.Written())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "handler output")
}

func TestResponseWriter_NilErrorCallbackDefaultsTo500(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)
	rw.OnBeforeWrite(func() error { return errors.New("nope") })

	_, _ = rw.Write([]byte("body"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResponseWriter_TracksStatusAndSize(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)

	require.Equal(t, http.StatusOK, rw.Status())
	require.False(t, rw.Written())

	rw.WriteHeader(http.StatusCreated)
	n, err := rw.Write([]byte("12345"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.Equal(t, http.StatusCreated, rw.Status())
	require.EqualValues(t, 5, rw.Size())
}

func TestResponseWriter_SecondWriteHeaderIgnored(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusTeapot)

	require.Equal(t, http.StatusCreated, rw.Status())
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_Unwrap(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := internal.NewResponseWriter(rec, nil)
	require.Same(t, http.ResponseWriter(rec), rw.Unwrap())
}
