package flash

import "errors"

// Load errors. Returned by [Store.Load] implementations. Each sentinel is
// joined with the underlying cause, so both errors.Is against the kind and
// inspection of the cause chain work.
var (
	// ErrDeserialization is returned when the incoming message payload
	// cannot be decoded.
	ErrDeserialization = errors.New("flash: failed to deserialize incoming messages")

	// ErrIntegrityCheckFailed is returned when the incoming message payload
	// fails a cryptographic integrity check (e.g. signature verification).
	ErrIntegrityCheckFailed = errors.New("flash: incoming messages failed integrity check")

	// ErrLoadFailed is the generic load failure, e.g. an unavailable
	// underlying store.
	ErrLoadFailed = errors.New("flash: failed to load incoming messages")
)

// Store errors. Returned by [Store.Store] implementations.
var (
	// ErrSerialization is returned when the outgoing messages cannot be encoded.
	ErrSerialization = errors.New("flash: failed to serialize outgoing messages")

	// ErrSizeLimitExceeded is returned when the encoded outgoing messages
	// exceed the configured size limit. The joined cause carries the limit
	// and the actual encoded length.
	ErrSizeLimitExceeded = errors.New("flash: encoded messages exceed the size limit")

	// ErrStoreFailed is the generic store failure, e.g. an unavailable
	// underlying store.
	ErrStoreFailed = errors.New("flash: failed to store outgoing messages")
)
