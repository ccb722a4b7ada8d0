package source

import "errors"

// Error taxonomy for outbound source calls. The sync engine dispatches
// on these with errors.Is: per-item errors are skipped and counted,
// run-level errors abort before any sync metadata is written.
var (
	// ErrDone terminates an ItemIterator. Not a failure.
	ErrDone = errors.New("source: no more items")

	// ErrSourceUnavailable covers network errors and timeouts. Retryable.
	ErrSourceUnavailable = errors.New("source: unavailable")

	// ErrAuthExpired means the stored credential was rejected. Not
	// retryable; the owner has to reconnect the source.
	ErrAuthExpired = errors.New("source: credential expired")

	// ErrRateLimited is kept distinct from ErrSourceUnavailable so the
	// call policy backs off harder instead of hammering the API.
	ErrRateLimited = errors.New("source: rate limited")

	// ErrMalformedItem marks a single undecodable item. Per-item.
	ErrMalformedItem = errors.New("source: malformed item")
)
