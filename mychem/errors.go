package mychem

import (
	"github.com/cockroachdb/errors"
)

// Error kinds surfaced by the client. Callers match with errors.Is.
var (
	// ErrInvalidArgument is returned before any network call when the
	// request parameters fail validation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable is returned when the upstream service could not be
	// reached after the retry policy is exhausted.
	ErrUnavailable = errors.New("mychem.info unavailable")

	// ErrUpstream is returned when the upstream service answered with a
	// non-2xx status.
	ErrUpstream = errors.New("mychem.info request failed")
)
