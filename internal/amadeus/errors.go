package amadeus

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCredentialsMissing is returned before any network call when the client
// id or secret is not configured.
var ErrCredentialsMissing = errors.New("amadeus credentials are not configured")

// TokenError reports a failed client-credentials exchange. Status is zero
// when the token endpoint could not be reached. The token endpoint's status is
// never surfaced to HTTP callers; handlers answer 502 for any TokenError.
type TokenError struct {
	Status int
	Err    error
}

func (e *TokenError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("amadeus token request failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("amadeus token request failed: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// UpstreamError carries the status and raw body of a failed data call.
// Status is zero for transport failures, in which case Err is set.
type UpstreamError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("amadeus request failed: %v", e.Err)
	}
	return fmt.Sprintf("amadeus responded %d %s", e.Status, http.StatusText(e.Status))
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr) && upErr.Status == http.StatusUnauthorized
}

// StatusOf returns the status of a failed data call, or zero when err is not
// an UpstreamError.
func StatusOf(err error) int {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status
	}
	return 0
}
