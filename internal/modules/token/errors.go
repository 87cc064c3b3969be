package token

import "errors"

var (
	ErrInvalidToken  = errors.New("invalid refresh token")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrReuseDetected = errors.New("refresh token reuse detected")
)

// Store-level sentinels, translated by every Store implementation.
var (
	ErrNotFound      = errors.New("refresh token not found")
	ErrDuplicateHash = errors.New("refresh token hash collision")
)

// IsAuthFailure reports whether err is one of the client-facing rotation
// failures. The HTTP layer surfaces all of them as the same 401 so callers
// cannot probe which state a token is in; the distinct kind is only logged.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, ErrReuseDetected)
}
