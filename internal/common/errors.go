package common

import "errors"

var (
	// ErrNoCredentials is returned when no token is stored anywhere.
	ErrNoCredentials = errors.New("no credentials stored")

	// ErrOperationInProgress is returned when the same operation on the same
	// entity is already in flight.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrInvalidToken is returned when a stored token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)

// WipeByteArray overwrites b with zeros. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
