// Package token implements the physical possession factor. A serial board
// emits the code of a presented card as one text line; the verifier reads
// exactly one line per attempt and maps it to the enrolled username.
package token

import "errors"

var (
	// ErrInvalidToken means a code was read but no user is bound to it.
	ErrInvalidToken = errors.New("token: code not authorized")
	// ErrDeviceUnavailable means the reader could not be opened or produced
	// no code within the read window.
	ErrDeviceUnavailable = errors.New("token: reader unavailable")
)
