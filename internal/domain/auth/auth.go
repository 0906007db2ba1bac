// Package auth drives the two factors: the card presented to the serial
// board and the operator's voice against the enrolled reference. It owns the
// session state machine transitions; everything else observes.
package auth

import (
	"context"
	"errors"

	"voicelock-go/internal/domain/speech"
)

var (
	// ErrNameNotCaptured means enrollment could not obtain a usable name.
	ErrNameNotCaptured = errors.New("auth: name not captured")
	// ErrReferenceNotCaptured means enrollment could not obtain a usable
	// reference sample.
	ErrReferenceNotCaptured = errors.New("auth: reference sample not captured")
)

// Listener captures one utterance. Satisfied by the speech engine.
type Listener interface {
	Listen(ctx context.Context, language string) speech.CaptureResult
}

// Speaker plays one prompt and blocks until done. Satisfied by the playback
// queue.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// TokenVerifier runs one possession-factor attempt.
type TokenVerifier interface {
	Verify(ctx context.Context) (string, error)
}
