// Package speech models the external speech engine: capturing one utterance
// from the operator and turning it into text. Capture is an explicit
// suspension point; callers switch on the result outcome instead of relying
// on error flow.
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrNoInput is returned by a Recorder when the capture window elapses
// without detectable speech.
var ErrNoInput = errors.New("speech: no input before timeout")

// Outcome classifies one capture attempt.
type Outcome int

const (
	// OutcomeOK means text was produced.
	OutcomeOK Outcome = iota
	// OutcomeTimeout means no speech was detected within the window.
	OutcomeTimeout
	// OutcomeFailed means the engine could not produce text from the audio.
	OutcomeFailed
)

// CaptureResult carries one utterance through the flows. Audio holds the raw
// WAVE bytes so enrollment can persist the same sample it transcribed.
type CaptureResult struct {
	Text    string
	Outcome Outcome
	Audio   []byte
}

// Recorder captures one utterance as WAVE bytes. Record blocks until the
// phrase limit is reached or the timeout fires with no input, in which case
// it returns ErrNoInput.
type Recorder interface {
	Record(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error)
}

// Transcriber converts one utterance to text in the given language.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
	Close() error
}
