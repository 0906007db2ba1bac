package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"voicelock-go/internal/platform/logging"
)

type fakeRecorder struct {
	wav []byte
	err error
}

func (r *fakeRecorder) Record(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	return r.wav, r.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	return t.text, t.err
}

func (t *fakeTranscriber) Close() error { return nil }

func TestListenOutcomes(t *testing.T) {
	wav := []byte("RIFF....WAVE")
	tests := []struct {
		name    string
		rec     *fakeRecorder
		tr      *fakeTranscriber
		outcome Outcome
		text    string
		audio   bool
	}{
		{
			name:    "success",
			rec:     &fakeRecorder{wav: wav},
			tr:      &fakeTranscriber{text: "  open sesame  "},
			outcome: OutcomeOK,
			text:    "open sesame",
			audio:   true,
		},
		{
			name:    "no input maps to timeout",
			rec:     &fakeRecorder{err: ErrNoInput},
			tr:      &fakeTranscriber{},
			outcome: OutcomeTimeout,
		},
		{
			name:    "recorder failure",
			rec:     &fakeRecorder{err: errors.New("device busy")},
			tr:      &fakeTranscriber{},
			outcome: OutcomeFailed,
		},
		{
			name:    "transcription failure keeps audio",
			rec:     &fakeRecorder{wav: wav},
			tr:      &fakeTranscriber{err: errors.New("api unreachable")},
			outcome: OutcomeFailed,
			audio:   true,
		},
		{
			name:    "empty transcription is a failure",
			rec:     &fakeRecorder{wav: wav},
			tr:      &fakeTranscriber{text: "   "},
			outcome: OutcomeFailed,
			audio:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.rec, tt.tr, Config{}, logging.Nop())
			got := engine.Listen(context.Background(), "en")
			if got.Outcome != tt.outcome {
				t.Fatalf("outcome = %v, want %v", got.Outcome, tt.outcome)
			}
			if got.Text != tt.text {
				t.Fatalf("text = %q, want %q", got.Text, tt.text)
			}
			if tt.audio && len(got.Audio) == 0 {
				t.Fatalf("expected captured audio to be carried in the result")
			}
			if !tt.audio && len(got.Audio) != 0 {
				t.Fatalf("expected no audio, got %d bytes", len(got.Audio))
			}
		})
	}
}

func TestEngineDefaults(t *testing.T) {
	engine := NewEngine(&fakeRecorder{}, &fakeTranscriber{}, Config{}, logging.Nop())
	if engine.timeout != 10*time.Second || engine.phraseLimit != 10*time.Second {
		t.Fatalf("defaults not applied: timeout=%v phraseLimit=%v", engine.timeout, engine.phraseLimit)
	}
}
