package speech

import (
	"context"
	"errors"
	"strings"
	"time"

	"voicelock-go/internal/platform/logging"
)

// Engine pairs a Recorder with a Transcriber into the one-utterance
// operation every flow is built from.
type Engine struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *logging.Logger
	timeout     time.Duration
	phraseLimit time.Duration
}

// Config bounds the blocking capture call.
type Config struct {
	CaptureTimeout time.Duration
	PhraseLimit    time.Duration
}

func NewEngine(recorder Recorder, transcriber Transcriber, cfg Config, logger *logging.Logger) *Engine {
	if cfg.CaptureTimeout <= 0 {
		cfg.CaptureTimeout = 10 * time.Second
	}
	if cfg.PhraseLimit <= 0 {
		cfg.PhraseLimit = 10 * time.Second
	}
	return &Engine{
		recorder:    recorder,
		transcriber: transcriber,
		logger:      logger,
		timeout:     cfg.CaptureTimeout,
		phraseLimit: cfg.PhraseLimit,
	}
}

// Listen captures one utterance and transcribes it. Never returns an error:
// every failure is folded into the result outcome so callers decide whether
// to re-prompt or abort.
func (e *Engine) Listen(ctx context.Context, language string) CaptureResult {
	wav, err := e.recorder.Record(ctx, e.timeout, e.phraseLimit)
	if err != nil {
		if errors.Is(err, ErrNoInput) {
			e.logger.DebugTag("ASR", "capture window elapsed with no input")
			return CaptureResult{Outcome: OutcomeTimeout}
		}
		e.logger.WarnTag("ASR", "capture failed: %v", err)
		return CaptureResult{Outcome: OutcomeFailed}
	}

	text, err := e.transcriber.Transcribe(ctx, wav, language)
	if err != nil {
		e.logger.WarnTag("ASR", "transcription failed: %v", err)
		return CaptureResult{Outcome: OutcomeFailed, Audio: wav}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.DebugTag("ASR", "transcription produced empty text")
		return CaptureResult{Outcome: OutcomeFailed, Audio: wav}
	}

	e.logger.DebugTag("ASR", "captured: %s", text)
	return CaptureResult{Text: text, Outcome: OutcomeOK, Audio: wav}
}

// Close releases the transcriber.
func (e *Engine) Close() error {
	return e.transcriber.Close()
}
