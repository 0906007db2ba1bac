// Package voiceout speaks prompts to the operator. All output goes through a
// single queue so utterances never overlap, whatever goroutine asked for them.
package voiceout

import (
	"context"
	"sync"

	"voicelock-go/internal/platform/logging"
)

// Synthesizer turns one prompt into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Close() error
}

// Player renders synthesized audio and blocks until it has finished.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Queue is the only path to the loudspeaker. Say blocks the caller until the
// utterance has been fully played, which keeps prompt and capture ordering
// deterministic.
type Queue struct {
	mu     sync.Mutex
	synth  Synthesizer
	player Player
	logger *logging.Logger
}

func NewQueue(synth Synthesizer, player Player, logger *logging.Logger) *Queue {
	return &Queue{
		synth:  synth,
		player: player,
		logger: logger,
	}
}

// Say synthesizes and plays one utterance. Empty text is a no-op.
func (q *Queue) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.logger.DebugTag("TTS", "speaking: %s", text)
	audio, err := q.synth.Synthesize(ctx, text)
	if err != nil {
		q.logger.ErrorTag("TTS", "synthesis failed: %v", err)
		return err
	}
	if err := q.player.Play(ctx, audio); err != nil {
		q.logger.ErrorTag("TTS", "playback failed: %v", err)
		return err
	}
	return nil
}

// Close releases the synthesizer.
func (q *Queue) Close() error {
	return q.synth.Close()
}
