package voiceout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voicelock-go/internal/platform/logging"
)

type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, text)
	if s.err != nil {
		return nil, s.err
	}
	return []byte(text), nil
}

func (s *fakeSynth) Close() error { return nil }

type recordingPlayer struct {
	mu      sync.Mutex
	playing bool
	played  []string
	overlap bool
}

func (p *recordingPlayer) Play(ctx context.Context, audio []byte) error {
	p.mu.Lock()
	if p.playing {
		p.overlap = true
	}
	p.playing = true
	p.mu.Unlock()

	time.Sleep(time.Millisecond)

	p.mu.Lock()
	p.playing = false
	p.played = append(p.played, string(audio))
	p.mu.Unlock()
	return nil
}

func TestSayPlaysSynthesizedAudio(t *testing.T) {
	synth := &fakeSynth{}
	player := &recordingPlayer{}
	q := NewQueue(synth, player, logging.Nop())

	if err := q.Say(context.Background(), "hello"); err != nil {
		t.Fatalf("Say: %v", err)
	}
	if len(player.played) != 1 || player.played[0] != "hello" {
		t.Fatalf("played = %v, want [hello]", player.played)
	}
}

func TestSayEmptyTextIsNoop(t *testing.T) {
	synth := &fakeSynth{}
	q := NewQueue(synth, &recordingPlayer{}, logging.Nop())

	if err := q.Say(context.Background(), ""); err != nil {
		t.Fatalf("Say: %v", err)
	}
	if len(synth.calls) != 0 {
		t.Fatalf("synthesizer called for empty text")
	}
}

func TestSaySerializesConcurrentCallers(t *testing.T) {
	synth := &fakeSynth{}
	player := &recordingPlayer{}
	q := NewQueue(synth, player, logging.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := q.Say(context.Background(), "prompt"); err != nil {
				t.Errorf("Say: %v", err)
			}
		}()
	}
	wg.Wait()

	if player.overlap {
		t.Fatalf("two utterances played at the same time")
	}
	if len(player.played) != 8 {
		t.Fatalf("played %d utterances, want 8", len(player.played))
	}
}

func TestSayPropagatesSynthesisError(t *testing.T) {
	wantErr := errors.New("service unreachable")
	q := NewQueue(&fakeSynth{err: wantErr}, &recordingPlayer{}, logging.Nop())

	if err := q.Say(context.Background(), "hello"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
