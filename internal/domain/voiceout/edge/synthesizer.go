// Package edge synthesizes speech through the Microsoft Edge online TTS
// service.
package edge

import (
	"context"
	"sync"
	"time"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	platformerrors "voicelock-go/internal/platform/errors"
	"voicelock-go/internal/platform/logging"
)

// Config selects the neural voice, e.g. "en-US-GuyNeural".
type Config struct {
	Voice    string
	CacheTTL time.Duration
}

// Synthesizer caches synthesized prompts. The assistant repeats a small set
// of fixed phrases, so the cache removes most round trips to the service.
type Synthesizer struct {
	voice  string
	cache  *promptCache
	logger *logging.Logger
}

func New(cfg Config, logger *logging.Logger) (*Synthesizer, error) {
	if cfg.Voice == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "voiceout.edge",
			"voice is required")
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Synthesizer{
		voice:  cfg.Voice,
		cache:  newPromptCache(256, ttl),
		logger: logger,
	}, nil
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if cached := s.cache.get(text); cached != nil {
		return cached, nil
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(s.voice))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.synthesize",
			"failed to create edge tts communicator", err)
	}

	start := time.Now()
	audio, err := communicate.Stream()
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.synthesize",
			"edge tts synthesis failed", err)
	}
	s.logger.DebugTag("TTS", "synthesized %d bytes in %v", len(audio), time.Since(start))

	s.cache.set(text, audio)
	return audio, nil
}

func (s *Synthesizer) Close() error {
	s.cache.clear()
	return nil
}

type promptCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	audio []byte
	added time.Time
}

func newPromptCache(maxSize int, ttl time.Duration) *promptCache {
	return &promptCache{
		entries: make(map[string]cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func (c *promptCache) get(key string) []byte {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Since(entry.added) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	}
	return entry.audio
}

func (c *promptCache) set(key string, audio []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, v := range c.entries {
			if oldestKey == "" || v.added.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.added
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = cacheEntry{audio: audio, added: time.Now()}
}

func (c *promptCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
