// Package openai adapts the OpenAI audio transcription API to the speech
// engine's Transcriber interface.
package openai

import (
	"bytes"
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	platformerrors "voicelock-go/internal/platform/errors"
	"voicelock-go/internal/platform/logging"
)

// Config selects the endpoint and model.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Transcriber calls the hosted Whisper transcription endpoint.
type Transcriber struct {
	client *goopenai.Client
	model  string
	logger *logging.Logger
}

func New(cfg Config, logger *logging.Logger) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, platformerrors.New(platformerrors.KindConfig, "speech.openai",
			"api key is required")
	}
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = goopenai.Whisper1
	}
	return &Transcriber{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, wav []byte, language string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: "utterance.wav",
		Reader:   bytes.NewReader(wav),
		Language: language,
	})
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindSpeech, "speech.transcribe",
			"transcription request failed", err)
	}
	return resp.Text, nil
}

func (t *Transcriber) Close() error {
	return nil
}
