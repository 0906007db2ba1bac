package voiceout

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"

	"github.com/hajimehoshi/go-mp3"

	platformerrors "voicelock-go/internal/platform/errors"
)

// ALSAPlayer decodes MP3 audio and streams the PCM to the aplay utility.
// Play blocks until the utterance has finished, matching the Player contract.
type ALSAPlayer struct {
	device string
}

func NewALSAPlayer(device string) *ALSAPlayer {
	return &ALSAPlayer{device: device}
}

func (p *ALSAPlayer) Play(ctx context.Context, audio []byte) error {
	decoder, err := mp3.NewDecoder(bytes.NewReader(audio))
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.play",
			"failed to decode mp3 audio", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo.
	args := []string{
		"-q",
		"-f", "S16_LE",
		"-r", strconv.Itoa(decoder.SampleRate()),
		"-c", "2",
		"-t", "raw",
	}
	if p.device != "" {
		args = append(args, "-D", p.device)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, "aplay", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.play",
			"failed to open aplay stdin", err)
	}
	if err := cmd.Start(); err != nil {
		return platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.play",
			"failed to start aplay", err)
	}

	_, copyErr := io.Copy(stdin, decoder)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.play",
			"playback did not complete", err)
	}
	if copyErr != nil {
		return platformerrors.Wrap(platformerrors.KindSpeech, "voiceout.play",
			"failed streaming pcm to aplay", copyErr)
	}
	return nil
}
