package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"time"

	"voicelock-go/internal/domain/audio"
)

// silenceRMS is the energy floor under which a capture counts as no input.
const silenceRMS = 0.003

// ALSARecorder captures one utterance from the default input device by
// running arecord. The phrase limit becomes the recording duration; a
// capture whose energy stays under the silence floor is reported as no
// input so callers can re-prompt.
type ALSARecorder struct {
	sampleRate int
	device     string
}

func NewALSARecorder(sampleRate int, device string) *ALSARecorder {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	return &ALSARecorder{sampleRate: sampleRate, device: device}
}

func (r *ALSARecorder) Record(ctx context.Context, timeout, phraseLimit time.Duration) ([]byte, error) {
	seconds := int(phraseLimit.Seconds())
	if seconds <= 0 {
		seconds = 10
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+phraseLimit)
	defer cancel()

	args := []string{
		"-q",
		"-f", "S16_LE",
		"-r", fmt.Sprint(r.sampleRate),
		"-c", "1",
		"-d", fmt.Sprint(seconds),
		"-t", "wav",
	}
	if r.device != "" {
		args = append(args, "-D", r.device)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, "arecord", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("arecord: %w", err)
	}

	wav := out.Bytes()
	samples, _, err := audio.DecodeWAV(wav)
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	if rms(samples) < silenceRMS {
		return nil, ErrNoInput
	}
	return wav, nil
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
