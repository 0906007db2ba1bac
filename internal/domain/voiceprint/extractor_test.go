package voiceprint

import (
	"errors"
	"math"
	"testing"

	"voicelock-go/internal/domain/audio"
)

// syntheticVoice produces a deterministic harmonic signal long enough to
// survive trimming and framing.
func syntheticVoice(base float64, rate int, seconds float64) []byte {
	n := int(float64(rate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		ts := float64(i) / float64(rate)
		samples[i] = 0.4*math.Sin(2*math.Pi*base*ts) +
			0.2*math.Sin(2*math.Pi*2*base*ts) +
			0.1*math.Sin(2*math.Pi*3*base*ts)
	}
	return audio.EncodeWAV(samples, rate)
}

func TestExtractDeterministic(t *testing.T) {
	extractor := NewExtractor(DefaultExtractorConfig())
	sample := syntheticVoice(180, 22050, 1.0)

	first, err := extractor.Extract(sample)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	second, err := extractor.Extract(sample)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if len(first) != 20 {
		t.Fatalf("fingerprint length = %d, want 20", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("extraction is not deterministic at coefficient %d: %v vs %v",
				i, first[i], second[i])
		}
	}
}

func TestExtractResamplesForeignRates(t *testing.T) {
	extractor := NewExtractor(DefaultExtractorConfig())
	sample := syntheticVoice(180, 16000, 1.0)

	fp, err := extractor.Extract(sample)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(fp) != 20 {
		t.Fatalf("fingerprint length = %d, want 20", len(fp))
	}
}

func TestExtractFailsOnBadInput(t *testing.T) {
	extractor := NewExtractor(DefaultExtractorConfig())

	tests := []struct {
		name   string
		sample []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not audio at all")},
		{"silence", audio.EncodeWAV(make([]float64, 22050), 22050)},
		{"too short", audio.EncodeWAV([]float64{0.5, -0.5, 0.5}, 22050)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := extractor.Extract(tt.sample); !errors.Is(err, ErrExtraction) {
				t.Fatalf("expected ErrExtraction, got %v", err)
			}
		})
	}
}

func TestSelfMatchAndSymmetry(t *testing.T) {
	extractor := NewExtractor(DefaultExtractorConfig())

	fpA, err := extractor.Extract(syntheticVoice(180, 22050, 1.0))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	fpB, err := extractor.Extract(syntheticVoice(95, 22050, 1.0))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if !Matches(fpA, fpA, 0.001) {
		t.Fatal("fingerprint must match itself for any positive threshold")
	}
	if Matches(fpA, fpA, 0) {
		t.Fatal("zero threshold admits nothing: comparison is strict")
	}
	if Matches(fpA, fpB, 0.5) {
		t.Fatalf("very different voices matched under a tight threshold (distance %v)",
			Distance(fpA, fpB))
	}
	if Matches(fpA, fpB, 115) != Matches(fpB, fpA, 115) {
		t.Fatal("Matches must be symmetric")
	}
}

func TestDistancePanicsOnDimensionMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on dimension mismatch")
		}
	}()
	Distance(Fingerprint{1, 2, 3}, Fingerprint{1, 2})
}
