package voiceprint

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"voicelock-go/internal/domain/audio"
)

// ErrExtraction is returned when a sample is empty or unreadable after
// decoding. Callers treat it as "no match possible", never as fatal.
var ErrExtraction = errors.New("voiceprint: cannot extract fingerprint")

// Fingerprint is a fixed-length summary of one voice sample. Two fingerprints
// are only comparable when produced by extractors with identical configs.
type Fingerprint []float64

// ExtractorConfig fixes the fingerprint pipeline. CoeffCount is the
// fingerprint dimensionality and must match across enrollment and
// verification.
type ExtractorConfig struct {
	SampleRate int // canonical rate everything is resampled to
	CoeffCount int // cepstral coefficients kept per frame
	FFTSize    int // analysis window, power of two
	HopSize    int // frame step
	NumMels    int // mel bands before the cosine transform
	TrimDB     float64
}

// DefaultExtractorConfig mirrors the reference deployment: 22.05 kHz, 20
// coefficients, 46 ms windows.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		SampleRate: 22050,
		CoeffCount: 20,
		FFTSize:    1024,
		HopSize:    512,
		NumMels:    40,
		TrimDB:     60,
	}
}

// Extractor converts raw audio into fingerprints. Safe for reuse; not safe
// for concurrent use (the auth loop is single threaded).
type Extractor struct {
	cfg     ExtractorConfig
	fft     *fourier.FFT
	dct     *fourier.DCT
	window  []float64
	melBank [][]float64
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.SampleRate <= 0 || cfg.CoeffCount <= 0 {
		cfg = DefaultExtractorConfig()
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 1024
	}
	if cfg.HopSize <= 0 {
		cfg.HopSize = cfg.FFTSize / 2
	}
	if cfg.NumMels < cfg.CoeffCount {
		cfg.NumMels = cfg.CoeffCount * 2
	}
	if cfg.TrimDB <= 0 {
		cfg.TrimDB = 60
	}
	return &Extractor{
		cfg:     cfg,
		fft:     fourier.NewFFT(cfg.FFTSize),
		dct:     fourier.NewDCT(cfg.NumMels),
		window:  hammingWindow(cfg.FFTSize),
		melBank: melFilterBank(cfg.NumMels, cfg.FFTSize, cfg.SampleRate),
	}
}

// Extract runs the fixed pipeline: resample, noise reduction, silence trim,
// cepstral transform, time-axis mean. Deterministic for identical bytes.
func (e *Extractor) Extract(sample []byte) (Fingerprint, error) {
	samples, rate, err := audio.DecodeWAV(sample)
	if err != nil {
		return nil, errors.Join(ErrExtraction, err)
	}
	return e.ExtractPCM(samples, rate)
}

// ExtractPCM fingerprints already-decoded mono samples.
func (e *Extractor) ExtractPCM(samples []float64, rate int) (Fingerprint, error) {
	if len(samples) == 0 {
		return nil, ErrExtraction
	}

	samples = audio.Resample(samples, rate, e.cfg.SampleRate)
	samples = e.reduceNoise(samples)
	samples = trimSilence(samples, e.cfg.TrimDB)
	if len(samples) < e.cfg.FFTSize {
		return nil, ErrExtraction
	}

	frames := e.cepstra(samples)
	if len(frames) == 0 {
		return nil, ErrExtraction
	}

	// Collapse the time axis into one fixed-length vector.
	fp := make(Fingerprint, e.cfg.CoeffCount)
	for _, frame := range frames {
		floats.Add(fp, frame)
	}
	floats.Scale(1/float64(len(frames)), fp)
	return fp, nil
}

// reduceNoise applies a deterministic gate: frames whose energy sits near the
// estimated noise floor are attenuated quadratically.
func (e *Extractor) reduceNoise(samples []float64) []float64 {
	frameLen := e.cfg.HopSize
	if frameLen <= 0 || len(samples) < frameLen {
		return samples
	}

	numFrames := len(samples) / frameLen
	rms := make([]float64, numFrames)
	for t := 0; t < numFrames; t++ {
		sum := 0.0
		for i := t * frameLen; i < (t+1)*frameLen; i++ {
			sum += samples[i] * samples[i]
		}
		rms[t] = math.Sqrt(sum / float64(frameLen))
	}

	floor := noiseFloor(rms)
	if floor <= 0 {
		return samples
	}
	gate := 2 * floor

	out := make([]float64, len(samples))
	copy(out, samples)
	for t := 0; t < numFrames; t++ {
		if rms[t] >= gate {
			continue
		}
		gain := (rms[t] / gate) * (rms[t] / gate)
		for i := t * frameLen; i < (t+1)*frameLen; i++ {
			out[i] *= gain
		}
	}
	return out
}

// noiseFloor estimates the noise level as the mean of the quietest 10% of
// frame energies.
func noiseFloor(rms []float64) float64 {
	if len(rms) == 0 {
		return 0
	}
	sorted := make([]float64, len(rms))
	copy(sorted, rms)
	sort.Float64s(sorted)

	n := len(sorted) / 10
	if n == 0 {
		n = 1
	}
	sum := 0.0
	for _, v := range sorted[:n] {
		sum += v
	}
	return sum / float64(n)
}

// trimSilence drops leading and trailing samples whose amplitude falls below
// the threshold relative to the sample peak.
func trimSilence(samples []float64, trimDB float64) []float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return nil
	}
	threshold := peak * math.Pow(10, -trimDB/20)

	start := 0
	for start < len(samples) && math.Abs(samples[start]) < threshold {
		start++
	}
	end := len(samples)
	for end > start && math.Abs(samples[end-1]) < threshold {
		end--
	}
	return samples[start:end]
}

// cepstra computes per-frame mel cepstral coefficients.
func (e *Extractor) cepstra(samples []float64) [][]float64 {
	cfg := e.cfg
	numFrames := (len(samples)-cfg.FFTSize)/cfg.HopSize + 1
	halfFFT := cfg.FFTSize/2 + 1

	frames := make([][]float64, 0, numFrames)
	seq := make([]float64, cfg.FFTSize)
	coeffs := make([]complex128, halfFFT)
	mel := make([]float64, cfg.NumMels)
	cep := make([]float64, cfg.NumMels)

	for t := 0; t < numFrames; t++ {
		start := t * cfg.HopSize
		for i := 0; i < cfg.FFTSize; i++ {
			seq[i] = samples[start+i] * e.window[i]
		}

		coeffs = e.fft.Coefficients(coeffs, seq)

		for m := 0; m < cfg.NumMels; m++ {
			sum := 0.0
			for k, w := range e.melBank[m] {
				if w == 0 {
					continue
				}
				c := coeffs[k]
				sum += w * (real(c)*real(c) + imag(c)*imag(c))
			}
			if sum < 1e-10 {
				sum = 1e-10
			}
			mel[m] = math.Log(sum)
		}

		cep = e.dct.Transform(cep, mel)
		frame := make([]float64, cfg.CoeffCount)
		copy(frame, cep[:cfg.CoeffCount])
		frames = append(frames, frame)
	}
	return frames
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterBank builds triangular filters from 0 Hz to Nyquist.
func melFilterBank(numMels, fftSize, sampleRate int) [][]float64 {
	halfFFT := fftSize/2 + 1
	lowMel := hzToMel(0)
	highMel := hzToMel(float64(sampleRate) / 2)

	melPoints := make([]float64, numMels+2)
	step := (highMel - lowMel) / float64(numMels+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*step
	}

	bins := make([]int, numMels+2)
	for i, m := range melPoints {
		hz := melToHz(m)
		bin := int(math.Round(hz * float64(fftSize) / float64(sampleRate)))
		if bin >= halfFFT {
			bin = halfFFT - 1
		}
		bins[i] = bin
	}
	for i := 1; i < len(bins); i++ {
		if bins[i] <= bins[i-1] {
			bins[i] = bins[i-1] + 1
		}
	}

	bank := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filter := make([]float64, halfFFT)
		left, center, right := bins[m], bins[m+1], bins[m+2]
		for k := left; k < center && k < halfFFT; k++ {
			filter[k] = float64(k-left) / float64(center-left)
		}
		for k := center; k <= right && k < halfFFT; k++ {
			filter[k] = float64(right-k) / float64(right-center)
		}
		bank[m] = filter
	}
	return bank
}

