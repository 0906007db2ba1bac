// Package audio holds the minimal PCM plumbing shared by capture, playback
// and fingerprinting: 16-bit mono RIFF/WAVE encode and decode.
package audio

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrNotWave is returned for data that is not a RIFF/WAVE container.
	ErrNotWave = errors.New("audio: not a RIFF/WAVE stream")
	// ErrUnsupported is returned for WAVE encodings other than 16-bit PCM.
	ErrUnsupported = errors.New("audio: unsupported WAVE encoding")
)

const (
	formatPCM16   = 1
	bitsPerSample = 16
)

// DecodeWAV parses a WAVE container and returns normalized mono samples in
// [-1, 1] plus the sample rate. Multi-channel input is averaged down to mono.
func DecodeWAV(data []byte) ([]float64, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, ErrNotWave
	}

	var (
		sampleRate int
		channels   int
		pcm        []byte
		haveFmt    bool
	)

	// Walk the chunk list; tolerate unknown chunks.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+size > len(data) {
			size = len(data) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, ErrUnsupported
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			if format != formatPCM16 || bits != bitsPerSample {
				return nil, 0, ErrUnsupported
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word aligned.
		offset = body + size
		if size%2 == 1 {
			offset++
		}
	}

	if !haveFmt || channels <= 0 || sampleRate <= 0 {
		return nil, 0, ErrNotWave
	}
	if len(pcm) < 2 {
		return nil, 0, ErrUnsupported
	}

	frames := len(pcm) / 2 / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			idx := (i*channels + c) * 2
			s := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float64(s) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}
	return samples, sampleRate, nil
}

// EncodeWAV renders normalized mono samples as a 16-bit PCM WAVE stream.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM16)
	binary.LittleEndian.PutUint16(buf[22:24], 1)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		v := int16(math.Round(clamp(s, -1, 1) * 32767))
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(v))
	}
	return buf
}

// Resample converts samples to the target rate by linear interpolation.
// Identity when the rates already match.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || len(samples) == 0 {
		return samples
	}
	ratio := float64(from) / float64(to)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		left := int(pos)
		if left >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(left)
		out[i] = samples[left]*(1-frac) + samples[left+1]*frac
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
