package wavenc

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Decoder extracts mono float samples from a compressed capture.
type Decoder interface {
	Decode(compressed []byte, sampleRate int) ([]float64, error)
}

// Encoder is the full pipeline: compressed capture in, WAV container out.
type Encoder struct {
	decoder Decoder
}

func NewEncoder(decoder Decoder) *Encoder {
	return &Encoder{decoder: decoder}
}

// ToPCMContainer decodes the compressed audio and re-encodes it as a WAV file
// at the target sample rate. Decode failures propagate; they are never
// papered over with an empty container.
func (e *Encoder) ToPCMContainer(compressed []byte, sampleRate int) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, ErrEmptyInput
	}
	samples, err := e.decoder.Decode(compressed, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("wavenc: decode failed: %w", err)
	}
	if len(samples) == 0 {
		return nil, errors.New("wavenc: decoder produced no samples")
	}
	return Encode(samples, sampleRate)
}

// FFmpegDecoder shells out to ffmpeg for the decompress step, the same way
// every other media path in the engine does.
type FFmpegDecoder struct {
	TempDir string
}

func (d *FFmpegDecoder) Decode(compressed []byte, sampleRate int) ([]float64, error) {
	dir := d.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	in := filepath.Join(dir, fmt.Sprintf("capture-%d.webm", time.Now().UnixNano()))
	if err := os.WriteFile(in, compressed, 0644); err != nil {
		return nil, err
	}
	defer os.Remove(in)

	// Mono 16-bit PCM, no container, straight to stdout.
	cmd := exec.Command("ffmpeg",
		"-y", "-i", in,
		"-ar", fmt.Sprint(sampleRate),
		"-ac", "1",
		"-f", "s16le",
		"pipe:1",
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Printf("❌ Audio decode failed: %v | %s", err, stderr.String())
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	raw := out.Bytes()
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
		samples[i] = float64(v) / 32767
	}
	return samples, nil
}
