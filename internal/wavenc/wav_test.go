package wavenc

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestEncodeHeaderFields(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 1}
	data, err := Encode(samples, 16000)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("Expected %d bytes, got %d", 44+len(samples)*2, len(data))
	}
	if string(data[0:4]) != "RIFF" {
		t.Errorf("Missing RIFF magic: %q", data[0:4])
	}
	if string(data[8:12]) != "WAVE" {
		t.Errorf("Missing WAVE magic: %q", data[8:12])
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != uint32(36+len(samples)*2) {
		t.Errorf("RIFF chunk size = %d, want %d", got, 36+len(samples)*2)
	}
	if got := binary.LittleEndian.Uint16(data[20:22]); got != 1 {
		t.Errorf("Format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != 1 {
		t.Errorf("Channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("Sample rate = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != 32000 {
		t.Errorf("Byte rate = %d, want 32000", got)
	}
	if got := binary.LittleEndian.Uint16(data[32:34]); got != 2 {
		t.Errorf("Block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("Bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("Data chunk size = %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	samples := make([]float64, 160)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * float64(i) / 160)
	}

	data, err := Encode(samples, 16000)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, rate, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("Sample rate = %d, want 16000", rate)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("Decoded %d samples, want %d", len(decoded), len(samples))
	}
	// 16-bit quantization loses at most half a step.
	const tolerance = 1.0 / 32767
	for i := range samples {
		if math.Abs(decoded[i]-samples[i]) > tolerance {
			t.Fatalf("Sample %d: got %f, want %f ± %f", i, decoded[i], samples[i], tolerance)
		}
	}
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	data, err := Encode([]float64{2.5, -3.0}, 8000)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, _, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if decoded[0] != 1 {
		t.Errorf("Over-range sample = %f, want 1", decoded[0])
	}
	if decoded[1] != -1 {
		t.Errorf("Under-range sample = %f, want -1", decoded[1])
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	if _, err := Encode(nil, 16000); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"TooShort", []byte("RIFF")},
		{"WrongMagic", make([]byte, 64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Parse(tt.data); err == nil {
				t.Error("Expected a parse error")
			}
		})
	}
}

// fakeDecoder scripts the decompress step.
type fakeDecoder struct {
	samples []float64
	err     error
}

func (d *fakeDecoder) Decode(compressed []byte, sampleRate int) ([]float64, error) {
	return d.samples, d.err
}

func TestToPCMContainer(t *testing.T) {
	enc := NewEncoder(&fakeDecoder{samples: []float64{0.25, -0.25}})
	data, err := enc.ToPCMContainer([]byte("webm"), 16000)
	if err != nil {
		t.Fatalf("ToPCMContainer failed: %v", err)
	}
	samples, rate, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if rate != 16000 || len(samples) != 2 {
		t.Errorf("Got %d samples at %d Hz", len(samples), rate)
	}
}

func TestToPCMContainerEmptyInput(t *testing.T) {
	enc := NewEncoder(&fakeDecoder{samples: []float64{1}})
	if _, err := enc.ToPCMContainer(nil, 16000); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestToPCMContainerDecodeFailure(t *testing.T) {
	boom := errors.New("boom")
	enc := NewEncoder(&fakeDecoder{err: boom})
	if _, err := enc.ToPCMContainer([]byte("webm"), 16000); !errors.Is(err, boom) {
		t.Errorf("Expected decode failure to propagate, got %v", err)
	}
}

func TestToPCMContainerNoSamples(t *testing.T) {
	enc := NewEncoder(&fakeDecoder{})
	if _, err := enc.ToPCMContainer([]byte("webm"), 16000); err == nil {
		t.Error("Expected an error when the decoder produces no samples")
	}
}
