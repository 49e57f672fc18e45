// Package wavenc turns compressed browser-style captures into the one audio
// container the inference service accepts: mono 16-bit little-endian PCM in a
// plain RIFF/WAVE file. The header is built by hand; native recorders only
// produce compressed containers.
package wavenc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	headerSize    = 44
	bitsPerSample = 16
	numChannels   = 1
)

var ErrEmptyInput = errors.New("wavenc: no samples to encode")

// Encode builds a WAV file from float samples in [-1, 1]. Samples outside the
// range are clamped before scaling to the 16-bit range.
func Encode(samples []float64, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	dataLen := len(samples) * 2
	buf := make([]byte, headerSize+dataLen)

	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // format tag: uncompressed PCM
	binary.LittleEndian.PutUint16(buf[22:24], numChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	off := headerSize
	for _, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(math.Round(s * 32767))
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(v))
		off += 2
	}

	return buf, nil
}

// Parse reads back a container produced by Encode. Used by consumers that
// need the raw samples again (and by the round-trip tests).
func Parse(data []byte) ([]float64, int, error) {
	if len(data) < headerSize {
		return nil, 0, fmt.Errorf("wavenc: container too short (%d bytes)", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("wavenc: not a RIFF/WAVE container")
	}
	if binary.LittleEndian.Uint16(data[20:22]) != 1 {
		return nil, 0, errors.New("wavenc: not uncompressed PCM")
	}
	if binary.LittleEndian.Uint16(data[34:36]) != bitsPerSample {
		return nil, 0, errors.New("wavenc: expected 16-bit samples")
	}

	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	dataLen := int(binary.LittleEndian.Uint32(data[40:44]))
	if headerSize+dataLen > len(data) {
		dataLen = len(data) - headerSize
	}

	samples := make([]float64, dataLen/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[headerSize+i*2 : headerSize+i*2+2]))
		samples[i] = float64(v) / 32767
	}
	return samples, sampleRate, nil
}
