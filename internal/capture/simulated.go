package capture

import (
	"bytes"
	"log"
	"math"
)

// SimulatedBackend produces synthetic capture data without touching hardware.
// Used by the -simulate flag for dry runs on machines with no devices; the
// payload is not a decodable container, so inference resolves through its
// local fallback.
type SimulatedBackend struct{}

func (SimulatedBackend) Open(req OpenRequest) (Stream, error) {
	if !req.Video && !req.Audio {
		return nil, &DeviceError{Kind: KindVideo, Cause: "no inputs requested"}
	}
	log.Printf("🧪 Simulated capture opened (video=%v audio=%v)", req.Video, req.Audio)

	// A sine sweep, so the payload is non-empty and non-constant.
	data := make([]byte, 16*1024)
	for i := range data {
		data[i] = byte(128 + 127*math.Sin(float64(i)/64))
	}
	return &simulatedStream{reader: bytes.NewReader(data)}, nil
}

type simulatedStream struct {
	reader *bytes.Reader
}

func (s *simulatedStream) Read(p []byte) (int, error) { return s.reader.Read(p) }
func (s *simulatedStream) Stop() error                { return nil }
