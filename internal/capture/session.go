package capture

import (
	"io"
	"log"
	"sync"
)

// TrackKind identifies a hardware input.
type TrackKind string

const (
	KindVideo TrackKind = "video"
	KindAudio TrackKind = "audio"
)

// Modality records which inputs actually opened for a session.
type Modality string

const (
	VideoAudio Modality = "video+audio"
	VideoOnly  Modality = "video"
	AudioOnly  Modality = "audio"
	None       Modality = "none"
)

// HasVideo reports whether the modality includes a camera track.
func (m Modality) HasVideo() bool { return m == VideoAudio || m == VideoOnly }

// HasAudio reports whether the modality includes a microphone track.
func (m Modality) HasAudio() bool { return m == VideoAudio || m == AudioOnly }

// Stream is a live encoded capture feed. Stop must be safe to call
// more than once.
type Stream interface {
	io.Reader
	Stop() error
}

// Session exclusively owns the hardware opened by one acquisition.
// Whoever holds it must call Release on every exit path.
type Session struct {
	modality Modality
	stream   Stream

	mu       sync.Mutex
	released bool
}

func newSession(modality Modality, stream Stream) *Session {
	return &Session{modality: modality, stream: stream}
}

func (s *Session) Modality() Modality { return s.modality }

// Stream exposes the encoded feed for the recorder.
func (s *Session) Stream() Stream { return s.stream }

// Release stops every track. Idempotent: the second and later calls are no-ops.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			log.Printf("⚠️ Failed to stop capture stream: %v", err)
		}
	}
}

// Released reports whether the hardware has been given back.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
