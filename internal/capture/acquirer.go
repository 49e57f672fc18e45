package capture

import (
	"errors"
	"log"
	"sync"
)

// Acquirer runs the tiered device-acquisition ladder:
//
//  1. video + audio together
//  2. video only, when (1) failed because of the audio input
//  3. audio only
//
// Every partially opened attempt is stopped before the next tier runs, so no
// two handles to the same device ever coexist. The acquirer also releases the
// previous session it handed out before opening a new one: the camera and
// microphone are exclusive system resources.
type Acquirer struct {
	backend Backend

	mu      sync.Mutex
	current *Session
}

func NewAcquirer(backend Backend) *Acquirer {
	return &Acquirer{backend: backend}
}

func (a *Acquirer) Acquire(wantVideo, wantAudio bool) (*Session, *AcquisitionError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Any session from a previous run must give the hardware back first.
	if a.current != nil {
		a.current.Release()
		a.current = nil
	}

	if !wantVideo && !wantAudio {
		return nil, &AcquisitionError{Class: Unsupported, Kind: KindVideo, Reason: "nothing requested"}
	}

	// Single-input requests skip the ladder.
	if wantVideo != wantAudio {
		return a.single(wantVideo)
	}

	// Tier 1: both together.
	stream, err := a.backend.Open(OpenRequest{Video: true, Audio: true})
	if err == nil {
		return a.adopt(VideoAudio, stream), nil
	}
	combined := asDeviceError(err)
	log.Printf("⚠️ video+audio acquisition failed (%s): %s", combined.Kind, combined.Cause)

	var videoErr *DeviceError
	if combined.Kind == KindAudio {
		// Tier 2: the audio input was the problem; video alone may still work.
		stream, err = a.backend.Open(OpenRequest{Video: true})
		if err == nil {
			return a.adopt(VideoOnly, stream), nil
		}
		videoErr = asDeviceError(err)
		log.Printf("⚠️ video-only acquisition failed: %s", videoErr.Cause)
	} else {
		videoErr = combined
	}

	// Tier 3: audio only.
	stream, err = a.backend.Open(OpenRequest{Audio: true})
	if err == nil {
		return a.adopt(AudioOnly, stream), nil
	}
	audioErr := asDeviceError(err)
	log.Printf("⚠️ audio-only acquisition failed: %s", audioErr.Cause)

	// All tiers exhausted. Report the video failure by preference: it is the
	// primary modality and its class drives the remediation text.
	return nil, &AcquisitionError{
		Class:  Classify(videoErr.Cause),
		Kind:   videoErr.Kind,
		Reason: videoErr.Cause,
	}
}

func (a *Acquirer) single(wantVideo bool) (*Session, *AcquisitionError) {
	req := OpenRequest{Video: wantVideo, Audio: !wantVideo}
	modality := AudioOnly
	if wantVideo {
		modality = VideoOnly
	}
	stream, err := a.backend.Open(req)
	if err != nil {
		de := asDeviceError(err)
		return nil, &AcquisitionError{Class: Classify(de.Cause), Kind: de.Kind, Reason: de.Cause}
	}
	return a.adopt(modality, stream), nil
}

func (a *Acquirer) adopt(modality Modality, stream Stream) *Session {
	s := newSession(modality, stream)
	a.current = s
	log.Printf("✅ Media session acquired (%s)", modality)
	return s
}

// ReleaseCurrent force-releases whatever session is live. Wired to process
// shutdown and to the engine's teardown paths; safe when nothing is held.
func (a *Acquirer) ReleaseCurrent() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current != nil {
		a.current.Release()
		a.current = nil
	}
}

func asDeviceError(err error) *DeviceError {
	var de *DeviceError
	if errors.As(err, &de) {
		return de
	}
	return &DeviceError{Kind: KindVideo, Cause: err.Error()}
}
