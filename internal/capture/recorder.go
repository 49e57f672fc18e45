package capture

import (
	"bytes"
	"context"
	"io"
	"log"
	"time"
)

// RecordedMedia is the immutable result of one capture session.
type RecordedMedia struct {
	Data     []byte
	MIMEType string
	Modality Modality
	Duration time.Duration
}

// Recorder drains encoded chunks from a session for a fixed duration.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record captures for exactly d, then stops and concatenates the buffered
// chunks. The session is always released before returning, success or not:
// a cancelled context resolves to an error instead of leaving hardware open.
// Zero captured bytes is a failure, never an empty success.
func (r *Recorder) Record(ctx context.Context, session *Session, d time.Duration) (*RecordedMedia, error) {
	defer session.Release()

	deadline := time.NewTimer(d)
	defer deadline.Stop()

	var buf bytes.Buffer
	chunks := make(chan []byte, 16)
	readDone := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		tmp := make([]byte, 32*1024)
		for {
			n, err := session.Stream().Read(tmp)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, tmp[:n])
				select {
				case chunks <- chunk:
				case <-quit:
					return
				}
			}
			if err != nil {
				readDone <- err
				return
			}
		}
	}()

	recording := true
	ended := false
	for recording {
		select {
		case chunk := <-chunks:
			buf.Write(chunk)
		case <-deadline.C:
			recording = false
		case err := <-readDone:
			// Stream ended before the deadline. Whatever was buffered is the
			// whole capture; EOF here usually means the device closed on us.
			if err != io.EOF {
				log.Printf("⚠️ Capture stream ended early: %v", err)
			}
			recording = false
			ended = true
		case <-ctx.Done():
			session.Release()
			return nil, ctx.Err()
		}
	}

	// Stop the feed, then drain anything the reader picked up while stopping.
	// When the stream already ended, readDone has been consumed and the reader
	// goroutine is gone, so only the buffered channel is left to flush.
	session.Release()
	if !ended {
	draining:
		for {
			select {
			case chunk := <-chunks:
				buf.Write(chunk)
			case <-readDone:
				break draining
			case <-time.After(time.Second):
				break draining
			}
		}
	}
flushing:
	for {
		select {
		case chunk := <-chunks:
			buf.Write(chunk)
		default:
			break flushing
		}
	}

	if buf.Len() == 0 {
		return nil, ErrEmptyCapture
	}

	mime := "audio/webm"
	if session.Modality().HasVideo() {
		mime = "video/webm"
	}

	log.Printf("🎬 Recorded %d bytes (%s, %s)", buf.Len(), session.Modality(), d)

	return &RecordedMedia{
		Data:     buf.Bytes(),
		MIMEType: mime,
		Modality: session.Modality(),
		Duration: d,
	}, nil
}
