package capture

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"mood-engine/internal/config"
)

// FFmpegBackend opens platform devices through ffmpeg and streams an
// encoded WebM feed over a pipe. One process per open session.
type FFmpegBackend struct {
	cfg *config.Config
}

func NewFFmpegBackend(cfg *config.Config) *FFmpegBackend {
	return &FFmpegBackend{cfg: cfg}
}

// earlyExitWindow is how long we give ffmpeg to fail at device-open time.
// A capture that survives this window is considered successfully opened.
const earlyExitWindow = 700 * time.Millisecond

func (b *FFmpegBackend) Open(req OpenRequest) (Stream, error) {
	if !req.Video && !req.Audio {
		return nil, &DeviceError{Kind: KindVideo, Cause: "no inputs requested"}
	}

	args := []string{"-loglevel", b.cfg.Capture.FFmpegLogLevel, "-nostdin"}
	if req.Video {
		args = append(args, "-f", b.cfg.Capture.VideoFormat, "-i", b.cfg.Capture.VideoDevice)
	}
	if req.Audio {
		args = append(args, "-f", b.cfg.Capture.AudioFormat, "-i", b.cfg.Capture.AudioDevice)
	}
	if req.Video {
		args = append(args, "-c:v", "libvpx", "-deadline", "realtime", "-b:v", "1M")
	}
	if req.Audio {
		args = append(args, "-c:a", "libopus", "-b:a", "64k")
	}
	args = append(args, "-f", "webm", "pipe:1")

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &DeviceError{Kind: kindFor(req), Cause: err.Error()}
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		// ffmpeg binary missing entirely
		return nil, &DeviceError{Kind: kindFor(req), Cause: err.Error()}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	// ffmpeg reports device-open failures by exiting immediately. Wait a short
	// window so we can classify them instead of handing back a dead stream.
	select {
	case <-exited:
		cause := strings.TrimSpace(stderr.String())
		if cause == "" {
			cause = "capture process exited at startup"
		}
		return nil, &DeviceError{Kind: blameInput(req, cause), Cause: cause}
	case <-time.After(earlyExitWindow):
	}

	log.Printf("🎥 Capture opened (video=%v audio=%v)", req.Video, req.Audio)
	return &ffmpegStream{cmd: cmd, out: stdout, exited: exited}, nil
}

func kindFor(req OpenRequest) TrackKind {
	if req.Video {
		return KindVideo
	}
	return KindAudio
}

// blameInput decides which requested input a combined-open failure belongs to,
// so the ladder knows whether dropping audio is worth a retry.
func blameInput(req OpenRequest, stderr string) TrackKind {
	s := strings.ToLower(stderr)
	if req.Audio && (strings.Contains(s, "alsa") ||
		strings.Contains(s, "pulse") ||
		strings.Contains(s, "audio")) {
		return KindAudio
	}
	if req.Video {
		return KindVideo
	}
	return KindAudio
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	exited chan error

	mu      sync.Mutex
	stopped bool
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	return s.out.Read(p)
}

// Stop terminates the capture process. SIGINT first so ffmpeg flushes the
// container, then a hard kill if it lingers.
func (s *ffmpegStream) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	if s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.exited:
		case <-time.After(2 * time.Second):
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
	}
	return s.out.Close()
}

var _ Stream = (*ffmpegStream)(nil)

func (s *ffmpegStream) String() string {
	return fmt.Sprintf("ffmpeg pid=%d", s.cmd.Process.Pid)
}
