package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"mood-engine/internal/capture"
	"mood-engine/internal/config"
	database "mood-engine/internal/db"
	"mood-engine/internal/inference"
	"mood-engine/internal/models"
	"mood-engine/internal/mood"
	"mood-engine/internal/notify"
	"mood-engine/internal/session"
	"mood-engine/internal/wavenc"
)

// State is where the detection pipeline currently is.
type State string

const (
	StateIdle       State = "idle"
	StateAcquiring  State = "acquiring"
	StateRecording  State = "recording"
	StateSubmitting State = "submitting"
	StateCommitting State = "committing"
	StateFailed     State = "failed"
)

// Entry is how a run was triggered. Scheduled entries (timer, sign-in,
// initial load, explicit user request) bypass the cooldown; passive
// revalidation does not.
type Entry string

const (
	EntryInitial  Entry = "initial"
	EntryInterval Entry = "interval"
	EntrySignIn   Entry = "sign_in"
	EntryManual   Entry = "manual"
	EntryPassive  Entry = "passive"
)

// Archiver receives the raw capture after a successful recording.
type Archiver interface {
	Save(media *capture.RecordedMedia)
}

// Client is the slice of the inference client the pipeline needs.
type Client interface {
	AnalyzeAudio(ctx context.Context, audio []byte, filename string) *inference.Result
	AnalyzeVideo(ctx context.Context, video []byte, filename string) *inference.Result
}

// Scheduler decides when detection runs and drives the full pipeline:
// acquire → record → encode → submit → commit.
type Scheduler struct {
	cfg      *config.Config
	acquirer *capture.Acquirer
	recorder *capture.Recorder
	encoder  *wavenc.Encoder
	client   Client
	store    *mood.Store
	notifier *notify.Notifier
	archiver Archiver
	db       *database.Client
	sessions *session.Manager
	guard    *RunGuard
	clock    Clock

	mu           sync.Mutex
	state        State
	lastError    string
	intervalStop chan struct{}
}

func New(
	cfg *config.Config,
	acquirer *capture.Acquirer,
	recorder *capture.Recorder,
	encoder *wavenc.Encoder,
	client Client,
	store *mood.Store,
	notifier *notify.Notifier,
	archiver Archiver,
	db *database.Client,
	sessions *session.Manager,
) *Scheduler {
	// Cooldown marker row exists from first boot
	db.DB.Exec("INSERT INTO engine_marker (id, last_detected, updated_at) VALUES (1, ?, ?) ON CONFLICT (id) DO NOTHING",
		time.Unix(0, 0), time.Now())

	s := &Scheduler{
		cfg:      cfg,
		acquirer: acquirer,
		recorder: recorder,
		encoder:  encoder,
		client:   client,
		store:    store,
		notifier: notifier,
		archiver: archiver,
		db:       db,
		sessions: sessions,
		guard:    GlobalGuard,
		clock:    RealClock{},
		state:    StateIdle,
	}

	sessions.OnSignIn(func() {
		log.Println("🔑 Sign-in detected, scheduling immediate detection")
		go s.Trigger(EntrySignIn)
		s.StartInterval()
	})
	sessions.OnSignOut(func() {
		log.Println("🔒 Sign-out detected, cancelling periodic detection")
		s.StopInterval()
	})

	return s
}

// SetGuard and SetClock exist for tests; production keeps the process-wide
// guard and the real clock.
func (s *Scheduler) SetGuard(g *RunGuard) { s.guard = g }
func (s *Scheduler) SetClock(c Clock)     { s.clock = c }

// Start arms the one-time delayed run after initial load and, when already
// authenticated, the periodic interval.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		select {
		case <-time.After(s.cfg.InitialDelay()):
			s.Trigger(EntryInitial)
		case <-ctx.Done():
		}
	}()

	if s.sessions.Authenticated() {
		s.StartInterval()
	}
}

// StartInterval begins periodic re-detection. Idempotent.
func (s *Scheduler) StartInterval() {
	s.mu.Lock()
	if s.intervalStop != nil {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.intervalStop = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.cfg.Interval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Trigger(EntryInterval)
			case <-stop:
				return
			}
		}
	}()
}

// StopInterval cancels periodic re-detection. Idempotent.
func (s *Scheduler) StopInterval() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intervalStop != nil {
		close(s.intervalStop)
		s.intervalStop = nil
	}
}

// State reports the pipeline position and the last failure message, if any.
func (s *Scheduler) State() (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.lastError
}

// Trigger requests a detection run. It returns true when a pipeline actually
// ran; gated entries (signed out, opted out, cooldown, run in flight,
// still-fresh state) no-op without touching hardware.
func (s *Scheduler) Trigger(entry Entry) bool {
	if !s.sessions.Authenticated() {
		return false
	}
	if !s.sessions.AutoDetectEnabled() && entry != EntryManual {
		return false
	}

	// Passive revalidation honors the cooldown; scheduled entries bypass it.
	if entry == EntryPassive && s.withinCooldown() {
		log.Println("⏳ Passive detection suppressed by cooldown")
		detectionsTotal.WithLabelValues(string(entry), "cooldown").Inc()
		return false
	}

	// The initial run is skipped outright when the stored mood is still fresh.
	if entry == EntryInitial {
		if _, fresh := s.store.Read(); fresh {
			log.Println("✨ Stored mood still fresh, skipping initial detection")
			detectionsTotal.WithLabelValues(string(entry), "fresh").Inc()
			return false
		}
	}

	if !s.guard.TryAcquire() {
		log.Println("🚧 Detection already in flight, dropping trigger")
		detectionsTotal.WithLabelValues(string(entry), "dropped").Inc()
		return false
	}
	defer s.guard.Release()

	started := s.clock.Now()
	outcome := s.run(entry)
	detectionDuration.Observe(time.Since(started).Seconds())
	detectionsTotal.WithLabelValues(string(entry), outcome).Inc()
	return outcome == "success"
}

// run executes one full pipeline pass. The guard is already held; it is
// released by the caller's defer even if this panics.
func (s *Scheduler) run(entry Entry) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Sprintf("internal error: %v", r))
			outcome = "panic"
		}
	}()

	s.setState(StateAcquiring)
	s.notifier.Info("Detecting your mood...")

	sess, aerr := s.acquirer.Acquire(true, true)
	if aerr != nil {
		s.fail(aerr.Remediation())
		return "acquire_failed"
	}

	s.setState(StateRecording)
	ctx, cancel := context.WithTimeout(context.Background(),
		s.cfg.RecordDuration()+time.Duration(s.cfg.Inference.TimeoutSec)*time.Second)
	defer cancel()

	media, err := s.recorder.Record(ctx, sess, s.cfg.RecordDuration())
	if err != nil {
		if err == capture.ErrEmptyCapture {
			s.fail("The capture produced no data. Check that your camera or microphone is working, then try again.")
			return "empty_capture"
		}
		s.fail("Recording was interrupted. Try again.")
		return "record_failed"
	}

	if s.archiver != nil {
		s.archiver.Save(media)
	}

	s.setState(StateSubmitting)
	result := s.submit(ctx, media)

	s.setState(StateCommitting)
	detection := s.toDetection(result, media.Modality, entry)
	if err := s.store.Commit(detection); err != nil {
		s.fail("Could not save the detected mood.")
		return "commit_failed"
	}

	s.markDetected()
	s.notifier.Success(fmt.Sprintf("Detected: %s", detection.Mood))
	s.setState(StateIdle)
	return "success"
}

// submit routes the capture to the entry point matching its modality. Audio
// goes through the WAV re-encode first; the service only accepts
// uncompressed PCM for bare audio uploads.
func (s *Scheduler) submit(ctx context.Context, media *capture.RecordedMedia) *inference.Result {
	if media.Modality.HasVideo() {
		return s.client.AnalyzeVideo(ctx, media.Data, "capture.webm")
	}

	wav, err := s.encoder.ToPCMContainer(media.Data, s.cfg.Capture.SampleRate)
	if err != nil {
		log.Printf("⚠️ Audio re-encode failed, submitting raw capture: %v", err)
		return s.client.AnalyzeAudio(ctx, media.Data, "capture.webm")
	}
	return s.client.AnalyzeAudio(ctx, wav, "capture.wav")
}

func (s *Scheduler) toDetection(result *inference.Result, modality capture.Modality, entry Entry) mood.Detection {
	a := result.Analysis

	source := models.SourceAuto
	if entry == EntryManual {
		source = models.SourceCamera
		if !modality.HasVideo() {
			source = models.SourceVoice
		}
	}

	analysisType := "multimodal"
	switch {
	case a.Fallback:
		analysisType = "heuristic"
		fallbackTotal.Inc()
	case modality == capture.AudioOnly:
		analysisType = "voice"
	case modality == capture.VideoOnly:
		analysisType = "face"
	}

	d := mood.Detection{
		Mood:         a.MergedEmotion,
		Confidence:   a.MergedConfidence,
		Source:       source,
		AnalysisType: analysisType,
		Agreement:    a.Agreement,
		Valence:      a.Valence,
		Arousal:      a.Arousal,
		Explanation:  a.Explanation,
		Fallback:     a.Fallback,
		Tracks:       result.Recommendations,
	}
	if p := a.VoicePrediction; p != nil {
		d.VoiceEmotion, d.VoiceConfidence = p.Emotion, p.Confidence
	}
	if p := a.FacePrediction; p != nil {
		d.FaceEmotion, d.FaceConfidence = p.Emotion, p.Confidence
	}
	return d
}

func (s *Scheduler) withinCooldown() bool {
	var marker models.EngineMarker
	if err := s.db.DB.First(&marker, 1).Error; err != nil {
		return false
	}
	return s.clock.Now().Sub(marker.LastDetected) < s.cfg.Cooldown()
}

// markDetected advances the cooldown marker. Only successful runs count.
func (s *Scheduler) markDetected() {
	now := s.clock.Now()
	s.db.DB.Model(&models.EngineMarker{ID: 1}).Updates(map[string]interface{}{
		"last_detected": now,
		"updated_at":    now,
	})
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	if state != StateFailed {
		s.lastError = ""
	}
	s.mu.Unlock()
}

func (s *Scheduler) fail(message string) {
	s.mu.Lock()
	s.state = StateFailed
	s.lastError = message
	s.mu.Unlock()

	// Hardware must never stay open past a failed run.
	s.acquirer.ReleaseCurrent()
	s.notifier.Failure("Detection failed: " + message)
	log.Printf("❌ Detection failed: %s", message)
}
