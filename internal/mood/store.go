package mood

import (
	"log"
	"time"

	"gorm.io/gorm"

	"mood-engine/internal/bus"
	database "mood-engine/internal/db"
	"mood-engine/internal/models"
)

// Detection is one resolved mood, ready to commit.
type Detection struct {
	Mood            string
	Confidence      float64
	Source          string
	AnalysisType    string
	VoiceEmotion    string
	VoiceConfidence float64
	FaceEmotion     string
	FaceConfidence  float64
	Agreement       string
	Valence         float64
	Arousal         float64
	Explanation     string
	Fallback        bool
	Tracks          []models.Track
}

// Store is the single source of truth for "current detected mood".
// The current value lives in one singleton row (ID=1); history is a capped
// trailing log, most recent first.
type Store struct {
	db           *database.Client
	eventBus     *bus.Bus
	freshness    time.Duration
	historyLimit int
	now          func() time.Time
}

func NewStore(db *database.Client, eventBus *bus.Bus, freshness time.Duration, historyLimit int) *Store {
	// Ensure the singleton row exists on startup
	db.DB.Exec("INSERT INTO mood_state (id, mood, confidence, source, detected_at, updated_at) VALUES (1, '', 0, '', ?, ?) ON CONFLICT (id) DO NOTHING",
		time.Unix(0, 0), time.Now())
	return &Store{
		db:           db,
		eventBus:     eventBus,
		freshness:    freshness,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// Commit overwrites the current mood, stamps now, appends history, and
// notifies every listener through the bus. Confidence is clamped before it
// touches the database. Committing the same mood twice refreshes the current
// row's timestamp without duplicating the history entry.
func (s *Store) Commit(d Detection) error {
	d.Confidence = clamp01(d.Confidence)
	now := s.now()

	err := s.db.DB.Model(&models.MoodState{ID: 1}).Updates(map[string]interface{}{
		"mood":        d.Mood,
		"confidence":  d.Confidence,
		"source":      d.Source,
		"agreement":   d.Agreement,
		"valence":     d.Valence,
		"arousal":     d.Arousal,
		"detected_at": now,
		"updated_at":  now,
	}).Error
	if err != nil {
		return err
	}

	if !s.isDuplicateOfLatest(d) {
		entry := models.MoodAnalysis{
			Mood:            d.Mood,
			Confidence:      d.Confidence,
			Source:          d.Source,
			AnalysisType:    d.AnalysisType,
			VoiceEmotion:    d.VoiceEmotion,
			VoiceConfidence: d.VoiceConfidence,
			FaceEmotion:     d.FaceEmotion,
			FaceConfidence:  d.FaceConfidence,
			Agreement:       d.Agreement,
			Valence:         d.Valence,
			Arousal:         d.Arousal,
			Explanation:     d.Explanation,
			Fallback:        d.Fallback,
			DetectedAt:      now,
		}
		if err := s.db.DB.Create(&entry).Error; err != nil {
			log.Printf("⚠️ Failed to append mood history: %v", err)
		}
		s.trimHistory()
	}

	s.eventBus.Publish(bus.MoodChange{
		Mood:       d.Mood,
		Confidence: d.Confidence,
		Source:     d.Source,
		DetectedAt: now,
		Tracks:     d.Tracks,
	})

	log.Printf("🎭 Mood committed: %s (%.0f%%, %s)", d.Mood, d.Confidence*100, d.Source)
	return nil
}

// Read returns the current detection, or absent when it is older than the
// freshness window. Stale state is never deleted, only ignored.
func (s *Store) Read() (*models.MoodState, bool) {
	var state models.MoodState
	if err := s.db.DB.First(&state, 1).Error; err != nil {
		return nil, false
	}
	if state.Mood == "" {
		return nil, false
	}
	if s.now().Sub(state.DetectedAt) > s.freshness {
		return nil, false
	}
	return &state, true
}

// History returns the trailing detections, most recent first.
func (s *Store) History(limit int) ([]models.MoodAnalysis, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	var entries []models.MoodAnalysis
	err := s.db.DB.Order("detected_at desc").Limit(limit).Find(&entries).Error
	return entries, err
}

// Stats aggregates the last `days` of detections: distribution, average
// confidence per mood, and per-analysis-type counts.
func (s *Store) Stats(days int) (map[string]interface{}, error) {
	since := s.now().AddDate(0, 0, -days)

	var entries []models.MoodAnalysis
	if err := s.db.DB.Where("detected_at >= ?", since).Find(&entries).Error; err != nil {
		return nil, err
	}

	distribution := map[string]int{}
	confidenceSum := map[string]float64{}
	types := map[string]int{}
	for _, e := range entries {
		distribution[e.Mood]++
		confidenceSum[e.Mood] += e.Confidence
		types[e.AnalysisType]++
	}

	avgConfidence := map[string]float64{}
	for mood, sum := range confidenceSum {
		avgConfidence[mood] = sum / float64(distribution[mood])
	}

	return map[string]interface{}{
		"period_days":        days,
		"total_analyses":     len(entries),
		"mood_distribution":  distribution,
		"average_confidence": avgConfidence,
		"analysis_types":     types,
	}, nil
}

// Clear wipes the trailing history. The current state row is kept; it simply
// ages out of its freshness window.
func (s *Store) Clear() error {
	return s.db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.MoodAnalysis{}).Error
}

// SetClock swaps the time source; tests use it to age state deterministically.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) isDuplicateOfLatest(d Detection) bool {
	var latest models.MoodAnalysis
	err := s.db.DB.Order("detected_at desc").First(&latest).Error
	if err != nil {
		return false
	}
	return latest.Mood == d.Mood &&
		latest.Source == d.Source &&
		latest.Confidence == d.Confidence &&
		latest.Fallback == d.Fallback
}

func (s *Store) trimHistory() {
	var count int64
	s.db.DB.Model(&models.MoodAnalysis{}).Count(&count)
	if count <= int64(s.historyLimit) {
		return
	}
	var cutoff models.MoodAnalysis
	if err := s.db.DB.Order("detected_at desc").Offset(s.historyLimit - 1).First(&cutoff).Error; err != nil {
		return
	}
	s.db.DB.Where("detected_at < ?", cutoff.DetectedAt).Delete(&models.MoodAnalysis{})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
