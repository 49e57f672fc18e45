package mood

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mood-engine/internal/bus"
	database "mood-engine/internal/db"
	"mood-engine/internal/models"
)

func testDB(t *testing.T) *database.Client {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.MoodState{},
		&models.MoodAnalysis{},
		&models.RecommendationEntry{},
		&models.EngineMarker{},
	); err != nil {
		t.Fatalf("Migration failed: %v", err)
	}
	return &database.Client{DB: db}
}

func testStore(t *testing.T, historyLimit int) (*Store, *bus.Bus) {
	t.Helper()
	eventBus := bus.New(filepath.Join(t.TempDir(), "mood_state.json"))
	return NewStore(testDB(t), eventBus, 15*time.Minute, historyLimit), eventBus
}

func TestCommitAndRead(t *testing.T) {
	store, _ := testStore(t, 50)

	err := store.Commit(Detection{
		Mood:       "happy",
		Confidence: 0.82,
		Source:     models.SourceAuto,
		Agreement:  "strong",
		Valence:    0.8,
		Arousal:    0.62,
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	state, ok := store.Read()
	if !ok {
		t.Fatal("Expected a fresh current mood")
	}
	if state.Mood != "happy" || state.Confidence != 0.82 || state.Source != models.SourceAuto {
		t.Errorf("Unexpected state: %+v", state)
	}
	if state.Agreement != "strong" {
		t.Errorf("Agreement = %q, want strong", state.Agreement)
	}
}

func TestReadBeforeAnyDetection(t *testing.T) {
	store, _ := testStore(t, 50)
	if _, ok := store.Read(); ok {
		t.Error("Expected absent before the first commit")
	}
}

func TestReadRespectsFreshnessWindow(t *testing.T) {
	store, _ := testStore(t, 50)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })
	if err := store.Commit(Detection{Mood: "sad", Confidence: 0.6, Source: models.SourceAuto}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// 14 minutes later: still fresh.
	store.SetClock(func() time.Time { return base.Add(14 * time.Minute) })
	if _, ok := store.Read(); !ok {
		t.Error("Mood should still be fresh inside the window")
	}

	// 20 minutes later: stale, reported absent but not deleted.
	store.SetClock(func() time.Time { return base.Add(20 * time.Minute) })
	if _, ok := store.Read(); ok {
		t.Error("Stale mood must read as absent")
	}

	// A new commit brings it back.
	store.SetClock(func() time.Time { return base.Add(21 * time.Minute) })
	if err := store.Commit(Detection{Mood: "happy", Confidence: 0.7, Source: models.SourceAuto}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, ok := store.Read(); !ok {
		t.Error("Fresh commit should read back")
	}
}

func TestCommitClampsConfidence(t *testing.T) {
	store, _ := testStore(t, 50)
	if err := store.Commit(Detection{Mood: "angry", Confidence: 1.7, Source: models.SourceManual}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	state, ok := store.Read()
	if !ok {
		t.Fatal("Expected current mood")
	}
	if state.Confidence != 1 {
		t.Errorf("Confidence = %f, want clamped to 1", state.Confidence)
	}
}

func TestRepeatedCommitDoesNotDuplicateHistory(t *testing.T) {
	store, _ := testStore(t, 50)
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	d := Detection{Mood: "neutral", Confidence: 0.5, Source: models.SourceAuto}
	for i := 0; i < 3; i++ {
		store.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Minute) })
		if err := store.Commit(d); err != nil {
			t.Fatalf("Commit %d failed: %v", i, err)
		}
	}

	entries, err := store.History(0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 history entry for repeated identical commits, got %d", len(entries))
	}

	// The current row still tracks the latest timestamp.
	state, ok := store.Read()
	if !ok {
		t.Fatal("Expected current mood")
	}
	if !state.DetectedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("DetectedAt = %v, want refreshed to the last commit", state.DetectedAt)
	}
}

func TestHistoryCapAndOrder(t *testing.T) {
	store, _ := testStore(t, 5)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	moods := []string{"happy", "sad", "angry", "neutral", "fear", "surprise", "disgust", "happy"}
	for i, m := range moods {
		at := base.Add(time.Duration(i) * time.Minute)
		store.SetClock(func() time.Time { return at })
		if err := store.Commit(Detection{Mood: m, Confidence: 0.5 + float64(i)*0.01, Source: models.SourceAuto}); err != nil {
			t.Fatalf("Commit %d failed: %v", i, err)
		}
	}

	entries, err := store.History(0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected history capped at 5, got %d", len(entries))
	}
	if entries[0].Mood != "happy" || entries[4].Mood != "neutral" {
		t.Errorf("Expected most-recent-first order, got %s ... %s", entries[0].Mood, entries[4].Mood)
	}
}

func TestHistoryLimitParameter(t *testing.T) {
	store, _ := testStore(t, 50)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	for i, m := range []string{"happy", "sad", "angry"} {
		at := base.Add(time.Duration(i) * time.Minute)
		store.SetClock(func() time.Time { return at })
		store.Commit(Detection{Mood: m, Confidence: 0.5, Source: models.SourceAuto})
	}

	entries, err := store.History(2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}

func TestCommitPublishesToBus(t *testing.T) {
	store, eventBus := testStore(t, 50)
	changes := eventBus.Subscribe()

	tracks := []models.Track{{ID: "t1", Name: "Song", Mood: "happy"}}
	if err := store.Commit(Detection{Mood: "happy", Confidence: 0.9, Source: models.SourceAuto, Tracks: tracks}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	select {
	case change := <-changes:
		if change.Mood != "happy" || change.Source != models.SourceAuto {
			t.Errorf("Unexpected change: %+v", change)
		}
		if len(change.Tracks) != 1 || change.Tracks[0].ID != "t1" {
			t.Errorf("Tracks not carried on the bus: %+v", change.Tracks)
		}
	case <-time.After(time.Second):
		t.Fatal("No bus notification arrived")
	}
}

func TestStats(t *testing.T) {
	store, _ := testStore(t, 50)
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	commits := []Detection{
		{Mood: "happy", Confidence: 0.8, Source: models.SourceAuto, AnalysisType: "multimodal"},
		{Mood: "happy", Confidence: 0.6, Source: models.SourceAuto, AnalysisType: "voice"},
		{Mood: "sad", Confidence: 0.7, Source: models.SourceManual, AnalysisType: "voice"},
	}
	for i, d := range commits {
		at := base.Add(time.Duration(i) * time.Minute)
		store.SetClock(func() time.Time { return at })
		if err := store.Commit(d); err != nil {
			t.Fatalf("Commit %d failed: %v", i, err)
		}
	}
	store.SetClock(func() time.Time { return base.Add(time.Hour) })

	stats, err := store.Stats(7)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats["total_analyses"] != 3 {
		t.Errorf("total_analyses = %v, want 3", stats["total_analyses"])
	}
	dist := stats["mood_distribution"].(map[string]int)
	if dist["happy"] != 2 || dist["sad"] != 1 {
		t.Errorf("Unexpected distribution: %v", dist)
	}
	avg := stats["average_confidence"].(map[string]float64)
	if avg["happy"] != 0.7 {
		t.Errorf("average_confidence[happy] = %f, want 0.7", avg["happy"])
	}
	types := stats["analysis_types"].(map[string]int)
	if types["voice"] != 2 {
		t.Errorf("analysis_types[voice] = %d, want 2", types["voice"])
	}
}

func TestClearKeepsCurrentState(t *testing.T) {
	store, _ := testStore(t, 50)
	if err := store.Commit(Detection{Mood: "happy", Confidence: 0.8, Source: models.SourceAuto}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, _ := store.History(0)
	if len(entries) != 0 {
		t.Errorf("Expected empty history after clear, got %d entries", len(entries))
	}
	if _, ok := store.Read(); !ok {
		t.Error("Clear must not wipe the current state row")
	}
}
