package models

import (
	"time"

	"gorm.io/gorm"
)

// Detection sources.
const (
	SourceCamera = "camera"
	SourceVoice  = "voice"
	SourceAuto   = "auto"
	SourceManual = "manual"
)

// MoodState is the live "current mood" of the engine.
// There is ONE row in this table (ID=1).
type MoodState struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Mood       string    `json:"mood"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"` // camera, voice, auto, manual
	Agreement  string    `json:"agreement,omitempty"`
	Valence    float64   `json:"valence"`
	Arousal    float64   `json:"arousal"`
	DetectedAt time.Time `json:"detected_at"`
	UpdatedAt  time.Time `json:"-"`
}

// TableName overrides the default pluralization
func (MoodState) TableName() string {
	return "mood_state"
}

// MoodAnalysis records every completed detection (trailing history, capped by the store).
type MoodAnalysis struct {
	gorm.Model

	Mood            string  `gorm:"index"`
	Confidence      float64 // Clamped to [0,1] before it ever reaches the DB
	Source          string  `gorm:"index"`
	AnalysisType    string  // voice, face, multimodal, fusion
	VoiceEmotion    string
	VoiceConfidence float64
	FaceEmotion     string
	FaceConfidence  float64
	Agreement       string
	Valence         float64
	Arousal         float64
	Explanation     string
	Fallback        bool      // True when the result was synthesized locally
	DetectedAt      time.Time `gorm:"index"`
}

// RecommendationEntry caches fetched tracks per mood label.
// One row per mood; freshness is checked against CachedAt, never trusted blindly.
type RecommendationEntry struct {
	gorm.Model

	MoodKey  string    `gorm:"uniqueIndex;not null"`
	Tracks   string    // JSON-encoded []Track
	CachedAt time.Time `gorm:"index"`
}

// Track is the shape the inference service returns for recommendations.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	SpotifyURL string   `json:"spotify_url,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	Mood       string   `json:"mood,omitempty"`
}

// EngineMarker holds the "last successful auto-detection" cooldown timestamp.
// Single row (ID=1), written only on success.
type EngineMarker struct {
	ID           uint `gorm:"primaryKey"`
	LastDetected time.Time
	UpdatedAt    time.Time
}

func (EngineMarker) TableName() string {
	return "engine_marker"
}
