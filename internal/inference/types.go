package inference

import "mood-engine/internal/models"

// Emotions the service can return, in the model's label order.
var Emotions = []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"}

// Agreement levels between the voice and face predictions.
const (
	AgreementStrong   = "strong"
	AgreementModerate = "moderate"
	AgreementWeak     = "weak"
	AgreementConflict = "conflict"
	AgreementFusion   = "fusion" // server-side learned fusion, no local classification
)

// ModalPrediction is one modality's view of the capture.
type ModalPrediction struct {
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions,omitempty"`
}

// MultimodalAnalysis is the single normalized shape every entry point resolves
// to, no matter which wire format the service answered with.
type MultimodalAnalysis struct {
	MergedEmotion    string           `json:"merged_emotion"`
	MergedConfidence float64          `json:"merged_confidence"`
	Agreement        string           `json:"agreement,omitempty"`
	AgreementScore   float64          `json:"agreement_score,omitempty"`
	Explanation      string           `json:"explanation,omitempty"`
	VoicePrediction  *ModalPrediction `json:"voice_prediction,omitempty"`
	FacePrediction   *ModalPrediction `json:"face_prediction,omitempty"`
	Valence          float64          `json:"valence"`
	Arousal          float64          `json:"arousal"`
	Fallback         bool             `json:"fallback,omitempty"`
}

// Result is what callers of the client receive. Success is true even when the
// service was unreachable: availability beats accuracy here, and the analysis
// is synthesized locally instead of surfacing a transport error.
type Result struct {
	Success         bool
	Analysis        *MultimodalAnalysis
	Recommendations []models.Track
	Error           string
}
