package inference

import (
	"mood-engine/internal/models"
)

// wireResponse covers every shape the service answers with:
//
//   - single-modal:        {"success", "prediction": {...}}
//   - multimodal/fusion:   {"success", "mode", "analysis": {"merged_emotion", ...},
//     "recommendation_emotion", "recommendations"}
//
// Voice-only and face-only fallbacks from the multimodal endpoints reuse the
// "analysis" envelope with only one sub-prediction filled in.
type wireResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Mode    string `json:"mode,omitempty"`

	Prediction *wirePrediction `json:"prediction,omitempty"`
	Analysis   *wireAnalysis   `json:"analysis,omitempty"`

	RecommendationEmotion string         `json:"recommendation_emotion,omitempty"`
	Recommendations       []models.Track `json:"recommendations,omitempty"`
}

type wirePrediction struct {
	Emotion     string             `json:"emotion"`
	Confidence  float64            `json:"confidence"`
	AllEmotions map[string]float64 `json:"all_emotions,omitempty"`
}

type wireAnalysis struct {
	MergedEmotion    string          `json:"merged_emotion"`
	MergedConfidence float64         `json:"merged_confidence"`
	Agreement        string          `json:"agreement,omitempty"`
	AgreementScore   float64         `json:"agreement_score,omitempty"`
	Explanation      string          `json:"explanation,omitempty"`
	Note             string          `json:"note,omitempty"`
	VoicePrediction  *wirePrediction `json:"voice_prediction,omitempty"`
	FacePrediction   *wirePrediction `json:"face_prediction,omitempty"`
}

// normalize folds any successful wire shape into one MultimodalAnalysis.
func normalize(raw *wireResponse) *Result {
	analysis := &MultimodalAnalysis{}

	switch {
	case raw.Analysis != nil:
		a := raw.Analysis
		analysis.MergedEmotion = a.MergedEmotion
		analysis.MergedConfidence = clamp01(a.MergedConfidence)
		analysis.Agreement = a.Agreement
		analysis.AgreementScore = clamp01(a.AgreementScore)
		analysis.Explanation = a.Explanation
		if analysis.Explanation == "" {
			analysis.Explanation = a.Note
		}
		analysis.VoicePrediction = toModal(a.VoicePrediction)
		analysis.FacePrediction = toModal(a.FacePrediction)

		// Single-modality envelopes leave the merged fields empty; promote
		// whichever sub-prediction is present.
		if analysis.MergedEmotion == "" {
			if p := analysis.VoicePrediction; p != nil {
				analysis.MergedEmotion = p.Emotion
				analysis.MergedConfidence = p.Confidence
			} else if p := analysis.FacePrediction; p != nil {
				analysis.MergedEmotion = p.Emotion
				analysis.MergedConfidence = p.Confidence
			}
		}

		// Both modalities but no server-side agreement: classify locally.
		if analysis.Agreement == "" && analysis.VoicePrediction != nil && analysis.FacePrediction != nil {
			analysis.Agreement, analysis.AgreementScore = ClassifyAgreement(
				analysis.VoicePrediction.Emotion, analysis.VoicePrediction.Confidence,
				analysis.FacePrediction.Emotion, analysis.FacePrediction.Confidence,
			)
		}

	case raw.Prediction != nil:
		p := toModal(raw.Prediction)
		analysis.MergedEmotion = p.Emotion
		analysis.MergedConfidence = p.Confidence
		analysis.VoicePrediction = p
		analysis.Explanation = "Voice-only analysis."
	}

	if analysis.MergedEmotion == "" {
		analysis.MergedEmotion = "neutral"
	}
	analysis.Valence, analysis.Arousal = ValenceArousal(analysis.MergedEmotion, analysis.MergedConfidence)

	return &Result{
		Success:         true,
		Analysis:        analysis,
		Recommendations: raw.Recommendations,
	}
}

func toModal(p *wirePrediction) *ModalPrediction {
	if p == nil {
		return nil
	}
	return &ModalPrediction{
		Emotion:     p.Emotion,
		Confidence:  clamp01(p.Confidence),
		AllEmotions: p.AllEmotions,
	}
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
