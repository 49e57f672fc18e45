package inference

import "math"

// compatibility scores how related two different emotions are, 0 (conflicting)
// to 1 (identical). Mirrors the matrix the fusion model was trained against.
var compatibility = map[string]map[string]float64{
	"angry":    {"angry": 1.0, "disgust": 0.6, "fear": 0.3, "happy": 0.0, "neutral": 0.2, "sad": 0.4, "surprise": 0.3},
	"disgust":  {"angry": 0.6, "disgust": 1.0, "fear": 0.4, "happy": 0.0, "neutral": 0.2, "sad": 0.3, "surprise": 0.2},
	"fear":     {"angry": 0.3, "disgust": 0.4, "fear": 1.0, "happy": 0.0, "neutral": 0.2, "sad": 0.5, "surprise": 0.7},
	"happy":    {"angry": 0.0, "disgust": 0.0, "fear": 0.0, "happy": 1.0, "neutral": 0.4, "sad": 0.0, "surprise": 0.5},
	"neutral":  {"angry": 0.2, "disgust": 0.2, "fear": 0.2, "happy": 0.4, "neutral": 1.0, "sad": 0.3, "surprise": 0.3},
	"sad":      {"angry": 0.4, "disgust": 0.3, "fear": 0.5, "happy": 0.0, "neutral": 0.3, "sad": 1.0, "surprise": 0.2},
	"surprise": {"angry": 0.3, "disgust": 0.2, "fear": 0.7, "happy": 0.5, "neutral": 0.3, "sad": 0.2, "surprise": 1.0},
}

const strongConfidence = 0.75

// ClassifyAgreement rates how well the voice and face predictions line up.
// Strong: same emotion, both confident. Moderate: same emotion, lower
// confidence. Conflict: different emotions with close confidences (neither
// modality can be trusted over the other). Weak: different emotions where one
// modality is clearly more certain. The score always carries the
// compatibility of the two labels.
func ClassifyAgreement(voiceEmotion string, voiceConf float64, faceEmotion string, faceConf float64) (string, float64) {
	if voiceEmotion == faceEmotion {
		if voiceConf >= strongConfidence && faceConf >= strongConfidence {
			return AgreementStrong, 1.0
		}
		return AgreementModerate, (voiceConf + faceConf) / 2
	}

	score := Compatibility(voiceEmotion, faceEmotion)
	if math.Abs(voiceConf-faceConf) <= 0.15 {
		return AgreementConflict, score
	}
	return AgreementWeak, score
}

// Compatibility looks up how related two emotion labels are.
func Compatibility(a, b string) float64 {
	if row, ok := compatibility[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	return 0
}
