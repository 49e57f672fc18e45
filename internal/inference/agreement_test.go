package inference

import (
	"math"
	"testing"
)

func TestClassifyAgreement(t *testing.T) {
	tests := []struct {
		name      string
		voice     string
		voiceConf float64
		face      string
		faceConf  float64
		want      string
		wantScore float64
	}{
		{"StrongBothConfident", "happy", 0.8, "happy", 0.9, AgreementStrong, 1.0},
		{"StrongAtThreshold", "sad", 0.75, "sad", 0.75, AgreementStrong, 1.0},
		{"ModerateSameEmotion", "happy", 0.6, "happy", 0.7, AgreementModerate, 0.65},
		{"ModerateOneWeak", "angry", 0.9, "angry", 0.4, AgreementModerate, 0.65},
		{"ConflictOpposites", "happy", 0.7, "angry", 0.7, AgreementConflict, 0.0},
		{"ConflictCloseConfidence", "happy", 0.6, "sad", 0.7, AgreementConflict, 0.0},
		{"ConflictCompatiblePair", "fear", 0.5, "surprise", 0.5, AgreementConflict, 0.7},
		{"ConflictRelatedNegatives", "angry", 0.5, "disgust", 0.55, AgreementConflict, 0.6},
		{"WeakConfidenceGap", "happy", 0.9, "sad", 0.3, AgreementWeak, 0.0},
		{"WeakDespiteRelatedLabels", "angry", 0.9, "disgust", 0.5, AgreementWeak, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, score := ClassifyAgreement(tt.voice, tt.voiceConf, tt.face, tt.faceConf)
			if got != tt.want {
				t.Errorf("Agreement = %s, want %s", got, tt.want)
			}
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("Score = %f, want %f", score, tt.wantScore)
			}
		})
	}
}

func TestCompatibilityMatrixSymmetric(t *testing.T) {
	for _, a := range Emotions {
		for _, b := range Emotions {
			if Compatibility(a, b) != Compatibility(b, a) {
				t.Errorf("Compatibility(%s, %s) is asymmetric", a, b)
			}
		}
	}
}

func TestCompatibilityUnknownEmotion(t *testing.T) {
	if Compatibility("bored", "happy") != 0 {
		t.Error("Unknown labels must score 0")
	}
}

func TestValenceArousal(t *testing.T) {
	tests := []struct {
		name        string
		emotion     string
		confidence  float64
		wantValence float64
		wantArousal float64
	}{
		{"HappyFullConfidence", "happy", 1.0, 0.9, 0.7},
		{"HappyHalfConfidence", "happy", 0.5, 0.54, 0.42},
		{"NeutralStaysAtOrigin", "neutral", 0.9, 0, 0},
		{"AngryNegativeValence", "angry", 1.0, -0.7, 0.8},
		{"ZeroConfidenceFloor", "fear", 0.0, -0.16, 0.18},
		{"AliasCalm", "calm", 1.0, 0, 0},
		{"AliasExcited", "excited", 1.0, 0.6, 0.8},
		{"UnknownTreatedAsNeutral", "melancholy", 1.0, 0, 0},
		{"ConfidenceClamped", "happy", 3.0, 0.9, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, a := ValenceArousal(tt.emotion, tt.confidence)
			if math.Abs(v-tt.wantValence) > 1e-9 || math.Abs(a-tt.wantArousal) > 1e-9 {
				t.Errorf("ValenceArousal(%s, %f) = (%f, %f), want (%f, %f)",
					tt.emotion, tt.confidence, v, a, tt.wantValence, tt.wantArousal)
			}
		})
	}
}
