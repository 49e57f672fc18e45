package inference

// Valence/arousal coordinates per canonical emotion. Neutral sits at the
// origin; uncertainty pulls every other emotion toward it.
var emotionCoordinates = map[string][2]float64{
	"happy":    {0.9, 0.7},
	"sad":      {-0.7, -0.4},
	"angry":    {-0.7, 0.8},
	"fear":     {-0.8, 0.9},
	"disgust":  {-0.8, 0.3},
	"surprise": {0.6, 0.8},
	"neutral":  {0.0, 0.0},
}

var emotionAliases = map[string]string{
	"calm":      "neutral",
	"relaxed":   "neutral",
	"bored":     "sad",
	"tired":     "sad",
	"excited":   "surprise",
	"energetic": "happy",
	"stressed":  "fear",
}

// ValenceArousal maps an emotion label onto the valence/arousal plane,
// scaled by confidence so shaky detections stay near the center.
func ValenceArousal(emotion string, confidence float64) (float64, float64) {
	key := emotion
	if canonical, ok := emotionAliases[key]; ok {
		key = canonical
	}
	coords, ok := emotionCoordinates[key]
	if !ok {
		coords = emotionCoordinates["neutral"]
	}

	confidence = clamp01(confidence)
	scale := 0.2 + confidence*0.8

	return coords[0] * scale, coords[1] * scale
}
