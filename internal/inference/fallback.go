package inference

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Heuristic manufactures a plausible mood when the service is unreachable.
// Weights come from a daypart profile file so the guesses follow the same
// rhythm a person's day does; there is a built-in profile when no file exists.
type Heuristic struct {
	profiles map[string][]weightedEmotion
	now      func() time.Time
}

type weightedEmotion struct {
	Emotion string  `yaml:"emotion"`
	Weight  float64 `yaml:"weight"`
}

type profileFile struct {
	Dayparts map[string][]weightedEmotion `yaml:"dayparts"`
}

var defaultProfiles = map[string][]weightedEmotion{
	// 05:00-11:59
	"morning": {{"neutral", 4}, {"happy", 3}, {"sad", 1}},
	// 12:00-17:59
	"afternoon": {{"happy", 3}, {"neutral", 3}, {"surprise", 1}},
	// 18:00-22:59
	"evening": {{"happy", 2}, {"neutral", 3}, {"sad", 2}},
	// 23:00-04:59
	"night": {{"neutral", 3}, {"sad", 2}, {"fear", 1}},
}

// NewHeuristic loads daypart weights from path, falling back to the built-in
// profile when the file is absent or malformed.
func NewHeuristic(path string) *Heuristic {
	h := &Heuristic{profiles: defaultProfiles, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		log.Printf("⚠️ Bad mood profile file %s, using defaults: %v", path, err)
		return h
	}
	if len(pf.Dayparts) > 0 {
		h.profiles = pf.Dayparts
	}
	return h
}

// Result synthesizes a full analysis: weighted emotion pick for the current
// daypart, a mid-band confidence, and an explanation that is honest about the
// result being a guess.
func (h *Heuristic) Result() *Result {
	part := daypart(h.now().Hour())
	weights, ok := h.profiles[part]
	if !ok || len(weights) == 0 {
		weights = defaultProfiles["morning"]
	}

	emotion := pickWeighted(weights)
	confidence := 0.35 + rand.Float64()*0.3 // deliberately modest
	valence, arousal := ValenceArousal(emotion, confidence)

	analysis := &MultimodalAnalysis{
		MergedEmotion:    emotion,
		MergedConfidence: confidence,
		Explanation:      fmt.Sprintf("Emotion service unreachable; estimated %q from typical %s patterns.", emotion, part),
		Valence:          valence,
		Arousal:          arousal,
		Fallback:         true,
	}

	return &Result{Success: true, Analysis: analysis}
}

func daypart(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 23:
		return "evening"
	default:
		return "night"
	}
}

func pickWeighted(weights []weightedEmotion) string {
	total := 0.0
	for _, w := range weights {
		total += w.Weight
	}
	if total <= 0 {
		return "neutral"
	}
	r := rand.Float64() * total
	for _, w := range weights {
		r -= w.Weight
		if r <= 0 {
			return w.Emotion
		}
	}
	return weights[len(weights)-1].Emotion
}
