package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mood-engine/internal/models"
	"mood-engine/internal/mood"
	"mood-engine/internal/scheduler"
)

// GetState returns the current mood (absent when stale), the pipeline state,
// and any live transient notice.
func (s *Server) GetState(c *gin.Context) {
	state, lastError := s.sched.State()

	payload := gin.H{
		"pipeline":      state,
		"authenticated": s.sessions.Authenticated(),
	}
	if lastError != "" {
		payload["last_error"] = lastError
	}

	if current, ok := s.store.Read(); ok {
		payload["mood"] = current
	} else {
		payload["mood"] = nil
	}

	if notice, ok := s.notifier.Current(); ok {
		payload["notice"] = notice
	}

	c.JSON(http.StatusOK, payload)
}

// GetHistory returns the trailing detections, most recent first.
// Query Params: limit (default from config)
func (s *Server) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := s.store.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
}

// GetStats aggregates detection distribution over the requested window.
func (s *Server) GetStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	stats, err := s.store.Stats(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetRecommendations serves tracks for a mood through the read-through cache.
func (s *Server) GetRecommendations(c *gin.Context) {
	moodKey := c.Param("mood")
	tracks, err := s.cache.GetOrFill(moodKey, func() ([]models.Track, error) {
		return s.inference.MoodRecommendations(c.Request.Context(), moodKey)
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mood": moodKey, "count": len(tracks), "data": tracks})
}

// TriggerDetect starts a detection run. ?passive=true marks it as passive
// revalidation, which the cooldown may suppress.
func (s *Server) TriggerDetect(c *gin.Context) {
	entry := scheduler.EntryManual
	if c.Query("passive") == "true" {
		entry = scheduler.EntryPassive
	}
	ran := s.sched.Trigger(entry)
	state, lastError := s.sched.State()
	c.JSON(http.StatusAccepted, gin.H{"ran": ran, "pipeline": state, "last_error": lastError})
}

// AnalyzeMultimodal accepts a separately captured audio clip and still image,
// submits them, and commits the result. This is the dedicated still-image
// path; nothing manufactures fake video out of a photo.
func (s *Server) AnalyzeMultimodal(c *gin.Context) {
	audio := formFileBytes(c, "audio_file")
	image := formFileBytes(c, "image_file")
	if audio == nil && image == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide at least one of audio_file or image_file"})
		return
	}

	result := s.inference.AnalyzeMultimodal(c.Request.Context(), audio, image)
	a := result.Analysis

	source := models.SourceCamera
	if image == nil {
		source = models.SourceVoice
	}

	detection := mood.Detection{
		Mood:         a.MergedEmotion,
		Confidence:   a.MergedConfidence,
		Source:       source,
		AnalysisType: "multimodal",
		Agreement:    a.Agreement,
		Valence:      a.Valence,
		Arousal:      a.Arousal,
		Explanation:  a.Explanation,
		Fallback:     a.Fallback,
		Tracks:       result.Recommendations,
	}
	if p := a.VoicePrediction; p != nil {
		detection.VoiceEmotion, detection.VoiceConfidence = p.Emotion, p.Confidence
	}
	if p := a.FacePrediction; p != nil {
		detection.FaceEmotion, detection.FaceConfidence = p.Emotion, p.Confidence
	}

	if err := s.store.Commit(detection); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":        a,
		"recommendations": result.Recommendations,
	})
}

// SetManualMood commits a user-chosen mood directly, no hardware involved.
func (s *Server) SetManualMood(c *gin.Context) {
	var body struct {
		Mood string `json:"mood" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mood is required"})
		return
	}

	err := s.store.Commit(mood.Detection{
		Mood:         body.Mood,
		Confidence:   1.0,
		Source:       models.SourceManual,
		AnalysisType: "manual",
		Explanation:  "Selected by the user.",
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mood": body.Mood})
}

// SignIn stores the session token; the scheduler reacts to the transition.
func (s *Server) SignIn(c *gin.Context) {
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	s.sessions.SignIn(body.Token)
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

func (s *Server) SignOut(c *gin.Context) {
	s.sessions.SignOut()
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (s *Server) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"auto_detect": s.sessions.AutoDetectEnabled()})
}

func (s *Server) SetPreferences(c *gin.Context) {
	var body struct {
		AutoDetect *bool `json:"auto_detect" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auto_detect is required"})
		return
	}
	s.sessions.SetAutoDetect(*body.AutoDetect)
	c.JSON(http.StatusOK, gin.H{"auto_detect": *body.AutoDetect})
}

func (s *Server) ClearHistory(c *gin.Context) {
	if err := s.store.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func formFileBytes(c *gin.Context, field string) []byte {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil
	}
	return data
}
