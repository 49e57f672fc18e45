package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mood-engine/internal/models"
)

// TokenSource yields the current session bearer token, or "" when signed out.
type TokenSource func() string

// Client talks to the remote emotion-inference service. Analysis is permitted
// anonymously; the bearer token only enables server-side history persistence.
type Client struct {
	baseURL    string
	http       *http.Client
	token      TokenSource
	fallback   *Heuristic
	trackLimit int
}

func NewClient(baseURL string, timeout time.Duration, trackLimit int, token TokenSource, fallback *Heuristic) *Client {
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeout},
		token:      token,
		fallback:   fallback,
		trackLimit: trackLimit,
	}
}

// AnalyzeAudio submits a single audio capture to /analyze-voice.
func (c *Client) AnalyzeAudio(ctx context.Context, audio []byte, filename string) *Result {
	body, contentType, err := multipartBody(map[string]filePart{
		"audio_file": {name: filename, data: audio},
	})
	if err != nil {
		return c.recover("voice", err)
	}
	raw, err := c.post(ctx, fmt.Sprintf("%s/analyze-voice", c.baseURL), body, contentType)
	if err != nil {
		return c.recover("voice", err)
	}
	return normalize(raw)
}

// AnalyzeVideo submits a recorded video (with or without an audio track)
// to /analyze. The server extracts audio and face frames itself.
func (c *Client) AnalyzeVideo(ctx context.Context, video []byte, filename string) *Result {
	body, contentType, err := multipartBody(map[string]filePart{
		"file": {name: filename, data: video},
	})
	if err != nil {
		return c.recover("video", err)
	}
	raw, err := c.post(ctx, fmt.Sprintf("%s/analyze?limit=%d", c.baseURL, c.trackLimit), body, contentType)
	if err != nil {
		return c.recover("video", err)
	}
	return normalize(raw)
}

// AnalyzeMultimodal submits a separately captured audio clip and still image
// to /analyze-voice-and-face. Either part may be nil.
func (c *Client) AnalyzeMultimodal(ctx context.Context, audio, image []byte) *Result {
	parts := map[string]filePart{}
	if len(audio) > 0 {
		parts["audio_file"] = filePart{name: "capture.wav", data: audio}
	}
	if len(image) > 0 {
		parts["image_file"] = filePart{name: "frame.jpg", data: image}
	}
	body, contentType, err := multipartBody(parts)
	if err != nil {
		return c.recover("multimodal", err)
	}
	raw, err := c.post(ctx, fmt.Sprintf("%s/analyze-voice-and-face?limit=%d", c.baseURL, c.trackLimit), body, contentType)
	if err != nil {
		return c.recover("multimodal", err)
	}
	return normalize(raw)
}

type filePart struct {
	name string
	data []byte
}

func multipartBody(parts map[string]filePart) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for field, part := range parts {
		fw, err := w.CreateFormFile(field, part.name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(part.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, url string, body io.Reader, contentType string) (*wireResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	if token := c.usableToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference service returned %d", resp.StatusCode)
	}

	var raw wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !raw.Success {
		return nil, fmt.Errorf("inference service: %s", raw.Error)
	}
	return &raw, nil
}

// usableToken returns the session token unless it is already expired.
// The engine never validates signatures; that is the service's job.
func (c *Client) usableToken() string {
	if c.token == nil {
		return ""
	}
	token := c.token()
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return token // not a JWT; pass it through
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		log.Println("⚠️ Session token expired; submitting anonymously")
		return ""
	}
	return token
}

// MoodRecommendations fetches tracks for a mood label. Unlike the analysis
// entry points this can fail: there is nothing sensible to synthesize locally,
// and the cache layer treats an error as a plain miss.
func (c *Client) MoodRecommendations(ctx context.Context, moodKey string) ([]models.Track, error) {
	url := fmt.Sprintf("%s/recommendations/mood/%s?limit=%d", c.baseURL, moodKey, c.trackLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token := c.usableToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("recommendation service returned %d", resp.StatusCode)
	}

	var raw struct {
		Success         bool           `json:"success"`
		Error           string         `json:"error,omitempty"`
		Recommendations []models.Track `json:"recommendations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if !raw.Success {
		return nil, fmt.Errorf("recommendation service: %s", raw.Error)
	}
	return raw.Recommendations, nil
}

// recover swallows the transport failure behind the local heuristic so the
// caller always has a plausible mood to show.
func (c *Client) recover(mode string, err error) *Result {
	log.Printf("⚠️ Inference (%s) unavailable, using local fallback: %v", mode, err)
	return c.fallback.Result()
}
