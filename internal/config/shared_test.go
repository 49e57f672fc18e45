package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != ":8090" {
		t.Errorf("Port = %s, want :8090", cfg.Server.Port)
	}
	if cfg.Capture.RecordSeconds != 6 || cfg.Capture.SampleRate != 16000 {
		t.Errorf("Capture defaults = %ds/%dHz, want 6s/16000Hz",
			cfg.Capture.RecordSeconds, cfg.Capture.SampleRate)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %s, want sqlite", cfg.Database.Driver)
	}
	if !cfg.Detection.Enabled {
		t.Error("Detection should default to enabled")
	}

	// One canonical window per concern.
	if cfg.Interval() != 30*time.Minute {
		t.Errorf("Interval = %v, want 30m", cfg.Interval())
	}
	if cfg.Cooldown() != 30*time.Minute {
		t.Errorf("Cooldown = %v, want 30m", cfg.Cooldown())
	}
	if cfg.MoodFreshness() != 15*time.Minute {
		t.Errorf("MoodFreshness = %v, want 15m", cfg.MoodFreshness())
	}
	if cfg.CacheTTL() != 30*time.Minute {
		t.Errorf("CacheTTL = %v, want 30m", cfg.CacheTTL())
	}
	if cfg.RecordDuration() != 6*time.Second {
		t.Errorf("RecordDuration = %v, want 6s", cfg.RecordDuration())
	}
	if cfg.InitialDelay() != 5*time.Second {
		t.Errorf("InitialDelay = %v, want 5s", cfg.InitialDelay())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MOOD_SERVER_PORT", ":9999")
	t.Setenv("MOOD_DETECTION_INTERVAL_MINUTES", "10")
	t.Setenv("MOOD_INFERENCE_BASE_URL", "http://inference.local:8000")
	t.Setenv("MOOD_ARCHIVE_ENABLED", "true")

	cfg := Load()

	if cfg.Server.Port != ":9999" {
		t.Errorf("Port = %s, want :9999", cfg.Server.Port)
	}
	if cfg.Interval() != 10*time.Minute {
		t.Errorf("Interval = %v, want 10m", cfg.Interval())
	}
	if cfg.Inference.BaseURL != "http://inference.local:8000" {
		t.Errorf("BaseURL = %s", cfg.Inference.BaseURL)
	}
	if !cfg.Archive.Enabled {
		t.Error("Archive should be enabled by env")
	}
}
