package archive

import (
	"bytes"
	"log"
	"time"

	"mood-engine/internal/capture"
	"mood-engine/internal/config"
)

// Archiver wires a Provider behind the pipeline. A nil Archiver is valid and
// does nothing, so the scheduler never branches on configuration.
type Archiver struct {
	provider Provider
	now      func() time.Time
}

// New builds an archiver from config, or nil when archiving is disabled.
func New(cfg *config.Config) *Archiver {
	if !cfg.Archive.Enabled {
		return nil
	}
	var provider Provider
	switch cfg.Archive.Provider {
	case "s3":
		p, err := NewS3Provider(cfg)
		if err != nil {
			log.Printf("⚠️ Capture archive disabled, S3 init failed: %v", err)
			return nil
		}
		provider = p
	default:
		provider = NewLocalProvider(cfg.Archive.Dir)
	}
	return &Archiver{provider: provider, now: time.Now}
}

// Save writes the capture in the background.
func (a *Archiver) Save(media *capture.RecordedMedia) {
	if a == nil {
		return
	}
	key := Key(string(media.Modality), a.now())
	data := media.Data
	go func() {
		if err := a.provider.Put(key, bytes.NewReader(data), media.MIMEType); err != nil {
			log.Printf("⚠️ Capture archive failed for %s: %v", key, err)
			return
		}
		log.Printf("🗄️ Capture archived: %s (%d bytes)", key, len(data))
	}()
}
