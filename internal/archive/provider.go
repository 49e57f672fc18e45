// Package archive optionally retains raw captures for offline inspection.
// Archiving is best-effort: a failed upload is logged, never allowed to fail
// the detection pipeline.
package archive

import (
	"io"
	"time"
)

// Provider is the storage backend a capture gets written to.
type Provider interface {
	Put(key string, body io.ReadSeeker, contentType string) error
	List(prefix string) ([]string, error)
	Delete(key string) error
}

// Key builds the archive object name for a capture.
func Key(modality string, at time.Time) string {
	return "captures/" + at.UTC().Format("2006/01/02/150405") + "-" + modality + ".webm"
}
