// Package bus propagates mood changes. One Publish fans out to every
// in-process subscriber and to a versioned JSON state file that other engine
// processes watch, so consumers only ever subscribe in one place.
package bus

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mood-engine/internal/models"
)

// SchemaVersion guards the persisted shape. Older builds wrote a bare mood
// string; anything that does not parse as the current version is discarded.
const SchemaVersion = 2

// MoodChange is the payload every channel carries.
type MoodChange struct {
	SchemaVersion int            `json:"schema_version"`
	Mood          string         `json:"mood"`
	Confidence    float64        `json:"confidence"`
	Source        string         `json:"source"`
	DetectedAt    time.Time      `json:"detected_at"`
	Tracks        []models.Track `json:"recommendations,omitempty"`
}

type Bus struct {
	stateFile string

	mu            sync.Mutex
	subs          []chan MoodChange
	lastPublished time.Time

	watcher *fsnotify.Watcher
}

func New(stateFile string) *Bus {
	return &Bus{stateFile: stateFile}
}

// Subscribe returns a channel of mood changes. Slow subscribers drop events
// rather than stalling the publisher.
func (b *Bus) Subscribe() <-chan MoodChange {
	ch := make(chan MoodChange, 8)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel returned by Subscribe.
func (b *Bus) Unsubscribe(ch <-chan MoodChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if (<-chan MoodChange)(sub) == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the change to in-process subscribers and persists it for
// other processes to pick up.
func (b *Bus) Publish(change MoodChange) {
	change.SchemaVersion = SchemaVersion

	b.mu.Lock()
	// Recorded before the state-file write so the watcher can tell our own
	// write apart from a foreign process's and not deliver it twice.
	b.lastPublished = change.DetectedAt
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
			// Subscriber is not keeping up; the next change supersedes this one anyway.
		}
	}
	b.mu.Unlock()

	if err := b.writeState(change); err != nil {
		log.Printf("⚠️ Failed to persist mood state: %v", err)
	}
}

// writeState writes atomically: temp file then rename, so watchers never see
// a half-written document.
func (b *Bus) writeState(change MoodChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	tmp := b.stateFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, b.stateFile)
}

// ReadState loads the persisted change, discarding anything malformed or from
// another schema version instead of guessing at legacy shapes.
func ReadState(path string) (*MoodChange, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var change MoodChange
	if err := json.Unmarshal(data, &change); err != nil {
		log.Printf("⚠️ Discarding unreadable mood state file: %v", err)
		_ = os.Remove(path)
		return nil, false
	}
	if change.SchemaVersion != SchemaVersion || change.Mood == "" {
		log.Printf("⚠️ Discarding mood state file with schema %d", change.SchemaVersion)
		_ = os.Remove(path)
		return nil, false
	}
	return &change, true
}

// Watch starts observing the state file for writes from other engine
// processes and republishes them to local subscribers. Self-published writes
// are filtered by comparing timestamps against the last local publish.
func (b *Bus) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	b.watcher = watcher

	dir := filepath.Dir(b.stateFile)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		var lastSeen time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(b.stateFile) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				change, ok := ReadState(b.stateFile)
				if !ok || !change.DetectedAt.After(lastSeen) {
					continue
				}
				lastSeen = change.DetectedAt

				b.mu.Lock()
				if !change.DetectedAt.After(b.lastPublished) {
					// Echo of our own write; subscribers already got it.
					b.mu.Unlock()
					continue
				}
				for _, ch := range b.subs {
					select {
					case ch <- *change:
					default:
					}
				}
				b.mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ State watcher error: %v", err)
			}
		}
	}()

	return nil
}

// Close stops the cross-process watcher.
func (b *Bus) Close() {
	if b.watcher != nil {
		b.watcher.Close()
	}
}
