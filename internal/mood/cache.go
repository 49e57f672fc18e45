package mood

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/gorm/clause"

	database "mood-engine/internal/db"
	"mood-engine/internal/models"
)

// Cache holds fetched recommendation tracks per mood label with a TTL.
// It is passive: eviction on mood change is the consumer's call, driven by
// bus notifications. Concurrent fills for the same mood are deduplicated so
// a burst of readers triggers one fetch, not many.
type Cache struct {
	db  *database.Client
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	pending map[string]chan struct{}
}

func NewCache(db *database.Client, ttl time.Duration) *Cache {
	return &Cache{
		db:      db,
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[string]chan struct{}),
	}
}

// Get returns the cached tracks for a mood. An entry older than the TTL is a
// miss, never a stale hit.
func (c *Cache) Get(moodKey string) ([]models.Track, bool) {
	var entry models.RecommendationEntry
	if err := c.db.DB.Where("mood_key = ?", moodKey).First(&entry).Error; err != nil {
		return nil, false
	}
	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, false
	}
	var tracks []models.Track
	if err := json.Unmarshal([]byte(entry.Tracks), &tracks); err != nil {
		log.Printf("⚠️ Discarding unreadable cache entry for %q: %v", moodKey, err)
		c.Evict(moodKey)
		return nil, false
	}
	return tracks, true
}

// Put stores tracks for a mood, replacing any prior entry.
func (c *Cache) Put(moodKey string, tracks []models.Track) error {
	data, err := json.Marshal(tracks)
	if err != nil {
		return err
	}
	entry := models.RecommendationEntry{
		MoodKey:  moodKey,
		Tracks:   string(data),
		CachedAt: c.now(),
	}
	return c.db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mood_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"tracks", "cached_at", "updated_at"}),
	}).Create(&entry).Error
}

// Evict drops one mood's entry.
func (c *Cache) Evict(moodKey string) {
	c.db.DB.Where("mood_key = ?", moodKey).Delete(&models.RecommendationEntry{})
}

// GetOrFill reads through the cache, running fetch on a miss. Concurrent
// callers for the same mood wait for the first fetch instead of duplicating it.
func (c *Cache) GetOrFill(moodKey string, fetch func() ([]models.Track, error)) ([]models.Track, error) {
	if tracks, ok := c.Get(moodKey); ok {
		return tracks, nil
	}

	c.mu.Lock()
	if waitCh, filling := c.pending[moodKey]; filling {
		c.mu.Unlock()
		<-waitCh // another caller is already fetching this mood
		if tracks, ok := c.Get(moodKey); ok {
			return tracks, nil
		}
		return nil, fmt.Errorf("recommendation fetch for %q failed", moodKey)
	}
	done := make(chan struct{})
	c.pending[moodKey] = done
	c.mu.Unlock()

	defer func() {
		close(done)
		c.mu.Lock()
		delete(c.pending, moodKey)
		c.mu.Unlock()
	}()

	log.Printf("📥 Recommendation cache miss for %q", moodKey)
	tracks, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := c.Put(moodKey, tracks); err != nil {
		log.Printf("⚠️ Failed to cache recommendations for %q: %v", moodKey, err)
	}
	return tracks, nil
}

// SetClock swaps the time source for tests.
func (c *Cache) SetClock(now func() time.Time) { c.now = now }
