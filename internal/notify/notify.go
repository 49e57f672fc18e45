// Package notify tracks the transient, user-facing detection status:
// "detecting", "detected: <mood>", or "detection failed: <reason>".
// Notices auto-dismiss; failures linger longer than successes so the
// remediation text can actually be read.
package notify

import (
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`

	expiresAt time.Time
}

type Notifier struct {
	mu         sync.Mutex
	current    *Notice
	successTTL time.Duration
	failureTTL time.Duration
	now        func() time.Time
}

func New(successTTL, failureTTL time.Duration) *Notifier {
	return &Notifier{
		successTTL: successTTL,
		failureTTL: failureTTL,
		now:        time.Now,
	}
}

func (n *Notifier) Info(message string) {
	n.set(LevelInfo, message, n.successTTL)
}

func (n *Notifier) Success(message string) {
	n.set(LevelSuccess, message, n.successTTL)
}

func (n *Notifier) Failure(message string) {
	n.set(LevelError, message, n.failureTTL)
}

func (n *Notifier) set(level Level, message string, ttl time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	n.current = &Notice{
		Level:     level,
		Message:   message,
		At:        now,
		expiresAt: now.Add(ttl),
	}
}

// Current returns the live notice, or nothing once it has auto-dismissed.
func (n *Notifier) Current() (*Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil || n.now().After(n.current.expiresAt) {
		return nil, false
	}
	notice := *n.current
	return &notice, true
}

// SetClock swaps the time source for tests.
func (n *Notifier) SetClock(now func() time.Time) { n.now = now }
