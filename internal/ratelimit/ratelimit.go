// Package ratelimit implements a per-chat command cooldown.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum pause between allowed commands per chat.
const DefaultCooldown = 5 * time.Second

// Limiter is a fixed-window per-chat throttle. The first call for a chat is
// allowed; further calls are rejected until the cooldown has elapsed since
// the last allowed call. Rejected calls do not extend the window.
//
// Entries are never evicted, so memory grows with the number of distinct
// chats seen over the process lifetime.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	now      func() time.Time
	last     map[int64]time.Time
}

// New creates a Limiter with the given cooldown.
func New(cooldown time.Duration) *Limiter {
	return &Limiter{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[int64]time.Time),
	}
}

// NewWithClock creates a Limiter with a custom clock (useful for testing).
func NewWithClock(cooldown time.Duration, now func() time.Time) *Limiter {
	l := New(cooldown)
	l.now = now
	return l
}

// Allow reports whether the chat may run a command now. An allowed call
// records the current time as the start of the next cooldown window.
func (l *Limiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.last[chatID]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[chatID] = now
	return true
}
