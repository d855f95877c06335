package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// responseLimiter keeps the last response time per chat or post key.
// A key that is reserved but not yet committed is treated as busy so two
// concurrent handlers can never both pass the cooldown check.
type responseLimiter struct {
	last     map[string]time.Time
	reserved map[string]struct{}
	mu       sync.Mutex
	now      func() time.Time
	logger   zerolog.Logger
}

// RecordingLimiter is a ResponseLimiter that also exposes the recorded
// response times
type RecordingLimiter interface {
	domain.ResponseLimiter
	Last(key string) (time.Time, bool)
}

// NewResponseLimiter creates an in-memory limiter using the wall clock
func NewResponseLimiter(logger zerolog.Logger) domain.ResponseLimiter {
	return NewResponseLimiterWithClock(time.Now, logger)
}

// NewResponseLimiterWithClock creates a limiter reading time from now
func NewResponseLimiterWithClock(now func() time.Time, logger zerolog.Logger) RecordingLimiter {
	return newResponseLimiter(now, logger)
}

func newResponseLimiter(now func() time.Time, logger zerolog.Logger) *responseLimiter {
	return &responseLimiter{
		last:     make(map[string]time.Time),
		reserved: make(map[string]struct{}),
		now:      now,
		logger:   logger.With().Str("component", "response_limiter").Logger(),
	}
}

// Allow reports whether key has no response recorded within window
func (l *responseLimiter) Allow(key string, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.allowLocked(key, window)
}

// Reserve checks the cooldown and claims key in one step
func (l *responseLimiter) Reserve(key string, window time.Duration) (domain.Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.reserved[key]; busy {
		l.logger.Debug().Str("key", key).Msg("key already reserved")
		return nil, false
	}
	if !l.allowLocked(key, window) {
		return nil, false
	}

	l.reserved[key] = struct{}{}
	return &reservation{limiter: l, key: key}, true
}

// Last returns the recorded response time for key
func (l *responseLimiter) Last(key string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.last[key]
	return t, ok
}

func (l *responseLimiter) allowLocked(key string, window time.Duration) bool {
	last, ok := l.last[key]
	if !ok {
		return true
	}
	elapsed := l.now().Sub(last)
	if elapsed < window {
		l.logger.Debug().
			Str("key", key).
			Dur("elapsed", elapsed).
			Dur("window", window).
			Msg("cooldown active")
		return false
	}
	return true
}

// setIfLater records t for key unless a later time is already stored
func (l *responseLimiter) setIfLater(key string, t time.Time) bool {
	current, exists := l.last[key]
	if !exists || t.After(current) {
		l.last[key] = t
		return true
	}
	return false
}

func (l *responseLimiter) release(key string, commit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.reserved, key)
	if commit && l.setIfLater(key, l.now()) {
		l.logger.Debug().Str("key", key).Msg("recorded response time")
	}
}

type reservation struct {
	limiter *responseLimiter
	key     string
	once    sync.Once
}

// Commit records now as the response time for the key
func (r *reservation) Commit() {
	r.once.Do(func() { r.limiter.release(r.key, true) })
}

// Cancel frees the key without recording a response
func (r *reservation) Cancel() {
	r.once.Do(func() { r.limiter.release(r.key, false) })
}
