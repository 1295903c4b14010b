package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CodeRateLimiter limita cuántos códigos se emiten por email dentro de una ventana.
// Un error indica que el backend no respondió; el llamador decide si deja pasar.
type CodeRateLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

type memoryCodeRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	now       func() time.Time
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewCodeRateLimiter crea un limitador en memoria, válido para una sola instancia.
func NewCodeRateLimiter(window time.Duration, max int) CodeRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryCodeRateLimiter{
		window: window,
		max:    max,
		now:    func() time.Time { return time.Now().UTC() },
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryCodeRateLimiter) Allow(_ context.Context, email string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return false, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	l.sweep(now, cutoff)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false, nil
	}
	l.hits[key] = append(kept, now)
	return true, nil
}

// sweep borra, como mucho una vez por ventana, los emails sin emisiones vigentes.
func (l *memoryCodeRateLimiter) sweep(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}
