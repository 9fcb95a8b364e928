package ratelimit

import (
	"fmt"
	"net"
	"sync"
	"time"

	"pulse-server/internal/config"
	"pulse-server/internal/infrastructure/metrics"
)

// Tier names used as metric labels and bucket key prefixes.
const (
	TierIdentity = "identity"
	TierPreview  = "preview"
)

// Clock abstracts time for window arithmetic so tests can step it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// counting window per key. The count resets to 1 when the window has
// expired, it never decays gradually.
type window struct {
	count   int
	startAt time.Time
}

// Limiter enforces fixed one-minute request windows per key across two
// tiers: authenticated identities and anonymous preview traffic.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	clock   Clock

	identityLimit int
	previewLimit  int
}

func NewLimiter(cfg *config.Config, clock Clock) *Limiter {
	return &Limiter{
		windows:       make(map[string]*window),
		clock:         clock,
		identityLimit: cfg.TurnRateLimitPerMinute,
		previewLimit:  cfg.PreviewRateLimitPerMinute,
	}
}

// AllowIdentity gates one request for an authenticated caller.
func (l *Limiter) AllowIdentity(callerID string) bool {
	return l.allow(TierIdentity, "pid:"+callerID, l.identityLimit)
}

// AllowPreview gates one anonymous request, keyed by client IP plus a
// truncated conversation id so one address cannot spread load across many
// conversations unscored.
func (l *Limiter) AllowPreview(clientIP, conversationID string) bool {
	return l.allow(TierPreview, fmt.Sprintf("ip:%s:conv:%s", normalizeIP(clientIP), truncateID(conversationID)), l.previewLimit)
}

func (l *Limiter) allow(tier, key string, limit int) bool {
	if limit <= 0 {
		return true
	}
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.startAt) >= time.Minute {
		l.windows[key] = &window{count: 1, startAt: now}
		return true
	}
	if w.count >= limit {
		metrics.RateLimitRejectionsTotal.WithLabelValues(tier).Inc()
		return false
	}
	w.count++
	return true
}

// Prune drops windows idle for longer than maxAge. Called periodically from
// the cron runner.
func (l *Limiter) Prune(maxAge time.Duration) int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.Sub(w.startAt) > maxAge {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Normalize IPv6-mapped IPv4 etc.
func normalizeIP(raw string) string {
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}

// truncateID keeps bucket keys short; 12 chars of a generated public id is
// still unique enough for windowing.
func truncateID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
