package ratelimit

import (
	"testing"
	"time"

	"pulse-server/internal/config"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{TurnRateLimitPerMinute: 10, PreviewRateLimitPerMinute: 5}
	return NewLimiter(cfg, clock), clock
}

func TestAllowIdentityWithinLimit(t *testing.T) {
	limiter, _ := newTestLimiter()
	for i := 0; i < 10; i++ {
		if !limiter.AllowIdentity("user-1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.AllowIdentity("user-1") {
		t.Fatal("11th request in the window must be rejected")
	}
}

func TestAllowIdentityKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter()
	for i := 0; i < 10; i++ {
		limiter.AllowIdentity("user-1")
	}
	if !limiter.AllowIdentity("user-2") {
		t.Fatal("a different identity has its own window")
	}
}

func TestWindowResetsToOne(t *testing.T) {
	limiter, clock := newTestLimiter()
	for i := 0; i < 10; i++ {
		limiter.AllowIdentity("user-1")
	}
	if limiter.AllowIdentity("user-1") {
		t.Fatal("window should be exhausted")
	}

	clock.advance(time.Minute)
	// The count resets to 1, not to zero: the reset request itself counts.
	if !limiter.AllowIdentity("user-1") {
		t.Fatal("first request of the fresh window must pass")
	}
	for i := 0; i < 9; i++ {
		if !limiter.AllowIdentity("user-1") {
			t.Fatalf("request %d of the fresh window should be allowed", i+2)
		}
	}
	if limiter.AllowIdentity("user-1") {
		t.Fatal("the fresh window holds exactly the limit again")
	}
}

func TestAllowPreviewLowerLimit(t *testing.T) {
	limiter, _ := newTestLimiter()
	for i := 0; i < 5; i++ {
		if !limiter.AllowPreview("203.0.113.7", "conv_previewabcdef") {
			t.Fatalf("preview request %d should be allowed", i+1)
		}
	}
	if limiter.AllowPreview("203.0.113.7", "conv_previewabcdef") {
		t.Fatal("6th preview request must be rejected")
	}
}

func TestAllowPreviewKeycombinesIPAndConversation(t *testing.T) {
	limiter, _ := newTestLimiter()
	for i := 0; i < 5; i++ {
		limiter.AllowPreview("203.0.113.7", "conv_aaaaaaaaaaaa")
	}
	if !limiter.AllowPreview("203.0.113.7", "conv_bbbbbbbbbbbb") {
		t.Fatal("a different conversation from the same address has its own window")
	}
	if !limiter.AllowPreview("203.0.113.8", "conv_aaaaaaaaaaaa") {
		t.Fatal("the same conversation from a different address has its own window")
	}
}

func TestAllowPreviewTruncatesConversationID(t *testing.T) {
	limiter, _ := newTestLimiter()
	// Both ids share the first 12 characters, so they share a window.
	for i := 0; i < 5; i++ {
		limiter.AllowPreview("203.0.113.7", "conv_sameprefix_one")
	}
	if limiter.AllowPreview("203.0.113.7", "conv_sameprefix_two") {
		t.Fatal("ids sharing the truncated prefix must share a window")
	}
}

func TestPrune(t *testing.T) {
	limiter, clock := newTestLimiter()
	limiter.AllowIdentity("user-1")
	limiter.AllowIdentity("user-2")

	clock.advance(5 * time.Minute)
	limiter.AllowIdentity("user-3")

	removed := limiter.Prune(4 * time.Minute)
	if removed != 2 {
		t.Fatalf("expected 2 stale windows pruned, got %d", removed)
	}
	if limiter.Prune(4*time.Minute) != 0 {
		t.Fatal("second prune has nothing left to remove")
	}
}

func TestZeroLimitDisablesTier(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewLimiter(&config.Config{TurnRateLimitPerMinute: 0, PreviewRateLimitPerMinute: 5}, clock)
	for i := 0; i < 100; i++ {
		if !limiter.AllowIdentity("user-1") {
			t.Fatal("a zero limit disables enforcement for the tier")
		}
	}
}
