package rategate

import (
	"context"
	"net/http"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	return nil
}

func newTestGate(rpm int) (*Gate, *fakeClock) {
	clock := newFakeClock()
	return New(rpm, WithClock(clock.now, clock.sleep)), clock
}

func TestAcquireEnforcesSlidingWindow(t *testing.T) {
	gate, clock := newTestGate(30)
	start := clock.t

	for i := 0; i < 31; i++ {
		if err := gate.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
	}

	elapsed := clock.t.Sub(start)
	if elapsed < time.Minute {
		t.Errorf("31 acquires at 30 rpm took %v, want >= 1m", elapsed)
	}
}

func TestAcquireEnforcesMinimumSpacing(t *testing.T) {
	gate, clock := newTestGate(30)

	var prev time.Time
	for i := 0; i < 5; i++ {
		if err := gate.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d failed: %v", i, err)
		}
		if i > 0 {
			gap := clock.t.Sub(prev)
			if gap < 2*time.Second {
				t.Errorf("acquire %d spaced %v after previous, want >= 2s", i, gap)
			}
		}
		prev = clock.t
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	gate, _ := newTestGate(1)
	ctx, cancel := context.WithCancel(context.Background())

	if err := gate.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	cancel()
	gate.sleep = sleepContext
	if err := gate.Acquire(ctx); err == nil {
		t.Fatal("Acquire should fail once the context is cancelled")
	}
}

func TestRetryDelayPrefersRetryAfter(t *testing.T) {
	gate, clock := newTestGate(30)

	res := Response{
		Status:     http.StatusTooManyRequests,
		RetryAfter: 17,
		Reset:      clock.t.Add(5 * time.Minute).Unix(),
	}
	if got := gate.RetryDelay(res); got != 17*time.Second {
		t.Errorf("RetryDelay = %v, want 17s", got)
	}
}

func TestRetryDelayUsesResetEpochWithMargin(t *testing.T) {
	gate, clock := newTestGate(30)

	res := Response{
		Status: http.StatusTooManyRequests,
		Reset:  clock.t.Add(30 * time.Second).Unix(),
	}
	got := gate.RetryDelay(res)
	if got != 31*time.Second {
		t.Errorf("RetryDelay = %v, want 31s", got)
	}
}

func TestRetryDelayFallsBackToFixedMinute(t *testing.T) {
	gate, _ := newTestGate(30)

	res := Response{Status: http.StatusTooManyRequests}
	if got := gate.RetryDelay(res); got != time.Minute {
		t.Errorf("RetryDelay = %v, want 1m", got)
	}
}

func TestRecordAppliesSoftCooldown(t *testing.T) {
	gate, clock := newTestGate(60)

	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	afterFirst := clock.t

	// Remaining below 10% of the server-reported limit triggers one extra
	// cooldown slot sized by that limit, here 60s/30 = 2s.
	gate.Record(Response{Status: http.StatusOK, Limit: 30, Remaining: 2})

	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if gap := clock.t.Sub(afterFirst); gap < 2*time.Second {
		t.Errorf("second acquire after cooldown spaced %v, want >= 2s slot", gap)
	}
}

func TestRecordIgnoresHealthyQuota(t *testing.T) {
	gate, _ := newTestGate(60)

	gate.Record(Response{Status: http.StatusOK, Limit: 60, Remaining: 45})
	if !gate.cooldown.IsZero() {
		t.Error("Record should not apply cooldown when quota is healthy")
	}
}

func TestParseResponse(t *testing.T) {
	header := http.Header{}
	header.Set("Retry-After", "12")
	header.Set("X-RateLimit-Reset", "1750000000")
	header.Set("X-RateLimit-Limit", "90")
	header.Set("X-RateLimit-Remaining", "0")

	res := ParseResponse(http.StatusTooManyRequests, header)
	if res.RetryAfter != 12 {
		t.Errorf("RetryAfter = %d, want 12", res.RetryAfter)
	}
	if res.Reset != 1750000000 {
		t.Errorf("Reset = %d, want 1750000000", res.Reset)
	}
	if res.Limit != 90 {
		t.Errorf("Limit = %d, want 90", res.Limit)
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}
}

func TestParseResponseMissingHeaders(t *testing.T) {
	res := ParseResponse(http.StatusOK, http.Header{})
	if res.RetryAfter != 0 || res.Reset != 0 || res.Limit != 0 {
		t.Errorf("absent headers should parse to zero values, got %+v", res)
	}
	if res.Remaining != -1 {
		t.Errorf("Remaining = %d, want -1 for absent header", res.Remaining)
	}
}
