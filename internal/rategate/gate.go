package rategate

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const (
	// window is the trailing interval the request budget applies to.
	window = time.Minute
	// fallbackDelay is used for a 429 that carries no usable headers.
	fallbackDelay = time.Minute
	// resetMargin pads the server-reported reset epoch.
	resetMargin = time.Second
)

// Gate admits at most rpm requests per sliding 60-second window and keeps
// consecutive requests at least 60/rpm apart so the budget is not burned in a
// burst at the window's start. A Gate is constructed once and handed to the
// client that owns the outbound connection; it is not safe for concurrent use
// and does not need to be, the batch is fully sequential.
type Gate struct {
	limit    int
	minGap   time.Duration
	sent     []time.Time
	last     time.Time
	cooldown time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the gate's time source and sleeper. Intended for tests
// that need deterministic waiting.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
		if sleep != nil {
			g.sleep = sleep
		}
	}
}

// New creates a gate for the given requests-per-minute budget.
func New(rpm int, opts ...Option) *Gate {
	if rpm <= 0 {
		rpm = 1
	}
	g := &Gate{
		limit:  rpm,
		minGap: window / time.Duration(rpm),
		now:    time.Now,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until a request may legally be sent. The caller performs the
// request and reports the outcome via Record.
func (g *Gate) Acquire(ctx context.Context) error {
	for {
		now := g.now()
		g.prune(now)

		var wait time.Duration
		if len(g.sent) >= g.limit {
			wait = g.sent[0].Add(window).Sub(now)
		}
		if !g.last.IsZero() {
			if gap := g.minGap - now.Sub(g.last); gap > wait {
				wait = gap
			}
		}
		if until := g.cooldown.Sub(now); until > wait {
			wait = until
		}

		if wait <= 0 {
			g.sent = append(g.sent, now)
			g.last = now
			return nil
		}
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Record consumes the rate headers of a completed request. When the server
// reports the remaining quota below 10% of its limit, one extra cooldown slot
// is applied as a soft backoff before the next Acquire proceeds.
func (g *Gate) Record(res Response) {
	if res.Status == http.StatusTooManyRequests {
		// Delay for 429s is computed by RetryDelay at the retry site.
		return
	}
	limit := res.Limit
	if limit <= 0 {
		limit = g.limit
	}
	if res.Remaining >= 0 && res.Remaining*10 < limit {
		g.cooldown = g.now().Add(window / time.Duration(limit))
	}
}

// RetryDelay computes how long to wait before retrying a 429 response:
// Retry-After seconds when present, else the reset epoch plus a one-second
// margin, else a fixed 60-second fallback.
func (g *Gate) RetryDelay(res Response) time.Duration {
	if res.RetryAfter > 0 {
		return time.Duration(res.RetryAfter) * time.Second
	}
	if res.Reset > 0 {
		if d := time.Unix(res.Reset, 0).Sub(g.now()) + resetMargin; d > 0 {
			return d
		}
		return resetMargin
	}
	return fallbackDelay
}

// Sleep blocks for the given duration using the gate's clock, honoring
// context cancellation. Exposed so the owning client shares one sleep source.
func (g *Gate) Sleep(ctx context.Context, d time.Duration) error {
	return g.sleep(ctx, d)
}

func (g *Gate) prune(now time.Time) {
	cutoff := now.Add(-window)
	kept := g.sent[:0]
	for _, t := range g.sent {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	g.sent = kept
}

// Response carries the rate-limiting facts of one HTTP exchange.
type Response struct {
	Status     int
	RetryAfter int64 // seconds; 0 when absent
	Reset      int64 // epoch seconds; 0 when absent
	Limit      int   // server-reported request budget; 0 when absent
	Remaining  int   // server-reported remaining quota; -1 when absent
}

// ParseResponse extracts rate headers from an HTTP response.
func ParseResponse(status int, header http.Header) Response {
	res := Response{Status: status, Remaining: -1}
	if v, err := strconv.ParseInt(header.Get("Retry-After"), 10, 64); err == nil && v > 0 {
		res.RetryAfter = v
	}
	if v, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64); err == nil && v > 0 {
		res.Reset = v
	}
	if v, err := strconv.Atoi(header.Get("X-RateLimit-Limit")); err == nil && v > 0 {
		res.Limit = v
	}
	if v, err := strconv.Atoi(header.Get("X-RateLimit-Remaining")); err == nil && v >= 0 {
		res.Remaining = v
	}
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
