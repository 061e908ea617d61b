package middlewares

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter is an in-process token bucket per key, for single-instance
// deployments without Redis.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*localClient
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type localClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(ratePerSecond float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		clients: make(map[string]*localClient),
		rps:     rate.Limit(ratePerSecond),
		burst:   burst,
		idle:    3 * time.Minute,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &localClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	d := Decision{Policy: "token-bucket-local", Limit: l.burst}
	res := c.limiter.ReserveN(now, 1)
	switch {
	case !res.OK():
		d.RetryAfter = time.Second
	case res.DelayFrom(now) > 0:
		d.RetryAfter = res.DelayFrom(now)
		res.CancelAt(now)
	default:
		d.Allowed = true
	}
	d.Remaining = int(c.limiter.TokensAt(now))
	l.mu.Unlock()

	return d, nil
}

// Sweep forgets keys idle for longer than the idle window.
func (l *LocalLimiter) Sweep() {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, k)
		}
	}
}

// Run sweeps every interval until ctx is done.
func (l *LocalLimiter) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// Len reports how many keys are tracked.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
