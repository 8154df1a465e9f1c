package wallet

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type attemptBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateAttemptLimiter is a token-bucket AttemptLimiter keyed by wallet ID
type RateAttemptLimiter struct {
	wallets map[uuid.UUID]*attemptBucket
	mu      sync.Mutex
	r       rate.Limit
	b       int
	// idle is how long a bucket takes to refill completely; older buckets
	// are indistinguishable from fresh ones
	idle time.Duration
}

// NewRateAttemptLimiter creates a limiter allowing perMinute attempts per wallet
// on average, with bursts of up to burst attempts.
func NewRateAttemptLimiter(perMinute float64, burst int) *RateAttemptLimiter {
	r := rate.Limit(perMinute / 60)
	return &RateAttemptLimiter{
		wallets: make(map[uuid.UUID]*attemptBucket),
		r:       r,
		b:       burst,
		idle:    refillTime(r, burst),
	}
}

func refillTime(r rate.Limit, burst int) time.Duration {
	if r <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(float64(burst) / float64(r) * float64(time.Second))
}

// Allow consumes one attempt for the wallet
func (l *RateAttemptLimiter) Allow(walletID uuid.UUID) bool {
	return l.allow(walletID, time.Now())
}

func (l *RateAttemptLimiter) allow(walletID uuid.UUID, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, exists := l.wallets[walletID]
	if !exists {
		bucket = &attemptBucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.wallets[walletID] = bucket
	}
	bucket.lastSeen = now

	return bucket.limiter.AllowN(now, 1)
}

// Reset restores the full burst after a successful verification
func (l *RateAttemptLimiter) Reset(walletID uuid.UUID) {
	l.mu.Lock()
	delete(l.wallets, walletID)
	l.mu.Unlock()
}

// Prune forgets wallets whose buckets have refilled since their last attempt
func (l *RateAttemptLimiter) Prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, bucket := range l.wallets {
		if now.Sub(bucket.lastSeen) >= l.idle {
			delete(l.wallets, id)
		}
	}
}

// Run prunes refilled buckets every interval until ctx is done
func (l *RateAttemptLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Prune(now)
		}
	}
}
