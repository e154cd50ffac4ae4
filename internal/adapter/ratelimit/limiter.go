package ratelimit

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds configuration for the rate limiter.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// tokenBucket refills at ARGV[1] tokens/s up to ARGV[2] tokens and
// consumes ARGV[4] tokens at time ARGV[3]. Returns 1 when allowed.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= requested then
	tokens = tokens - requested
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Limiter is a per-key token bucket. With a Redis client the buckets are
// shared across instances; without one they live in process memory.
type Limiter struct {
	client *redis.Client
	config Config
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter. client may be nil.
func New(client *redis.Client, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

// Enabled reports whether requests are being limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Enabled
}

// Config returns the limiter configuration.
func (l *Limiter) Config() Config {
	return l.config
}

// Allow consumes one token for key. Redis failures fail open.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if !l.Enabled() {
		return true
	}
	if l.client == nil {
		return l.allowLocal(key)
	}

	now := float64(l.now().UnixMilli()) / 1000
	allowed, err := tokenBucket.Run(ctx, l.client, []string{"ratelimit:tb:" + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		strconv.FormatFloat(now, 'f', 3, 64),
		1,
		l.bucketTTLSeconds(),
	).Int64()
	if err != nil {
		l.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}
	return allowed == 1
}

// bucketTTLSeconds is how long an idle bucket is kept: long enough to refill.
func (l *Limiter) bucketTTLSeconds() int {
	if l.config.RequestsPerSecond <= 0 {
		return 60
	}
	refill := math.Ceil(float64(l.config.BurstCapacity) / l.config.RequestsPerSecond)
	return int(math.Max(refill, 1)) + 1
}

// allowLocal consumes a token from the in-process bucket for key. Buckets
// idle longer than their refill time are full again, so they are dropped
// and recreated on demand.
func (l *Limiter) allowLocal(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idle := time.Duration(l.bucketTTLSeconds()) * time.Second
	if now.Sub(l.lastSweep) >= idle {
		for k, b := range l.local {
			if now.Sub(b.lastSeen) >= idle {
				delete(l.local, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.local[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.BurstCapacity)}
		l.local[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}
