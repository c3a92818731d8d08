package auth

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Throttle is a per-client token bucket. Clients are keyed by user ID when
// authenticated and by IP otherwise. Idle buckets are dropped by Sweep.
type Throttle struct {
	mu      sync.Mutex
	clients map[string]*throttleEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewThrottle(perSecond float64, burst int) *Throttle {
	if perSecond <= 0 {
		perSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &Throttle{
		clients: make(map[string]*throttleEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow reports whether key may make another request now.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.clients[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Sweep forgets clients not seen for idle. It returns how many were dropped.
func (t *Throttle) Sweep(idle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-idle)
	dropped := 0
	for key, entry := range t.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(t.clients, key)
			dropped++
		}
	}
	return dropped
}

// Middleware rejects callers over their budget with 429. It must run after
// the auth middleware so the user ID is known.
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.Allow(clientKey(c)) {
			c.Header("Retry-After", strconv.Itoa(int(1/float64(t.limit))+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many requests",
			})
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if id := GetUserID(c); id != AnonymousUserID {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return "ip:" + c.ClientIP()
}
