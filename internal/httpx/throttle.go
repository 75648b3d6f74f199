package httpx

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors holds one token bucket per client IP. Idle entries are evicted
// lazily, at most once per ttl.
type visitors struct {
	mu        sync.Mutex
	byIP      map[string]*visitor
	rps       rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newVisitors(rps float64, burst int, ttl time.Duration) *visitors {
	return &visitors{
		byIP:  make(map[string]*visitor),
		rps:   rate.Limit(rps),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) > v.ttl {
		for k, x := range v.byIP {
			if now.Sub(x.lastSeen) > v.ttl {
				delete(v.byIP, k)
			}
		}
		v.lastSweep = now
	}

	x, ok := v.byIP[ip]
	if !ok {
		x = &visitor{limiter: rate.NewLimiter(v.rps, v.burst)}
		v.byIP[ip] = x
	}
	x.lastSeen = now
	return x.limiter
}

// Throttle limits each client IP to rps requests per second with the given
// burst. Excess requests get 429.
func Throttle(rps float64, burst int) gin.HandlerFunc {
	store := newVisitors(rps, burst, 3*time.Minute)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.get(ip).Allow() {
			zerolog.Ctx(c.Request.Context()).Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("rate limit exceeded")
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
