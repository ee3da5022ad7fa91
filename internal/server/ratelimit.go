package server

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

const maxTrackedClients = 10000

// loginLimiter throttles login attempts per client IP.
type loginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*rate.Limiter
}

// newLoginLimiter allows perMinute attempts per client with the given
// burst. A non-positive perMinute disables throttling.
func newLoginLimiter(perMinute float64, burst int) *loginLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &loginLimiter{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		clients: map[string]*rate.Limiter{},
	}
}

func (l *loginLimiter) allow(r *http.Request) bool {
	if l == nil {
		return true
	}
	ip := clientIP(r)

	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.clients = map[string]*rate.Limiter{}
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.clients[ip] = lim
	}
	return lim.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
