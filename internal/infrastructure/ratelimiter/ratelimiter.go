package ratelimiter

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type Limiter interface {
	Allow(sourceKey string) bool
	Remaining(sourceKey string) int
	GetSourceKey(r *http.Request) string
	GetMaxBurst() int
}

type Options struct {
	MaxRatePerSecond int
	MaxBurst         int
	SourceHeaderKey  string
}

// fixedWindow counts requests per source in one-second windows with a
// burst ceiling. Stale windows are dropped lazily on access.
type fixedWindow struct {
	maxPerSecond    int
	maxBurst        int
	sourceHeaderKey string

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func New(opts Options) Limiter {
	if opts.MaxRatePerSecond <= 0 {
		opts.MaxRatePerSecond = 10
	}
	if opts.MaxBurst <= 0 {
		opts.MaxBurst = opts.MaxRatePerSecond * 2
	}

	return &fixedWindow{
		maxPerSecond:    opts.MaxRatePerSecond,
		maxBurst:        opts.MaxBurst,
		sourceHeaderKey: opts.SourceHeaderKey,
		windows:         make(map[string]*window),
	}
}

func (l *fixedWindow) current(sourceKey string, now time.Time) *window {
	w, ok := l.windows[sourceKey]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Truncate(time.Second).Add(time.Second)}
		l.windows[sourceKey] = w
	}
	return w
}

func (l *fixedWindow) Allow(sourceKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(sourceKey, time.Now())
	if w.count >= l.maxBurst {
		return false
	}
	w.count++
	return true
}

func (l *fixedWindow) Remaining(sourceKey string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.current(sourceKey, time.Now())
	remaining := l.maxBurst - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (l *fixedWindow) GetSourceKey(r *http.Request) string {
	if l.sourceHeaderKey != "" {
		if v := r.Header.Get(l.sourceHeaderKey); v != "" {
			return v
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func (l *fixedWindow) GetMaxBurst() int {
	return l.maxBurst
}
