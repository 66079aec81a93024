// Package proxy rotates outgoing requests across a list of HTTP/SOCKS5 proxies.
package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is how long a failed proxy is skipped
const DefaultCooldown = 5 * time.Minute

// ParseList parses a comma-separated proxy list such as
// "http://10.0.0.1:3128,socks5://10.0.0.2:1080"
func ParseList(list string) ([]*url.URL, error) {
	var out []*url.URL
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("proxy %q must look like scheme://host:port", raw)
		}
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty proxy list")
	}
	return out, nil
}

// Pool manages a list of proxies with rotation and health checking
type Pool struct {
	proxies  []*url.URL
	index    int
	cooldown time.Duration
	mu       sync.Mutex
	failed   map[string]time.Time
}

// NewPool creates a Pool; a non-positive cooldown uses DefaultCooldown
func NewPool(proxies []*url.URL, cooldown time.Duration) *Pool {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Pool{
		proxies:  proxies,
		cooldown: cooldown,
		failed:   make(map[string]time.Time),
	}
}

// Len returns the number of proxies in the pool
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy is benched the
// rotation continues anyway so the crawl keeps trying.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return nil
	}

	start := p.index
	for {
		u := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failTime, ok := p.failed[u.String()]
		if !ok {
			return u
		}
		if time.Since(failTime) >= p.cooldown {
			delete(p.failed, u.String())
			return u
		}
		if p.index == start {
			return u
		}
	}
}

// MarkFailed benches a proxy for the cooldown period
func (p *Pool) MarkFailed(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[u.String()] = time.Now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, u.String())
}

type ctxKey struct{}

// Wrap returns a RoundTripper that sends each request through the next proxy
// of the pool. base.Proxy is replaced.
func (p *Pool) Wrap(base *http.Transport) http.RoundTripper {
	base.Proxy = func(req *http.Request) (*url.URL, error) {
		u, _ := req.Context().Value(ctxKey{}).(*url.URL)
		return u, nil
	}
	return &roundTripper{pool: p, base: base}
}

type roundTripper struct {
	pool *Pool
	base *http.Transport
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	u := rt.pool.Next()
	if u == nil {
		return rt.base.RoundTrip(req)
	}

	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, u))
	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		if req.Context().Err() == nil {
			rt.pool.MarkFailed(u)
			log.Warn().Err(err).Str("proxy", u.Redacted()).Msg("Proxy failed, benching it")
		}
		return nil, err
	}
	rt.pool.MarkHealthy(u)
	return resp, nil
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the transport
func (rt *roundTripper) CloseIdleConnections() {
	rt.base.CloseIdleConnections()
}
