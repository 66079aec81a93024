package robots

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// ErrDisallowed is returned when robots.txt forbids crawling the listing
var ErrDisallowed = errors.New("crawling disallowed by robots.txt")

// Checker tests URLs against the target host's robots.txt.
// A missing or unreadable robots.txt allows everything.
type Checker struct {
	userAgent string
	client    *http.Client
}

func NewChecker(client *http.Client, userAgent string) *Checker {
	if client == nil {
		client = http.DefaultClient
	}
	return &Checker{userAgent: userAgent, client: client}
}

// Allowed reports whether targetURL may be crawled
func (c *Checker) Allowed(ctx context.Context, targetURL string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, err
	}

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	data, err := c.fetch(ctx, robotsURL)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Debug().Err(err).Str("url", robotsURL).Msg("No usable robots.txt, assuming allowed")
		return true, nil
	}
	if data == nil {
		return true, nil
	}

	return data.TestAgent(u.Path, c.userAgent), nil
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromBytes(body)
}
