package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func mustURLs(t *testing.T, raw ...string) []*url.URL {
	t.Helper()
	var out []*url.URL
	for _, r := range raw {
		u, err := url.Parse(r)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, u)
	}
	return out
}

func TestPool_Rotation(t *testing.T) {
	urls := mustURLs(t, "http://p1:1", "http://p2:2", "http://p3:3")
	pool := NewPool(urls, time.Minute)

	for _, want := range []string{"p1:1", "p2:2", "p3:3", "p1:1"} {
		if got := pool.Next().Host; got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}

	// index now points at p2
	pool.MarkFailed(urls[1])
	for _, want := range []string{"p3:3", "p1:1", "p3:3"} {
		if got := pool.Next().Host; got != want {
			t.Errorf("expected %s (skipping p2), got %s", want, got)
		}
	}

	pool.MarkHealthy(urls[1])
	for _, want := range []string{"p1:1", "p2:2"} {
		if got := pool.Next().Host; got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

func TestPool_AllFailed(t *testing.T) {
	urls := mustURLs(t, "http://p1:1", "http://p2:2")
	pool := NewPool(urls, time.Minute)
	pool.MarkFailed(urls[0])
	pool.MarkFailed(urls[1])

	if u := pool.Next(); u == nil {
		t.Fatal("a fully benched pool must still return a proxy")
	}
}

func TestPool_CooldownExpires(t *testing.T) {
	urls := mustURLs(t, "http://p1:1", "http://p2:2")
	pool := NewPool(urls, time.Nanosecond)
	pool.MarkFailed(urls[0])
	time.Sleep(time.Millisecond)

	if got := pool.Next().Host; got != "p1:1" {
		t.Errorf("expected p1 after cooldown, got %s", got)
	}
}

func TestParseList(t *testing.T) {
	urls, err := ParseList(" http://10.0.0.1:3128 , socks5://10.0.0.2:1080,")
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}
	if len(urls) != 2 || urls[1].Scheme != "socks5" {
		t.Errorf("unexpected result %v", urls)
	}

	for _, bad := range []string{"", " , ", "localhost:8080", "://bad"} {
		if _, err := ParseList(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWrap_RoutesThroughProxies(t *testing.T) {
	// A forward proxy receives the absolute target URL; these just answer with their name
	named := func(name string) *httptest.Server {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, name)
		}))
		t.Cleanup(srv.Close)
		return srv
	}
	p1 := named("p1")
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	p2 := named("p2")

	pool := NewPool(mustURLs(t, p1.URL, dead.URL, p2.URL), time.Minute)
	client := &http.Client{Transport: pool.Wrap(&http.Transport{})}
	defer client.CloseIdleConnections()

	get := func() (string, error) {
		resp, err := client.Get("http://listing.invalid/blocklist?page=1")
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		return string(b), err
	}

	if body, err := get(); err != nil || body != "p1" {
		t.Fatalf("first request: body %q err %v", body, err)
	}
	if _, err := get(); err == nil {
		t.Fatal("expected the closed proxy to fail")
	}
	if body, err := get(); err != nil || body != "p2" {
		t.Fatalf("third request: body %q err %v", body, err)
	}
	// dead proxy is benched, so rotation goes p1, p2
	for _, want := range []string{"p1", "p2"} {
		if body, err := get(); err != nil || body != want {
			t.Errorf("expected %s, got %q (err %v)", want, body, err)
		}
	}
}
