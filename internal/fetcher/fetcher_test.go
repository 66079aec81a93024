package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/blocklist/internal/retry"
)

const testUA = "Mozilla/5.0 (Test)"

func newTestFetcher(attempts int) *HTTPFetcher {
	return New(&http.Client{Timeout: 5 * time.Second}, Options{
		UserAgent: testUA,
		Headers:   http.Header{"X-Custom-Header": {"TestValue"}},
		Retry:     retry.Fixed(attempts, time.Millisecond),
	})
}

func TestFetch_BasicHTML(t *testing.T) {
	var gotUA, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCustom = r.Header.Get("X-Custom-Header")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><a href="/blocklist/example.com">example.com</a></body></html>`))
	}))
	defer server.Close()

	page, err := newTestFetcher(3).Fetch(context.Background(), server.URL+"/blocklist?page=1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", page.StatusCode)
	}
	if gotUA != testUA {
		t.Errorf("Expected User-Agent %q, got %q", testUA, gotUA)
	}
	if gotCustom != "TestValue" {
		t.Errorf("Expected custom header, got %q", gotCustom)
	}
	if n := page.Doc.Find("a").Length(); n != 1 {
		t.Errorf("Expected 1 link, got %d", n)
	}
}

func TestFetch_DecodesCharset(t *testing.T) {
	// "тест" in windows-1251
	body := []byte("<html><body><a href=\"/blocklist/x\">\xf2\xe5\xf1\xf2</a></body></html>")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.Write(body)
	}))
	defer server.Close()

	page, err := newTestFetcher(1).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := page.Doc.Find("a").Text(); got != "тест" {
		t.Errorf("Expected decoded text %q, got %q", "тест", got)
	}
}

func TestFetch_RetriesBadStatus(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer server.Close()

	if _, err := newTestFetcher(3).Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 requests, got %d", calls)
	}
}

func TestFetch_ExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(3).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}
	if !errors.Is(err, retry.ErrExhausted) {
		t.Errorf("Expected retry.ErrExhausted, got %v", err)
	}
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("Expected ErrBadStatus in chain, got %v", err)
	}

	var fe *FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Errorf("Expected FetchError with status 404, got %v", err)
	}
}

// truncatingServer announces a large body but closes the connection after
// sending only part of it, for the first `broken` requests
func truncatingServer(t *testing.T, partial string, broken int32, calls *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if atomic.AddInt32(calls, 1) <= broken {
			w.Header().Set("Content-Length", "100000")
			w.Write([]byte(partial))
			return
		}
		w.Write([]byte(`<html><body><a href="/blocklist/full.com">full.com</a></body></html>`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetch_TruncatedBodyIsRetried(t *testing.T) {
	tests := []struct {
		name    string
		partial string
	}{
		{"short body", `<html><body><a href="/blocklist/cut.com">cut`},
		{"long body", "<html><body>" + strings.Repeat(`<a href="/blocklist/cut.com">cut.com</a>`, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := truncatingServer(t, tt.partial, 2, &calls)

			page, err := newTestFetcher(3).Fetch(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("Expected success on third attempt, got %v", err)
			}
			if got := atomic.LoadInt32(&calls); got != 3 {
				t.Errorf("Expected 3 requests, got %d", got)
			}
			if href, _ := page.Doc.Find("a").Attr("href"); href != "/blocklist/full.com" {
				t.Errorf("Expected the complete page, got link %q", href)
			}
		})
	}
}

func TestFetch_TruncatedBodyExhausts(t *testing.T) {
	var calls int32
	server := truncatingServer(t, "<html><body>partial", 3, &calls)

	_, err := newTestFetcher(3).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, retry.ErrExhausted) {
		t.Fatalf("Expected exhausted network error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestFetcher(2).Fetch(context.Background(), url)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}

func TestFetch_InvalidURLNotRetried(t *testing.T) {
	_, err := newTestFetcher(3).Fetch(context.Background(), "http://[::1]:namedport")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("Expected ErrInvalidURL, got %v", err)
	}
	if errors.Is(err, retry.ErrExhausted) {
		t.Error("Invalid URLs must not consume the retry budget")
	}
}

func TestFetchError_Is(t *testing.T) {
	err := NewFetchError(ErrCodeNetwork, "http://x", errors.New("reset"))
	if !errors.Is(err, &FetchError{Code: ErrCodeNetwork}) {
		t.Error("Expected code match")
	}
	if errors.Is(err, ErrBadStatus) {
		t.Error("Network error must not match ErrBadStatus")
	}
}

func TestName(t *testing.T) {
	if name := newTestFetcher(1).Name(); name != "HTTPFetcher" {
		t.Errorf("Expected name 'HTTPFetcher', got '%s'", name)
	}
}
