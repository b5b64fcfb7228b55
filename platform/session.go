package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; dealhound/1.0)"

// Search result pages may be served from cache within the TTL. Cart views
// must always re-fetch, so only this path prefix is cacheable.
const cacheablePrefix = "/search"

// Session is one platform's interactive browsing session. A session carries
// cookies across calls and is shared by search and cart operations, so every
// call serializes on the session mutex.
type Session struct {
	mu        sync.Mutex
	collector *colly.Collector
}

// NewSession builds a session pinned to the host of baseURL.
func NewSession(baseURL string, opts Options) (*Session, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(ua),
		colly.AllowURLRevisit(),
	)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	inner := opts.Transport
	if inner == nil {
		inner = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}
	collector.WithTransport(newPageCache(inner, opts.CacheSize, opts.CacheTTL))

	return &Session{collector: collector}, nil
}

// Scrape fetches rawURL and invokes fn for every element matching selector.
func (s *Session) Scrape(ctx context.Context, rawURL, selector string, fn func(*colly.HTMLElement)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collector.Clone()
	c.OnHTML(selector, fn)
	if err := c.Visit(rawURL); err != nil {
		return fmt.Errorf("visit %s: %w", rawURL, err)
	}
	return nil
}

// Submit posts form to rawURL. A nil form sends an empty body.
func (s *Session) Submit(ctx context.Context, rawURL string, form map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collector.Clone()
	if err := c.Post(rawURL, form); err != nil {
		return fmt.Errorf("post %s: %w", rawURL, err)
	}
	return nil
}

type cachedPage struct {
	status int
	header http.Header
	body   []byte
}

// pageCache is a read-through cache for search result pages, keyed by URL.
type pageCache struct {
	next  http.RoundTripper
	pages *expirable.LRU[string, cachedPage]
}

func newPageCache(next http.RoundTripper, size int, ttl time.Duration) *pageCache {
	pc := &pageCache{next: next}
	if size > 0 && ttl > 0 {
		pc.pages = expirable.NewLRU[string, cachedPage](size, nil, ttl)
	}
	return pc
}

func (t *pageCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.pages == nil || req.Method != http.MethodGet || !strings.HasPrefix(req.URL.Path, cacheablePrefix) {
		return t.next.RoundTrip(req)
	}

	key := req.URL.String()
	if page, ok := t.pages.Get(key); ok {
		return page.response(req), nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	t.pages.Add(key, cachedPage{status: resp.StatusCode, header: resp.Header.Clone(), body: body})

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func (p cachedPage) response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", p.status, http.StatusText(p.status)),
		StatusCode:    p.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        p.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(p.body)),
		ContentLength: int64(len(p.body)),
		Request:       req,
	}
}
