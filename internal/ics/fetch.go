package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"sync"
	"syscall"
	"time"

	appLog "holocal/internal/log"
)

// MaxFeedSize caps the number of bytes read from a remote feed.
const MaxFeedSize = 10 << 20

var (
	ErrFeedTooLarge   = errors.New("ics feed too large")
	ErrPrivateAddress = errors.New("feed address is not public")
)

// cacheEntry holds HTTP cache metadata for a single feed URL.
type cacheEntry struct {
	ETag         string
	LastModified string
	Body         []byte
}

// Fetcher downloads ICS feeds, honoring ETag / Last-Modified so repeated
// imports of an unchanged subscription reuse the previous body.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type FetcherOption func(*Fetcher)

// PublicOnly makes the Fetcher refuse to connect to loopback, private or
// link-local addresses. The check runs on the resolved address at dial time,
// so hostnames pointing inside the network are refused too.
func PublicOnly() FetcherOption {
	return func(f *Fetcher) {
		dialer := &net.Dialer{Timeout: 10 * time.Second, Control: refuseNonPublic}
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.Proxy = nil
		tr.DialContext = dialer.DialContext
		f.client.Transport = tr
	}
}

// NewFetcher creates a Fetcher whose requests time out after timeout
// (15s when zero).
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	f := &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func refuseNonPublic(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublic(ip) {
		return fmt.Errorf("%s: %w", ip, ErrPrivateAddress)
	}
	return nil
}

// cgnat is the carrier-grade NAT range, not covered by netip's IsPrivate.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

func isPublic(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		cgnat.Contains(ip):
		return false
	}
	return true
}

// Fetch returns the body of the feed at rawURL. On network errors or non-OK
// statuses a previously fetched body is returned when one is cached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http", "https":
	case "webcal":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
	target := u.String()

	f.mu.Lock()
	cached, hasCache := f.cache[target]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if cached.ETag != "" {
		req.Header.Set("If-None-Match", cached.ETag)
	}
	if cached.LastModified != "" {
		req.Header.Set("If-Modified-Since", cached.LastModified)
	}

	appLog.Info("ics fetch start", "url", redactURL(target))

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCache {
			appLog.Error("ics fetch network error, using cached body", err, "url", redactURL(target))
			return cached.Body, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFeedSize+1))
		if err != nil {
			return nil, err
		}
		if len(body) > MaxFeedSize {
			return nil, ErrFeedTooLarge
		}
		f.mu.Lock()
		f.cache[target] = cacheEntry{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			Body:         body,
		}
		f.mu.Unlock()
		appLog.Info("ics fetch success", "url", redactURL(target), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if !hasCache {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Info("ics fetch not modified; using cache", "url", redactURL(target))
		return cached.Body, nil

	default:
		if hasCache {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(target))
			return cached.Body, nil
		}
		return nil, errors.New(resp.Status)
	}
}

// redactURL hides the path and query of a feed URL for logging, since
// private calendar links carry their secret there.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
