package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/subarch/pkg/buildinfo"
	"github.com/matzehuels/subarch/pkg/cache"
	"github.com/matzehuels/subarch/pkg/device"
	suberrors "github.com/matzehuels/subarch/pkg/errors"
)

const (
	httpTimeout = 10 * time.Second

	// maxDocumentSize bounds a fetched backend document.
	maxDocumentSize = 8 << 20
)

var (
	// ErrNotFound is returned when the remote document does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// Client downloads documents with caching and retries.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a client that caches documents in c for ttl and sends
// headers with every request. A nil cache disables caching.
func NewClient(c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   c,
		ttl:     ttl,
		headers: headers,
	}
}

// IsURL reports whether ref looks like an http(s) URL.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// FetchDevice downloads and decodes a backend configuration document.
func (c *Client) FetchDevice(ctx context.Context, url string, refresh bool) (*device.Device, error) {
	data, err := c.Fetch(ctx, url, refresh)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, suberrors.Wrap(suberrors.ErrCodeDeviceNotFound, err, "backend %s", url)
		}
		return nil, suberrors.Wrap(suberrors.ErrCodeInternal, err, "fetch backend %s", url)
	}
	return device.ParseBackend(data)
}

// Fetch returns the body at url, from the cache unless refresh is set.
func (c *Client) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	key := "fetch:" + cache.Hash([]byte(url))
	if !refresh {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			return data, nil
		}
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
