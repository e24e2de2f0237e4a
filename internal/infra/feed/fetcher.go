package feed

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"my-ankode/internal/resilience/circuitbreaker"
	"my-ankode/internal/resilience/retry"
	"my-ankode/internal/usecase/ingest"
)

// errBodyTooLarge is returned when a response exceeds Config.MaxBodySize.
var errBodyTooLarge = errors.New("response body too large")

// NewHTTPClient builds the client used for feed and page downloads.
func NewHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 4,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		},
	}
}

// HTTPFetcher downloads feed bodies with retry and a circuit breaker per host.
type HTTPFetcher struct {
	client   *http.Client
	cfg      Config
	breakers *circuitbreaker.Registry
}

// NewHTTPFetcher creates a fetcher. A nil client gets NewHTTPClient(cfg).
func NewHTTPFetcher(cfg Config, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = NewHTTPClient(cfg)
	}
	return &HTTPFetcher{
		client:   client,
		cfg:      cfg,
		breakers: circuitbreaker.NewRegistry(cfg.Breaker),
	}
}

// OpenCircuits lists the hosts currently refused by their circuit breaker.
func (f *HTTPFetcher) OpenCircuits() []string {
	return f.breakers.Open()
}

// Fetch returns the body of feedURL. Failures are reported as *ingest.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	host := feedURL
	if u, err := url.Parse(feedURL); err == nil {
		host = u.Host
	}
	cb := f.breakers.For(host)

	var body []byte
	err := retry.WithBackoff(ctx, f.cfg.Retry, func() error {
		res, err := cb.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, feedURL)
		})
		if err != nil {
			if errors.Is(err, circuitbreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("url", feedURL),
					slog.String("circuit", cb.Name()))
			}
			return err
		}
		body = res.([]byte)
		return nil
	})
	if err != nil {
		var fetchErr *ingest.FetchError
		if errors.As(err, &fetchErr) {
			return nil, fetchErr
		}
		return nil, &ingest.FetchError{URL: feedURL, Err: err}
	}
	return body, nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &ingest.FetchError{URL: feedURL, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &ingest.FetchError{
			URL:        feedURL,
			StatusCode: resp.StatusCode,
			Err:        &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)},
		}
	}

	return readLimited(resp.Body, f.cfg.MaxBodySize)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}
