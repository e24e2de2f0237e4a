package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"my-ankode/internal/resilience/retry"
	"my-ankode/internal/usecase/source"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
)

var feedMIMETypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/feed+json": true,
}

// Discoverer reads <link rel="alternate"> feed declarations from HTML pages.
type Discoverer struct {
	client *http.Client
	cfg    Config
}

// NewDiscoverer creates a discoverer. A nil client gets NewHTTPClient(cfg).
func NewDiscoverer(cfg Config, client *http.Client) *Discoverer {
	if client == nil {
		client = NewHTTPClient(cfg)
	}
	return &Discoverer{client: client, cfg: cfg}
}

// Discover downloads pageURL and returns the feeds it advertises, with
// relative hrefs resolved against the page.
func (d *Discoverer) Discover(ctx context.Context, pageURL string) ([]source.FeedLink, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	body, err := d.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	var links []source.FeedLink
	doc.Find("link[rel]").Each(func(_ int, s *goquery.Selection) {
		if !hasToken(s.AttrOr("rel", ""), "alternate") {
			return
		}
		typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if !feedMIMETypes[typ] {
			return
		}
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		abs, err := base.Parse(href)
		if err != nil || (abs.Scheme != "http" && abs.Scheme != "https") {
			return
		}
		links = append(links, source.FeedLink{
			Title: strings.TrimSpace(s.AttrOr("title", "")),
			URL:   abs.String(),
			Type:  typ,
		})
	})

	return lo.UniqBy(links, func(l source.FeedLink) string { return l.URL }), nil
}

func (d *Discoverer) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	body, err := readLimited(resp.Body, d.cfg.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return body, nil
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}
