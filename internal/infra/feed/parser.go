package feed

import (
	"bytes"
	"errors"
	"strings"

	"my-ankode/internal/usecase/ingest"

	"github.com/mmcdole/gofeed"
)

// errEmptyBody is returned for a zero-length response.
var errEmptyBody = errors.New("empty document")

// GofeedParser decodes RSS, Atom and JSON feeds with gofeed.
type GofeedParser struct{}

// NewGofeedParser returns a parser. gofeed parsers are not safe for
// concurrent use, so each Parse call builds its own.
func NewGofeedParser() *GofeedParser {
	return &GofeedParser{}
}

// Parse decodes body. Dates gofeed cannot parse are kept as raw text.
func (p *GofeedParser) Parse(body []byte) (*ingest.ParsedFeed, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyBody
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := &ingest.ParsedFeed{
		Title: strings.TrimSpace(parsed.Title),
		Items: make([]ingest.FeedItem, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		item := ingest.FeedItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			Content:     it.Content,
			Published:   it.Published,
			PublishedAt: it.PublishedParsed,
			Categories:  it.Categories,
		}
		if item.PublishedAt == nil {
			item.PublishedAt = it.UpdatedParsed
		}
		if item.Published == "" {
			item.Published = it.Updated
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
