package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/observability/metrics"
	"my-ankode/internal/observability/tracing"
	"my-ankode/internal/repository"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FeedFetcher downloads the raw body of a feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser decodes a feed body. An empty feed is not an error.
type FeedParser interface {
	Parse(body []byte) (*ParsedFeed, error)
}

// ParsedFeed is the format-independent view of a feed document.
type ParsedFeed struct {
	Title string
	Items []FeedItem
}

// FeedItem is one entry of a feed. PublishedAt is set when the parser
// understood the date; Published keeps the raw text for a second attempt.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	Published   string
	PublishedAt *time.Time
	Categories  []string
}

// Result is the outcome of one ingestion run.
type Result struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// scope selects between public ingestion and ingestion on behalf of a user.
type scope struct {
	userID *int64
}

func (s scope) mode() string {
	if s.userID == nil {
		return "public"
	}
	return "user"
}

// Service ingests feeds into the article store.
type Service struct {
	fetcher   FeedFetcher
	parser    FeedParser
	articles  repository.ArticleRepository
	sources   repository.SourceRepository
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
	now       func() time.Time
	// validateURL runs before any fetch
	validateURL func(string) error
}

// NewService wires the ingestion pipeline. sources may be nil when
// IngestSource is never used. Feed URLs must resolve to public hosts.
func NewService(
	fetcher FeedFetcher,
	parser FeedParser,
	articles repository.ArticleRepository,
	sources repository.SourceRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:     fetcher,
		parser:      parser,
		articles:    articles,
		sources:     sources,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger,
		now:         time.Now,
		validateURL: entity.ValidatePublicURL,
	}
}

// WithURLValidator replaces the check applied to feed URLs before fetching.
func (s *Service) WithURLValidator(validate func(string) error) *Service {
	s.validateURL = validate
	return s
}

// IngestPublic ingests feedURL with no owner.
func (s *Service) IngestPublic(ctx context.Context, feedURL, source string) Result {
	return s.run(ctx, feedURL, source, scope{})
}

// IngestForUser ingests feedURL on behalf of userID. The owner is recorded as
// provenance; every user can read the stored articles.
func (s *Service) IngestForUser(ctx context.Context, feedURL, source string, userID int64) Result {
	return s.run(ctx, feedURL, source, scope{userID: &userID})
}

// IngestSource ingests a stored subscription, publicly when it has no owner,
// and records the ingestion time on success.
func (s *Service) IngestSource(ctx context.Context, src *entity.Source) Result {
	if src == nil {
		return Result{Error: (&entity.ValidationError{Field: "source", Message: "is required"}).Error()}
	}

	var res Result
	if src.OwnerID == nil {
		res = s.IngestPublic(ctx, src.FeedURL, src.Name)
	} else {
		res = s.IngestForUser(ctx, src.FeedURL, src.Name, *src.OwnerID)
	}

	if res.Success && s.sources != nil {
		if err := s.sources.TouchIngestedAt(context.WithoutCancel(ctx), src.ID, s.now()); err != nil {
			s.logger.Warn("failed to record source ingestion time",
				slog.Int64("source_id", src.ID),
				slog.Any("error", err))
		}
	}
	return res
}

// BatchOptions controls IngestActiveSources.
type BatchOptions struct {
	// Parallelism bounds the number of sources ingested at once
	Parallelism int
	// SourceTimeout bounds a single source; zero means no extra deadline
	SourceTimeout time.Duration
}

// RunStats summarises one pass over the active sources.
type RunStats struct {
	Sources   int
	Succeeded int64
	Failed    int64
	Inserted  int64
	Duration  time.Duration
}

// IngestActiveSources ingests every active source once. A failing source
// does not stop the others; only listing the sources can fail the pass.
func (s *Service) IngestActiveSources(ctx context.Context, opts BatchOptions) (*RunStats, error) {
	if s.sources == nil {
		return nil, errors.New("ingest active sources: no source repository")
	}
	start := s.now()

	srcs, err := s.sources.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active sources: %w", err)
	}
	stats := &RunStats{Sources: len(srcs)}

	var eg errgroup.Group
	if opts.Parallelism > 0 {
		eg.SetLimit(opts.Parallelism)
	}
	for _, src := range srcs {
		eg.Go(func() error {
			sctx := ctx
			if opts.SourceTimeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(ctx, opts.SourceTimeout)
				defer cancel()
			}
			res := s.IngestSource(sctx, src)
			if res.Success {
				atomic.AddInt64(&stats.Succeeded, 1)
				atomic.AddInt64(&stats.Inserted, int64(res.Count))
			} else {
				atomic.AddInt64(&stats.Failed, 1)
			}
			return nil
		})
	}
	_ = eg.Wait()

	stats.Duration = s.now().Sub(start)
	s.logger.Info("active sources ingestion completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("succeeded", stats.Succeeded),
		slog.Int64("failed", stats.Failed),
		slog.Int64("inserted", stats.Inserted),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

func (s *Service) run(ctx context.Context, feedURL, source string, sc scope) (res Result) {
	mode := sc.mode()
	start := s.now()
	logger := s.logger.With(
		slog.String("feed_url", feedURL),
		slog.String("source", source),
		slog.String("mode", mode))
	if sc.userID != nil {
		logger = logger.With(slog.Int64("user_id", *sc.userID))
	}

	ctx, span := tracing.StartSpan(ctx, "ingest."+mode)
	defer span.End()

	defer func() {
		metrics.RecordIngestRun(mode, res.Success, s.now().Sub(start))
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("feed ingestion panicked", slog.Any("panic", r))
			res = s.fail(logger, span, errInternal)
		}
	}()

	source = strings.TrimSpace(source)
	feedURL = strings.TrimSpace(feedURL)
	if err := s.validateURL(feedURL); err != nil {
		return s.fail(logger, span, err)
	}
	if err := entity.ValidateSourceLabel(source); err != nil {
		return s.fail(logger, span, err)
	}

	logger.Info("feed fetch started")
	body, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = &FetchError{URL: feedURL, Err: err}
		}
		return s.fail(logger, span, err)
	}

	feed, err := s.parser.Parse(body)
	if err != nil {
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			err = &ParseError{URL: feedURL, Err: err}
		}
		return s.fail(logger, span, err)
	}
	if feed == nil {
		feed = &ParsedFeed{}
	}
	logger.Info("feed fetch succeeded", slog.Int("items", len(feed.Items)))

	staged, considered, err := s.stage(ctx, logger, feed.Items, source, sc)
	if err != nil {
		return s.fail(logger, span, err)
	}

	inserted := 0
	if len(staged) > 0 {
		insertStart := s.now()
		inserted, err = s.articles.InsertBatch(ctx, staged)
		metrics.RecordDBQuery("insert_articles", s.now().Sub(insertStart))
		if err != nil {
			return s.fail(logger, span, fmt.Errorf("insert articles: %w", err))
		}
	}

	duplicated := considered - inserted
	metrics.RecordIngestArticles(inserted, duplicated)
	logger.Info("feed ingestion completed",
		slog.Int("inserted", inserted),
		slog.Int("duplicated", duplicated),
		slog.Duration("duration", s.now().Sub(start)))

	return Result{Success: true, Count: inserted}
}

// stage builds the articles to insert. considered counts items with a link,
// so considered minus inserted is the number of duplicates.
func (s *Service) stage(ctx context.Context, logger *slog.Logger, items []FeedItem, source string, sc scope) ([]*entity.Article, int, error) {
	seen := make(map[string]struct{}, len(items))
	staged := make([]*entity.Article, 0, len(items))
	considered := 0
	createdAt := s.now()

	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			logger.Debug("skipping feed item without link", slog.String("title", item.Title))
			continue
		}
		considered++

		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		existing, err := s.articles.FindByURL(ctx, link)
		if err != nil {
			return nil, considered, fmt.Errorf("find article by url: %w", err)
		}
		if existing != nil {
			continue
		}

		staged = append(staged, &entity.Article{
			Title:       strings.TrimSpace(item.Title),
			URL:         link,
			Description: s.description(item),
			Source:      source,
			Tags:        normalizeTags(item.Categories),
			PublishedAt: s.publishedAt(logger, item),
			CreatedAt:   createdAt,
			OwnerID:     sc.userID,
		})
	}
	return staged, considered, nil
}

func (s *Service) description(item FeedItem) string {
	raw := item.Description
	if strings.TrimSpace(raw) == "" {
		raw = item.Content
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(raw))
}

func (s *Service) publishedAt(logger *slog.Logger, item FeedItem) *time.Time {
	if item.PublishedAt != nil {
		t := item.PublishedAt.UTC()
		return &t
	}
	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		metrics.RecordDateParseWarning()
		logger.Warn("feed item date could not be parsed",
			slog.String("link", item.Link),
			slog.String("published", raw))
		return nil
	}
	t = t.UTC()
	return &t
}

func normalizeTags(categories []string) []string {
	tags := lo.Uniq(lo.Compact(lo.Map(categories, func(c string, _ int) string {
		return strings.TrimSpace(c)
	})))
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func (s *Service) fail(logger *slog.Logger, span trace.Span, err error) Result {
	kind := errorType(err)
	tracing.RecordError(span, err)
	metrics.RecordIngestError(kind)
	logger.Warn("feed ingestion failed",
		slog.String("error_type", kind),
		slog.Any("error", err))
	return Result{Error: err.Error()}
}
