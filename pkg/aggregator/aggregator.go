// Package aggregator runs the snapshot pipeline: fetch all configured
// feeds, normalize and deduplicate their items, rank keyword topics,
// enrich articles with preview images, and publish the result as one
// atomic snapshot. Every failure short of the final write is recovered
// locally and only ever shows up as thinner data.
package aggregator

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"newscards/pkg/domain"
	"newscards/pkg/topics"
)

// Parser fetches and parses a single feed
type Parser interface {
	Parse(ctx context.Context, url string) (*domain.ParsedFeed, error)
}

// Extractor discovers a preview image URL for an article page
type Extractor interface {
	Preview(ctx context.Context, url string) (string, error)
}

// Publisher persists a completed snapshot
type Publisher interface {
	Write(snap *domain.Snapshot) error
}

// Config holds aggregator configuration
type Config struct {
	Feeds             []string
	TopicsMax         int
	EnrichEnabled     bool
	EnrichMaxArticles int
	EnrichConcurrency int
}

// Aggregator builds and publishes snapshots
type Aggregator struct {
	parser    Parser
	extractor Extractor
	publisher Publisher
	cfg       Config
}

// New creates an aggregator. The extractor may be nil when enrichment
// is disabled.
func New(parser Parser, extractor Extractor, publisher Publisher, cfg Config) *Aggregator {
	return &Aggregator{parser: parser, extractor: extractor, publisher: publisher, cfg: cfg}
}

// Refresh builds a new snapshot and publishes it. The only error that
// escapes is a failed write: a missing or partial snapshot is worse
// than a stale one, so that failure must be loud.
func (a *Aggregator) Refresh(ctx context.Context) error {
	snap := a.Build(ctx)
	if err := a.publisher.Write(snap); err != nil {
		return err
	}
	lgr.Printf("[INFO] published snapshot: %d topics, %d articles", len(snap.Topics), len(snap.ArticlesByID))
	return nil
}

// Build runs the pipeline and returns the assembled snapshot. It never
// fails: unreachable feeds, malformed items and enrichment errors all
// degrade to fewer articles, topics or images. Zero reachable feeds
// produce a valid empty snapshot.
func (a *Aggregator) Build(ctx context.Context) *domain.Snapshot {
	start := time.Now()

	feeds := a.fetchAll(ctx)
	articles := normalizeArticles(feeds)
	a.enrich(ctx, articles)
	ranked := topics.Rank(articles, a.cfg.TopicsMax)

	byID := make(map[string]domain.Article, len(articles))
	for _, art := range articles {
		byID[art.ID] = art
	}

	lgr.Printf("[INFO] built snapshot in %v: %d articles, %d topics", time.Since(start).Round(time.Millisecond), len(articles), len(ranked))

	return &domain.Snapshot{
		GeneratedAt:  time.Now().UTC(),
		Topics:       ranked,
		ArticlesByID: byID,
	}
}

// fetchAll fetches every configured feed concurrently and joins the
// results in configuration order, so deduplication precedence stays
// deterministic. A failed feed occupies its slot as nil and simply
// contributes zero items.
func (a *Aggregator) fetchAll(ctx context.Context) []*domain.ParsedFeed {
	results := make([]*domain.ParsedFeed, len(a.cfg.Feeds))

	g, ctx := errgroup.WithContext(ctx)
	for i, url := range a.cfg.Feeds {
		g.Go(func() error {
			parsed, err := a.parser.Parse(ctx, url)
			if err != nil {
				lgr.Printf("[WARN] failed to fetch feed %s: %v", url, err)
				return nil
			}
			results[i] = parsed
			lgr.Printf("[DEBUG] fetched %d items from %s", len(parsed.Items), url)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors, failures are per-feed

	ok := 0
	for _, r := range results {
		if r != nil {
			ok++
		}
	}
	lgr.Printf("[INFO] fetched %d/%d feeds", ok, len(a.cfg.Feeds))
	return results
}

// enrich fills in missing preview images, bounded by the attempt cap
// and the worker limit. Each worker owns exactly one article index and
// writes only that article's image field. Failures leave the image
// absent and never interrupt other lookups.
func (a *Aggregator) enrich(ctx context.Context, articles []domain.Article) {
	if !a.cfg.EnrichEnabled || a.extractor == nil {
		return
	}

	var candidates []int
	for i := range articles {
		if len(candidates) >= a.cfg.EnrichMaxArticles {
			break
		}
		if articles[i].Image == nil {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}

	g := &errgroup.Group{}
	g.SetLimit(a.cfg.EnrichConcurrency)
	for _, idx := range candidates {
		g.Go(func() error {
			img, err := a.extractor.Preview(ctx, articles[idx].Link)
			if err != nil {
				lgr.Printf("[DEBUG] no preview image for %s: %v", articles[idx].Link, err)
				return nil
			}
			articles[idx].Image = &img
			return nil
		})
	}
	_ = g.Wait() // lookups never return errors, failures are per-article

	found := 0
	for _, idx := range candidates {
		if articles[idx].Image != nil {
			found++
		}
	}
	lgr.Printf("[INFO] enriched %d/%d articles with preview images", found, len(candidates))
}
