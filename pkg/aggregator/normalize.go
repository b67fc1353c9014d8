package aggregator

import (
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"newscards/pkg/domain"
)

// stripPolicy removes all markup from feed-provided text; descriptions
// routinely arrive as HTML fragments
var stripPolicy = bluemonday.StrictPolicy()

// normalizeArticles maps raw feed items to canonical articles and
// deduplicates them by identity key, first occurrence winning in feed
// configuration order. The result is sorted by publication time
// descending; undated articles sink to the end.
func normalizeArticles(feeds []*domain.ParsedFeed) []domain.Article {
	seen := map[string]struct{}{}
	var articles []domain.Article

	for _, f := range feeds {
		if f == nil {
			continue
		}
		source := normalizeText(f.Title)
		if source == "" {
			source = "RSS"
		}

		for _, item := range f.Items {
			a, ok := normalizeItem(item, source)
			if !ok {
				continue
			}
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			articles = append(articles, a)
		}
	}

	// newest first; missing timestamps count as the epoch and sink
	sort.SliceStable(articles, func(i, j int) bool {
		return sortStamp(articles[i]) > sortStamp(articles[j])
	})

	return articles
}

// normalizeItem resolves the provider-specific field variants into a
// fixed article record. Items with no usable title or link cannot be
// displayed or deduplicated and are silently dropped, they are
// expected feed noise rather than errors.
func normalizeItem(item domain.ParsedItem, source string) (domain.Article, bool) {
	title := normalizeText(item.Title)

	link := item.Link
	if link == "" {
		link = item.GUID
	}
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	description := normalizeText(item.Description)
	if description == "" {
		description = normalizeText(item.Content)
	}

	a := domain.Article{
		ID:          link,
		Title:       title,
		Link:        link,
		Description: description,
		Source:      source,
		PublishedAt: item.Published,
	}
	if item.ImageURL != "" {
		img := item.ImageURL
		a.Image = &img
	}
	return a, true
}

// normalizeText strips markup, decodes entities and collapses
// whitespace runs to single spaces with trimmed ends
func normalizeText(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// sortStamp returns milliseconds since the epoch, zero when undated
func sortStamp(a domain.Article) int64 {
	if a.PublishedAt == nil {
		return 0
	}
	return a.PublishedAt.UnixMilli()
}
