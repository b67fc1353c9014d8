// Package content discovers preview images for articles by scanning
// their pages for social preview meta tags. It is a best-effort
// heuristic parser: any failure means "no image found", never an
// aborted run.
package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PreviewExtractor finds og:image / twitter:image style preview URLs
type PreviewExtractor struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewPreviewExtractor creates a new preview image extractor
func NewPreviewExtractor(timeout time.Duration, userAgent string) *PreviewExtractor {
	return &PreviewExtractor{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Preview retrieves the page at urlStr and returns the first social
// preview image URL found in its meta tags, in document order.
func (e *PreviewExtractor) Preview(ctx context.Context, urlStr string) (string, error) {
	// validate URL
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", urlStr)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse HTML from %s: %w", urlStr, err)
	}

	img := findPreviewMeta(doc)
	if img == "" {
		return "", fmt.Errorf("no preview image tag found at %s", urlStr)
	}
	return img, nil
}

// findPreviewMeta returns the content of the first meta tag whose
// property or name is an og:image or twitter:image variant
func findPreviewMeta(doc *goquery.Document) string {
	var found string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		if !isPreviewKey(key) {
			return true
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return true
		}
		found = content
		return false
	})
	return found
}

// isPreviewKey matches og:image, og:image:url, twitter:image,
// twitter:image:src and the like
func isPreviewKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.HasPrefix(key, "og:image") || strings.HasPrefix(key, "twitter:image")
}
