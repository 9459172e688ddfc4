// Package qualitygate resolves Google News redirect URLs and drops a
// source's entire article batch when too few resolve to a real publisher
// host, as a post-fetch quality check on the google_news source arm.
package qualitygate

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

const (
	// ValidRatioThreshold is the minimum fraction of articles whose final
	// URL host differs from news.google.com for the batch to be kept.
	ValidRatioThreshold = 0.5
	headTimeout         = 2 * time.Second
	googleNewsHost      = "news.google.com"
)

// Gate resolves Google News redirect links via HEAD requests.
type Gate struct {
	Client *http.Client
}

// New builds a Gate using client for HEAD resolution. A nil client falls
// back to a zero-value http.Client; each HEAD request is bounded by the
// package's fixed per-request timeout either way.
func New(client *http.Client) *Gate {
	if client == nil {
		client = &http.Client{}
	}
	return &Gate{Client: client}
}

// Apply resolves each article's URL, replacing it and its source_domain
// with the redirect target on success, then discards the entire batch if
// fewer than ValidRatioThreshold resolved away from news.google.com.
// Articles older than lastNDays are dropped regardless.
func (g *Gate) Apply(ctx context.Context, articles []domain.Article, now time.Time, lastNDays int) (kept []domain.Article, ok bool) {
	if len(articles) == 0 {
		return nil, true
	}

	resolved := make([]domain.Article, len(articles))
	validCount := 0
	for i, a := range articles {
		resolvedURL, host := g.resolve(ctx, a.URL)
		if host != googleNewsHost {
			validCount++
			a.URL = resolvedURL
			a.SourceDomain = host
		}
		resolved[i] = a
	}

	validRatio := float64(validCount) / float64(len(articles))
	if validRatio < ValidRatioThreshold {
		return nil, false
	}

	kept = make([]domain.Article, 0, len(resolved))
	for _, a := range resolved {
		if a.PublishedAt != nil && a.AgeDays(now) > lastNDays {
			continue
		}
		kept = append(kept, a)
	}
	return kept, true
}

// resolve issues a HEAD request with a short deadline to follow redirects
// and returns the final URL and its host. On any failure the original URL
// and its host are returned unchanged.
func (g *Gate) resolve(ctx context.Context, rawURL string) (finalURL, host string) {
	headCtx, cancel := context.WithTimeout(ctx, headTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(headCtx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL, hostOf(rawURL)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return rawURL, hostOf(rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck // HEAD responses carry no body worth checking

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return final, hostOf(final)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
