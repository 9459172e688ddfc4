package ladder

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/fetchsource"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
)

// erroringTransport fails every request, so qualitygate's HEAD resolution
// always falls back to the original URL, which is the simplest way to force
// a news.google.com valid_ratio failure without a live network call.
type erroringTransport struct{}

func (erroringTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("network disabled in test")
}

// fakeFetcher maps a Source URL to a canned Result, so each test can script
// exactly what every source in a tier "returns" without a network.
type fakeFetcher struct {
	byURL map[string]fetchsource.Result
}

func (f *fakeFetcher) Fetch(_ context.Context, src domain.Source, _ string) fetchsource.Result {
	if res, ok := f.byURL[src.URL]; ok {
		return res
	}
	return fetchsource.Result{Outcome: fetchsource.OutcomeEmpty}
}

func articlesNamed(prefix string, n int, published time.Time) []domain.Article {
	out := make([]domain.Article, 0, n)
	for i := 0; i < n; i++ {
		ts := published.Add(-time.Duration(i) * time.Minute)
		out = append(out, domain.Article{
			Title:        prefix + string(rune('a'+i)),
			URL:          prefix + string(rune('a'+i)) + "-url",
			PublishedAt:  &ts,
			SourceDomain: "example.com",
		})
	}
	return out
}

func TestRun_StopsAtFirstTierMeetingThreshold(t *testing.T) {
	now := time.Now()
	site := domain.Site{
		Domain: "example.com",
		Sources: []domain.Source{
			{Type: domain.SourceOfficialRSS, URL: "tier1-rss", Priority: 1},
			{Type: domain.SourceRSSHub, URL: "tier2-rsshub", Priority: 2},
		},
	}
	fetcher := &fakeFetcher{byURL: map[string]fetchsource.Result{
		"tier1-rss":    {Outcome: fetchsource.OutcomeOK, Articles: articlesNamed("t1-", 3, now)},
		"tier2-rsshub": {Outcome: fetchsource.OutcomeOK, Articles: articlesNamed("t2-", 9, now)},
	}}

	articles, sourceUsed, tried := Run(context.Background(), fetcher, nil, site, 15, 0.85)

	require.Len(t, articles, 9)
	assert.Equal(t, []int{1, 2}, tried)
	assert.Contains(t, sourceUsed, "tier 2")
}

func TestRun_GoogleNewsQualityFailureFallsThroughToScraperTier(t *testing.T) {
	now := time.Now()
	site := domain.Site{
		Domain: "example.com",
		Sources: []domain.Source{
			{Type: domain.SourceGoogleNews, URL: "tier1-gnews", Priority: 1},
			{Type: domain.SourceScraper, URL: "tier2-scraper", Priority: 2},
		},
	}
	badBatch := []domain.Article{
		{Title: "gn-a", URL: "https://news.google.com/a", SourceDomain: "news.google.com", PublishedAt: &now},
		{Title: "gn-b", URL: "https://news.google.com/b", SourceDomain: "news.google.com", PublishedAt: &now},
	}
	fetcher := &fakeFetcher{byURL: map[string]fetchsource.Result{
		"tier1-gnews":   {Outcome: fetchsource.OutcomeOK, Articles: badBatch},
		"tier2-scraper": {Outcome: fetchsource.OutcomeOK, Articles: articlesNamed("t2-", 6, now)},
	}}

	gate := qualitygate.New(&http.Client{Transport: erroringTransport{}})
	articles, sourceUsed, tried := Run(context.Background(), fetcher, gate, site, 15, 0.85)

	require.Len(t, articles, 6)
	assert.Equal(t, []int{1, 2}, tried)
	assert.Contains(t, sourceUsed, "tier 2")
}

func TestRun_BestSoFarFallbackWhenNoTierMeetsThreshold(t *testing.T) {
	now := time.Now()
	site := domain.Site{
		Domain: "example.com",
		Sources: []domain.Source{
			{Type: domain.SourceOfficialRSS, URL: "tier1-rss", Priority: 1},
			{Type: domain.SourceRSSHub, URL: "tier2-rsshub", Priority: 2},
		},
	}
	fetcher := &fakeFetcher{byURL: map[string]fetchsource.Result{
		"tier1-rss":    {Outcome: fetchsource.OutcomeOK, Articles: articlesNamed("t1-", 1, now)},
		"tier2-rsshub": {Outcome: fetchsource.OutcomeOK, Articles: articlesNamed("t2-", 3, now)},
	}}

	articles, sourceUsed, tried := Run(context.Background(), fetcher, nil, site, 15, 0.85)

	require.Len(t, articles, 3)
	assert.Equal(t, []int{1, 2}, tried)
	assert.Contains(t, sourceUsed, "no tier reached the minimum threshold")
}

func TestRun_DuplicatesWithinTierCollapse(t *testing.T) {
	now := time.Now()
	site := domain.Site{
		Domain: "example.com",
		Sources: []domain.Source{
			{Type: domain.SourceOfficialRSS, URL: "tier1-rss", Priority: 1},
		},
	}
	dup := domain.Article{Title: "same story", URL: "https://example.com/a", PublishedAt: &now, SourceDomain: "example.com"}
	dupAgain := domain.Article{Title: "same story", URL: "https://example.com/a?utm_source=x", PublishedAt: &now, SourceDomain: "example.com"}
	fetcher := &fakeFetcher{byURL: map[string]fetchsource.Result{
		"tier1-rss": {Outcome: fetchsource.OutcomeOK, Articles: []domain.Article{dup, dupAgain}},
	}}

	articles, _, _ := Run(context.Background(), fetcher, nil, site, 15, 0.85)
	assert.Len(t, articles, 1)
}

func TestRun_NoSourcesProducesEmptyResult(t *testing.T) {
	site := domain.Site{Domain: "example.com"}
	fetcher := &fakeFetcher{byURL: map[string]fetchsource.Result{}}

	articles, sourceUsed, tried := Run(context.Background(), fetcher, nil, site, 15, 0.85)
	assert.Empty(t, articles)
	assert.Empty(t, tried)
	assert.Contains(t, sourceUsed, "all tiers exhausted")
}
