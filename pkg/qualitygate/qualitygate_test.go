package qualitygate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

func TestApply_ResolvesRedirectsAndKeepsBatch(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/story", http.StatusFound)
	}))
	defer redirector.Close()

	now := time.Now()
	articles := []domain.Article{
		{URL: redirector.URL + "/rss/articles/1", Title: "a", PublishedAt: ptrTime(now)},
		{URL: redirector.URL + "/rss/articles/2", Title: "b", PublishedAt: ptrTime(now)},
	}

	g := New(redirector.Client())
	kept, ok := g.Apply(context.Background(), articles, now, 15)
	require.True(t, ok)
	require.Len(t, kept, 2)
	assert.NotContains(t, kept[0].SourceDomain, "news.google.com")
}

func TestApply_DiscardsBatchBelowValidRatio(t *testing.T) {
	// resolve() falls back to the original host on request failure, so an
	// unreachable "news.google.com" URL stays unresolved and stays invalid.
	articles := []domain.Article{
		{URL: "https://news.google.com/rss/articles/1", Title: "a"},
		{URL: "https://news.google.com/rss/articles/2", Title: "b"},
		{URL: "https://news.google.com/rss/articles/3", Title: "c"},
	}

	g := New(&http.Client{Timeout: time.Millisecond})
	_, ok := g.Apply(context.Background(), articles, time.Now(), 15)
	assert.False(t, ok)
}

func TestApply_DropsStaleArticles(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	now := time.Now()
	old := now.AddDate(0, 0, -30)
	articles := []domain.Article{
		{URL: target.URL + "/a", Title: "fresh", PublishedAt: ptrTime(now)},
		{URL: target.URL + "/b", Title: "stale", PublishedAt: ptrTime(old)},
	}

	g := New(target.Client())
	kept, ok := g.Apply(context.Background(), articles, now, 15)
	require.True(t, ok)
	require.Len(t, kept, 1)
	assert.Equal(t, "fresh", kept[0].Title)
}

func TestApply_EmptyInput(t *testing.T) {
	g := New(nil)
	kept, ok := g.Apply(context.Background(), nil, time.Now(), 15)
	assert.True(t, ok)
	assert.Empty(t, kept)
}

func ptrTime(t time.Time) *time.Time { return &t }
