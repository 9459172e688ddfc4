package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

func TestDedupe_URLDuplicates(t *testing.T) {
	now := time.Now()
	articles := []domain.Article{
		{Title: "First", URL: "https://example.com/a", PublishedAt: &now, SourceTier: 1},
		{Title: "First copy", URL: "https://example.com/a/", PublishedAt: &now, SourceTier: 2},
	}
	out := Dedupe(articles, 0)
	require.Len(t, out, 1)
}

func TestDedupe_ExactTitleDuplicates(t *testing.T) {
	earlier := time.Now()
	later := earlier.Add(time.Hour)
	articles := []domain.Article{
		{Title: "Breaking News!!", URL: "https://a.com/1", PublishedAt: &later, SourceTier: 1},
		{Title: "breaking news", URL: "https://b.com/2", PublishedAt: &earlier, SourceTier: 1},
	}
	out := Dedupe(articles, 0)
	require.Len(t, out, 1)
	assert.Equal(t, "https://a.com/1", out[0].URL) // later article sorts first, first-seen wins
}

func TestDedupe_FuzzyTitleDuplicates(t *testing.T) {
	now := time.Now()
	articles := []domain.Article{
		{Title: "OpenAI launches new model for developers today", URL: "https://a.com/1", PublishedAt: &now, SourceTier: 1},
		{Title: "OpenAI launches new model for developers", URL: "https://b.com/2", PublishedAt: &now, SourceTier: 2},
	}
	out := Dedupe(articles, 0.85)
	require.Len(t, out, 1)
}

func TestDedupe_DistinctTitlesKept(t *testing.T) {
	now := time.Now()
	articles := []domain.Article{
		{Title: "Ukraine war update", URL: "https://a.com/1", PublishedAt: &now},
		{Title: "ChatGPT adoption rises", URL: "https://b.com/2", PublishedAt: &now},
	}
	out := Dedupe(articles, 0.85)
	require.Len(t, out, 2)
}

func TestDedupe_RetainsHigherScoreOnDuplicate(t *testing.T) {
	now := time.Now()
	lo, hi := 40.0, 90.0
	articles := []domain.Article{
		{Title: "Big Story", URL: "https://a.com/1", PublishedAt: &now, SourceTier: 1, QualityScore: &lo},
		{Title: "big story", URL: "https://b.com/2", PublishedAt: &now, SourceTier: 1, QualityScore: &hi},
	}
	out := Dedupe(articles, 0)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].QualityScore)
	assert.Equal(t, hi, *out[0].QualityScore)
}

func TestDedupe_DeterministicOrderAcrossShuffledInput(t *testing.T) {
	now := time.Now()
	older := now.Add(-time.Hour)
	a := []domain.Article{
		{Title: "One", URL: "https://a.com/1", PublishedAt: &now, SourceTier: 2},
		{Title: "Two", URL: "https://a.com/2", PublishedAt: &older, SourceTier: 1},
	}
	b := []domain.Article{a[1], a[0]}

	outA := Dedupe(a, 0)
	outB := Dedupe(b, 0)
	require.Len(t, outA, 2)
	require.Len(t, outB, 2)
	assert.Equal(t, outA[0].URL, outB[0].URL)
	assert.Equal(t, outA[1].URL, outB[1].URL)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, Dedupe(nil, 0))
}
