// Package dedup removes duplicate articles by canonical URL and by exact
// or fuzzy-matched normalized title, preserving first-seen order after a
// deterministic stable sort.
package dedup

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/validate"
)

// DefaultJaccardThreshold is the normalized-token Jaccard similarity at or
// above which two titles are treated as duplicates. Exposed as a config knob
// rather than hardcoded, since the exact threshold is a tuning decision.
const DefaultJaccardThreshold = 0.85

var trailingPunctuation = regexp.MustCompile(`[\p{P}\s]+$`)

// Dedupe stable-sorts articles by (published_at desc, source tier asc,
// url asc) to make "first-seen" reproducible across nondeterministic
// parallel fetches, then removes URL and title duplicates in two passes.
func Dedupe(articles []domain.Article, jaccardThreshold float64) []domain.Article {
	if len(articles) == 0 {
		return articles
	}
	if jaccardThreshold <= 0 {
		jaccardThreshold = DefaultJaccardThreshold
	}

	sorted := make([]domain.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKeyLess(sorted[i], sorted[j])
	})

	byURL := dedupeByURL(sorted)
	return dedupeByTitle(byURL, jaccardThreshold)
}

func sortKeyLess(a, b domain.Article) bool {
	at, bt := publishedOrZero(a), publishedOrZero(b)
	if !at.Equal(bt) {
		return at.After(bt) // published_at desc
	}
	if a.SourceTier != b.SourceTier {
		return a.SourceTier < b.SourceTier // source tier asc
	}
	return a.URL < b.URL // url asc
}

func publishedOrZero(a domain.Article) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return time.Time{}
}

func dedupeByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		key, err := validate.CanonicalURL(a.URL)
		if err != nil {
			key = a.URL
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func dedupeByTitle(articles []domain.Article, jaccardThreshold float64) []domain.Article {
	type accepted struct {
		article domain.Article
		norm    string
		tokens  map[string]struct{}
	}

	var acceptedList []accepted
	seenExact := make(map[string]int) // normalized title -> index in acceptedList

	for _, a := range articles {
		norm := normalizeTitle(a.Title)
		tokens := tokenSet(norm)

		if idx, exists := seenExact[norm]; exists {
			replaceIfBetterScore(&acceptedList[idx].article, a)
			continue
		}

		dupIdx := -1
		for i, ac := range acceptedList {
			if jaccard(tokens, ac.tokens) >= jaccardThreshold {
				dupIdx = i
				break
			}
		}
		if dupIdx >= 0 {
			replaceIfBetterScore(&acceptedList[dupIdx].article, a)
			continue
		}

		acceptedList = append(acceptedList, accepted{article: a, norm: norm, tokens: tokens})
		seenExact[norm] = len(acceptedList) - 1
	}

	out := make([]domain.Article, len(acceptedList))
	for i, ac := range acceptedList {
		out[i] = ac.article
	}
	return out
}

// replaceIfBetterScore keeps the earlier article unless the newer one has a
// strictly higher quality score, per "retain the earlier one; if both have
// scores, retain the higher score".
func replaceIfBetterScore(kept *domain.Article, candidate domain.Article) {
	if kept.QualityScore != nil && candidate.QualityScore != nil && *candidate.QualityScore > *kept.QualityScore {
		*kept = candidate
	}
}

func normalizeTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	t = trailingPunctuation.ReplaceAllString(t, "")
	fields := strings.Fields(t)
	return strings.Join(fields, " ")
}

func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
