// Package score computes the 0-100 quality score assigned to each article
// before diversity selection, combining informativeness, source rank,
// keyword richness, recency and a penalty for low-quality phrasing.
package score

import (
	"regexp"
	"strings"
	"time"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

// DefaultMinQualityScore is the threshold below which the filter drops a
// scored article, unless the caller supplies its own.
const DefaultMinQualityScore = 35.0

const (
	maxInformativeness = 40.0
	informativenessCap = 600.0 // chars, linear scale ceiling
	numericBonusMax    = 10.0

	maxSourceRank = 20.0
	maxKeyword    = 30.0
	maxRecency    = 10.0
	penalty       = 15.0
)

var numericTokenPattern = regexp.MustCompile(`\$?\d+(\.\d+)?[%BMK]?`)

var lowQualityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(optimistic|pessimistic)\s+about\b`),
	regexp.MustCompile(`(?i)\beyes\s+(on|for)\b`),
	regexp.MustCompile(`(?i)\b(may|could|might)\s+be\b`),
	regexp.MustCompile(`(?i)\byou\s+won't\s+believe\b`),
	regexp.MustCompile(`(?i)\bthis\s+one\s+trick\b`),
	regexp.MustCompile(`(?i)\bnumber\s+\d+\s+will\s+shock\s+you\b`),
}

var keywordDictionaries = map[string][]string{
	"ai":       {"ai", "artificial intelligence", "machine learning", "llm", "gpt", "neural network"},
	"tech":     {"tech", "technology", "software", "startup", "app", "device"},
	"business": {"business", "market", "revenue", "investment", "ipo", "acquisition"},
}

// Score computes an article's quality score in [0,100]. site.priority is
// 0 when the site is unprioritized.
func Score(a domain.Article, sitePriority int, now time.Time) float64 {
	total := informativeness(a.Summary) + sourceRank(sitePriority) + keywordRichness(a) + recency(a, now)
	if hasLowQualityPattern(a.Title + " " + a.Summary) {
		total -= penalty
	}
	return clamp(total, 0, 100)
}

func informativeness(summary string) float64 {
	length := float64(len([]rune(summary)))
	if length > informativenessCap {
		length = informativenessCap
	}
	points := (length / informativenessCap) * (maxInformativeness - numericBonusMax)
	if numericTokenPattern.MatchString(summary) {
		points += numericBonusMax
	}
	return clamp(points, 0, maxInformativeness)
}

func sourceRank(priority int) float64 {
	switch {
	case priority >= 1 && priority <= 3:
		return maxSourceRank
	case priority >= 4 && priority <= 6:
		return 15
	case priority >= 7 && priority <= 9:
		return 10
	case priority >= 10 && priority <= 12:
		return 5
	default:
		return 0
	}
}

func keywordRichness(a domain.Article) float64 {
	haystack := strings.ToLower(a.Title + " " + a.Summary)
	matches := 0
	for _, keywords := range keywordDictionaries {
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matches++
				break
			}
		}
	}
	switch {
	case matches >= 3:
		return maxKeyword
	case matches == 2:
		return 20
	case matches == 1:
		return 10
	default:
		return 0
	}
}

func recency(a domain.Article, now time.Time) float64 {
	if a.PublishedAt == nil {
		return 0
	}
	age := now.Sub(*a.PublishedAt)
	switch {
	case age < 6*time.Hour:
		return maxRecency
	case age < 24*time.Hour:
		return 7
	case age < 48*time.Hour:
		return 5
	case age < 72*time.Hour:
		return 3
	default:
		return 0
	}
}

func hasLowQualityPattern(text string) bool {
	for _, re := range lowQualityPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
