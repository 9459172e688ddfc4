// Package filter applies the date-window, topic and location filters that
// run after deduplication and before scoring. All keyword matching is
// word-boundary based; substring matches are never accepted.
package filter

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

// Params bundles the filter criteria for a single request. A zero value
// for LastNDays or an empty Topic/Location means that filter is skipped.
type Params struct {
	Now               time.Time
	LastNDays         int
	RequireDateWindow bool
	Topic             string
	Location          string
}

var (
	patternCacheMu sync.Mutex
	patternCache   = make(map[string]*regexp.Regexp)
)

// wordBoundaryPattern compiles (and caches) a Unicode-aware word-boundary
// regexp for a literal phrase. Go's RE2 engine has no \b for non-ASCII
// runes, so boundaries are expressed as negative lookalikes using
// lookaround-free alternation: start/end of string or a non-letter,
// non-digit rune.
func wordBoundaryPattern(phrase string) *regexp.Regexp {
	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()

	if re, ok := patternCache[phrase]; ok {
		return re
	}
	quoted := regexp.QuoteMeta(strings.ToLower(phrase))
	quoted = strings.ReplaceAll(quoted, `\ `, `\s+`)
	pattern := `(^|[^\p{L}\p{N}])` + quoted + `($|[^\p{L}\p{N}])`
	re := regexp.MustCompile(pattern)
	patternCache[phrase] = re
	return re
}

func containsWord(haystack, phrase string) bool {
	return wordBoundaryPattern(phrase).MatchString(" " + strings.ToLower(haystack) + " ")
}

// Apply runs the date, topic and location filters (AND-composed) over
// articles, returning only those that pass every configured filter.
func Apply(articles []domain.Article, p Params) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if !passesDate(a, p) {
			continue
		}
		if !passesTopic(a, p.Topic) {
			continue
		}
		if !passesLocation(a, p.Location) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func passesDate(a domain.Article, p Params) bool {
	if p.LastNDays <= 0 {
		return true
	}
	if a.PublishedAt == nil {
		return !p.RequireDateWindow
	}
	return a.AgeDays(p.Now) <= p.LastNDays
}

func passesTopic(a domain.Article, topic string) bool {
	if topic == "" {
		return true
	}
	keywords, ok := TopicDictionary[topic]
	if !ok || len(keywords) == 0 {
		keywords = []string{topic}
	}
	haystack := searchableText(a)
	for _, kw := range keywords {
		if containsWord(haystack, kw) {
			return true
		}
	}
	return false
}

func passesLocation(a domain.Article, location string) bool {
	if location == "" {
		return true
	}
	return containsWord(searchableText(a), location)
}

func searchableText(a domain.Article) string {
	var b strings.Builder
	b.WriteString(a.Title)
	b.WriteByte(' ')
	b.WriteString(a.Summary)
	for _, tag := range a.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	return b.String()
}
