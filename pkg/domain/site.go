package domain

import "sort"

// SourceType identifies the tagged variant of a Source. Each variant is
// dispatched to exactly one fetch implementation in pkg/fetchsource; the
// quality gate (pkg/qualitygate) only ever runs in the SourceGoogleNews arm.
type SourceType string

const (
	SourceOfficialRSS SourceType = "official_rss"
	SourceRSSHub      SourceType = "rsshub"
	SourceGoogleNews  SourceType = "google_news"
	SourceScraper     SourceType = "scraper"
)

// Source is one feed or scraper endpoint belonging to a Site. Sources are
// grouped into tiers (Priority 1..4); the fallback ladder walks tiers in
// ascending order and fans out in parallel within a tier.
type Source struct {
	Type      SourceType `json:"type"`
	URL       string     `json:"url"`
	Priority  int        `json:"priority"`   // tier, 1..4, lower tried first
	TimeoutMS int        `json:"timeout_ms"` // 0 means "use the type default"
}

// Site is a publisher configuration: a canonical domain plus its ordered
// list of sources. A Site with no Priority (nil) is explicit-only and is
// never selected by the top-news orchestrator.
type Site struct {
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Priority *int     `json:"priority,omitempty"`
	Sources  []Source `json:"sources"`
}

// EligibleForTopNews reports whether the site's priority falls in the
// 1..12 band top-news selection requires.
func (s *Site) EligibleForTopNews() bool {
	return s.Priority != nil && *s.Priority >= 1 && *s.Priority <= 12
}

// SourcesByTier groups a site's sources by their Priority (tier) field and
// returns the tiers present, sorted ascending.
func (s *Site) SourcesByTier() (tiers []int, byTier map[int][]Source) {
	byTier = make(map[int][]Source)
	for _, src := range s.Sources {
		byTier[src.Priority] = append(byTier[src.Priority], src)
	}
	tiers = make([]int, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	return tiers, byTier
}
