// Package domain holds the value types shared across the aggregation
// engine. Types here carry no back-references and no behavior beyond small
// helpers; every component (validate, fetchsource, ladder, dedup, filter,
// score, diversity, orchestrator, tools) reads and writes these shapes.
package domain

import "time"

// Article is the unit passed between every component of the aggregation
// engine, from the source fetcher through to the tool surface response.
type Article struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Author        string     `json:"author,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	SourceDomain  string     `json:"source_domain"`
	QualityScore  *float64   `json:"quality_score,omitempty"`

	// SourceType, SourceTier and SitePriority are carried through the
	// pipeline for tie-breaking and scoring but are not part of the public
	// JSON shape returned by the tool surface. SourceTier is the source's
	// own tier (Source.Priority, 1..4) and drives dedup ordering.
	// SitePriority is the owning site's priority (Site.Priority, 1..12,
	// 0 meaning unprioritized) and drives the quality scorer's
	// source-rank component. The two are deliberately distinct fields:
	// a tier-1 source on an unprioritized site must not score as if it
	// were on a top-ranked site.
	SourceType   SourceType `json:"-"`
	SourceTier   int        `json:"-"`
	SitePriority int        `json:"-"`
}

// HasScore reports whether the quality scorer has already assigned a score.
func (a *Article) HasScore() bool {
	return a.QualityScore != nil
}

// AgeDays returns the number of whole days between now and the article's
// published time, or -1 if the article has no published time.
func (a *Article) AgeDays(now time.Time) int {
	if a.PublishedAt == nil {
		return -1
	}
	d := now.Sub(*a.PublishedAt)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
