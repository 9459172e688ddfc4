// Package orchestrator implements the top-news operation: selecting
// priority sites (or resolving caller-supplied domain tokens), running the
// fallback ladder for each in parallel, then merging, filtering, scoring,
// diversifying and capping the combined result.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prayag001/NewsNexus/pkg/dedup"
	"github.com/prayag001/NewsNexus/pkg/diversity"
	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/filter"
	"github.com/prayag001/NewsNexus/pkg/ladder"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
	"github.com/prayag001/NewsNexus/pkg/score"
)

const (
	// SitePoolLimit bounds parallel per-site ladder invocations.
	SitePoolLimit = 8
	// SiteDeadline is the wall-clock budget for a single site's ladder run.
	SiteDeadline = 10 * time.Second
	// TopNewsSiteLimit caps how many prioritized sites feed a first pass.
	TopNewsSiteLimit = 12
	// DeepSearchMax bounds the supplemental site count when the first pass
	// falls short of the requested count and no domains were specified.
	DeepSearchMax = 8
)

// Params configures a top-news request; zero values mean "not specified" and
// pick up the operation's own defaults.
type Params struct {
	Count               int
	Topic               string
	Location            string
	LastNDays           int
	RequireDateWindow   bool     // true when the caller explicitly set LastNDays
	Domains             []string // already lower-cased/trimmed caller tokens
	MinQualityScore     float64
	EnableQualityFilter bool
	JaccardThreshold    float64
}

// Result is the top-news response payload.
type Result struct {
	Articles      []domain.Article
	SourcesUsed   []string
	TotalArticles int
	FilteredOut   int
}

// SourceFetcher is the subset of ladder.SourceFetcher the orchestrator
// depends on; kept as its own alias so callers don't need to import ladder
// just to build an Orchestrator.
type SourceFetcher = ladder.SourceFetcher

// Orchestrator ties the fallback ladder to a site list for the top-news
// operation.
type Orchestrator struct {
	Fetcher SourceFetcher
	Gate    *qualitygate.Gate
	Sites   []domain.Site
}

// New builds an Orchestrator over sites, dispatching fetches through
// fetcher and running the Google News quality gate through gate.
func New(fetcher SourceFetcher, gate *qualitygate.Gate, sites []domain.Site) *Orchestrator {
	return &Orchestrator{Fetcher: fetcher, Gate: gate, Sites: sites}
}

// MatchDomain resolves a caller-supplied token against o.Sites using the
// fuzzy domain-matching rule (§6): lower-case, strip "www.", try exact
// match, then "token." as a substring, then a plain substring; ties broken
// by smaller site priority, then lexicographically by domain.
func (o *Orchestrator) MatchDomain(token string) (domain.Site, bool) {
	return MatchDomain(o.Sites, token)
}

// MatchDomain is the standalone form of Orchestrator.MatchDomain, usable by
// callers (e.g. the get_articles operation) that only need domain
// resolution without running the top-news pipeline.
func MatchDomain(sites []domain.Site, token string) (domain.Site, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.TrimPrefix(token, "www.")
	if token == "" {
		return domain.Site{}, false
	}

	if site, ok := bestMatch(sites, func(s domain.Site) bool { return s.Domain == token }); ok {
		return site, true
	}
	if site, ok := bestMatch(sites, func(s domain.Site) bool { return strings.Contains(s.Domain, token+".") }); ok {
		return site, true
	}
	if site, ok := bestMatch(sites, func(s domain.Site) bool { return strings.Contains(s.Domain, token) }); ok {
		return site, true
	}
	return domain.Site{}, false
}

func bestMatch(sites []domain.Site, pred func(domain.Site) bool) (domain.Site, bool) {
	var candidates []domain.Site
	for _, s := range sites {
		if pred(s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return domain.Site{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := sitePriority(candidates[i]), sitePriority(candidates[j])
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Domain < candidates[j].Domain
	})
	return candidates[0], true
}

func sitePriority(s domain.Site) int {
	if s.Priority == nil {
		return math.MaxInt
	}
	return *s.Priority
}

// Run executes the top-news operation described in §4.K.
func (o *Orchestrator) Run(ctx context.Context, p Params) (Result, error) {
	now := time.Now().UTC()

	var sites []domain.Site
	var eligible []domain.Site
	deepSearchEligible := false

	if len(p.Domains) > 0 {
		var unmatched []string
		seen := make(map[string]bool)
		for _, tok := range p.Domains {
			site, ok := o.MatchDomain(tok)
			if !ok {
				unmatched = append(unmatched, tok)
				continue
			}
			if seen[site.Domain] {
				continue
			}
			seen[site.Domain] = true
			sites = append(sites, site)
		}
		if len(sites) == 0 {
			return Result{}, domain.NewError(domain.NoMatch,
				fmt.Sprintf("no configured site matched: %s", strings.Join(unmatched, ", ")))
		}
	} else {
		// eligible holds every prioritized site in ascending priority order; the
		// first pass takes the leading sites in the top-news band (at most
		// TopNewsSiteLimit) and deep search draws from the rest.
		eligible = prioritizedSitesSorted(o.Sites)
		n := 0
		for n < len(eligible) && n < TopNewsSiteLimit && eligible[n].EligibleForTopNews() {
			n++
		}
		sites = eligible[:n]
		deepSearchEligible = len(eligible) > len(sites)
	}

	articles, sourcesUsed := o.runSites(ctx, sites, p.LastNDays, p.JaccardThreshold)
	articles = o.mergeStage(articles, p, now)

	if deepSearchEligible && len(articles) < p.Count {
		remain := len(eligible) - len(sites)
		supplementCount := DeepSearchMax
		if remain < supplementCount {
			supplementCount = remain
		}
		supplement := eligible[len(sites) : len(sites)+supplementCount]

		moreArticles, moreSources := o.runSites(ctx, supplement, p.LastNDays, p.JaccardThreshold)
		sourcesUsed = append(sourcesUsed, moreSources...)
		articles = append(articles, moreArticles...)
		articles = o.mergeStage(articles, p, now)
	}

	totalArticles := len(articles)
	filteredOut := 0
	if p.EnableQualityFilter {
		threshold := p.MinQualityScore
		if threshold <= 0 {
			threshold = score.DefaultMinQualityScore
		}
		kept := make([]domain.Article, 0, len(articles))
		for _, a := range articles {
			if a.QualityScore != nil && *a.QualityScore >= threshold {
				kept = append(kept, a)
			} else {
				filteredOut++
			}
		}
		articles = kept
	}

	SortByPublishedDesc(articles)

	if countDistinctDomains(articles) >= 2 {
		articles = diversity.Select(articles, p.Count, o.priorityLookup())
	} else if len(articles) > p.Count {
		articles = articles[:p.Count]
	}

	return Result{
		Articles:      articles,
		SourcesUsed:   sourcesUsed,
		TotalArticles: totalArticles,
		FilteredOut:   filteredOut,
	}, nil
}

// mergeStage re-runs dedup, filtering and scoring over the accumulated
// article list; it is called both after the first pass and after the deep
// search supplement, since adding sites can introduce new duplicates.
func (o *Orchestrator) mergeStage(articles []domain.Article, p Params, now time.Time) []domain.Article {
	threshold := p.JaccardThreshold
	if threshold <= 0 {
		threshold = dedup.DefaultJaccardThreshold
	}
	articles = dedup.Dedupe(articles, threshold)
	articles = filter.Apply(articles, filter.Params{
		Now:               now,
		LastNDays:         p.LastNDays,
		RequireDateWindow: p.RequireDateWindow,
		Topic:             p.Topic,
		Location:          p.Location,
	})
	for i := range articles {
		s := score.Score(articles[i], articles[i].SitePriority, now)
		articles[i].QualityScore = &s
	}
	return articles
}

func (o *Orchestrator) priorityLookup() diversity.DomainPriority {
	m := make(map[string]int, len(o.Sites))
	for _, s := range o.Sites {
		if s.Priority != nil {
			m[s.Domain] = *s.Priority
		}
	}
	return func(d string) (int, bool) {
		p, ok := m[d]
		return p, ok
	}
}

type siteResult struct {
	articles []domain.Article
	source   string
}

// runSites fans out ladder.Run across sites (worker pool ≤ SitePoolLimit,
// per-site deadline SiteDeadline), stamps each article's source_domain when
// the fetcher didn't already set one, and stamps SitePriority from the
// site's own priority (0 when the site is unprioritized) unconditionally —
// SourceTier is a per-source value the fetcher already set and must not be
// confused with the site's priority band.
func (o *Orchestrator) runSites(ctx context.Context, sites []domain.Site, lastNDays int, jaccardThreshold float64) ([]domain.Article, []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(SitePoolLimit)

	results := make([]siteResult, len(sites))
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			siteCtx, cancel := context.WithTimeout(gctx, SiteDeadline)
			defer cancel()

			sitePriority := 0
			if site.Priority != nil {
				sitePriority = *site.Priority
			}

			arts, sourceUsed, _ := ladder.Run(siteCtx, o.Fetcher, o.Gate, site, lastNDays, jaccardThreshold)
			for j := range arts {
				if arts[j].SourceDomain == "" {
					arts[j].SourceDomain = site.Domain
				}
				arts[j].SitePriority = sitePriority
			}
			results[i] = siteResult{articles: arts, source: fmt.Sprintf("%s: %s", site.Domain, sourceUsed)}
			return nil
		})
	}
	_ = g.Wait()

	var articles []domain.Article
	sourcesUsed := make([]string, 0, len(results))
	for _, r := range results {
		articles = append(articles, r.articles...)
		sourcesUsed = append(sourcesUsed, r.source)
	}
	return articles, sourcesUsed
}

func prioritizedSitesSorted(sites []domain.Site) []domain.Site {
	var eligible []domain.Site
	for _, s := range sites {
		if s.Priority != nil && *s.Priority >= 1 {
			eligible = append(eligible, s)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if *eligible[i].Priority != *eligible[j].Priority {
			return *eligible[i].Priority < *eligible[j].Priority
		}
		return eligible[i].Domain < eligible[j].Domain
	})
	return eligible
}

func countDistinctDomains(articles []domain.Article) int {
	seen := make(map[string]bool)
	for _, a := range articles {
		seen[a.SourceDomain] = true
	}
	return len(seen)
}

// SortByPublishedDesc orders articles in place by published_at desc, then
// quality_score desc, then url asc — the sort invariant every tool-surface
// response must satisfy, shared by both the single-domain and top-news
// operations.
func SortByPublishedDesc(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return publishedDescLess(articles[i], articles[j])
	})
}

// publishedDescLess orders by published_at desc, then quality_score desc,
// then url asc, per the sort invariant every response must satisfy.
func publishedDescLess(a, b domain.Article) bool {
	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
	case a.PublishedAt == nil:
		return false
	case b.PublishedAt == nil:
		return true
	default:
		if !a.PublishedAt.Equal(*b.PublishedAt) {
			return a.PublishedAt.After(*b.PublishedAt)
		}
	}
	as, bs := scoreOf(a), scoreOf(b)
	if as != bs {
		return as > bs
	}
	return a.URL < b.URL
}

func scoreOf(a domain.Article) float64 {
	if a.QualityScore == nil {
		return -1
	}
	return *a.QualityScore
}
