// Package ladder implements the priority-tiered parallel dispatch over a
// single site's sources, escalating tiers until enough articles are
// collected or every tier has been tried.
package ladder

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prayag001/NewsNexus/pkg/dedup"
	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/fetchsource"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
)

const (
	// MinThreshold is the minimum article count a tier must produce to
	// satisfy the ladder without escalating further.
	MinThreshold = 5
	// FetchPoolLimit bounds per-tier parallel source fetches.
	FetchPoolLimit = 8
	// TierDeadline is the wall-clock budget for a single tier.
	TierDeadline = 10 * time.Second
)

// SourceFetcher executes a single Source and returns its articles plus an
// outcome classification; individual failures never abort the ladder.
type SourceFetcher interface {
	Fetch(ctx context.Context, src domain.Source, siteDomain string) fetchsource.Result
}

// Run walks site's sources tier by tier (ascending priority), running each
// tier's sources in parallel, applying the quality gate to google_news
// sources, and stopping at the first tier whose deduplicated article count
// meets MinThreshold. If no tier meets the threshold, the largest
// non-empty tier result is returned.
func Run(ctx context.Context, fetcher SourceFetcher, gate *qualitygate.Gate, site domain.Site, lastNDays int, jaccardThreshold float64) (articles []domain.Article, sourceUsed string, triedTiers []int) {
	tiers, byTier := site.SourcesByTier()

	var bestArticles []domain.Article
	var bestTier int
	var bestTypes []string

	for _, tier := range tiers {
		triedTiers = append(triedTiers, tier)
		tierCtx, cancel := context.WithTimeout(ctx, TierDeadline)

		collected, typesUsed := runTier(tierCtx, fetcher, gate, byTier[tier], site.Domain, lastNDays)
		cancel()

		collected = dedup.Dedupe(collected, jaccardThreshold)

		if len(collected) > len(bestArticles) {
			bestArticles = collected
			bestTier = tier
			bestTypes = typesUsed
		}

		if len(collected) >= MinThreshold {
			return collected, formatSourceUsed(tier, typesUsed), triedTiers
		}
	}

	note := fmt.Sprintf("no tier reached the minimum threshold; tiers tried: %v, best tier %d %v with %d articles",
		triedTiers, bestTier, bestTypes, len(bestArticles))
	if len(bestArticles) == 0 {
		note = fmt.Sprintf("all tiers exhausted with no articles; tiers tried: %v", triedTiers)
	}
	return bestArticles, note, triedTiers
}

func runTier(ctx context.Context, fetcher SourceFetcher, gate *qualitygate.Gate, sources []domain.Source, siteDomain string, lastNDays int) ([]domain.Article, []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(FetchPoolLimit)

	results := make([]fetchsource.Result, len(sources))
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			results[i] = fetcher.Fetch(gctx, src, siteDomain)
			return nil
		})
	}
	_ = g.Wait()

	var collected []domain.Article
	typeSet := make(map[string]bool)
	now := time.Now().UTC()

	for i, res := range results {
		if ctx.Err() != nil && res.Outcome == "" {
			continue // dropped: tier deadline elapsed before this source finished
		}
		if res.Outcome != fetchsource.OutcomeOK || len(res.Articles) == 0 {
			continue
		}
		articles := res.Articles
		if sources[i].Type == domain.SourceGoogleNews && gate != nil {
			kept, ok := gate.Apply(ctx, articles, now, lastNDays)
			if !ok {
				continue // valid_ratio too low; source discarded for fallback purposes
			}
			articles = kept
		}
		collected = append(collected, articles...)
		typeSet[string(sources[i].Type)] = true
	}

	types := make([]string, 0, len(typeSet))
	for t := range typeSet {
		types = append(types, t)
	}
	sort.Strings(types)
	return collected, types
}

func formatSourceUsed(tier int, types []string) string {
	return fmt.Sprintf("tier %d %v", tier, types)
}
