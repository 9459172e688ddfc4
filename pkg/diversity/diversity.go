// Package diversity round-robins articles across source domains so a
// multi-domain top-news response doesn't collapse into a single
// publisher's feed.
package diversity

import (
	"sort"

	"github.com/prayag001/NewsNexus/pkg/domain"
)

// DomainPriority resolves a domain to its site priority for stable bucket
// ordering; unprioritized domains sort last.
type DomainPriority func(sourceDomain string) (priority int, ok bool)

// Select buckets articles by source_domain, sorts each bucket by
// (quality_score desc, published_at desc), then round-robins across
// buckets in ascending (priority, domain name) order until count is
// reached or every bucket is exhausted.
func Select(articles []domain.Article, count int, priorityOf DomainPriority) []domain.Article {
	buckets := make(map[string][]domain.Article)
	for _, a := range articles {
		buckets[a.SourceDomain] = append(buckets[a.SourceDomain], a)
	}

	domains := make([]string, 0, len(buckets))
	for d := range buckets {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		pi, oki := priorityOf(domains[i])
		pj, okj := priorityOf(domains[j])
		if oki != okj {
			return oki // prioritized domains sort before unprioritized ones
		}
		if oki && okj && pi != pj {
			return pi < pj
		}
		return domains[i] < domains[j]
	})

	for _, d := range domains {
		bucket := buckets[d]
		sort.SliceStable(bucket, func(i, j int) bool {
			si, sj := scoreOf(bucket[i]), scoreOf(bucket[j])
			if si != sj {
				return si > sj
			}
			return publishedAfter(bucket[i], bucket[j])
		})
		buckets[d] = bucket
	}

	out := make([]domain.Article, 0, count)
	heads := make(map[string]int, len(domains))
	for len(out) < count {
		progressed := false
		for _, d := range domains {
			if len(out) >= count {
				break
			}
			idx := heads[d]
			bucket := buckets[d]
			if idx >= len(bucket) {
				continue
			}
			out = append(out, bucket[idx])
			heads[d] = idx + 1
			progressed = true
		}
		if !progressed {
			break
		}
	}
	return out
}

func scoreOf(a domain.Article) float64 {
	if a.QualityScore == nil {
		return -1
	}
	return *a.QualityScore
}

func publishedAfter(a, b domain.Article) bool {
	if a.PublishedAt == nil || b.PublishedAt == nil {
		return a.PublishedAt != nil
	}
	return a.PublishedAt.After(*b.PublishedAt)
}
