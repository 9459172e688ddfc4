// Package tools implements the four JSON-shaped operations exposed to the
// transport layer: get_articles, get_top_news, health_check and
// get_metrics. Each wires validation, rate limiting, caching, the fallback
// ladder or orchestrator, scoring, and metrics together, mapping engine
// errors to the stable taxonomy in pkg/domain.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/prayag001/NewsNexus/pkg/cache"
	"github.com/prayag001/NewsNexus/pkg/config"
	"github.com/prayag001/NewsNexus/pkg/dedup"
	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/fetchsource"
	"github.com/prayag001/NewsNexus/pkg/filter"
	"github.com/prayag001/NewsNexus/pkg/ladder"
	"github.com/prayag001/NewsNexus/pkg/metrics"
	"github.com/prayag001/NewsNexus/pkg/orchestrator"
	"github.com/prayag001/NewsNexus/pkg/qualitygate"
	"github.com/prayag001/NewsNexus/pkg/ratelimit"
	"github.com/prayag001/NewsNexus/pkg/score"
	"github.com/prayag001/NewsNexus/pkg/validate"
)

// Version is the tool-surface version reported by health_check.
const Version = "1.0.0"

// Service bundles every shared, dependency-injected collaborator the four
// tool operations need: the immutable site list and config, the process-wide
// cache/rate-limiter/metrics singletons, and the fetch/quality-gate
// collaborators the ladder and orchestrator dispatch through.
type Service struct {
	Cfg     *config.Config
	Sites   []domain.Site
	Cache   *cache.Cache
	Limiter *ratelimit.Limiter
	Metrics *metrics.Metrics
	Fetcher *fetchsource.Fetcher
	Gate    *qualitygate.Gate

	now func() time.Time
}

// New builds a Service from its collaborators. now defaults to time.Now.
func New(cfg *config.Config, sites []domain.Site, c *cache.Cache, limiter *ratelimit.Limiter, m *metrics.Metrics, fetcher *fetchsource.Fetcher, gate *qualitygate.Gate) *Service {
	return &Service{Cfg: cfg, Sites: sites, Cache: c, Limiter: limiter, Metrics: m, Fetcher: fetcher, Gate: gate, now: time.Now}
}

// Article is the JSON shape of an article in every tool response.
type Article struct {
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	PublishedAt  *string  `json:"published_at,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Author       string   `json:"author,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	SourceDomain string   `json:"source_domain"`
	QualityScore *float64 `json:"quality_score,omitempty"`
}

func toArticle(a domain.Article) Article {
	out := Article{
		Title:        a.Title,
		URL:          a.URL,
		Summary:      a.Summary,
		Author:       a.Author,
		Tags:         a.Tags,
		SourceDomain: a.SourceDomain,
		QualityScore: a.QualityScore,
	}
	if a.PublishedAt != nil {
		s := a.PublishedAt.UTC().Format(time.RFC3339)
		out.PublishedAt = &s
	}
	return out
}

func toArticles(articles []domain.Article) []Article {
	out := make([]Article, len(articles))
	for i, a := range articles {
		out[i] = toArticle(a)
	}
	return out
}

// GetArticlesRequest is get_articles's input shape. Count is a pointer so a
// literal 0 (rejected by validate.Count as bad input) can be told apart from
// an omitted field (defaults to 10).
type GetArticlesRequest struct {
	Domain    string `json:"domain"`
	Topic     string `json:"topic,omitempty"`
	Location  string `json:"location,omitempty"`
	LastNDays int    `json:"lastNDays,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

// GetArticlesResponse is get_articles's output shape.
type GetArticlesResponse struct {
	SourceUsed string    `json:"sourceUsed"`
	Articles   []Article `json:"articles"`
	Cached     bool      `json:"cached"`
	DurationMs float64   `json:"durationMs"`
	Message    string    `json:"message,omitempty"`
}

// GetArticles implements the single-domain operation: validate, rate-limit,
// cache lookup, ladder fetch on miss, dedup/filter/score, sort, cap, cache
// store, metrics.
func (s *Service) GetArticles(ctx context.Context, req GetArticlesRequest) (GetArticlesResponse, error) {
	start := s.now()
	s.Metrics.Increment("get_articles_requests")
	defer func() {
		s.Metrics.RecordDuration("get_articles_duration_ms", float64(s.now().Sub(start).Milliseconds()))
	}()

	domainToken, err := validate.Domain(req.Domain)
	if err != nil {
		s.Metrics.Increment("get_articles_bad_input")
		return GetArticlesResponse{}, err
	}
	topic, err := validate.Topic(req.Topic)
	if err != nil {
		return GetArticlesResponse{}, err
	}
	location, err := validate.Location(req.Location)
	if err != nil {
		return GetArticlesResponse{}, err
	}
	lastNDays, err := validate.LastNDays(req.LastNDays, req.LastNDays != 0)
	if err != nil {
		return GetArticlesResponse{}, err
	}
	count := 10
	if req.Count != nil {
		count = *req.Count
	}
	count, err = validate.Count(count)
	if err != nil {
		return GetArticlesResponse{}, err
	}

	site, ok := orchestrator.MatchDomain(s.Sites, domainToken)
	if !ok {
		s.Metrics.Increment("get_articles_no_match")
		return GetArticlesResponse{}, domain.NewError(domain.NoMatch, "no configured site matched domain "+domainToken)
	}

	now := s.now()
	if err := s.Limiter.Allow(site.Domain, now); err != nil {
		s.Metrics.Increment("get_articles_rate_limited")
		return GetArticlesResponse{}, err
	}

	key := cache.Key("get_articles", site.Domain, map[string]string{
		"topic":     topic,
		"location":  location,
		"lastNDays": fmt.Sprintf("%d", lastNDays),
		"count":     fmt.Sprintf("%d", count),
	})
	if cached, hit := s.Cache.Get(key); hit {
		s.Metrics.Increment("cache_hits")
		resp := cached.(GetArticlesResponse)
		resp.Cached = true
		resp.DurationMs = float64(s.now().Sub(start).Milliseconds())
		return resp, nil
	}
	s.Metrics.Increment("cache_misses")

	rawArticles, sourceUsed, triedTiers := ladder.Run(ctx, s.Fetcher, s.Gate, site, lastNDays, dedup.DefaultJaccardThreshold)
	degraded := len(rawArticles) < ladder.MinThreshold
	sitePriority := 0
	if site.Priority != nil {
		sitePriority = *site.Priority
	}
	for i := range rawArticles {
		if rawArticles[i].SourceDomain == "" {
			rawArticles[i].SourceDomain = site.Domain
		}
		rawArticles[i].SitePriority = sitePriority
	}

	articles := dedup.Dedupe(rawArticles, dedup.DefaultJaccardThreshold)
	articles = filter.Apply(articles, filter.Params{
		Now:               now,
		LastNDays:         lastNDays,
		RequireDateWindow: req.LastNDays != 0,
		Topic:             topic,
		Location:          location,
	})
	for i := range articles {
		sc := score.Score(articles[i], articles[i].SitePriority, now)
		articles[i].QualityScore = &sc
	}
	orchestrator.SortByPublishedDesc(articles)
	if len(articles) > count {
		articles = articles[:count]
	}

	resp := GetArticlesResponse{
		SourceUsed: sourceUsed,
		Articles:   toArticles(articles),
		Cached:     false,
		DurationMs: float64(s.now().Sub(start).Milliseconds()),
	}

	if degraded {
		resp.Message = sourceUsed
		s.Metrics.Increment("get_articles_degraded")
		if len(rawArticles) == 0 {
			s.Metrics.Increment("get_articles_upstream_unavailable")
		}
		lgr.Printf("[WARN] get_articles domain=%s degraded: tiers tried=%v raw_articles=%d", site.Domain, triedTiers, len(rawArticles))
		return resp, nil
	}

	s.Cache.Put(key, resp)
	return resp, nil
}

// GetTopNewsRequest is get_top_news's input shape. Count is a pointer for
// the same reason as GetArticlesRequest.Count: a literal 0 must reach
// validate.Count as bad input instead of silently defaulting.
type GetTopNewsRequest struct {
	Count               *int     `json:"count,omitempty"`
	Topic               string   `json:"topic,omitempty"`
	Location            string   `json:"location,omitempty"`
	LastNDays           int      `json:"lastNDays,omitempty"`
	Domains             []string `json:"domains,omitempty"`
	MinQualityScore     float64  `json:"min_quality_score,omitempty"`
	EnableQualityFilter bool     `json:"enable_quality_filter,omitempty"`
}

// GetTopNewsResponse is get_top_news's output shape.
type GetTopNewsResponse struct {
	SourcesUsed          []string  `json:"sources_used"`
	Articles             []Article `json:"articles"`
	TotalArticles        int       `json:"total_articles"`
	DurationMs           float64   `json:"durationMs"`
	QualityFilterEnabled bool      `json:"qualityFilterEnabled"`
	MinQualityScore      float64   `json:"minQualityScore"`
	FilteredOut          int       `json:"filteredOut"`
}

// GetTopNews implements the multi-domain/priority-site top-news operation.
func (s *Service) GetTopNews(ctx context.Context, req GetTopNewsRequest) (GetTopNewsResponse, error) {
	start := s.now()
	s.Metrics.Increment("get_top_news_requests")
	defer func() {
		s.Metrics.RecordDuration("get_top_news_duration_ms", float64(s.now().Sub(start).Milliseconds()))
	}()

	topic, err := validate.Topic(req.Topic)
	if err != nil {
		return GetTopNewsResponse{}, err
	}
	location, err := validate.Location(req.Location)
	if err != nil {
		return GetTopNewsResponse{}, err
	}
	lastNDays, err := validate.LastNDays(req.LastNDays, req.LastNDays != 0)
	if err != nil {
		return GetTopNewsResponse{}, err
	}
	count := 10
	if req.Count != nil {
		count = *req.Count
	}
	count, err = validate.Count(count)
	if err != nil {
		return GetTopNewsResponse{}, err
	}

	domains := make([]string, 0, len(req.Domains))
	for _, d := range req.Domains {
		token, terr := validate.Domain(d)
		if terr != nil {
			return GetTopNewsResponse{}, terr
		}
		domains = append(domains, token)
	}

	minQuality := req.MinQualityScore
	if minQuality <= 0 {
		minQuality = score.DefaultMinQualityScore
	}

	key := cache.Key("get_top_news", "TOP", map[string]string{
		"topic":     topic,
		"location":  location,
		"lastNDays": fmt.Sprintf("%d", lastNDays),
		"count":     fmt.Sprintf("%d", count),
		"domains":   fmt.Sprintf("%v", domains),
		"minScore":  fmt.Sprintf("%v", minQuality),
		"qFilter":   fmt.Sprintf("%v", req.EnableQualityFilter),
	})
	if cached, hit := s.Cache.Get(key); hit {
		s.Metrics.Increment("cache_hits")
		resp := cached.(GetTopNewsResponse)
		resp.DurationMs = float64(s.now().Sub(start).Milliseconds())
		return resp, nil
	}
	s.Metrics.Increment("cache_misses")

	orch := orchestrator.New(s.Fetcher, s.Gate, s.Sites)
	result, err := orch.Run(ctx, orchestrator.Params{
		Count:               count,
		Topic:               topic,
		Location:            location,
		LastNDays:           lastNDays,
		RequireDateWindow:   req.LastNDays != 0,
		Domains:             domains,
		MinQualityScore:     minQuality,
		EnableQualityFilter: req.EnableQualityFilter,
		JaccardThreshold:    dedup.DefaultJaccardThreshold,
	})
	if err != nil {
		s.Metrics.Increment("get_top_news_no_match")
		return GetTopNewsResponse{}, err
	}

	resp := GetTopNewsResponse{
		SourcesUsed:          result.SourcesUsed,
		Articles:             toArticles(result.Articles),
		TotalArticles:        result.TotalArticles,
		DurationMs:           float64(s.now().Sub(start).Milliseconds()),
		QualityFilterEnabled: req.EnableQualityFilter,
		MinQualityScore:      minQuality,
		FilteredOut:          result.FilteredOut,
	}

	s.Cache.Put(key, resp)
	return resp, nil
}

// HealthCheckResponse is health_check's output shape.
type HealthCheckResponse struct {
	Status            string          `json:"status"`
	Version           string          `json:"version"`
	ConfiguredDomains []string        `json:"configured_domains"`
	PrioritySites     int             `json:"priority_sites"`
	Cache             CacheStats      `json:"cache"`
	Constants         HealthConstants `json:"constants"`
	Timestamp         string          `json:"timestamp"`
}

// CacheStats is the cache summary embedded in health_check and get_metrics.
type CacheStats struct {
	Size    int `json:"size"`
	TTLSecs int `json:"ttl_seconds"`
	MaxSize int `json:"max_size"`
}

// HealthConstants surfaces the fixed engine thresholds so operators can see
// them without reading the source.
type HealthConstants struct {
	MaxRecentDays        int `json:"MAX_RECENT_DAYS"`
	DefaultArticleCount  int `json:"DEFAULT_ARTICLE_COUNT"`
	MinArticlesThreshold int `json:"MIN_ARTICLES_THRESHOLD"`
}

// HealthCheck reports server status, configured domains and cache stats.
func (s *Service) HealthCheck(_ context.Context) HealthCheckResponse {
	domains := make([]string, 0, len(s.Sites))
	priorityCount := 0
	for _, site := range s.Sites {
		domains = append(domains, site.Domain)
		if site.EligibleForTopNews() {
			priorityCount++
		}
	}

	return HealthCheckResponse{
		Status:            "healthy",
		Version:           Version,
		ConfiguredDomains: domains,
		PrioritySites:     priorityCount,
		Cache: CacheStats{
			Size:    s.Cache.Len(),
			TTLSecs: s.Cache.TTLSeconds(),
			MaxSize: s.Cache.MaxSize(),
		},
		Constants: HealthConstants{
			MaxRecentDays:        validate.DefaultRecentDaysCap,
			DefaultArticleCount:  10,
			MinArticlesThreshold: ladder.MinThreshold,
		},
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}

// GetMetricsResponse is get_metrics's output shape.
type GetMetricsResponse struct {
	Metrics   metrics.Stats `json:"metrics"`
	Cache     CacheStats    `json:"cache"`
	Timestamp string        `json:"timestamp"`
}

// GetMetrics reports counters, histograms and cache stats for observability.
func (s *Service) GetMetrics(_ context.Context) GetMetricsResponse {
	now := s.now()
	return GetMetricsResponse{
		Metrics: s.Metrics.Stats(now),
		Cache: CacheStats{
			Size:    s.Cache.Len(),
			TTLSecs: s.Cache.TTLSeconds(),
			MaxSize: s.Cache.MaxSize(),
		},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
