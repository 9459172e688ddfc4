// Package fetchsource executes a single Source: an RSS/Atom feed (official
// or via an RSSHub bridge), a Google News search feed, or a homepage
// scrape. One fetch function is dispatched per SourceType, matching the
// tagged-variant shape of domain.Source.
package fetchsource

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/repeater/v2"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/validate"
)

// Outcome classifies how a single source fetch ended, per the
// "individual source failures never abort a request" propagation policy.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeEmpty      Outcome = "empty"
	OutcomeTimeout    Outcome = "timeout"
	OutcomeHTTPError  Outcome = "http_error"
	OutcomeParseError Outcome = "parse_error"
)

// Result is the output of a single source fetch.
type Result struct {
	Articles []domain.Article
	Outcome  Outcome
	Err      error
}

const (
	defaultSourceTimeout  = 2000 * time.Millisecond
	defaultScraperTimeout = 5000 * time.Millisecond
	defaultScrapeWorkers  = 5
)

// criticalError marks a source failure as non-retryable (a terminal 4xx
// other than 429); the retrier gives up immediately instead of backing off.
type criticalError struct {
	err error
}

func (e *criticalError) Error() string { return e.err.Error() }
func (e *criticalError) Unwrap() error { return e.err }

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.9,es;q=0.8",
}

func addBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; NewsNexus/1.0; +https://github.com/prayag001/NewsNexus)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/rss+xml,application/atom+xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // header variation only
	req.Header.Set("Cache-Control", "no-cache")
}

// browserHeaderTransport injects the same browser-like headers addBrowserHeaders
// sets on manually-built requests, for HTTP clients handed to libraries (gofeed)
// that construct their own *http.Request internally.
type browserHeaderTransport struct {
	base http.RoundTripper
}

func (t browserHeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	addBrowserHeaders(req)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// withBrowserHeaders wraps client's Transport so every outgoing request
// (including ones the caller doesn't construct directly) carries the same
// browser-like headers.
func withBrowserHeaders(client *http.Client) *http.Client {
	cloned := *client
	cloned.Transport = browserHeaderTransport{base: client.Transport}
	return &cloned
}

// Fetcher executes sources against a shared HTTP client and scrape worker
// pool. DeepScrapeMax and ScrapeWorkers come from the runtime configuration.
type Fetcher struct {
	Client        *http.Client
	ScrapeWorkers int
	ScrapeMax     int
	SummaryLength int
}

// New builds a Fetcher. A zero ScrapeWorkers/ScrapeMax/SummaryLength falls
// back to the engine's defaults (5 workers, 10 candidates, 500-char
// summaries).
func New(client *http.Client, scrapeWorkers, scrapeMax, summaryLength int) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if scrapeWorkers <= 0 {
		scrapeWorkers = defaultScrapeWorkers
	}
	if scrapeMax <= 0 {
		scrapeMax = 10
	}
	if summaryLength <= 0 {
		summaryLength = 500
	}
	return &Fetcher{Client: client, ScrapeWorkers: scrapeWorkers, ScrapeMax: scrapeMax, SummaryLength: summaryLength}
}

// Fetch dispatches src to the implementation matching its Type, applying
// the per-source timeout and one retry with capped exponential backoff on
// connection errors and 5xx responses.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, siteDomain string) Result {
	timeout := time.Duration(src.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		if src.Type == domain.SourceScraper {
			timeout = defaultScraperTimeout
		} else {
			timeout = defaultSourceTimeout
		}
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res Result
	var critErr error
	retrier := repeater.NewBackoff(2, 100*time.Millisecond, repeater.WithMaxDelay(time.Second))
	err := retrier.Do(fetchCtx, func() error {
		var doErr error
		res, doErr = f.dispatch(fetchCtx, src, siteDomain)
		if doErr == nil {
			return nil
		}
		var crit *criticalError
		if isCritical(doErr, &crit) {
			critErr = crit
			return nil // stop the retrier; the critical error is reported below
		}
		return doErr
	})
	if err == nil && critErr != nil {
		err = critErr
	}

	if err != nil {
		if fetchCtx.Err() != nil {
			return Result{Outcome: OutcomeTimeout, Err: err}
		}
		return Result{Outcome: OutcomeHTTPError, Err: err}
	}
	if len(res.Articles) == 0 && res.Outcome == "" {
		res.Outcome = OutcomeEmpty
	}
	if res.Outcome == "" {
		res.Outcome = OutcomeOK
	}
	return res
}

func isCritical(err error, target **criticalError) bool {
	c, ok := err.(*criticalError)
	if ok {
		*target = c
	}
	return ok
}

func (f *Fetcher) dispatch(ctx context.Context, src domain.Source, siteDomain string) (Result, error) {
	switch src.Type {
	case domain.SourceOfficialRSS, domain.SourceRSSHub, domain.SourceGoogleNews:
		return f.fetchFeed(ctx, src, siteDomain)
	case domain.SourceScraper:
		return f.fetchScraper(ctx, src, siteDomain)
	default:
		return Result{}, &criticalError{err: fmt.Errorf("unknown source type %q", src.Type)}
	}
}

func (f *Fetcher) fetchFeed(ctx context.Context, src domain.Source, siteDomain string) (Result, error) {
	parser := gofeed.NewParser()
	parser.Client = withBrowserHeaders(f.Client)

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		if httpErr, ok := err.(gofeed.HTTPError); ok && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 &&
			httpErr.StatusCode != http.StatusTooManyRequests {
			return Result{}, &criticalError{err: err}
		}
		return Result{}, err
	}

	now := time.Now().UTC()
	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}
		a := domain.Article{
			Title:        validate.Title(item.Title),
			URL:          item.Link,
			Summary:      validate.Summary(item.Description, f.SummaryLength),
			SourceDomain: siteDomain,
			SourceType:   src.Type,
			SourceTier:   src.Priority,
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}
		published := publishedTime(item)
		if published != nil {
			if published.After(now) {
				published = &now
			}
			a.PublishedAt = published
		}
		articles = append(articles, a)
	}
	return Result{Articles: articles}, nil
}

func publishedTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		t := item.PublishedParsed.UTC()
		return &t
	}
	if item.UpdatedParsed != nil {
		t := item.UpdatedParsed.UTC()
		return &t
	}
	return nil
}

// fetchScraper GETs the site's homepage, discovers candidate article
// anchors, and extracts up to ScrapeMax article pages in parallel using a
// bounded worker pool.
func (f *Fetcher) fetchScraper(ctx context.Context, src domain.Source, siteDomain string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return Result{}, &criticalError{err: err}
	}
	addBrowserHeaders(req)

	resp, err := f.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on a read-only response

	if resp.StatusCode >= 400 {
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return Result{}, &criticalError{err: fmt.Errorf("scrape homepage %s: status %d", src.URL, resp.StatusCode)}
		}
		return Result{}, fmt.Errorf("scrape homepage %s: status %d", src.URL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{}, &criticalError{err: fmt.Errorf("parse homepage html: %w", err)}
	}
	if resp.Request != nil {
		doc.Url = resp.Request.URL
	}

	links := discoverCandidateLinks(doc, siteDomain, f.ScrapeMax)
	if len(links) == 0 {
		return Result{Outcome: OutcomeEmpty}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.ScrapeWorkers)

	articlesCh := make(chan domain.Article, len(links))
	for _, link := range links {
		link := link
		g.Go(func() error {
			a, extractErr := f.extractArticle(gctx, link, siteDomain, src)
			if extractErr != nil {
				return nil //nolint:nilerr // per-candidate failures do not fail the tier
			}
			articlesCh <- a
			return nil
		})
	}
	_ = g.Wait()
	close(articlesCh)

	articles := make([]domain.Article, 0, len(links))
	for a := range articlesCh {
		articles = append(articles, a)
	}
	if len(articles) == 0 {
		return Result{Outcome: OutcomeEmpty}, nil
	}
	return Result{Articles: articles}, nil
}

func (f *Fetcher) extractArticle(ctx context.Context, pageURL, siteDomain string, src domain.Source) (domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Article{}, err
	}
	addBrowserHeaders(req)

	resp, err := f.Client.Do(req)
	if err != nil {
		return domain.Article{}, err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on a read-only response

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return domain.Article{}, err
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("extract article %s: %w", pageURL, err)
	}
	if article.Title == "" {
		return domain.Article{}, fmt.Errorf("no title extracted from %s", pageURL)
	}

	a := domain.Article{
		Title:        validate.Title(article.Title),
		URL:          pageURL,
		Summary:      validate.Summary(article.Excerpt, f.SummaryLength),
		Author:       article.Byline,
		SourceDomain: siteDomain,
		SourceType:   src.Type,
		SourceTier:   src.Priority,
	}
	if article.PublishedTime != nil {
		published := article.PublishedTime.UTC()
		now := time.Now().UTC()
		if published.After(now) {
			published = now
		}
		a.PublishedAt = &published
	}
	return a, nil
}

// discoverCandidateLinks finds anchors within semantic <article> containers
// or whose href resolves to the publisher's own host, returning up to max
// absolute URLs in document order with duplicates removed.
func discoverCandidateLinks(doc *goquery.Document, siteDomain string, max int) []string {
	seen := make(map[string]bool)
	var links []string

	base := doc.Url

	consider := func(href string) {
		if href == "" || len(links) >= max {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if !u.IsAbs() && base != nil {
			u = base.ResolveReference(u)
		}
		if u.Host == "" {
			return
		}
		if !strings.HasSuffix(strings.ToLower(u.Host), siteDomain) {
			return
		}
		if seen[u.String()] {
			return
		}
		seen[u.String()] = true
		links = append(links, u.String())
	}

	doc.Find("article a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		consider(href)
	})
	if len(links) < max {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			if len(links) >= max {
				return
			}
			href, _ := s.Attr("href")
			consider(href)
		})
	}
	return links
}

