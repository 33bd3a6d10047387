package harvest

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/bornholm/skimmer/pkg/extract"
	"github.com/bornholm/skimmer/pkg/scraper"
	"github.com/bornholm/skimmer/pkg/search"
	"github.com/pkg/errors"
)

var (
	// ErrNoResults is returned when the search engine yields no usable result.
	ErrNoResults = errors.New("no search results")

	// ErrNothingScraped is returned when every selected page had to be skipped.
	ErrNothingScraped = errors.New("no content could be scraped")
)

// Page is one scraped search result.
type Page struct {
	URL   string
	Title string
	Text  string
	Words int
}

// Result is the outcome of a full harvest run.
type Result struct {
	Query     string
	Pages     []Page
	Skipped   []string
	StartedAt time.Time
}

// Harvester drives the search, scrape, extract, truncate pipeline.
type Harvester struct {
	search  search.Client
	scraper scraper.Scraper
}

func NewHarvester(searchClient search.Client, pageScraper scraper.Scraper) *Harvester {
	return &Harvester{
		search:  searchClient,
		scraper: pageScraper,
	}
}

// Harvest searches for query, scrapes up to MaxSites results and returns
// the readable text of each, truncated to MaxWords words. A captcha on
// the search engine aborts the run; a captcha or error on an individual
// page only skips that page.
func (h *Harvester) Harvest(ctx context.Context, query string, optFuncs ...OptionFunc) (*Result, error) {
	opts := NewOptions(optFuncs...)

	result := &Result{
		Query:     query,
		StartedAt: time.Now(),
	}

	tracker := NewProgressTracker(ctx)
	tracker.Emit(PhaseSearching, "searching the web", 0, nil)

	searchResults, err := h.search.Search(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	urls := selectURLs(ctx, searchResults, opts)
	if len(urls) == 0 {
		return nil, errors.WithStack(ErrNoResults)
	}

	tracker.Emit(PhaseScraping, "scraping result pages", SearchingWeight, map[string]any{
		"urls": len(urls),
	})

	for i, u := range urls {
		// Only the run deadline aborts the harvest. A page that times
		// out on its own per-page deadline is skipped like any other
		// failing page.
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		page, err := h.scrapePage(ctx, u, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.WithStack(ctx.Err())
			}

			slog.WarnContext(ctx, "skipping page", slog.String("url", u), slog.Any("error", err))
			result.Skipped = append(result.Skipped, u)
			continue
		}

		result.Pages = append(result.Pages, *page)

		progress := SearchingWeight + ScrapingWeight*float64(i+1)/float64(len(urls))
		tracker.Emit(PhaseScraping, "scraped page", progress, map[string]any{
			"url":   u,
			"words": page.Words,
		})
	}

	if len(result.Pages) == 0 {
		return nil, errors.WithStack(ErrNothingScraped)
	}

	tracker.Emit(PhaseCompleted, "harvest completed", 1, map[string]any{
		"scraped": len(result.Pages),
		"skipped": len(result.Skipped),
	})

	return result, nil
}

// scrapePage fetches one result page and extracts its readable text. A
// transient fetch error is retried once, the way a human would reload a
// page that did not come up.
func (h *Harvester) scrapePage(ctx context.Context, pageURL string, opts *Options) (*Page, error) {
	slog.InfoContext(ctx, "opening page", slog.String("url", pageURL))

	var rawHTML string
	var err error

	for attempt := 0; attempt <= opts.PageRetries; attempt++ {
		rawHTML, err = h.fetch(ctx, pageURL)
		if err == nil {
			break
		}

		if errors.Is(err, captcha.ErrDetected) || ctx.Err() != nil {
			return nil, errors.WithStack(err)
		}

		slog.DebugContext(ctx, "page fetch failed", slog.String("url", pageURL), slog.Int("attempt", attempt), slog.Any("error", err))
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %q", pageURL)
	}

	content, err := extract.FromHTML(rawHTML, pageURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	text, err := renderContent(content, pageURL, opts)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if text == "" {
		return nil, errors.WithStack(extract.ErrNoContent)
	}

	return &Page{
		URL:   pageURL,
		Title: content.Title,
		Text:  text,
		Words: extract.CountWords(text),
	}, nil
}

func (h *Harvester) fetch(ctx context.Context, pageURL string) (string, error) {
	body, err := h.scraper.Get(ctx, pageURL)
	if err != nil {
		return "", errors.WithStack(err)
	}

	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", errors.WithStack(err)
	}

	rawHTML := string(data)

	if _, err := captcha.Check(strings.NewReader(rawHTML)); err != nil {
		return "", errors.WithStack(err)
	}

	return rawHTML, nil
}

func renderContent(content *extract.Content, pageURL string, opts *Options) (string, error) {
	switch opts.Format {
	case FormatMarkdown:
		domain := ""
		if u, err := url.Parse(pageURL); err == nil {
			domain = u.Scheme + "://" + u.Host
		}

		markdown, err := content.Markdown(domain)
		if err != nil {
			return "", errors.WithStack(err)
		}

		return extract.TruncateWordsKeepLayout(markdown, opts.MaxWords), nil
	default:
		return extract.TruncateWords(content.Text, opts.MaxWords), nil
	}
}

// selectURLs deduplicates search results, drops excluded hosts and keeps
// the first MaxSites entries.
func selectURLs(ctx context.Context, results []search.Result, opts *Options) []string {
	seen := make(map[string]struct{}, len(results))
	urls := make([]string, 0, opts.MaxSites)

	for _, r := range results {
		if len(urls) >= opts.MaxSites {
			break
		}

		if r.URL == "" {
			continue
		}

		if _, exists := seen[r.URL]; exists {
			continue
		}
		seen[r.URL] = struct{}{}

		if opts.isExcluded(r.URL) {
			slog.DebugContext(ctx, "excluding result", slog.String("url", r.URL))
			continue
		}

		urls = append(urls, r.URL)
	}

	return urls
}
