package harvest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/bornholm/skimmer/pkg/scraper"
	"github.com/bornholm/skimmer/pkg/search"
	"github.com/pkg/errors"
)

const pageFixture = `<html>
<head><title>Fixture page</title></head>
<body><article>
<p>one two three four five six seven eight nine ten eleven twelve thirteen
fourteen fifteen sixteen seventeen eighteen nineteen twenty.</p>
</article></body>
</html>`

const challengeFixture = `<html><body><p>Please complete the captcha to continue.</p></body></html>`

type fakeSearch struct {
	results []search.Result
	err     error
}

func (s *fakeSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	return s.results, s.err
}

type fakeScraper struct {
	pages map[string]string
	fails map[string]int
	errs  map[string]error
}

func (s *fakeScraper) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := s.errs[url]; err != nil {
		return nil, errors.WithStack(err)
	}

	if remaining := s.fails[url]; remaining > 0 {
		s.fails[url] = remaining - 1
		return nil, errors.New("transient failure")
	}

	html, exists := s.pages[url]
	if !exists {
		return nil, errors.Errorf("no fixture for %q", url)
	}

	return io.NopCloser(strings.NewReader(html)), nil
}

func (s *fakeScraper) Check(ctx context.Context, url string) (bool, error) {
	_, exists := s.pages[url]
	return exists, nil
}

var _ search.Client = &fakeSearch{}
var _ scraper.Scraper = &fakeScraper{}

func searchResults(urls ...string) []search.Result {
	results := make([]search.Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, search.Result{Title: u, URL: u})
	}

	return results
}

func TestHarvest(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a", "https://example.com/b", "https://example.com/a")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a": pageFixture,
			"https://example.com/b": pageFixture,
		}},
	)

	result, err := harvester.Harvest(context.Background(), "fixture", WithMaxWords(5))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	// The duplicate result must be collapsed.
	if len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(result.Pages))
	}

	for _, page := range result.Pages {
		if page.Words > 5 {
			t.Errorf("expected at most 5 words for %q, got %d", page.URL, page.Words)
		}

		if !strings.HasPrefix(page.Text, "one two three") {
			t.Errorf("unexpected text for %q: %q", page.URL, page.Text)
		}
	}
}

func TestHarvestSkipsFailingPages(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a", "https://example.com/broken")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a": pageFixture,
		}},
	)

	result, err := harvester.Harvest(context.Background(), "fixture")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != "https://example.com/broken" {
		t.Fatalf("expected the broken url to be skipped, got %v", result.Skipped)
	}
}

func TestHarvestRetriesTransientFailures(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a")},
		&fakeScraper{
			pages: map[string]string{"https://example.com/a": pageFixture},
			fails: map[string]int{"https://example.com/a": 1},
		},
	)

	result, err := harvester.Harvest(context.Background(), "fixture")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(result.Pages) != 1 {
		t.Fatalf("expected the page to be scraped on retry, got %d pages", len(result.Pages))
	}
}

func TestHarvestSkipsTimedOutPages(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a", "https://example.com/slow")},
		&fakeScraper{
			pages: map[string]string{"https://example.com/a": pageFixture},
			errs:  map[string]error{"https://example.com/slow": context.DeadlineExceeded},
		},
	)

	// A page hitting its own fetch deadline is skipped like any other
	// failing page, it must not abort the whole run.
	result, err := harvester.Harvest(context.Background(), "fixture")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(result.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(result.Pages))
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != "https://example.com/slow" {
		t.Fatalf("expected the slow url to be skipped, got %v", result.Skipped)
	}
}

func TestHarvestAbortsWhenRunContextCanceled(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a": pageFixture,
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := harvester.Harvest(ctx, "fixture")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %+v", err)
	}
}

func TestHarvestSkipsChallengePages(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a", "https://example.com/blocked")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a":       pageFixture,
			"https://example.com/blocked": challengeFixture,
		}},
	)

	result, err := harvester.Harvest(context.Background(), "fixture")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != "https://example.com/blocked" {
		t.Fatalf("expected the challenge url to be skipped, got %v", result.Skipped)
	}
}

func TestHarvestNoResults(t *testing.T) {
	harvester := NewHarvester(&fakeSearch{}, &fakeScraper{})

	_, err := harvester.Harvest(context.Background(), "fixture")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %+v", err)
	}
}

func TestHarvestNothingScraped(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/broken")},
		&fakeScraper{},
	)

	_, err := harvester.Harvest(context.Background(), "fixture")
	if !errors.Is(err, ErrNothingScraped) {
		t.Fatalf("expected ErrNothingScraped, got %+v", err)
	}
}

func TestHarvestSearchCaptchaAborts(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{err: errors.WithStack(captcha.ErrDetected)},
		&fakeScraper{},
	)

	_, err := harvester.Harvest(context.Background(), "fixture")
	if !errors.Is(err, captcha.ErrDetected) {
		t.Fatalf("expected captcha error, got %+v", err)
	}
}

func TestHarvestExcludePatterns(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://www.pinterest.com/pin", "https://example.com/a")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a": pageFixture,
		}},
	)

	result, err := harvester.Harvest(context.Background(), "fixture", WithExcludePatterns("*.pinterest.com"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(result.Pages) != 1 || result.Pages[0].URL != "https://example.com/a" {
		t.Fatalf("expected only the example.com page, got %+v", result.Pages)
	}
}

func TestHarvestProgressEvents(t *testing.T) {
	harvester := NewHarvester(
		&fakeSearch{results: searchResults("https://example.com/a")},
		&fakeScraper{pages: map[string]string{
			"https://example.com/a": pageFixture,
		}},
	)

	var events []ProgressEvent
	ctx := WithProgressTracking(context.Background(), func(event ProgressEvent) {
		events = append(events, event)
	})

	if _, err := harvester.Harvest(ctx, "fixture"); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if len(events) == 0 {
		t.Fatal("expected progress events")
	}

	last := events[len(events)-1]
	if last.Phase != PhaseCompleted || last.Progress != 1 {
		t.Errorf("expected a completed event, got %+v", last)
	}
}
