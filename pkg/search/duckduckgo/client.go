package duckduckgo

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/bornholm/skimmer/pkg/scraper"
	"github.com/bornholm/skimmer/pkg/search"
	searchEngine "github.com/bornholm/skimmer/pkg/search"
	"github.com/pkg/errors"
)

type Client struct {
	scraper scraper.Scraper
}

// Search queries the standard DuckDuckGo result page first. When that
// page is a bot-detection challenge or yields nothing, it retries on the
// lightweight HTML-only endpoint which is less likely to be protected.
func (c *Client) Search(ctx context.Context, query string) ([]search.Result, error) {
	results, err := c.searchStandard(ctx, query)
	if err == nil && len(results) > 0 {
		return results, nil
	}

	if err != nil {
		slog.DebugContext(ctx, "standard duckduckgo page failed, falling back to html endpoint", slog.Any("error", err))
	}

	results, err = c.searchHTML(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return results, nil
}

func (c *Client) searchStandard(ctx context.Context, query string) ([]searchEngine.Result, error) {
	searchURL := &url.URL{
		Scheme: "https",
		Host:   "duckduckgo.com",
		Path:   "/",
	}

	values := searchURL.Query()
	values.Set("q", query)
	searchURL.RawQuery = values.Encode()

	slog.DebugContext(ctx, "scraping duckduckgo results", slog.String("url", searchURL.String()))

	body, err := c.scraper.Get(ctx, searchURL.String())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer body.Close()

	doc, err := captcha.Check(body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var results []searchEngine.Result

	doc.Find(`a[data-testid="result-title-a"]`).Each(func(i int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if href == "" {
			return
		}

		if strings.HasPrefix(href, "/") || strings.Contains(href, "duckduckgo.com") {
			return
		}

		title := strings.TrimSpace(s.Text())
		if title == "" {
			return
		}

		results = append(results, searchEngine.Result{
			Title: title,
			URL:   href,
		})
	})

	return results, nil
}

func (c *Client) searchHTML(ctx context.Context, query string) ([]searchEngine.Result, error) {
	searchURL := &url.URL{
		Scheme: "https",
		Host:   "duckduckgo.com",
		Path:   "/html/",
	}

	values := searchURL.Query()
	values.Set("q", query)
	searchURL.RawQuery = values.Encode()

	slog.DebugContext(ctx, "scraping duckduckgo html results", slog.String("url", searchURL.String()))

	body, err := c.scraper.Get(ctx, searchURL.String())
	if err != nil {
		return nil, errors.WithStack(err)
	}

	defer body.Close()

	doc, err := captcha.Check(body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resultElements := doc.Find(".result")
	if resultElements.Length() == 0 {
		return nil, errors.Errorf("unexpected result:\n%s", doc.Text())
	}

	var results []searchEngine.Result

	resultElements.Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".result__title").Text())
		if title == "" {
			return
		}

		rawDDGLink := s.Find(".result__a").AttrOr("href", "")
		if rawDDGLink == "" {
			return
		}

		ddgLink, err := url.Parse(rawDDGLink)
		if err != nil {
			return
		}

		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())

		// The html endpoint wraps targets in a redirect link carrying
		// the real url in the "uddg" parameter.
		target := ddgLink.Query().Get("uddg")
		if target == "" {
			target = rawDDGLink
		}

		if strings.HasPrefix(target, "/") || strings.Contains(target, "duckduckgo.com") {
			return
		}

		results = append(results, searchEngine.Result{
			Title:       title,
			Description: snippet,
			URL:         target,
		})
	})

	return results, nil
}

func NewClient(scraper scraper.Scraper) *Client {
	return &Client{
		scraper: scraper,
	}
}

var _ search.Client = &Client{}
