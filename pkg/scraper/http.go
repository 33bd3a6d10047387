package scraper

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

type HTTPScraper struct {
	client *http.Client
}

// Check implements scraper.Scraper.
func (s *HTTPScraper) Check(ctx context.Context, url string) (bool, error) {
	res, err := s.do(ctx, url)
	if err != nil {
		return false, errors.WithStack(err)
	}

	defer res.Body.Close()

	ok := res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusBadRequest

	return ok, nil
}

// Get implements scraper.Scraper.
func (s *HTTPScraper) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	res, err := s.do(ctx, url)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	ok := res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusBadRequest

	if !ok {
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, 4e+6)) // Restrict to 4MB
		if err != nil {
			return nil, errors.WithStack(err)
		}

		return nil, errors.Errorf("unexpected response http status %d (%s):\n%s", res.StatusCode, res.Status, body)
	}

	return res.Body, nil
}

func (s *HTTPScraper) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Sites serve stripped down or challenge pages to the default Go
	// user agent.
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return res, nil
}

func NewHTTPScraper(client *http.Client) *HTTPScraper {
	return &HTTPScraper{
		client: client,
	}
}

var _ Scraper = &HTTPScraper{}
