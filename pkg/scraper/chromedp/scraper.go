package chromedp

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/bornholm/skimmer/pkg/scraper"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	cu "github.com/Davincible/chromedp-undetected"
)

// Delay bounds used to mimic human browsing between navigation and capture.
const (
	minHumanDelay = 200 * time.Millisecond
	maxHumanDelay = 600 * time.Millisecond
)

type Scraper struct {
	chromeCtx    context.Context
	cancelChrome context.CancelFunc
	pageTimeout  time.Duration
}

// Check implements scraper.Scraper.
func (s *Scraper) Check(ctx context.Context, url string) (bool, error) {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return true, nil
}

// Get implements scraper.Scraper. It navigates to the url, waits for the
// document to be ready, pauses like a human reader would, then captures
// the rendered DOM as HTML.
func (s *Scraper) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var html string

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		humanDelay(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			res, err := dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			html = res

			return nil
		}),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return io.NopCloser(bytes.NewBufferString(html)), nil
}

// runContext derives the per-navigation context from the shared browser
// context, bounded by the page timeout, and wires the caller's context in
// so cancelling the run interrupts an in-flight navigation.
func (s *Scraper) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if s.pageTimeout > 0 {
		runCtx, cancel = context.WithTimeout(s.chromeCtx, s.pageTimeout)
	} else {
		runCtx, cancel = context.WithCancel(s.chromeCtx)
	}

	stop := context.AfterFunc(ctx, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *Scraper) Close() {
	s.cancelChrome()
}

// humanDelay sleeps for a random interval so navigation and capture are
// not back to back.
func humanDelay() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		delay := minHumanDelay + time.Duration(rand.Int63n(int64(maxHumanDelay-minHumanDelay)))

		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

type Options struct {
	Headless    bool
	PageTimeout time.Duration
}

func NewScraper(opts Options) (*Scraper, error) {
	options := []cu.Option{}
	if opts.Headless {
		options = append(options, cu.WithHeadless())
	}

	if httpProxy := os.Getenv("HTTP_PROXY"); httpProxy != "" {
		options = append(options, cu.WithChromeFlags(chromedp.ProxyServer(httpProxy)))
	}

	chromeCtx, cancelChrome, err := cu.New(cu.NewConfig(options...))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Scraper{
		chromeCtx:    chromeCtx,
		cancelChrome: cancelChrome,
		pageTimeout:  opts.PageTimeout,
	}, nil
}

var _ scraper.Scraper = &Scraper{}
