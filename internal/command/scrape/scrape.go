package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bornholm/skimmer/internal/logx"
	"github.com/bornholm/skimmer/pkg/archive"
	"github.com/bornholm/skimmer/pkg/captcha"
	"github.com/bornholm/skimmer/pkg/harvest"
	"github.com/bornholm/skimmer/pkg/report"
	"github.com/bornholm/skimmer/pkg/scraper"
	chromedpScraper "github.com/bornholm/skimmer/pkg/scraper/chromedp"
	surfScraper "github.com/bornholm/skimmer/pkg/scraper/surf"
	"github.com/bornholm/skimmer/pkg/search"
	"github.com/bornholm/skimmer/pkg/search/duckduckgo"
	"github.com/bornholm/skimmer/pkg/search/google"
	"github.com/bornholm/skimmer/pkg/search/meta"
	"github.com/bornholm/skimmer/pkg/search/searx"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const defaultQuery = "best console editor for linux"

func Scrape() *cli.Command {
	return &cli.Command{
		Name:      "scrape",
		Usage:     "Search the web for a query and save the readable text of the top results",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "num-sites",
				Value:   3,
				Aliases: []string{"n"},
				EnvVars: []string{"SKIMMER_NUM_SITES"},
				Usage:   "number of search results to scrape",
			},
			&cli.IntFlag{
				Name:    "max-words",
				Value:   1000,
				Aliases: []string{"m"},
				EnvVars: []string{"SKIMMER_MAX_WORDS"},
				Usage:   "maximum number of words to keep from each site",
			},
			&cli.StringFlag{
				Name:      "output",
				Value:     "output.md",
				Aliases:   []string{"o"},
				EnvVars:   []string{"SKIMMER_OUTPUT"},
				TakesFile: true,
				Usage:     "markdown file to write results to, defaults to a slug of the query when empty",
			},
			&cli.BoolFlag{
				Name:    "append",
				EnvVars: []string{"SKIMMER_APPEND"},
				Usage:   "append to the output file instead of overwriting",
			},
			&cli.BoolFlag{
				Name:    "headless",
				EnvVars: []string{"SKIMMER_HEADLESS"},
				Usage:   "run the browser in headless mode, default is headed",
			},
			&cli.BoolFlag{
				Name:    "verbatim",
				EnvVars: []string{"SKIMMER_VERBATIM"},
				Usage:   "print progress to stdout, by default only errors are written to stderr",
			},
			&cli.StringFlag{
				Name:    "engine",
				Value:   "duckduckgo",
				Aliases: []string{"e"},
				EnvVars: []string{"SKIMMER_ENGINE"},
				Usage:   "search engine to use (duckduckgo, searx, google, meta)",
			},
			&cli.StringFlag{
				Name:    "fetcher",
				Value:   "browser",
				Aliases: []string{"f"},
				EnvVars: []string{"SKIMMER_FETCHER"},
				Usage:   "page fetch strategy (browser, surf, http)",
			},
			&cli.StringFlag{
				Name:    "format",
				Value:   "text",
				EnvVars: []string{"SKIMMER_FORMAT"},
				Usage:   "rendering of the extracted content (text, markdown)",
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Aliases: []string{"x"},
				EnvVars: []string{"SKIMMER_EXCLUDE"},
				Usage:   "glob patterns of hosts or urls to skip in search results",
			},
			&cli.BoolFlag{
				Name:    "front-matter",
				EnvVars: []string{"SKIMMER_FRONT_MATTER"},
				Usage:   "prefix the output with a yaml front matter block",
			},
			&cli.StringFlag{
				Name:      "archive",
				Aliases:   []string{"a"},
				EnvVars:   []string{"SKIMMER_ARCHIVE"},
				TakesFile: true,
				Usage:     "additionally index scraped pages into this bleve archive",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   10 * time.Minute,
				EnvVars: []string{"SKIMMER_TIMEOUT"},
				Usage:   "hard deadline for the whole run",
			},
			&cli.StringFlag{
				Name:    "google-api-key",
				EnvVars: []string{"SKIMMER_GOOGLE_API_KEY"},
				Usage:   "api key for the google search engine",
			},
			&cli.StringFlag{
				Name:    "google-cx",
				EnvVars: []string{"SKIMMER_GOOGLE_CX"},
				Usage:   "custom search engine id for the google search engine",
			},
		},
		Action: func(cliCtx *cli.Context) error {
			query := strings.TrimSpace(cliCtx.Args().First())
			if query == "" {
				query = defaultQuery
			}

			numSites := cliCtx.Int("num-sites")
			if numSites <= 0 {
				return errors.New("--num-sites must be greater than 0")
			}

			maxWords := cliCtx.Int("max-words")
			if maxWords <= 0 {
				return errors.New("--max-words must be greater than 0")
			}

			format := harvest.Format(cliCtx.String("format"))
			if format != harvest.FormatText && format != harvest.FormatMarkdown {
				return errors.Errorf("unknown format %q", format)
			}

			ctx, cancel := context.WithTimeout(cliCtx.Context, cliCtx.Duration("timeout"))
			defer cancel()

			ctx = logx.WithAttrs(ctx, slog.String("query", query), slog.String("engine", cliCtx.String("engine")))

			pageScraper, closeScraper, err := newScraper(cliCtx)
			if err != nil {
				return errors.Wrapf(err, "failed to create scraper")
			}

			defer closeScraper()

			searchClient, err := newSearchClient(cliCtx, pageScraper)
			if err != nil {
				return errors.WithStack(err)
			}

			harvester := harvest.NewHarvester(search.WithRetry(searchClient, 2, time.Second), pageScraper)

			verbatim := cliCtx.Bool("verbatim")

			progressCh, progressCallback := harvest.ProgressEventChannel()
			ctx = harvest.WithProgressTracking(ctx, progressCallback)

			done := make(chan bool)
			go printProgress(progressCh, done, verbatim)

			result, err := harvester.Harvest(ctx, query,
				harvest.WithMaxSites(numSites),
				harvest.WithMaxWords(maxWords),
				harvest.WithFormat(format),
				harvest.WithExcludePatterns(cliCtx.StringSlice("exclude")...),
			)

			done <- true

			if err != nil {
				if errors.Is(err, captcha.ErrDetected) {
					fmt.Fprintln(os.Stderr, "The scraper was likely blocked by a captcha challenge. Exiting without attempting to solve it.")
				}

				return errors.Wrapf(err, "failed to harvest %q", query)
			}

			output := cliCtx.String("output")
			if output == "" {
				output = report.DefaultFilename(query)
			}

			document := report.NewDocument(result, cliCtx.String("engine"), cliCtx.Bool("front-matter"))
			if err := document.Save(output, cliCtx.Bool("append")); err != nil {
				return errors.WithStack(err)
			}

			if archivePath := cliCtx.String("archive"); archivePath != "" {
				if err := saveToArchive(archivePath, result); err != nil {
					return errors.WithStack(err)
				}
			}

			if verbatim {
				fmt.Printf("Saved %d entr(ies) to %s\n", len(result.Pages), output)

				if len(result.Skipped) > 0 {
					fmt.Fprintf(os.Stderr, "Skipped %d URL(s) due to captcha or errors:\n", len(result.Skipped))
					for _, skipped := range result.Skipped {
						fmt.Fprintf(os.Stderr, "  - %s\n", skipped)
					}
				}
			}

			slog.InfoContext(ctx, "harvest written", slog.String("output", output), slog.Int("pages", len(result.Pages)), slog.Int("skipped", len(result.Skipped)))

			return nil
		},
	}
}

func newScraper(cliCtx *cli.Context) (scraper.Scraper, func(), error) {
	switch fetcher := cliCtx.String("fetcher"); fetcher {
	case "browser":
		browserScraper, err := chromedpScraper.NewScraper(chromedpScraper.Options{
			Headless:    cliCtx.Bool("headless"),
			PageTimeout: time.Minute,
		})
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}

		return browserScraper, browserScraper.Close, nil
	case "surf":
		return surfScraper.NewScraper(), func() {}, nil
	case "http":
		return scraper.NewHTTPScraper(http.DefaultClient), func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown fetcher %q", fetcher)
	}
}

func newSearchClient(cliCtx *cli.Context, pageScraper scraper.Scraper) (search.Client, error) {
	newGoogle := func() (search.Client, error) {
		apiKey := cliCtx.String("google-api-key")
		cx := cliCtx.String("google-cx")
		if apiKey == "" || cx == "" {
			return nil, errors.New("the google engine requires --google-api-key and --google-cx")
		}

		return google.NewClient(apiKey, cx), nil
	}

	switch engine := cliCtx.String("engine"); engine {
	case "duckduckgo":
		return duckduckgo.NewClient(pageScraper), nil
	case "searx":
		return searx.NewClient(), nil
	case "google":
		return newGoogle()
	case "meta":
		clients := []search.Client{
			duckduckgo.NewClient(pageScraper),
			searx.NewClient(),
		}

		if googleClient, err := newGoogle(); err == nil {
			clients = append(clients, googleClient)
		}

		return meta.NewClient(clients...), nil
	default:
		return nil, errors.Errorf("unknown engine %q", engine)
	}
}

func saveToArchive(path string, result *harvest.Result) error {
	pageArchive, err := archive.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}

	defer pageArchive.Close()

	if err := pageArchive.AddResult(result); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// printProgress mirrors pipeline progress on stdout when verbatim output
// is requested.
func printProgress(progressCh <-chan harvest.ProgressEvent, done <-chan bool, verbatim bool) {
	for {
		select {
		case event := <-progressCh:
			if !verbatim {
				continue
			}

			progressPercent := int(event.Progress * 100)
			fmt.Printf("[%3d%%] %s (%s)\n", progressPercent, event.Step, event.Elapsed.Round(time.Millisecond))

			if url, ok := event.Details["url"].(string); ok {
				fmt.Printf("       %s\n", url)
			}
		case <-done:
			return
		}
	}
}
