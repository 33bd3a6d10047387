package harvest

import (
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Format selects how the extracted content is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// Options configures a harvest run.
type Options struct {
	MaxSites    int
	MaxWords    int
	Format      Format
	PageRetries int

	excludes []glob.Glob
}

type OptionFunc func(*Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		MaxSites:    3,
		MaxWords:    1000,
		Format:      FormatText,
		PageRetries: 1,
	}

	for _, fn := range funcs {
		fn(opts)
	}

	return opts
}

// WithMaxSites sets how many search results are scraped.
func WithMaxSites(max int) OptionFunc {
	return func(opts *Options) {
		opts.MaxSites = max
	}
}

// WithMaxWords sets the word budget kept from each page.
func WithMaxWords(max int) OptionFunc {
	return func(opts *Options) {
		opts.MaxWords = max
	}
}

// WithFormat sets the rendering of the extracted content.
func WithFormat(format Format) OptionFunc {
	return func(opts *Options) {
		opts.Format = format
	}
}

// WithPageRetries sets how many times a failed page fetch is retried.
func WithPageRetries(retries int) OptionFunc {
	return func(opts *Options) {
		opts.PageRetries = retries
	}
}

// WithExcludePatterns drops search results whose host or full url
// matches one of the given glob patterns. Invalid patterns are ignored.
func WithExcludePatterns(patterns ...string) OptionFunc {
	return func(opts *Options) {
		for _, p := range patterns {
			compiled, err := glob.Compile(p)
			if err != nil {
				continue
			}

			opts.excludes = append(opts.excludes, compiled)
		}
	}
}

func (o *Options) isExcluded(rawURL string) bool {
	if len(o.excludes) == 0 {
		return false
	}

	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	for _, g := range o.excludes {
		if g.Match(rawURL) || (host != "" && g.Match(host)) {
			return true
		}
	}

	return false
}
